package cache

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/csim/sim"
)

var _ = Describe("Access hooks", func() {
	var (
		mockCtrl *gomock.Controller
		hook     *MockHook
		m        *Manager
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hook = NewMockHook(mockCtrl)

		var err error
		m, err = MakeBuilder().
			WithSetIndexBits(1).
			WithLinesPerSet(1).
			WithBlockOffsetBits(4).
			WithHook(hook).
			Build()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should report every access", func() {
		var events []AccessEvent

		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx sim.HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosAccess))
				Expect(ctx.Domain).To(BeIdenticalTo(m))
				events = append(events, ctx.Item.(AccessEvent))
			}).
			Times(3)

		m.MustRecordAccess(0x1234)
		m.MustRecordAccess(0x1238)
		m.MustRecordAccess(0x5234)

		Expect(events).To(HaveLen(3))
		Expect(events[0]).To(Equal(AccessEvent{
			Seq:         1,
			Address:     0x1234,
			Tag:         0x1234 >> 5,
			SetIndex:    1,
			BlockOffset: 4,
			Outcome:     MissNoEviction,
			Stats:       Stats{Misses: 1},
		}))
		Expect(events[1].Outcome).To(Equal(Hit))
		Expect(events[2].Outcome).To(Equal(MissWithEviction))
		Expect(events[2].Stats).To(Equal(Stats{Hits: 1, Misses: 2, Evictions: 1}))
	})

	It("should not report a refused access", func() {
		unready := NewManager()
		unready.AcceptHook(hook)

		_, err := unready.RecordAccess(0x0)

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("VerboseHook", func() {
	It("should print the decision of each access", func() {
		buf := new(bytes.Buffer)

		m, err := MakeBuilder().
			WithSetIndexBits(0).
			WithLinesPerSet(1).
			WithBlockOffsetBits(0).
			WithVerbose(log.New(buf, "", 0)).
			Build()
		Expect(err).NotTo(HaveOccurred())

		m.MustRecordAccess(0x10)
		m.MustRecordAccess(0x10)
		m.MustRecordAccess(0x20)

		Expect(buf.String()).To(Equal(
			"10 set=0 tag=10 miss\n" +
				"10 set=0 tag=10 hit\n" +
				"20 set=0 tag=20 miss eviction\n"))
	})

	It("should ignore other hook positions", func() {
		buf := new(bytes.Buffer)
		h := NewVerboseHook(log.New(buf, "", 0))

		h.Func(sim.HookCtx{Pos: &sim.HookPos{Name: "Other"}, Item: AccessEvent{}})

		Expect(buf.Len()).To(BeZero())
	})
})
