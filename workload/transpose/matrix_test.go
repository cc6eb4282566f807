package transpose

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/csim/mem/cache"
)

var _ = Describe("Matrix", func() {
	It("should lay out elements row by row", func() {
		m := NewMatrix(3, 5, 0x1000)

		Expect(m.Address(0, 0)).To(Equal(uint64(0x1000)))
		Expect(m.Address(0, 1)).To(Equal(uint64(0x1004)))
		Expect(m.Address(2, 4)).To(Equal(uint64(0x1000 + 14*4)))
		Expect(m.ByteSize()).To(Equal(uint64(60)))
	})

	It("should panic on an out of range element", func() {
		m := NewMatrix(2, 2, 0)

		Expect(func() { m.At(2, 0) }).To(Panic())
		Expect(func() { m.Set(0, -1, 1) }).To(Panic())
	})

	It("should recognize a transpose", func() {
		a := NewMatrix(2, 3, 0)
		a.Fill(func(i, j int) int32 { return int32(10*i + j) })

		b := NewMatrix(3, 2, 0)
		b.Fill(func(i, j int) int32 { return int32(10*j + i) })

		Expect(IsTranspose(a, b)).To(BeTrue())

		b.Set(1, 1, -1)
		Expect(IsTranspose(a, b)).To(BeFalse())
		Expect(IsTranspose(a, a)).To(BeFalse())
	})
})

var _ = Describe("Instrumented", func() {
	var (
		mockCtrl *gomock.Controller
		accessor *MockAccessor
		x        Instrumented
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		accessor = NewMockAccessor(mockCtrl)
		x = Instrument(NewMatrix(4, 4, 0x100), accessor)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should report the address of every load and store", func() {
		gomock.InOrder(
			accessor.EXPECT().RecordAccess(uint64(0x100+4*6)).
				Return(cache.MissNoEviction, nil),
			accessor.EXPECT().RecordAccess(uint64(0x100+4*9)).
				Return(cache.Hit, nil),
		)

		x.Store(1, 2, 7)
		Expect(x.Load(2, 1)).To(BeZero())
		Expect(x.At(1, 2)).To(Equal(int32(7)))
	})

	It("should fail fast when the cache refuses an access", func() {
		accessor.EXPECT().RecordAccess(gomock.Any()).
			Return(cache.Hit, cache.ErrNotInitialized)

		Expect(func() { x.Load(0, 0) }).To(Panic())
	})
})
