package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/sim"
)

var _ = Describe("Monitor", func() {
	var (
		manager *cache.Manager
		monitor *Monitor
		server  *httptest.Server
	)

	get := func(path string, v any) int {
		rsp, err := http.Get(server.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		if v != nil && rsp.StatusCode == http.StatusOK {
			Expect(json.NewDecoder(rsp.Body).Decode(v)).To(Succeed())
		}

		return rsp.StatusCode
	}

	BeforeEach(func() {
		var err error
		manager, err = cache.MakeBuilder().
			WithSetIndexBits(1).
			WithLinesPerSet(2).
			WithBlockOffsetBits(1).
			Build()
		Expect(err).NotTo(HaveOccurred())

		monitor = NewMonitor()
		monitor.RegisterManager(manager)

		server = httptest.NewServer(monitor.Handler())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should register itself as a hook", func() {
		Expect(manager.NumHooks()).To(Equal(1))
	})

	It("should report the geometry", func() {
		var rsp geometryRsp
		Expect(get("/api/geometry", &rsp)).To(Equal(http.StatusOK))

		Expect(rsp.SetIndexBits).To(Equal(uint32(1)))
		Expect(rsp.LinesPerSet).To(Equal(uint32(2)))
		Expect(rsp.BlockOffsetBits).To(Equal(uint32(1)))
		Expect(rsp.NumSets).To(Equal(uint64(2)))
		Expect(rsp.BlockSize).To(Equal(uint64(2)))
	})

	It("should follow the counters of the cache", func() {
		for _, addr := range []uint64{0, 8, 0, 16} {
			manager.MustRecordAccess(addr)
		}

		var rsp statsRsp
		Expect(get("/api/stats", &rsp)).To(Equal(http.StatusOK))

		Expect(rsp.Hits).To(Equal(uint64(1)))
		Expect(rsp.Misses).To(Equal(uint64(3)))
		Expect(rsp.Evictions).To(Equal(uint64(1)))
		Expect(rsp.Accesses).To(Equal(uint64(4)))
	})

	It("should report no last access before the first access", func() {
		Expect(get("/api/last_access", nil)).To(Equal(http.StatusNotFound))
	})

	It("should report the last access", func() {
		manager.MustRecordAccess(0x10)

		rsp, err := http.Get(server.URL + "/api/last_access")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		var body map[string]any
		Expect(json.NewDecoder(rsp.Body).Decode(&body)).To(Succeed())
		Expect(body).NotTo(BeEmpty())
	})

	It("should report the resource usage", func() {
		var rsp resourceRsp
		Expect(get("/api/resource", &rsp)).To(Equal(http.StatusOK))

		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should ignore events from other positions", func() {
		monitor.Func(simHookCtxAt("Other"))

		var rsp statsRsp
		Expect(get("/api/stats", &rsp)).To(Equal(http.StatusOK))
		Expect(rsp.Accesses).To(BeZero())
	})
})

var _ = Describe("Monitor port", func() {
	It("should refuse reserved ports", func() {
		m := NewMonitor().WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))
	})

	It("should keep high ports", func() {
		m := NewMonitor().WithPortNumber(32776)
		Expect(m.portNumber).To(Equal(32776))
	})

	It("should have no URL before starting", func() {
		Expect(NewMonitor().URL()).To(BeEmpty())
	})
})

func simHookCtxAt(name string) sim.HookCtx {
	return sim.HookCtx{
		Pos:  &sim.HookPos{Name: name},
		Item: cache.AccessEvent{Stats: cache.Stats{Hits: 5}},
	}
}
