// Package monitoring serves the live statistics of a simulated cache over
// HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/csim/mem/addressing"
	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/sim"
)

// Monitor can turn a simulation into a server that reports the state of a
// cache. It observes the cache through a hook, so the HTTP handlers never
// touch the cache itself.
type Monitor struct {
	portNumber int
	listener   net.Listener

	lock       sync.Mutex
	geometry   addressing.Geometry
	stats      cache.Stats
	lastAccess *cache.AccessEvent
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterManager makes the monitor observe the accesses to a cache.
func (m *Monitor) RegisterManager(manager *cache.Manager) {
	m.lock.Lock()
	m.geometry = manager.Geometry()
	m.stats = manager.Stats()
	m.lock.Unlock()

	manager.AcceptHook(m)
}

// Func updates the state reported by the monitor after an access.
func (m *Monitor) Func(ctx sim.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	event, ok := ctx.Item.(cache.AccessEvent)
	if !ok {
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.stats = event.Stats
	m.lastAccess = &event
}

// Handler returns the router that serves the monitoring API.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", m.listStats)
	r.HandleFunc("/api/geometry", m.listGeometry)
	r.HandleFunc("/api/last_access", m.listLastAccess)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server and returns the address it
// listens on.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener

	fmt.Fprintf(
		os.Stderr,
		"Monitoring simulation with %s\n", m.URL())

	handler := m.Handler()

	go func() {
		err := http.Serve(listener, handler)
		dieOnErr(err)
	}()

	return listener.Addr().String()
}

// URL returns the address of a started server.
func (m *Monitor) URL() string {
	if m.listener == nil {
		return ""
	}

	port := m.listener.Addr().(*net.TCPAddr).Port

	return fmt.Sprintf("http://localhost:%d/api/stats", port)
}

// OpenBrowser opens the statistics of a started server in a browser.
func (m *Monitor) OpenBrowser() error {
	return browser.OpenURL(m.URL())
}

type statsRsp struct {
	cache.Stats

	Accesses uint64 `json:"accesses"`
}

func (m *Monitor) listStats(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	rsp := statsRsp{Stats: m.stats, Accesses: m.stats.Accesses()}
	m.lock.Unlock()

	m.writeJSON(w, rsp)
}

type geometryRsp struct {
	SetIndexBits    uint32 `json:"set_index_bits"`
	LinesPerSet     uint32 `json:"lines_per_set"`
	BlockOffsetBits uint32 `json:"block_offset_bits"`
	NumSets         uint64 `json:"num_sets"`
	BlockSize       uint64 `json:"block_size"`
}

func (m *Monitor) listGeometry(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	g := m.geometry
	m.lock.Unlock()

	m.writeJSON(w, geometryRsp{
		SetIndexBits:    g.SetIndexBits,
		LinesPerSet:     g.LinesPerSet,
		BlockOffsetBits: g.BlockOffsetBits,
		NumSets:         g.NumSets(),
		BlockSize:       g.BlockSize(),
	})
}

func (m *Monitor) listLastAccess(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	if m.lastAccess == nil {
		m.lock.Unlock()
		http.Error(w, "no access recorded yet", http.StatusNotFound)

		return
	}

	event := *m.lastAccess
	m.lock.Unlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&event)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	m.writeJSON(w, prof)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
