package cache

// Outcome classifies a single cache access.
type Outcome int

// The values of the outcomes double as their numeric result codes.
const (
	Hit Outcome = iota
	MissNoEviction
	MissWithEviction
)

// Code returns the numeric result code of the outcome: 0 for a hit, 1 for a
// miss that filled an empty line, and 2 for a miss that evicted a line.
func (o Outcome) Code() int {
	return int(o)
}

// IsMiss returns true if the access missed.
func (o Outcome) IsMiss() bool {
	return o != Hit
}

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case MissNoEviction:
		return "miss"
	case MissWithEviction:
		return "miss eviction"
	default:
		return "unknown"
	}
}

// Stats are the cumulative counters of a cache.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// Accesses returns the number of accesses counted.
func (s Stats) Accesses() uint64 {
	return s.Hits + s.Misses
}
