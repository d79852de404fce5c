package loader

import "sync/atomic"

// Stats counts cache activity. All counters are updated atomically.
type Stats struct {
	hits           atomic.Uint64
	misses         atomic.Uint64
	fetches        atomic.Uint64
	absent         atomic.Uint64
	verifyFailures atomic.Uint64
	inserts        atomic.Uint64
	memoHits       atomic.Uint64
	structsBuilt   atomic.Uint64
	reclaimed      atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Hits           uint64 `json:"hits"`
	Misses         uint64 `json:"misses"`
	Fetches        uint64 `json:"fetches"`
	Absent         uint64 `json:"absent"`
	VerifyFailures uint64 `json:"verify_failures"`
	Inserts        uint64 `json:"inserts"`
	MemoHits       uint64 `json:"memo_hits"`
	StructsBuilt   uint64 `json:"structs_built"`
	Reclaimed      uint64 `json:"reclaimed"`
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Hits:           s.hits.Load(),
		Misses:         s.misses.Load(),
		Fetches:        s.fetches.Load(),
		Absent:         s.absent.Load(),
		VerifyFailures: s.verifyFailures.Load(),
		Inserts:        s.inserts.Load(),
		MemoHits:       s.memoHits.Load(),
		StructsBuilt:   s.structsBuilt.Load(),
		Reclaimed:      s.reclaimed.Load(),
	}
}

// HitRate returns Hits / (Hits + Misses), or 0 with no lookups.
func (s StatsSnapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
