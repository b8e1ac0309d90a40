package boardview

import (
	"sync/atomic"
	"time"
)

// Stats counts board activity using atomic operations for thread-safety.
type Stats struct {
	Mutations     atomic.Int64
	Persisted     atomic.Int64
	PersistFailed atomic.Int64
	InFlight      atomic.Int64
	BoardsOpen    atomic.Int32
	StartTime     time.Time
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Mutations     int64   `json:"mutations"`
	Persisted     int64   `json:"persisted"`
	PersistFailed int64   `json:"persistFailed"`
	InFlight      int64   `json:"inFlight"`
	BoardsOpen    int32   `json:"boardsOpen"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Mutations:     s.Mutations.Load(),
		Persisted:     s.Persisted.Load(),
		PersistFailed: s.PersistFailed.Load(),
		InFlight:      s.InFlight.Load(),
		BoardsOpen:    s.BoardsOpen.Load(),
		UptimeSeconds: time.Since(s.StartTime).Seconds(),
	}
}
