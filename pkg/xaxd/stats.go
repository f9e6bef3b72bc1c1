package xaxd

import "sync/atomic"

// Stats holds the daemon's running counters. All fields are updated
// atomically from the per-connection goroutines.
type Stats struct {
	Requests     atomic.Uint64
	Successes    atomic.Uint64
	Refusals     atomic.Uint64
	DecodeErrors atomic.Uint64
	Connections  atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats, shaped for the HTTP API
// and the management channel.
type StatsSnapshot struct {
	Requests     uint64 `json:"requests"`
	Successes    uint64 `json:"successes"`
	Refusals     uint64 `json:"refusals"`
	DecodeErrors uint64 `json:"decode_errors"`
	Connections  uint64 `json:"connections"`
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Requests:     s.Requests.Load(),
		Successes:    s.Successes.Load(),
		Refusals:     s.Refusals.Load(),
		DecodeErrors: s.DecodeErrors.Load(),
		Connections:  s.Connections.Load(),
	}
}
