package feed

import "fieldbot/agent/internal/geo"

// Snapshot is one tick's view of the agent: its position, the camera yaw in
// degrees, and whether combat is currently in progress.
type Snapshot struct {
	Position geo.Position `json:"position"`
	Yaw      float32      `json:"yaw"`
	InCombat bool         `json:"inCombat"`
}

// Source yields the most recent snapshot. The second return is false when no
// authoritative reading exists this tick; callers must treat that as missing
// data, never as "stationary at the last known position".
type Source interface {
	Snapshot() (Snapshot, bool)
}

// Func adapts a plain function to a Source.
type Func func() (Snapshot, bool)

// Snapshot implements Source.
func (f Func) Snapshot() (Snapshot, bool) { return f() }
