package nav

import (
	"reflect"
	"testing"
	"time"

	"fieldbot/agent/internal/feed"
	"fieldbot/agent/internal/geo"
	"fieldbot/agent/internal/route"
)

func linePath(name string, loop, reverse bool, points ...geo.Position) *route.Path {
	p := route.NewPath(name)
	p.Loop = loop
	p.ReverseAtEnd = reverse
	for _, pos := range points {
		p.Append(route.Waypoint{Position: pos, Kind: route.KindNormal})
	}
	return p
}

func snapAt(pos geo.Position) feed.Snapshot {
	return feed.Snapshot{Position: pos}
}

func TestPlayRejectsEmptyPath(t *testing.T) {
	p := NewPlayer(PlayerConfig{}, nil)

	if p.Play(route.NewPath("empty"), geo.Position{}, true) {
		t.Fatalf("Play accepted an empty path")
	}
	if p.State() != StateIdle {
		t.Fatalf("state = %q, want idle", p.State())
	}
}

func TestPlaySeedsNearestWaypoint(t *testing.T) {
	path := linePath("seed", false, false,
		geo.Position{X: 0},
		geo.Position{X: 10},
		geo.Position{X: 20},
	)
	p := NewPlayer(PlayerConfig{}, nil)

	if !p.Play(path, geo.Position{X: 12}, true) {
		t.Fatalf("Play rejected a valid path")
	}
	if p.LogicalIndex() != 1 {
		t.Fatalf("seeded index = %d, want 1", p.LogicalIndex())
	}

	// Ties break toward the first index encountered.
	if !p.Play(path, geo.Position{X: 5}, true) {
		t.Fatalf("Play rejected a valid path")
	}
	if p.LogicalIndex() != 0 {
		t.Fatalf("tie seeded index = %d, want 0", p.LogicalIndex())
	}

	// Without a reading the player starts at the beginning.
	if !p.Play(path, geo.Position{}, false) {
		t.Fatalf("Play rejected a valid path")
	}
	if p.LogicalIndex() != 0 {
		t.Fatalf("blind seed index = %d, want 0", p.LogicalIndex())
	}
}

func TestStraightLineRunCompletes(t *testing.T) {
	path := linePath("line", false, false,
		geo.Position{},
		geo.Position{X: 10},
	)
	var arrivals []int
	var completed int
	p := NewPlayer(PlayerConfig{
		StoppingDistance: 1,
		OnArrive:         func(index int, _ route.Waypoint) { arrivals = append(arrivals, index) },
		OnComplete:       func(_ *route.Path) { completed++ },
	}, nil)
	ctrl := &commandLog{}
	now := time.Now()

	if !p.Play(path, geo.Position{}, true) {
		t.Fatalf("Play rejected path")
	}
	if p.LogicalIndex() != 0 {
		t.Fatalf("seeded index = %d, want 0", p.LogicalIndex())
	}

	// At the first waypoint already: arrive and advance.
	p.Update(snapAt(geo.Position{}), true, now, ctrl)
	if p.LogicalIndex() != 1 {
		t.Fatalf("index after first arrival = %d, want 1", p.LogicalIndex())
	}

	// En route to the second waypoint the player strafes right (+X).
	ctrl.reset()
	p.Update(snapAt(geo.Position{X: 4}), true, now.Add(time.Second), ctrl)
	if !reflect.DeepEqual(ctrl.commands, []string{"strafeRight"}) {
		t.Fatalf("en-route commands = %v, want strafeRight", ctrl.commands)
	}

	// Arrival within tolerance completes the path; no wrap.
	ctrl.reset()
	p.Update(snapAt(geo.Position{X: 9.5}), true, now.Add(2*time.Second), ctrl)
	if p.State() != StateCompleted {
		t.Fatalf("state = %q, want completed", p.State())
	}
	if !reflect.DeepEqual(arrivals, []int{0, 1}) {
		t.Fatalf("arrivals = %v, want [0 1]", arrivals)
	}
	if completed != 1 {
		t.Fatalf("completion fired %d times, want 1", completed)
	}
	if ctrl.commands[len(ctrl.commands)-1] != "stopAll" {
		t.Fatalf("movement not stopped on completion: %v", ctrl.commands)
	}

	// A completed player ignores further ticks.
	ctrl.reset()
	p.Update(snapAt(geo.Position{X: 9.5}), true, now.Add(3*time.Second), ctrl)
	if len(ctrl.commands) != 0 {
		t.Fatalf("completed player issued commands: %v", ctrl.commands)
	}
}

func TestReverseAtEndSkipsEndpoint(t *testing.T) {
	path := linePath("pendulum", false, true,
		geo.Position{X: 0},
		geo.Position{X: 10},
		geo.Position{X: 20},
		geo.Position{X: 30},
	)
	p := NewPlayer(PlayerConfig{StoppingDistance: 1}, nil)
	ctrl := &commandLog{}
	now := time.Now()

	if !p.Play(path, geo.Position{X: 30}, true) {
		t.Fatalf("Play rejected path")
	}
	if p.LogicalIndex() != 3 {
		t.Fatalf("seeded index = %d, want 3", p.LogicalIndex())
	}

	// Reaching the last waypoint flips traversal and restarts the step
	// counter at one: the next visit is physical waypoint 2, not 3 again.
	p.Update(snapAt(geo.Position{X: 30}), true, now, ctrl)
	if !p.Reversed() {
		t.Fatalf("traversal not reversed at the end of the path")
	}
	if p.LogicalIndex() != 1 {
		t.Fatalf("logical index after reversal = %d, want 1", p.LogicalIndex())
	}
	wp, ok := p.CurrentWaypoint()
	if !ok || wp.Position.X != 20 {
		t.Fatalf("current waypoint after reversal = %+v, want X=20", wp)
	}

	// Walking all the way back flips forward again at index 1.
	p.Update(snapAt(geo.Position{X: 20}), true, now.Add(time.Second), ctrl)
	p.Update(snapAt(geo.Position{X: 10}), true, now.Add(2*time.Second), ctrl)
	p.Update(snapAt(geo.Position{X: 0}), true, now.Add(3*time.Second), ctrl)
	if p.Reversed() {
		t.Fatalf("traversal still reversed after returning to the start")
	}
	if p.LogicalIndex() != 1 {
		t.Fatalf("logical index after forward flip = %d, want 1", p.LogicalIndex())
	}
}

func TestLoopWrapsToStart(t *testing.T) {
	path := linePath("circuit", true, false,
		geo.Position{X: 0},
		geo.Position{X: 10},
	)
	p := NewPlayer(PlayerConfig{StoppingDistance: 1}, nil)
	ctrl := &commandLog{}
	now := time.Now()

	p.Play(path, geo.Position{X: 10}, true)
	p.Update(snapAt(geo.Position{X: 10}), true, now, ctrl)

	if p.State() != StatePlaying {
		t.Fatalf("loop path completed: state = %q", p.State())
	}
	if p.LogicalIndex() != 0 {
		t.Fatalf("loop did not wrap: index = %d", p.LogicalIndex())
	}
}

func TestDelayWaypointWaits(t *testing.T) {
	path := linePath("restful", false, false,
		geo.Position{X: 0},
		geo.Position{X: 10},
	)
	path.Waypoints[0].Delay = 5
	p := NewPlayer(PlayerConfig{StoppingDistance: 1}, nil)
	ctrl := &commandLog{}
	now := time.Now()

	p.Play(path, geo.Position{}, true)
	p.Update(snapAt(geo.Position{}), true, now, ctrl)
	if p.State() != StateWaiting {
		t.Fatalf("state = %q, want waiting", p.State())
	}
	if p.LogicalIndex() != 0 {
		t.Fatalf("advanced during dwell: index = %d", p.LogicalIndex())
	}

	// Mid-dwell ticks issue no movement.
	ctrl.reset()
	p.Update(snapAt(geo.Position{}), true, now.Add(2*time.Second), ctrl)
	if len(ctrl.commands) != 0 {
		t.Fatalf("commands during dwell: %v", ctrl.commands)
	}
	if p.State() != StateWaiting {
		t.Fatalf("dwell ended early: state = %q", p.State())
	}

	// Delay elapsed: advance.
	p.Update(snapAt(geo.Position{}), true, now.Add(5*time.Second), ctrl)
	if p.State() != StatePlaying || p.LogicalIndex() != 1 {
		t.Fatalf("dwell did not end: state=%q index=%d", p.State(), p.LogicalIndex())
	}
}

func TestCombatAbandonsDwell(t *testing.T) {
	path := linePath("restful", false, false,
		geo.Position{X: 0},
		geo.Position{X: 10},
	)
	path.Waypoints[0].Delay = 60
	p := NewPlayer(PlayerConfig{StoppingDistance: 1}, nil)
	ctrl := &commandLog{}
	now := time.Now()

	p.Play(path, geo.Position{}, true)
	p.Update(snapAt(geo.Position{}), true, now, ctrl)
	if p.State() != StateWaiting {
		t.Fatalf("state = %q, want waiting", p.State())
	}

	snap := snapAt(geo.Position{})
	snap.InCombat = true
	p.Update(snap, true, now.Add(time.Second), ctrl)
	if p.State() != StatePlaying || p.LogicalIndex() != 1 {
		t.Fatalf("combat did not abandon dwell: state=%q index=%d", p.State(), p.LogicalIndex())
	}
}

func TestStuckRecoveryOwnsTheTick(t *testing.T) {
	path := linePath("blocked", false, false,
		geo.Position{X: 0},
		geo.Position{X: 100},
	)
	monitor := NewMonitor(StuckConfig{
		CheckInterval:     time.Second,
		ProgressThreshold: 1.0,
		MaxAttempts:       5,
		CoinFlip:          func() bool { return true },
	})
	p := NewPlayer(PlayerConfig{StoppingDistance: 1}, monitor)
	ctrl := &commandLog{}
	now := time.Now()

	p.Play(path, geo.Position{X: 50}, true)

	// Baseline check, then a confirmed stall: the tick belongs to recovery
	// and playback issues no travel commands.
	p.Update(snapAt(geo.Position{X: 50}), true, now, ctrl)
	ctrl.reset()
	p.Update(snapAt(geo.Position{X: 50}), true, now.Add(time.Second), ctrl)

	if !monitor.Stuck() {
		t.Fatalf("monitor not stuck after stalled ticks")
	}
	if !reflect.DeepEqual(ctrl.commands, []string{"jump"}) {
		t.Fatalf("tick commands = %v, want recovery jump only", ctrl.commands)
	}
}

func TestMissingReadingSuspendsPlayback(t *testing.T) {
	path := linePath("dark", false, false,
		geo.Position{X: 0},
		geo.Position{X: 10},
	)
	p := NewPlayer(PlayerConfig{StoppingDistance: 1}, nil)
	ctrl := &commandLog{}

	p.Play(path, geo.Position{}, true)
	p.Update(feed.Snapshot{}, false, time.Now(), ctrl)
	if len(ctrl.commands) != 0 {
		t.Fatalf("commands issued without a position reading: %v", ctrl.commands)
	}
}

func TestManualIndexControls(t *testing.T) {
	path := linePath("manual", false, false,
		geo.Position{X: 0},
		geo.Position{X: 10},
		geo.Position{X: 20},
	)
	p := NewPlayer(PlayerConfig{}, nil)
	p.Play(path, geo.Position{}, true)

	if !p.JumpTo(2) {
		t.Fatalf("JumpTo(2) rejected")
	}
	if p.JumpTo(3) || p.JumpTo(-1) {
		t.Fatalf("JumpTo accepted an out-of-range index")
	}
	if p.LogicalIndex() != 2 {
		t.Fatalf("index = %d, want 2", p.LogicalIndex())
	}

	// Skips clamp at the path boundaries instead of wrapping.
	p.SkipNext()
	if p.LogicalIndex() != 2 {
		t.Fatalf("SkipNext wrapped: index = %d", p.LogicalIndex())
	}
	p.SkipPrevious()
	p.SkipPrevious()
	p.SkipPrevious()
	if p.LogicalIndex() != 0 {
		t.Fatalf("SkipPrevious did not clamp: index = %d", p.LogicalIndex())
	}
}

func TestPauseResumeStop(t *testing.T) {
	path := linePath("controls", false, false,
		geo.Position{X: 0},
		geo.Position{X: 10},
	)
	p := NewPlayer(PlayerConfig{StoppingDistance: 1}, nil)
	ctrl := &commandLog{}
	now := time.Now()

	p.Play(path, geo.Position{X: 4}, true)
	p.JumpTo(1)

	p.Pause(ctrl)
	if p.State() != StatePaused {
		t.Fatalf("state = %q, want paused", p.State())
	}
	if !reflect.DeepEqual(ctrl.commands, []string{"stopAll"}) {
		t.Fatalf("pause commands = %v, want stopAll", ctrl.commands)
	}

	// Paused players ignore ticks and keep their indices.
	ctrl.reset()
	p.Update(snapAt(geo.Position{X: 4}), true, now, ctrl)
	if len(ctrl.commands) != 0 {
		t.Fatalf("paused player issued commands: %v", ctrl.commands)
	}
	if p.LogicalIndex() != 1 {
		t.Fatalf("pause moved the index to %d", p.LogicalIndex())
	}

	if !p.Resume() {
		t.Fatalf("Resume rejected")
	}
	if p.State() != StatePlaying {
		t.Fatalf("state after resume = %q", p.State())
	}

	p.Stop(ctrl)
	if p.State() != StateStopped {
		t.Fatalf("state = %q, want stopped", p.State())
	}
}
