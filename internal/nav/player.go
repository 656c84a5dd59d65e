package nav

import (
	"time"

	"github.com/sirupsen/logrus"

	"fieldbot/agent/internal/feed"
	"fieldbot/agent/internal/geo"
	"fieldbot/agent/internal/input"
	"fieldbot/agent/internal/route"
)

const defaultStoppingDistance = 2.0

// State names the player's playback phase.
type State string

const (
	StateIdle      State = "idle"
	StatePlaying   State = "playing"
	StateWaiting   State = "waiting"
	StatePaused    State = "paused"
	StateStopped   State = "stopped"
	StateCompleted State = "completed"
)

// PlayerConfig tunes route playback.
type PlayerConfig struct {
	// StoppingDistance is how close the agent must get to a waypoint for it
	// to count as reached.
	StoppingDistance float64
	Logger           *logrus.Logger

	// OnArrive fires when a waypoint is reached, before any dwell delay.
	OnArrive func(index int, wp route.Waypoint)
	// OnComplete fires when a non-looping path runs out of waypoints.
	OnComplete func(path *route.Path)
}

func (c PlayerConfig) normalized() PlayerConfig {
	if c.StoppingDistance <= 0 {
		c.StoppingDistance = defaultStoppingDistance
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}

// Player marches the agent through a waypoint path. The path handed to Play
// is treated as read-only; a concurrent editor invalidates index bookkeeping
// and is out of contract.
type Player struct {
	cfg     PlayerConfig
	monitor *Monitor

	path      *route.Path
	logical   int
	reversed  bool
	waiting   bool
	waitStart time.Time
	state     State
}

// NewPlayer builds an idle player. A nil monitor disables stuck handling.
func NewPlayer(cfg PlayerConfig, monitor *Monitor) *Player {
	return &Player{
		cfg:     cfg.normalized(),
		monitor: monitor,
		state:   StateIdle,
	}
}

// State reports the playback phase, surfacing the dwell wait as its own
// state.
func (p *Player) State() State {
	if p.state == StatePlaying && p.waiting {
		return StateWaiting
	}
	return p.state
}

// Path returns the path being played, if any.
func (p *Player) Path() *route.Path { return p.path }

// LogicalIndex returns the direction-agnostic step counter.
func (p *Player) LogicalIndex() int { return p.logical }

// Reversed reports whether traversal currently runs back toward the start.
func (p *Player) Reversed() bool { return p.reversed }

// CurrentWaypoint returns the waypoint the player is heading for.
func (p *Player) CurrentWaypoint() (route.Waypoint, bool) {
	if p.path.Len() == 0 {
		return route.Waypoint{}, false
	}
	return p.path.Waypoints[PhysicalIndex(p.logical, p.path.Len(), p.reversed)], true
}

// Play loads a path and starts playback, seeding the step counter at the
// waypoint nearest the live position so a route loaded mid-field resumes
// sensibly. An empty path is rejected and leaves the player untouched.
func (p *Player) Play(path *route.Path, pos geo.Position, ok bool) bool {
	if path.Len() == 0 {
		p.cfg.Logger.Warn("refusing to play empty path")
		return false
	}

	p.path = path
	p.reversed = false
	p.waiting = false
	p.logical = 0
	if ok {
		p.logical = nearestWaypoint(path, pos)
	}
	if p.monitor != nil {
		p.monitor.Reset()
	}
	p.state = StatePlaying

	p.cfg.Logger.WithFields(logrus.Fields{
		"path":  path.Name,
		"start": p.logical,
	}).Info("route playback started")
	return true
}

// nearestWaypoint scans the full path for the waypoint closest to pos by 3D
// distance; ties go to the first index encountered.
func nearestWaypoint(path *route.Path, pos geo.Position) int {
	best := 0
	bestDist := geo.DistanceSquared(pos, path.Waypoints[0].Position)
	for i := 1; i < len(path.Waypoints); i++ {
		d := geo.DistanceSquared(pos, path.Waypoints[i].Position)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Pause stops movement commands without touching any indices.
func (p *Player) Pause(ctrl input.Controller) {
	if p.state != StatePlaying {
		return
	}
	p.state = StatePaused
	if ctrl != nil {
		ctrl.StopAll()
	}
	p.cfg.Logger.Info("route playback paused")
}

// Resume re-enters playback from wherever it left off.
func (p *Player) Resume() bool {
	if p.path.Len() == 0 {
		return false
	}
	if p.state != StatePaused && p.state != StateStopped {
		return false
	}
	p.state = StatePlaying
	p.cfg.Logger.Info("route playback resumed")
	return true
}

// Stop halts playback and clears the dwell wait.
func (p *Player) Stop(ctrl input.Controller) {
	if p.state == StateIdle {
		return
	}
	p.state = StateStopped
	p.waiting = false
	if ctrl != nil {
		ctrl.StopAll()
	}
	p.cfg.Logger.Info("route playback stopped")
}

// JumpTo sets the logical index directly without changing direction.
func (p *Player) JumpTo(index int) bool {
	if index < 0 || index >= p.path.Len() {
		return false
	}
	p.logical = index
	return true
}

// SkipNext steps the logical index forward, clamping at the end of the path.
// Skips are direct index edits and deliberately bypass loop and reverse
// handling.
func (p *Player) SkipNext() {
	if p.path.Len() == 0 {
		return
	}
	if p.logical < p.path.Len()-1 {
		p.logical++
	}
}

// SkipPrevious steps the logical index back, clamping at the start.
func (p *Player) SkipPrevious() {
	if p.logical > 0 {
		p.logical--
	}
}

// Update advances playback by one tick. Stuck recovery owns the command
// surface for any tick it acts in; a dwell wait is abandoned the moment
// combat starts, since delays are for idling safely, not for fighting
// through.
func (p *Player) Update(snap feed.Snapshot, ok bool, now time.Time, ctrl input.Controller) {
	if p.state != StatePlaying {
		return
	}

	if p.monitor != nil && p.monitor.Update(snap.Position, ok, now, ctrl) {
		return
	}
	if !ok {
		return
	}

	wp, found := p.CurrentWaypoint()
	if !found {
		return
	}

	if p.waiting {
		if snap.InCombat {
			p.waiting = false
			p.advance(ctrl)
			return
		}
		delay := time.Duration(wp.Delay * float64(time.Second))
		if now.Sub(p.waitStart) >= delay {
			p.waiting = false
			p.advance(ctrl)
		}
		return
	}

	if geo.Distance(snap.Position, wp.Position) <= p.cfg.StoppingDistance {
		if ctrl != nil {
			ctrl.StopAll()
		}
		index := PhysicalIndex(p.logical, p.path.Len(), p.reversed)
		p.cfg.Logger.WithFields(logrus.Fields{
			"path":     p.path.Name,
			"waypoint": index,
		}).Debug("waypoint reached")
		if p.cfg.OnArrive != nil {
			p.cfg.OnArrive(index, wp)
		}
		if wp.Delay > 0 {
			p.waiting = true
			p.waitStart = now
			return
		}
		p.advance(ctrl)
		return
	}

	input.Drive(ctrl, geo.DirectionTo(snap.Position, wp.Position))
}

// advance moves the step counter to the next waypoint, handling loop wrap,
// end-of-path reversal, and completion. On a reversal the counter restarts
// at one, not zero: the endpoint was just visited and is skipped on the way
// back.
func (p *Player) advance(ctrl input.Controller) {
	count := p.path.Len()
	next := p.logical + 1
	if next < count {
		p.logical = next
		return
	}

	switch {
	case p.path.Loop:
		p.logical = 0
	case p.path.ReverseAtEnd:
		p.reversed = !p.reversed
		p.logical = 1
		if count == 1 {
			p.logical = 0
		}
	default:
		p.state = StateCompleted
		p.waiting = false
		if ctrl != nil {
			ctrl.StopAll()
		}
		p.cfg.Logger.WithField("path", p.path.Name).Info("route completed")
		if p.cfg.OnComplete != nil {
			p.cfg.OnComplete(p.path)
		}
	}
}
