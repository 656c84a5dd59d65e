package nav

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"fieldbot/agent/internal/geo"
	"fieldbot/agent/internal/input"
)

const (
	defaultCheckInterval     = 2 * time.Second
	defaultProgressThreshold = 1.0
	defaultMaxAttempts       = 5
)

// StuckConfig tunes stuck detection and recovery.
type StuckConfig struct {
	// CheckInterval spaces the movement checks; calls in between are no-ops.
	CheckInterval time.Duration
	// ProgressThreshold is the minimum horizontal movement per check that
	// counts as progress.
	ProgressThreshold float64
	// MaxAttempts caps recovery maneuvers before the monitor gives up.
	MaxAttempts int
	// CoinFlip decides the strafe side on the second attempt. Injected so
	// tests can pin the one randomized branch.
	CoinFlip func() bool
	Logger   *logrus.Logger

	// OnStateChange fires on every Moving<->Stuck transition.
	OnStateChange func(stuck bool)
	// OnExhausted fires once when recovery gives up; the caller must
	// intervene, typically by aborting the route.
	OnExhausted func()
}

func (c StuckConfig) normalized() StuckConfig {
	if c.CheckInterval <= 0 {
		c.CheckInterval = defaultCheckInterval
	}
	if c.ProgressThreshold <= 0 {
		c.ProgressThreshold = defaultProgressThreshold
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.CoinFlip == nil {
		c.CoinFlip = func() bool { return rand.Intn(2) == 0 }
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}

// Monitor watches position deltas and escalates recovery maneuvers while the
// agent fails to make progress. A missing reading never counts as being
// stuck; only confirmed non-movement does.
type Monitor struct {
	cfg StuckConfig

	stuck     bool
	attempts  int
	exhausted bool
	lastPos   geo.Position
	hasLast   bool
	lastCheck time.Time
}

// NewMonitor builds a monitor in the moving state.
func NewMonitor(cfg StuckConfig) *Monitor {
	return &Monitor{cfg: cfg.normalized()}
}

// Stuck reports the current state.
func (m *Monitor) Stuck() bool { return m.stuck }

// Attempts returns the recovery attempts made since the last transition.
func (m *Monitor) Attempts() int { return m.attempts }

// Exhausted reports whether recovery has given up.
func (m *Monitor) Exhausted() bool { return m.exhausted }

// Reset clears all detection state. Callers invoke it whenever a new route
// or target begins so deltas from the previous destination never count as
// "no progress" toward the new one.
func (m *Monitor) Reset() {
	m.stuck = false
	m.attempts = 0
	m.exhausted = false
	m.hasLast = false
	m.lastPos = geo.Position{}
	m.lastCheck = time.Time{}
}

// Update runs one stuck check against the latest reading and performs a
// recovery maneuver when due. It returns true while the agent is considered
// stuck; callers suspend normal movement for those ticks because recovery
// owns the command surface.
func (m *Monitor) Update(pos geo.Position, ok bool, now time.Time, ctrl input.Controller) bool {
	if !ok {
		return m.stuck
	}
	if !m.lastCheck.IsZero() && now.Sub(m.lastCheck) < m.cfg.CheckInterval {
		return m.stuck
	}

	if !m.hasLast {
		m.lastPos = pos
		m.hasLast = true
		m.lastCheck = now
		return m.stuck
	}

	moved := geo.HorizontalDistance(m.lastPos, pos)
	m.lastPos = pos
	m.lastCheck = now

	if moved >= m.cfg.ProgressThreshold {
		if m.stuck {
			m.stuck = false
			m.attempts = 0
			m.exhausted = false
			m.cfg.Logger.Debug("movement recovered")
			if m.cfg.OnStateChange != nil {
				m.cfg.OnStateChange(false)
			}
		}
		return false
	}

	if !m.stuck {
		m.stuck = true
		m.attempts = 0
		m.cfg.Logger.WithField("moved", moved).Warn("movement stalled")
		if m.cfg.OnStateChange != nil {
			m.cfg.OnStateChange(true)
		}
	}

	m.attempts++
	if m.attempts > m.cfg.MaxAttempts {
		if !m.exhausted {
			m.exhausted = true
			m.cfg.Logger.WithField("attempts", m.attempts-1).Error("movement stuck, recovery exhausted")
			if m.cfg.OnExhausted != nil {
				m.cfg.OnExhausted()
			}
		}
		return true
	}

	m.recover(ctrl)
	return true
}

// recover performs the maneuver for the current attempt ordinal. The ladder
// is fixed so behavior stays reproducible in tests, apart from the single
// coin flip picking the strafe side.
func (m *Monitor) recover(ctrl input.Controller) {
	m.cfg.Logger.WithField("attempt", m.attempts).Info("unstuck maneuver")
	if ctrl == nil {
		return
	}
	switch {
	case m.attempts == 1:
		ctrl.Jump()
	case m.attempts == 2:
		if m.cfg.CoinFlip() {
			ctrl.StrafeLeft()
		} else {
			ctrl.StrafeRight()
		}
	case m.attempts == 3:
		ctrl.MoveBackward()
		ctrl.Jump()
	default:
		ctrl.TurnLeft()
		ctrl.Jump()
	}
}
