package route

import (
	"time"

	"github.com/sirupsen/logrus"

	"fieldbot/agent/internal/geo"
)

const (
	defaultMinSampleInterval = time.Second
	defaultMinSampleDistance = 5.0
)

// RecorderConfig tunes the sampling gates for route recording.
type RecorderConfig struct {
	// MinInterval is the minimum time between automatic samples.
	MinInterval time.Duration
	// MinDistance is the minimum 3D distance between automatic samples.
	MinDistance float64
	Logger      *logrus.Logger
}

func (c RecorderConfig) normalized() RecorderConfig {
	if c.MinInterval <= 0 {
		c.MinInterval = defaultMinSampleInterval
	}
	if c.MinDistance <= 0 {
		c.MinDistance = defaultMinSampleDistance
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}

// Recorder samples the live position feed into a new path. Automatic samples
// must pass both the time gate and the distance gate; the first sample and
// the final sample on Stop bypass the gating so the ends of a route are
// always captured.
type Recorder struct {
	cfg RecorderConfig

	path         *Path
	recording    bool
	lastSampleAt time.Time
	lastPos      geo.Position
	hasSample    bool
}

// NewRecorder builds an idle recorder.
func NewRecorder(cfg RecorderConfig) *Recorder {
	return &Recorder{cfg: cfg.normalized()}
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool { return r.recording }

// Len returns the number of waypoints accumulated so far.
func (r *Recorder) Len() int { return r.path.Len() }

// Start begins a new recording session and captures the starting point
// immediately when a position is available.
func (r *Recorder) Start(name string, pos geo.Position, ok bool, now time.Time) {
	r.path = NewPath(name)
	r.recording = true
	r.hasSample = false
	r.lastSampleAt = time.Time{}
	r.cfg.Logger.WithField("path", name).Info("route recording started")
	if ok {
		r.capture(Waypoint{Position: pos, Kind: KindNormal}, now)
	}
}

// Update feeds one tick's reading through the sampling gates.
func (r *Recorder) Update(pos geo.Position, ok bool, now time.Time) {
	if !r.recording || !ok {
		return
	}
	if r.hasSample {
		if now.Sub(r.lastSampleAt) < r.cfg.MinInterval {
			return
		}
		if geo.Distance(r.lastPos, pos) < r.cfg.MinDistance {
			return
		}
	}
	r.capture(Waypoint{Position: pos, Kind: KindNormal}, now)
}

// Mark captures a point of interest right now, bypassing both gates.
func (r *Recorder) Mark(kind Kind, name string, pos geo.Position, ok bool, now time.Time) bool {
	if !r.recording || !ok {
		return false
	}
	r.capture(Waypoint{Position: pos, Kind: kind, Name: name}, now)
	return true
}

// Stop force-captures the final position, ends the session, and returns an
// immutable copy of the accumulated path. The live accumulator is cleared.
func (r *Recorder) Stop(pos geo.Position, ok bool, now time.Time) *Path {
	if !r.recording {
		return nil
	}
	if ok {
		r.capture(Waypoint{Position: pos, Kind: KindNormal}, now)
	}

	recorded := r.path.Clone()
	r.cfg.Logger.WithFields(logrus.Fields{
		"path":      recorded.Name,
		"waypoints": recorded.Len(),
	}).Info("route recording stopped")

	r.path = nil
	r.recording = false
	r.hasSample = false
	return recorded
}

func (r *Recorder) capture(wp Waypoint, now time.Time) {
	r.path.Append(wp)
	r.lastSampleAt = now
	r.lastPos = wp.Position
	r.hasSample = true
}
