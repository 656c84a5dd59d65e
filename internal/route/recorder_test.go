package route

import (
	"testing"
	"time"

	"fieldbot/agent/internal/geo"
)

func newTestRecorder() *Recorder {
	return NewRecorder(RecorderConfig{
		MinInterval: time.Second,
		MinDistance: 5,
	})
}

func TestStartCapturesImmediately(t *testing.T) {
	r := newTestRecorder()
	now := time.Now()

	r.Start("loop", geo.Position{X: 1}, true, now)
	if !r.Recording() {
		t.Fatalf("recorder not recording after Start")
	}
	if r.Len() != 1 {
		t.Fatalf("initial capture missing: len = %d", r.Len())
	}
}

func TestStartWithoutPositionDefersFirstSample(t *testing.T) {
	r := newTestRecorder()
	now := time.Now()

	r.Start("loop", geo.Position{}, false, now)
	if r.Len() != 0 {
		t.Fatalf("captured a waypoint without a position reading")
	}

	// First real reading bypasses the distance gate.
	r.Update(geo.Position{X: 0.5}, true, now.Add(time.Millisecond))
	if r.Len() != 1 {
		t.Fatalf("first reading not captured: len = %d", r.Len())
	}
}

func TestUpdateRequiresBothGates(t *testing.T) {
	r := newTestRecorder()
	start := time.Now()
	r.Start("loop", geo.Position{}, true, start)

	// Distance passes, time does not.
	r.Update(geo.Position{X: 10}, true, start.Add(500*time.Millisecond))
	if r.Len() != 1 {
		t.Fatalf("sample taken before time gate: len = %d", r.Len())
	}

	// Time passes, distance does not.
	r.Update(geo.Position{X: 1}, true, start.Add(2*time.Second))
	if r.Len() != 1 {
		t.Fatalf("sample taken before distance gate: len = %d", r.Len())
	}

	// Both pass.
	r.Update(geo.Position{X: 10}, true, start.Add(3*time.Second))
	if r.Len() != 2 {
		t.Fatalf("sample not taken with both gates open: len = %d", r.Len())
	}
}

func TestUpdateSkipsMissingReadings(t *testing.T) {
	r := newTestRecorder()
	start := time.Now()
	r.Start("loop", geo.Position{}, true, start)

	r.Update(geo.Position{X: 100}, false, start.Add(time.Minute))
	if r.Len() != 1 {
		t.Fatalf("sampled from a missing reading: len = %d", r.Len())
	}
}

func TestMarkBypassesGates(t *testing.T) {
	r := newTestRecorder()
	start := time.Now()
	r.Start("loop", geo.Position{}, true, start)

	if !r.Mark(KindVendor, "blacksmith", geo.Position{X: 0.1}, true, start) {
		t.Fatalf("Mark rejected a valid capture")
	}
	if r.Len() != 2 {
		t.Fatalf("Mark did not capture: len = %d", r.Len())
	}

	wp := r.path.Waypoints[1]
	if wp.Kind != KindVendor || wp.Name != "blacksmith" {
		t.Fatalf("Mark stored %+v", wp)
	}

	if r.Mark(KindNode, "ore", geo.Position{}, false, start) {
		t.Fatalf("Mark succeeded without a position reading")
	}
}

func TestStopForcesFinalSampleAndClears(t *testing.T) {
	r := newTestRecorder()
	start := time.Now()
	r.Start("loop", geo.Position{}, true, start)

	recorded := r.Stop(geo.Position{X: 0.5}, true, start.Add(time.Millisecond))
	if recorded == nil {
		t.Fatalf("Stop returned nil for active session")
	}
	if recorded.Len() != 2 {
		t.Fatalf("final sample not forced: len = %d", recorded.Len())
	}
	if r.Recording() {
		t.Fatalf("recorder still recording after Stop")
	}
	if r.Len() != 0 {
		t.Fatalf("accumulator not cleared: len = %d", r.Len())
	}

	// The returned path is a copy, not the live accumulator.
	r.Start("next", geo.Position{}, true, start)
	if recorded.Len() != 2 {
		t.Fatalf("returned path mutated by new session")
	}

	if again := r.Stop(geo.Position{}, false, start); again == nil || again.Len() != 1 {
		t.Fatalf("Stop without reading should still return accumulated path")
	}
	if r.Stop(geo.Position{}, true, start) != nil {
		t.Fatalf("Stop on idle recorder should return nil")
	}
}
