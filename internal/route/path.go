package route

import (
	"fmt"
	"time"
)

// Path is an ordered waypoint sequence with playback metadata. Loop and
// ReverseAtEnd are mutually exclusive; Validate surfaces a violation instead
// of the constructor enforcing it, so a half-edited path can still be saved.
type Path struct {
	Name         string            `json:"name"`
	Waypoints    []Waypoint        `json:"waypoints"`
	Loop         bool              `json:"loop"`
	ReverseAtEnd bool              `json:"reverseAtEnd"`
	Zone         string            `json:"zone,omitempty"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastModified time.Time         `json:"lastModified"`
}

// NewPath creates an empty path stamped with the current time.
func NewPath(name string) *Path {
	now := time.Now()
	return &Path{
		Name:         name,
		Waypoints:    make([]Waypoint, 0),
		CreatedAt:    now,
		LastModified: now,
	}
}

// Append adds a waypoint to the end of the path.
func (p *Path) Append(wp Waypoint) {
	p.Waypoints = append(p.Waypoints, wp)
	p.LastModified = time.Now()
}

// RemoveAt deletes the waypoint at the given index, reporting whether the
// index was valid.
func (p *Path) RemoveAt(index int) bool {
	if index < 0 || index >= len(p.Waypoints) {
		return false
	}
	p.Waypoints = append(p.Waypoints[:index], p.Waypoints[index+1:]...)
	p.LastModified = time.Now()
	return true
}

// Clear drops every waypoint while keeping the path metadata.
func (p *Path) Clear() {
	p.Waypoints = p.Waypoints[:0]
	p.LastModified = time.Now()
}

// Len returns the number of waypoints.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Waypoints)
}

// Clone returns a deep copy of the path.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Waypoints = make([]Waypoint, len(p.Waypoints))
	for i, wp := range p.Waypoints {
		if wp.Metadata != nil {
			meta := make(map[string]string, len(wp.Metadata))
			for k, v := range wp.Metadata {
				meta[k] = v
			}
			wp.Metadata = meta
		}
		clone.Waypoints[i] = wp
	}
	if p.Metadata != nil {
		meta := make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			meta[k] = v
		}
		clone.Metadata = meta
	}
	return &clone
}

// Validate returns human-readable problems with the path. Problems are
// advisory: they never block saving or playback, only warn the operator.
func (p *Path) Validate() []string {
	var problems []string
	if p.Name == "" {
		problems = append(problems, "path name is empty")
	}
	if len(p.Waypoints) < 2 {
		problems = append(problems, "path has fewer than two waypoints")
	}
	for i, wp := range p.Waypoints {
		if wp.Kind == KindVendor && wp.Name == "" {
			problems = append(problems, fmt.Sprintf("vendor waypoint %d has no name", i))
		}
	}
	if p.Loop && p.ReverseAtEnd {
		problems = append(problems, "loop and reverseAtEnd are mutually exclusive")
	}
	return problems
}
