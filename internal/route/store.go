package route

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Save writes the path as pretty-printed JSON, refreshing LastModified. The
// write goes through a temp file and rename so a crash mid-write never leaves
// a truncated route on disk.
func Save(p *Path, path string) error {
	if p == nil {
		return fmt.Errorf("save route: nil path")
	}
	p.LastModified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal route %q: %w", p.Name, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create route directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp route: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace route: %w", err)
	}
	return nil
}

// Load reads a path from disk. A missing file yields an empty path named
// after the file rather than an error; malformed JSON is surfaced to the
// caller instead of being papered over.
func Load(path string) (*Path, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return NewPath(name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read route: %w", err)
	}

	var p Path
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse route %q: %w", path, err)
	}
	for i, wp := range p.Waypoints {
		if wp.Kind == "" {
			p.Waypoints[i].Kind = KindNormal
			continue
		}
		if _, ok := ParseKind(string(wp.Kind)); !ok {
			return nil, fmt.Errorf("parse route %q: waypoint %d has unknown type %q", path, i, wp.Kind)
		}
	}
	return &p, nil
}

// List returns the route files (by full path) under a directory, sorted by
// name. A missing directory yields an empty list.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read route directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}
