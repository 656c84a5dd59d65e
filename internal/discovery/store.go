package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fieldbot/agent/internal/geo"
)

const defaultDedupRadius = 5.0

const (
	nodesFile  = "resource_nodes.json"
	npcsFile   = "npcs.json"
	spawnsFile = "mob_spawns.json"
)

// Config tunes the discovery store.
type Config struct {
	// Dir is where the three collection files live.
	Dir string
	// DedupRadius is the horizontal distance within which two same-named
	// sightings merge into one record.
	DedupRadius float64
	Logger      *logrus.Logger

	// OnDiscover fires for genuinely new records, not re-sightings.
	OnDiscover func(kind Kind, id int, name string)
	// Now is the clock; injected for tests.
	Now func() time.Time
}

func (c Config) normalized() Config {
	if c.Dir == "" {
		c.Dir = "discoveries"
	}
	if c.DedupRadius <= 0 {
		c.DedupRadius = defaultDedupRadius
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Store is the deduplicating repository of discovered points of interest.
// One mutex covers all three collections and persistence, so concurrent
// recorders and a periodic saver serialize against each other without
// corruption.
type Store struct {
	cfg Config

	mu     sync.Mutex
	nodes  []ResourceNode
	npcs   []NPC
	spawns []MobSpawn
}

// NewStore builds an empty store.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg.normalized()}
}

// RecordResourceNode merges or appends a node sighting and reports whether it
// was a new discovery.
func (s *Store) RecordResourceNode(name string, pos geo.Position, zone, requiredSkill string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.Now()
	for i := range s.nodes {
		if s.nodes[i].Name != name {
			continue
		}
		if geo.HorizontalDistance(s.nodes[i].Position, pos) > s.cfg.DedupRadius {
			continue
		}
		s.nodes[i].LastSeenAt = now
		s.nodes[i].TimesSeen++
		return false
	}

	id := nextNodeID(s.nodes)
	s.nodes = append(s.nodes, ResourceNode{
		ID:            id,
		Name:          name,
		Position:      pos,
		Zone:          zone,
		DiscoveredAt:  now,
		LastSeenAt:    now,
		TimesSeen:     1,
		RequiredSkill: requiredSkill,
	})
	s.discovered(KindResourceNode, id, name)
	return true
}

// RecordNPC merges or appends an NPC sighting. The vendor and quest flags of
// an existing record are only ever raised, never cleared; the original
// discovery position stays canonical.
func (s *Store) RecordNPC(name string, pos geo.Position, zone string, isVendor, hasQuests bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.Now()
	for i := range s.npcs {
		if s.npcs[i].Name != name {
			continue
		}
		if geo.HorizontalDistance(s.npcs[i].Position, pos) > s.cfg.DedupRadius {
			continue
		}
		s.npcs[i].LastSeenAt = now
		s.npcs[i].TimesSeen++
		s.npcs[i].IsVendor = s.npcs[i].IsVendor || isVendor
		s.npcs[i].HasQuests = s.npcs[i].HasQuests || hasQuests
		return false
	}

	id := nextNPCID(s.npcs)
	s.npcs = append(s.npcs, NPC{
		ID:           id,
		Name:         name,
		Position:     pos,
		Zone:         zone,
		DiscoveredAt: now,
		LastSeenAt:   now,
		TimesSeen:    1,
		IsVendor:     isVendor,
		HasQuests:    hasQuests,
	})
	s.discovered(KindNPC, id, name)
	return true
}

// RecordMobSpawn merges or appends a spawn point sighting.
func (s *Store) RecordMobSpawn(name string, pos geo.Position, zone string, level int, faction string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.Now()
	for i := range s.spawns {
		if s.spawns[i].Name != name {
			continue
		}
		if geo.HorizontalDistance(s.spawns[i].Position, pos) > s.cfg.DedupRadius {
			continue
		}
		s.spawns[i].LastSeenAt = now
		s.spawns[i].TimesSeen++
		return false
	}

	id := nextSpawnID(s.spawns)
	s.spawns = append(s.spawns, MobSpawn{
		ID:           id,
		Name:         name,
		Position:     pos,
		Zone:         zone,
		DiscoveredAt: now,
		LastSeenAt:   now,
		TimesSeen:    1,
		Level:        level,
		Faction:      faction,
	})
	s.discovered(KindMobSpawn, id, name)
	return true
}

func (s *Store) discovered(kind Kind, id int, name string) {
	s.cfg.Logger.WithFields(logrus.Fields{
		"kind": kind,
		"id":   id,
		"name": name,
	}).Info("new discovery")
	if s.cfg.OnDiscover != nil {
		s.cfg.OnDiscover(kind, id, name)
	}
}

func nextNodeID(nodes []ResourceNode) int {
	maxID := 0
	for _, n := range nodes {
		if n.ID > maxID {
			maxID = n.ID
		}
	}
	return maxID + 1
}

func nextNPCID(npcs []NPC) int {
	maxID := 0
	for _, n := range npcs {
		if n.ID > maxID {
			maxID = n.ID
		}
	}
	return maxID + 1
}

func nextSpawnID(spawns []MobSpawn) int {
	maxID := 0
	for _, sp := range spawns {
		if sp.ID > maxID {
			maxID = sp.ID
		}
	}
	return maxID + 1
}

// ResourceNodes returns a copy of the node collection.
func (s *Store) ResourceNodes() []ResourceNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ResourceNode, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// NPCs returns a copy of the NPC collection.
func (s *Store) NPCs() []NPC {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NPC, len(s.npcs))
	copy(out, s.npcs)
	return out
}

// MobSpawns returns a copy of the spawn collection.
func (s *Store) MobSpawns() []MobSpawn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MobSpawn, len(s.spawns))
	copy(out, s.spawns)
	return out
}

// Stats aggregates counts across the three collections.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		ResourceNodes: len(s.nodes),
		NPCs:          len(s.npcs),
		MobSpawns:     len(s.spawns),
		NodesBySkill:  make(map[string]int),
	}
	for _, n := range s.nodes {
		stats.TotalSightings += n.TimesSeen
		if n.RequiredSkill != "" {
			stats.NodesBySkill[n.RequiredSkill]++
		}
	}
	for _, n := range s.npcs {
		stats.TotalSightings += n.TimesSeen
		if n.IsVendor {
			stats.Vendors++
		}
		if n.HasQuests {
			stats.QuestGivers++
		}
	}
	for _, sp := range s.spawns {
		stats.TotalSightings += sp.TimesSeen
	}
	return stats
}

// Save writes the three collections to disk. Each file goes through a temp
// file and rename, and a failed write leaves both the other files and the
// in-memory collections untouched.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create discovery directory: %w", err)
	}
	if err := writeCollection(filepath.Join(s.cfg.Dir, nodesFile), s.nodes); err != nil {
		return err
	}
	if err := writeCollection(filepath.Join(s.cfg.Dir, npcsFile), s.npcs); err != nil {
		return err
	}
	if err := writeCollection(filepath.Join(s.cfg.Dir, spawnsFile), s.spawns); err != nil {
		return err
	}

	s.cfg.Logger.WithFields(logrus.Fields{
		"nodes":  len(s.nodes),
		"npcs":   len(s.npcs),
		"spawns": len(s.spawns),
	}).Debug("discoveries saved")
	return nil
}

// Load replaces the in-memory collections with the on-disk state. Missing
// files load as empty collections; a malformed file fails the whole load
// before any collection is replaced.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var nodes []ResourceNode
	if err := readCollection(filepath.Join(s.cfg.Dir, nodesFile), &nodes); err != nil {
		return err
	}
	var npcs []NPC
	if err := readCollection(filepath.Join(s.cfg.Dir, npcsFile), &npcs); err != nil {
		return err
	}
	var spawns []MobSpawn
	if err := readCollection(filepath.Join(s.cfg.Dir, spawnsFile), &spawns); err != nil {
		return err
	}

	s.nodes = nodes
	s.npcs = npcs
	s.spawns = spawns
	return nil
}

func writeCollection(path string, collection any) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readCollection(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
