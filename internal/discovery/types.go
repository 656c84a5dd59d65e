package discovery

import (
	"time"

	"fieldbot/agent/internal/geo"
)

// Kind names the discovery variant a record belongs to.
type Kind string

const (
	KindResourceNode Kind = "resourceNode"
	KindNPC          Kind = "npc"
	KindMobSpawn     Kind = "mobSpawn"
)

// ResourceNode is a gatherable node sighting. Ids are assigned by the store,
// unique within the collection, and never reused.
type ResourceNode struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	Position      geo.Position `json:"position"`
	Zone          string       `json:"zone,omitempty"`
	DiscoveredAt  time.Time    `json:"discoveredAt"`
	LastSeenAt    time.Time    `json:"lastSeenAt"`
	TimesSeen     int          `json:"timesSeen"`
	RequiredSkill string       `json:"requiredSkill,omitempty"`
}

// NPC is a non-player character sighting. The vendor and quest flags only
// ever accumulate: once observed true they stay true.
type NPC struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Position     geo.Position `json:"position"`
	Zone         string       `json:"zone,omitempty"`
	DiscoveredAt time.Time    `json:"discoveredAt"`
	LastSeenAt   time.Time    `json:"lastSeenAt"`
	TimesSeen    int          `json:"timesSeen"`
	IsVendor     bool         `json:"isVendor"`
	HasQuests    bool         `json:"hasQuests"`
}

// MobSpawn is a hostile spawn point sighting.
type MobSpawn struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Position     geo.Position `json:"position"`
	Zone         string       `json:"zone,omitempty"`
	DiscoveredAt time.Time    `json:"discoveredAt"`
	LastSeenAt   time.Time    `json:"lastSeenAt"`
	TimesSeen    int          `json:"timesSeen"`
	Level        int          `json:"level"`
	Faction      string       `json:"faction,omitempty"`
}

// Stats aggregates the store contents for reporting.
type Stats struct {
	ResourceNodes  int            `json:"resourceNodes"`
	NPCs           int            `json:"npcs"`
	MobSpawns      int            `json:"mobSpawns"`
	Vendors        int            `json:"vendors"`
	QuestGivers    int            `json:"questGivers"`
	TotalSightings int            `json:"totalSightings"`
	NodesBySkill   map[string]int `json:"nodesBySkill,omitempty"`
}
