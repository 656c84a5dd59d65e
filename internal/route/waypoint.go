package route

import "fieldbot/agent/internal/geo"

// Kind classifies what a waypoint is for. Kinds serialize by name so route
// files stay readable and stable across reorderings of the set.
type Kind string

const (
	KindNormal      Kind = "Normal"
	KindVendor      Kind = "Vendor"
	KindRepair      Kind = "Repair"
	KindNode        Kind = "Node"
	KindQuestGiver  Kind = "QuestGiver"
	KindQuestTurnIn Kind = "QuestTurnIn"
	KindRestArea    Kind = "RestArea"
	KindDangerZone  Kind = "DangerZone"
)

// ParseKind validates a kind string read from a route file.
func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case KindNormal, KindVendor, KindRepair, KindNode, KindQuestGiver,
		KindQuestTurnIn, KindRestArea, KindDangerZone:
		return Kind(value), true
	default:
		return "", false
	}
}

// Waypoint is a single typed point on a path. Delay is how long the agent
// dwells after arriving, in seconds.
type Waypoint struct {
	Position geo.Position      `json:"position"`
	Kind     Kind              `json:"type"`
	Name     string            `json:"name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Delay    float64           `json:"delay,omitempty"`
}
