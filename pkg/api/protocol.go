package api

// ClientCommand is the only message spectators send. The connection is
// read-only with respect to the simulation: HELLO names the spectator,
// anything else is ignored.
type ClientCommand struct {
	Action string `json:"action"`
	Token  string `json:"token,omitempty"`
}

// ServerResponse is one push to a spectator: a full world snapshot taken
// between turns.
type ServerResponse struct {
	Type         string      `json:"type"`
	Round        int         `json:"round"`
	Turn         int         `json:"turn"`
	CurrentActor string      `json:"currentActor,omitempty"`
	TurnOrder    []string    `json:"turnOrder,omitempty"`
	Maps         []MapView   `json:"maps,omitempty"`
	Units        []UnitView  `json:"units,omitempty"`
	Diary        []DiaryView `json:"diary,omitempty"`
}

// Response types.
const (
	TypeSnapshot = "SNAPSHOT"
	TypeShutdown = "SHUTDOWN"
)

type MapView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type UnitView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Faction   string  `json:"faction,omitempty"`
	MapID     string  `json:"mapId,omitempty"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	Mana      float64 `json:"mana"`
	MaxMana   float64 `json:"maxMana"`
	Alive     bool    `json:"alive"`
}

type DiaryView struct {
	Round     int    `json:"round"`
	Turn      int    `json:"turn"`
	ActorName string `json:"actorName"`
	Text      string `json:"text"`
}
