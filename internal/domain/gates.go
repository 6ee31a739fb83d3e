package domain

import "strings"

// reverseSuffix is appended to the paired record of a bidirectional gate.
// The pair shares a name prefix, so RemoveGate catches both.
const reverseSuffix = "_return"

// Gate is a named teleport link from a tile on one map to a tile on another.
type Gate struct {
	Name          string   `json:"name"`
	MapFrom       string   `json:"mapFrom"`
	PositionFrom  Position `json:"positionFrom"`
	MapTo         string   `json:"mapTo"`
	PositionTo    Position `json:"positionTo"`
	Bidirectional bool     `json:"bidirectional"`
}

// GateRegistry stores directional gate records. It does not validate that
// destination maps exist; that is the caller's responsibility at transition
// time.
type GateRegistry struct {
	gates []Gate
}

func NewGateRegistry() *GateRegistry {
	return &GateRegistry{}
}

// AddGate registers a gate. Returns false if a forward gate of that name
// already exists, so callers can branch without an error path. A
// bidirectional gate stores a second, reversed record; the reverse record is
// never itself bidirectional, which keeps re-adding from duplicating forever.
func (r *GateRegistry) AddGate(g Gate) bool {
	for _, existing := range r.gates {
		if existing.Name == g.Name {
			return false
		}
	}
	r.gates = append(r.gates, g)

	if g.Bidirectional {
		r.gates = append(r.gates, Gate{
			Name:          g.Name + reverseSuffix,
			MapFrom:       g.MapTo,
			PositionFrom:  g.PositionTo,
			MapTo:         g.MapFrom,
			PositionTo:    g.PositionFrom,
			Bidirectional: false,
		})
	}
	return true
}

// RemoveGate deletes every record whose name starts with the given prefix,
// which removes a forward gate together with its paired reverse record.
// Returns false when nothing matched.
func (r *GateRegistry) RemoveGate(namePrefix string) bool {
	kept := r.gates[:0]
	removed := false
	for _, g := range r.gates {
		if strings.HasPrefix(g.Name, namePrefix) {
			removed = true
			continue
		}
		kept = append(kept, g)
	}
	r.gates = kept
	return removed
}

// HasGate reports whether a gate mouth sits on the given tile.
func (r *GateRegistry) HasGate(mapID string, pos Position) bool {
	_, ok := r.Destination(mapID, pos)
	return ok
}

// Destination returns the gate whose mouth sits on the given tile.
func (r *GateRegistry) Destination(mapID string, pos Position) (Gate, bool) {
	for _, g := range r.gates {
		if g.MapFrom == mapID && g.PositionFrom == pos {
			return g, true
		}
	}
	return Gate{}, false
}

// GatesForMap returns every record whose mouth is on the given map.
func (r *GateRegistry) GatesForMap(mapID string) []Gate {
	var out []Gate
	for _, g := range r.gates {
		if g.MapFrom == mapID {
			out = append(out, g)
		}
	}
	return out
}

// AllGates returns a copy of every stored record.
func (r *GateRegistry) AllGates() []Gate {
	out := make([]Gate, len(r.gates))
	copy(out, r.gates)
	return out
}
