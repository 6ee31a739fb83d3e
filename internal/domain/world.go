package domain

// World holds every map and every unit of one campaign. Units are kept in
// insertion order so that turn-order construction and target scans stay
// deterministic across runs.
type World struct {
	maps     map[string]*WorldMap
	mapOrder []string

	registry  map[string]*Unit
	unitOrder []string
}

func NewWorld() *World {
	return &World{
		maps:     make(map[string]*WorldMap),
		registry: make(map[string]*Unit),
	}
}

// AddMap registers a map. Re-adding an ID overwrites the grid in place.
func (w *World) AddMap(m *WorldMap) {
	if _, ok := w.maps[m.ID]; !ok {
		w.mapOrder = append(w.mapOrder, m.ID)
	}
	w.maps[m.ID] = m
}

func (w *World) Map(id string) (*WorldMap, bool) {
	m, ok := w.maps[id]
	return m, ok
}

// Maps returns all maps in registration order.
func (w *World) Maps() []*WorldMap {
	out := make([]*WorldMap, 0, len(w.mapOrder))
	for _, id := range w.mapOrder {
		out = append(out, w.maps[id])
	}
	return out
}

// AddUnit registers a unit. Duplicate IDs are replaced in place.
func (w *World) AddUnit(u *Unit) {
	if _, ok := w.registry[u.ID]; !ok {
		w.unitOrder = append(w.unitOrder, u.ID)
	}
	w.registry[u.ID] = u
}

func (w *World) Unit(id string) (*Unit, bool) {
	u, ok := w.registry[id]
	return u, ok
}

// FindUnit resolves a unit by ID or, failing that, by display name.
// Callers inconsistently pass either, so both must be tried.
func (w *World) FindUnit(ref string) (*Unit, bool) {
	if u, ok := w.registry[ref]; ok {
		return u, true
	}
	for _, id := range w.unitOrder {
		if w.registry[id].Name == ref {
			return w.registry[id], true
		}
	}
	return nil, false
}

// Units returns all units in insertion order.
func (w *World) Units() []*Unit {
	out := make([]*Unit, 0, len(w.unitOrder))
	for _, id := range w.unitOrder {
		out = append(out, w.registry[id])
	}
	return out
}

// UnitsAt returns every unit standing on the given map tile.
func (w *World) UnitsAt(mapID string, pos Position) []*Unit {
	var out []*Unit
	for _, id := range w.unitOrder {
		u := w.registry[id]
		loc, err := u.Location()
		if err != nil {
			continue
		}
		if loc.MapID == mapID && loc.Pos == pos {
			out = append(out, u)
		}
	}
	return out
}
