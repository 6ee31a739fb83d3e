package systems

import (
	"github.com/sirupsen/logrus"

	"narrative-server/internal/domain"
	"narrative-server/pkg/logger"
)

// Mover executes planned steps against live unit state. Plans may be stale
// by the time a step lands (other units moved since planning), so occupancy
// is re-checked at application time.
type Mover struct {
	world *domain.World
	gates *domain.GateRegistry
}

func NewMover(world *domain.World, gates *domain.GateRegistry) *Mover {
	return &Mover{world: world, gates: gates}
}

// ApplyPath applies steps in order, stopping at the first failure (a later
// step can become blocked when an earlier nudge changed adjacency). Returns
// the number of steps successfully applied.
func (m *Mover) ApplyPath(moverID string, steps []domain.Location) int {
	applied := 0
	for _, step := range steps {
		if !m.ApplyStep(moverID, step) {
			break
		}
		applied++
	}
	return applied
}

// ApplyStep moves the unit onto one tile. A gate mouth on the destination
// short-circuits normal application: the unit is rewritten to the gate's
// destination map and tile instead. An out-of-bounds or unwalkable
// destination fails the step without a partial write.
func (m *Mover) ApplyStep(moverID string, step domain.Location) bool {
	moveLog := logger.Log.WithFields(logrus.Fields{
		"component": "mover",
		"unit_id":   moverID,
	})

	unit, ok := m.world.Unit(moverID)
	if !ok {
		moveLog.Error("Cannot apply step: unit not registered.")
		return false
	}
	if _, err := unit.Location(); err != nil {
		moveLog.WithError(err).Error("Cannot apply step: unit has no live position.")
		return false
	}

	// Gate transition wins over the planned tile.
	if gate, found := m.gates.Destination(step.MapID, step.Pos); found {
		if err := unit.SetLocation(domain.Location{MapID: gate.MapTo, Pos: gate.PositionTo}); err != nil {
			moveLog.WithError(err).Error("Gate transition failed.")
			return false
		}
		moveLog.WithFields(logrus.Fields{
			"gate":    gate.Name,
			"map_to":  gate.MapTo,
			"tile_to": gate.PositionTo,
		}).Info("Unit passed through a gate.")
		return true
	}

	tileMap, ok := m.world.Map(step.MapID)
	if !ok {
		moveLog.WithField("map_id", step.MapID).Error("Cannot apply step: map not found.")
		return false
	}
	if !tileMap.InBounds(step.Pos.X, step.Pos.Y) || !tileMap.Walkable(step.Pos.X, step.Pos.Y) {
		moveLog.WithField("tile", step.Pos).Debug("Step rejected: destination out of bounds or unwalkable.")
		return false
	}

	if err := unit.SetLocation(step); err != nil {
		moveLog.WithError(err).Error("Position write failed.")
		return false
	}

	// Occupancy may have changed since planning: re-scan and nudge the
	// moving unit off a contested tile. Partial success, not a failure.
	if len(m.world.UnitsAt(step.MapID, step.Pos)) > 1 {
		if free, found := m.nearestFreeTile(tileMap, step.Pos, unit.ID); found {
			if err := unit.SetLocation(domain.Location{MapID: step.MapID, Pos: free}); err != nil {
				moveLog.WithError(err).WithField("tile", step.Pos).Warn("Nudge write failed, unit left on contested tile.")
			} else {
				moveLog.WithFields(logrus.Fields{
					"intended": step.Pos,
					"nudged":   free,
				}).Warn("Destination tile contested, nudged to nearest free tile.")
			}
		} else {
			moveLog.WithField("tile", step.Pos).Warn("Destination tile contested and no free tile found.")
		}
	}

	return true
}

// nearestFreeTile searches outward from the contested tile for the closest
// walkable tile hosting no other unit. The search is exhaustive over the
// reachable area, in the planner's fixed neighbor order.
func (m *Mover) nearestFreeTile(tileMap *domain.WorldMap, from domain.Position, selfID string) (domain.Position, bool) {
	visited := map[domain.Position]bool{from: true}
	queue := []domain.Position{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current != from && m.tileFree(tileMap.ID, current, selfID) {
			return current, true
		}

		for _, d := range bfsNeighbors {
			next := current.Shift(d[0], d[1])
			if visited[next] || !tileMap.Walkable(next.X, next.Y) {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return domain.Position{}, false
}

func (m *Mover) tileFree(mapID string, pos domain.Position, selfID string) bool {
	for _, u := range m.world.UnitsAt(mapID, pos) {
		if u.ID != selfID {
			return false
		}
	}
	return true
}
