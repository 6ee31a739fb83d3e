package systems

import (
	"errors"
	"fmt"

	"narrative-server/internal/domain"
)

var (
	// ErrNoGoalTiles means no walkable tile within the action range of the
	// target exists. The mover should wait rather than wander.
	ErrNoGoalTiles = errors.New("no available goal positions")

	// ErrNoPath means goal tiles exist but none is reachable from the
	// mover's tile. The mover may retreat or try again next round.
	ErrNoPath = errors.New("no path found")
)

// Plan is a bounded sequence of adjacent tile steps toward a goal tile.
type Plan struct {
	Steps []domain.Location
}

// bfsNeighbors is the fixed visitation order: up, down, left, right.
// Fixed order keeps repeated planning calls byte-identical.
var bfsNeighbors = [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// PlanApproach computes a step sequence that brings the mover within
// actionRange (Manhattan) of the target location, over walkable tiles not
// occupied by other units. The path is truncated to the mover's
// movementRange: a distant goal is approached across several turns.
//
// The planner never mutates state; unit positions are copied into a snapshot
// before searching.
func PlanApproach(w *domain.World, mover *domain.Unit, target domain.Location, units []*domain.Unit, actionRange int) (Plan, error) {
	moverLoc, err := mover.Location()
	if err != nil {
		return Plan{}, err
	}
	if moverLoc.MapID != target.MapID {
		// BFS cannot cross maps; reaching another map is a gate concern.
		return Plan{}, ErrNoPath
	}
	m, ok := w.Map(moverLoc.MapID)
	if !ok {
		return Plan{}, fmt.Errorf("map %q not found", moverLoc.MapID)
	}

	occupied := snapshotOccupied(units, mover.ID, moverLoc.MapID)

	goals := goalTiles(m, target.Pos, actionRange, occupied)
	if len(goals) == 0 {
		return Plan{}, ErrNoGoalTiles
	}
	if goals[moverLoc.Pos] {
		// Already standing on a goal tile.
		return Plan{}, nil
	}

	path, found := shortestPath(m, moverLoc.Pos, goals, occupied)
	if !found {
		return Plan{}, ErrNoPath
	}

	movementRange := int(mover.NumberOr(domain.PropMovementRange, domain.DefaultMovementRange))
	if len(path) > movementRange {
		path = path[:movementRange]
	}

	steps := make([]domain.Location, len(path))
	for i, p := range path {
		steps[i] = domain.Location{MapID: moverLoc.MapID, Pos: p}
	}
	return Plan{Steps: steps}, nil
}

// snapshotOccupied copies the positions of every other unit on the given map
// into a plain set, so the search runs against an immutable snapshot.
func snapshotOccupied(units []*domain.Unit, excludeID, mapID string) map[domain.Position]bool {
	occupied := make(map[domain.Position]bool)
	for _, u := range units {
		if u.ID == excludeID {
			continue
		}
		loc, err := u.Location()
		if err != nil {
			continue
		}
		if loc.MapID == mapID {
			occupied[loc.Pos] = true
		}
	}
	return occupied
}

// goalTiles collects walkable, unoccupied tiles within actionRange
// (Manhattan) of the target position, scanning a bounding box in fixed order.
func goalTiles(m *domain.WorldMap, target domain.Position, actionRange int, occupied map[domain.Position]bool) map[domain.Position]bool {
	goals := make(map[domain.Position]bool)
	for y := target.Y - actionRange; y <= target.Y+actionRange; y++ {
		for x := target.X - actionRange; x <= target.X+actionRange; x++ {
			p := domain.Position{X: x, Y: y}
			if p.ManhattanTo(target) > actionRange {
				continue
			}
			if !m.Walkable(x, y) || occupied[p] {
				continue
			}
			goals[p] = true
		}
	}
	return goals
}

// shortestPath runs a breadth-first search from start to the nearest goal
// tile over walkable, unoccupied, 4-adjacent tiles. Returns the path
// excluding the start tile.
func shortestPath(m *domain.WorldMap, start domain.Position, goals, occupied map[domain.Position]bool) ([]domain.Position, bool) {
	visited := map[domain.Position]bool{start: true}
	cameFrom := make(map[domain.Position]domain.Position)

	queue := []domain.Position{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if goals[current] {
			return reconstruct(cameFrom, start, current), true
		}

		for _, d := range bfsNeighbors {
			next := current.Shift(d[0], d[1])
			if visited[next] || !m.Walkable(next.X, next.Y) || occupied[next] {
				continue
			}
			visited[next] = true
			cameFrom[next] = current
			queue = append(queue, next)
		}
	}
	return nil, false
}

func reconstruct(cameFrom map[domain.Position]domain.Position, start, end domain.Position) []domain.Position {
	var path []domain.Position
	for p := end; p != start; p = cameFrom[p] {
		path = append(path, p)
	}
	// Reverse into start-to-end order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
