package domain

import "math"

// Position is a tile coordinate on a single map.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Location pins a position to a concrete map. Every unit that takes part
// in movement carries one as its "position" property.
type Location struct {
	MapID string   `json:"mapId"`
	Pos   Position `json:"position"`
}

// ManhattanTo returns the 4-directional grid distance to another point.
func (p Position) ManhattanTo(other Position) int {
	dx := p.X - other.X
	dy := p.Y - other.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// DistanceTo returns the exact euclidean distance to another point.
func (p Position) DistanceTo(other Position) float64 {
	return math.Sqrt(math.Pow(float64(p.X-other.X), 2) + math.Pow(float64(p.Y-other.Y), 2))
}

// IsAdjacent4 reports whether the other point is an orthogonal neighbour.
func (p Position) IsAdjacent4(other Position) bool {
	return p.ManhattanTo(other) == 1
}

// IsAdjacent8 reports whether the other point is a neighbour, diagonals included.
func (p Position) IsAdjacent8(other Position) bool {
	dx := p.X - other.X
	dy := p.Y - other.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= 1 && dy <= 1 && (dx != 0 || dy != 0)
}

// Shift returns a new position offset by (dx, dy) without mutating the receiver.
func (p Position) Shift(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}
