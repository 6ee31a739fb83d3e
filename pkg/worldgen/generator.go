package worldgen

import (
	"math/rand"

	"narrative-server/internal/domain"
)

// Room size bounds for cave carving.
const (
	minRoomSize = 4
	maxRoomSize = 10
)

// Rect is a room candidate during carving.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.W && r.X+r.W >= other.X &&
		r.Y <= other.Y+other.H && r.Y+r.H >= other.Y
}

// Result is a generated map plus the spawn anchors the caller needs: the
// carved rooms and a start tile guaranteed walkable.
type Result struct {
	Map   *domain.WorldMap
	Rooms []Rect
	Start domain.Position
}

// GenerateCave carves a room-and-corridor cave out of solid wall. All
// randomness comes from the supplied rng, so a fixed seed reproduces the
// exact same cave.
func GenerateCave(id, name string, width, height, maxRooms int, rng *rand.Rand) Result {
	m := domain.NewWorldMap(id, name, width, height, domain.TerrainWall)

	var rooms []Rect
	for i := 0; i < maxRooms; i++ {
		w := randRange(rng, minRoomSize, maxRoomSize)
		h := randRange(rng, minRoomSize, maxRoomSize)
		if w >= width-2 || h >= height-2 {
			continue
		}
		x := randRange(rng, 1, width-w-1)
		y := randRange(rng, 1, height-h-1)

		room := Rect{X: x, Y: y, W: w, H: h}
		overlaps := false
		for _, other := range rooms {
			if room.Intersects(other) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}

		carveRoom(m, room)
		if len(rooms) > 0 {
			prevX, prevY := rooms[len(rooms)-1].Center()
			currX, currY := room.Center()
			if rng.Intn(2) == 0 {
				carveHCorridor(m, prevX, currX, prevY)
				carveVCorridor(m, prevY, currY, currX)
			} else {
				carveVCorridor(m, prevY, currY, prevX)
				carveHCorridor(m, prevX, currX, currY)
			}
		}
		rooms = append(rooms, room)
	}

	start := domain.Position{X: 1, Y: 1}
	if len(rooms) > 0 {
		cx, cy := rooms[0].Center()
		start = domain.Position{X: cx, Y: cy}
	} else {
		// Degenerate roll: guarantee at least one walkable tile.
		m.SetTerrain(1, 1, domain.TerrainFloor)
	}

	return Result{Map: m, Rooms: rooms, Start: start}
}

// GenerateMeadow lays out an open grass map with scattered lakes and
// mountain ridges. The border stays walkable so the map never splits.
func GenerateMeadow(id, name string, width, height int, rng *rand.Rand) *domain.WorldMap {
	m := domain.NewWorldMap(id, name, width, height, domain.TerrainGrass)

	lakes := width * height / 160
	for i := 0; i < lakes; i++ {
		blotch(m, rng, width, height, domain.TerrainWater)
	}
	ridges := width * height / 200
	for i := 0; i < ridges; i++ {
		blotch(m, rng, width, height, domain.TerrainMountain)
	}
	return m
}

// blotch stamps a small irregular patch of terrain away from the border.
func blotch(m *domain.WorldMap, rng *rand.Rand, width, height int, terrain domain.Terrain) {
	if width < 6 || height < 6 {
		return
	}
	cx := randRange(rng, 2, width-3)
	cy := randRange(rng, 2, height-3)
	size := randRange(rng, 2, 5)

	for i := 0; i < size; i++ {
		x := cx + randRange(rng, -1, 1)
		y := cy + randRange(rng, -1, 1)
		if x > 1 && y > 1 && x < width-2 && y < height-2 {
			m.SetTerrain(x, y, terrain)
		}
	}
}

func carveRoom(m *domain.WorldMap, room Rect) {
	for y := room.Y + 1; y < room.Y+room.H; y++ {
		for x := room.X + 1; x < room.X+room.W; x++ {
			m.SetTerrain(x, y, domain.TerrainFloor)
		}
	}
}

func carveHCorridor(m *domain.WorldMap, x1, x2, y int) {
	for x := min(x1, x2); x <= max(x1, x2); x++ {
		m.SetTerrain(x, y, domain.TerrainFloor)
	}
}

func carveVCorridor(m *domain.WorldMap, y1, y2, x int) {
	for y := min(y1, y2); y <= max(y1, y2); y++ {
		m.SetTerrain(x, y, domain.TerrainFloor)
	}
}

func randRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return rng.Intn(hi-lo+1) + lo
}
