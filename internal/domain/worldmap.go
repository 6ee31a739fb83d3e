package domain

// Terrain classifies one tile. Water, mountain and wall tiles are unwalkable
// for movement planning purposes.
type Terrain string

const (
	TerrainFloor    Terrain = "floor"
	TerrainGrass    Terrain = "grass"
	TerrainStone    Terrain = "stone"
	TerrainWater    Terrain = "water"
	TerrainMountain Terrain = "mountain"
	TerrainWall     Terrain = "wall"
)

// Walkable reports whether a unit can stand on this terrain.
func (t Terrain) Walkable() bool {
	switch t {
	case TerrainWater, TerrainMountain, TerrainWall:
		return false
	default:
		return true
	}
}

type Tile struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Terrain Terrain `json:"terrain"`
}

// WorldMap is one tile grid. Row-major: Tiles[y][x].
type WorldMap struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Tiles  [][]Tile `json:"tiles"`
}

// NewWorldMap builds an empty map filled with the given terrain.
func NewWorldMap(id, name string, width, height int, fill Terrain) *WorldMap {
	tiles := make([][]Tile, height)
	for y := 0; y < height; y++ {
		row := make([]Tile, width)
		for x := 0; x < width; x++ {
			row[x] = Tile{X: x, Y: y, Terrain: fill}
		}
		tiles[y] = row
	}
	return &WorldMap{ID: id, Name: name, Width: width, Height: height, Tiles: tiles}
}

func (m *WorldMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// TerrainAt returns the terrain of a tile. Out-of-bounds reads as wall.
func (m *WorldMap) TerrainAt(x, y int) Terrain {
	if !m.InBounds(x, y) {
		return TerrainWall
	}
	return m.Tiles[y][x].Terrain
}

// Walkable reports whether a unit can stand on tile (x, y).
func (m *WorldMap) Walkable(x, y int) bool {
	return m.InBounds(x, y) && m.TerrainAt(x, y).Walkable()
}

// SetTerrain overwrites one tile. No-op out of bounds.
func (m *WorldMap) SetTerrain(x, y int, t Terrain) {
	if m.InBounds(x, y) {
		m.Tiles[y][x].Terrain = t
	}
}
