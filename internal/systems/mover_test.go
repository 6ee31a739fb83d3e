package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narrative-server/internal/domain"
)

func moverFixture(t *testing.T) (*domain.World, *domain.GateRegistry, *Mover) {
	t.Helper()
	w := domain.NewWorld()
	w.AddMap(domain.NewWorldMap("m", "Meadow", 10, 10, domain.TerrainGrass))
	gates := domain.NewGateRegistry()
	return w, gates, NewMover(w, gates)
}

func TestApplyStep_WritesPosition(t *testing.T) {
	w, _, mv := moverFixture(t)
	u := placedUnit("u", 1, 1)
	w.AddUnit(u)

	ok := mv.ApplyStep("u", domain.Location{MapID: "m", Pos: domain.Position{X: 1, Y: 2}})
	require.True(t, ok)

	loc, err := u.Location()
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 1, Y: 2}, loc.Pos)
}

func TestApplyStep_GateShortCircuits(t *testing.T) {
	w, gates, mv := moverFixture(t)
	w.AddMap(domain.NewWorldMap("cave", "Cave", 10, 10, domain.TerrainStone))
	gates.AddGate(domain.Gate{
		Name:         "cave-mouth",
		MapFrom:      "m",
		PositionFrom: domain.Position{X: 5, Y: 5},
		MapTo:        "cave",
		PositionTo:   domain.Position{X: 0, Y: 0},
	})

	u := placedUnit("u", 5, 4)
	w.AddUnit(u)

	ok := mv.ApplyStep("u", domain.Location{MapID: "m", Pos: domain.Position{X: 5, Y: 5}})
	require.True(t, ok)

	loc, err := u.Location()
	require.NoError(t, err)
	// The planned tile is never written; the gate destination is.
	assert.Equal(t, "cave", loc.MapID)
	assert.Equal(t, domain.Position{X: 0, Y: 0}, loc.Pos)
}

func TestApplyStep_OutOfBoundsFails(t *testing.T) {
	w, _, mv := moverFixture(t)
	u := placedUnit("u", 0, 0)
	w.AddUnit(u)

	ok := mv.ApplyStep("u", domain.Location{MapID: "m", Pos: domain.Position{X: -1, Y: 0}})
	assert.False(t, ok)

	loc, _ := u.Location()
	assert.Equal(t, domain.Position{X: 0, Y: 0}, loc.Pos, "no partial write on failure")
}

func TestApplyStep_CollisionNudgesMovingUnit(t *testing.T) {
	w, _, mv := moverFixture(t)
	mover := placedUnit("mover", 2, 2)
	squatter := placedUnit("squatter", 3, 2)
	w.AddUnit(mover)
	w.AddUnit(squatter)

	// The plan was made before the squatter arrived; apply re-checks live.
	ok := mv.ApplyStep("mover", domain.Location{MapID: "m", Pos: domain.Position{X: 3, Y: 2}})
	require.True(t, ok, "collision is a partial success, not a failure")

	moverLoc, _ := mover.Location()
	squatterLoc, _ := squatter.Location()
	assert.NotEqual(t, squatterLoc.Pos, moverLoc.Pos, "no two units share a tile after a nudge")
	assert.True(t, moverLoc.Pos.IsAdjacent4(domain.Position{X: 3, Y: 2}),
		"nudged to a tile adjacent to the intended destination")
}

func TestApplyPath_StopsAtFirstFailure(t *testing.T) {
	w, _, mv := moverFixture(t)
	u := placedUnit("u", 0, 0)
	w.AddUnit(u)

	steps := []domain.Location{
		{MapID: "m", Pos: domain.Position{X: 1, Y: 0}},
		{MapID: "m", Pos: domain.Position{X: 1, Y: -5}}, // out of bounds
		{MapID: "m", Pos: domain.Position{X: 2, Y: 0}},
	}
	applied := mv.ApplyPath("u", steps)
	assert.Equal(t, 1, applied)

	loc, _ := u.Location()
	assert.Equal(t, domain.Position{X: 1, Y: 0}, loc.Pos)
}

func TestApplyPath_FullPath(t *testing.T) {
	w, _, mv := moverFixture(t)
	u := placedUnit("u", 0, 0)
	w.AddUnit(u)

	steps := []domain.Location{
		{MapID: "m", Pos: domain.Position{X: 1, Y: 0}},
		{MapID: "m", Pos: domain.Position{X: 2, Y: 0}},
		{MapID: "m", Pos: domain.Position{X: 2, Y: 1}},
	}
	assert.Equal(t, 3, mv.ApplyPath("u", steps))

	loc, _ := u.Location()
	assert.Equal(t, domain.Position{X: 2, Y: 1}, loc.Pos)
}

func TestApplyStep_ReadOnlyPositionFailsWithoutWrite(t *testing.T) {
	w, _, mv := moverFixture(t)
	u := placedUnit("u", 1, 1)
	p, ok := u.Property(domain.PropPosition)
	require.True(t, ok)
	p.ReadOnly = true
	w.AddUnit(u)

	ok = mv.ApplyStep("u", domain.Location{MapID: "m", Pos: domain.Position{X: 1, Y: 2}})
	assert.False(t, ok)

	loc, err := u.Location()
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 1, Y: 1}, loc.Pos, "rejected write leaves the position untouched")
}

func TestApplyStep_UnknownUnitFails(t *testing.T) {
	_, _, mv := moverFixture(t)
	assert.False(t, mv.ApplyStep("ghost", domain.Location{MapID: "m", Pos: domain.Position{X: 1, Y: 1}}))
}

func TestApplyStep_UnwalkableTerrainFails(t *testing.T) {
	w, _, mv := moverFixture(t)
	m, _ := w.Map("m")
	m.SetTerrain(4, 4, domain.TerrainWater)
	u := placedUnit("u", 4, 3)
	w.AddUnit(u)

	assert.False(t, mv.ApplyStep("u", domain.Location{MapID: "m", Pos: domain.Position{X: 4, Y: 4}}))
}
