package worldgen

import (
	"math/rand"

	"narrative-server/internal/domain"
)

var heroNames = []string{"Aria", "Bren", "Cass", "Doran", "Elva", "Finn", "Greta", "Hale"}

var beastNames = []string{"Gnarl", "Ripjaw", "Sooth", "Vex", "Warg", "Yarn"}

// NewHero rolls a player-faction hero with full resources.
func NewHero(name string, rng *rand.Rand) *domain.Unit {
	if name == "" {
		name = heroNames[rng.Intn(len(heroNames))]
	}
	u := domain.NewUnit(domain.GenerateID(), name, domain.UnitKindHero)
	u.SetNumber(domain.PropHealth, 100)
	u.SetNumber(domain.PropMaxHealth, 100)
	u.SetNumber(domain.PropMana, 100)
	u.SetNumber(domain.PropMaxMana, 100)
	u.SetNumber(domain.PropAttack, float64(randRange(rng, 10, 18)))
	u.SetNumber(domain.PropExperience, float64(randRange(rng, 0, 120)))
	u.SetNumber(domain.PropMovementRange, domain.DefaultMovementRange)
	u.Set(domain.PropFaction, domain.Text("party"))
	return u
}

// NewBeast rolls a wild hostile with scaled-down stats.
func NewBeast(rng *rand.Rand) *domain.Unit {
	name := beastNames[rng.Intn(len(beastNames))]
	u := domain.NewUnit(domain.GenerateID(), name, domain.UnitKindBeast)
	hp := float64(randRange(rng, 35, 70))
	u.SetNumber(domain.PropHealth, hp)
	u.SetNumber(domain.PropMaxHealth, hp)
	u.SetNumber(domain.PropAttack, float64(randRange(rng, 5, 12)))
	u.SetNumber(domain.PropExperience, float64(randRange(rng, 0, 40)))
	u.SetNumber(domain.PropMovementRange, domain.DefaultMovementRange)
	u.Set(domain.PropFaction, domain.Text("wild"))
	return u
}

// PlaceUnit drops a unit onto the nearest free walkable tile at or around
// the anchor, scanning outward. Returns false when the map is packed solid.
func PlaceUnit(w *domain.World, m *domain.WorldMap, u *domain.Unit, anchor domain.Position) bool {
	for radius := 0; radius < m.Width+m.Height; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if abs(dx)+abs(dy) != radius {
					continue
				}
				pos := anchor.Shift(dx, dy)
				if !m.Walkable(pos.X, pos.Y) || len(w.UnitsAt(m.ID, pos)) > 0 {
					continue
				}
				u.SetLocation(domain.Location{MapID: m.ID, Pos: pos})
				return true
			}
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
