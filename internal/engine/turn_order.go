package engine

import (
	"math/rand"
	"sort"

	"narrative-server/internal/domain"
	"narrative-server/pkg/logger"
)

// TurnOrderBook keeps the campaign's persistent initiative order. The order
// is computed once from experience and then only synced: dead agents drop
// out, newcomers join at the back, survivors never change relative position.
type TurnOrderBook struct {
	order []string
	built bool
	rng   *rand.Rand
}

func NewTurnOrderBook(rng *rand.Rand) *TurnOrderBook {
	return &TurnOrderBook{rng: rng}
}

// Sync reconciles the book against the live roster and returns the order to
// use for the next round. Only alive units participate.
func (b *TurnOrderBook) Sync(units []*domain.Unit) []string {
	alive := make(map[string]*domain.Unit, len(units))
	roster := make([]*domain.Unit, 0, len(units))
	for _, u := range units {
		if u == nil || !u.IsAlive() {
			continue
		}
		alive[u.ID] = u
		roster = append(roster, u)
	}

	if !b.built {
		b.order = initiativeOrder(roster, b.rng)
		b.built = true
		logger.Log.WithField("actors", len(b.order)).Info("Initiative order rolled")
		return b.snapshot()
	}

	kept := b.order[:0]
	seen := make(map[string]bool, len(b.order))
	for _, id := range b.order {
		if _, ok := alive[id]; ok {
			kept = append(kept, id)
			seen[id] = true
		}
	}
	b.order = kept

	for _, u := range roster {
		if !seen[u.ID] {
			b.order = append(b.order, u.ID)
			logger.Log.WithField("unit_id", u.ID).Debug("New agent joined the turn order")
		}
	}
	return b.snapshot()
}

func (b *TurnOrderBook) snapshot() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// initiativeOrder sorts by descending experience. Ties are broken by a
// random roll so equally seasoned agents do not always act in insertion
// order, with name as the final stable key.
func initiativeOrder(units []*domain.Unit, rng *rand.Rand) []string {
	type entry struct {
		id   string
		name string
		exp  float64
		roll int
	}

	entries := make([]entry, 0, len(units))
	for _, u := range units {
		roll := 0
		if rng != nil {
			roll = rng.Intn(1000)
		}
		entries = append(entries, entry{
			id:   u.ID,
			name: u.Name,
			exp:  u.NumberOr(domain.PropExperience, 0),
			roll: roll,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].exp != entries[j].exp {
			return entries[i].exp > entries[j].exp
		}
		if entries[i].roll != entries[j].roll {
			return entries[i].roll < entries[j].roll
		}
		return entries[i].name < entries[j].name
	})

	order := make([]string, len(entries))
	for i, e := range entries {
		order[i] = e.id
	}
	return order
}
