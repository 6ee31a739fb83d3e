package systems

import (
	"fmt"
	"sort"

	"narrative-server/internal/domain"
)

// Choice is the selector's verdict for one unit's turn.
type Choice struct {
	Goal             domain.GoalDef
	Action           *domain.Action
	CandidateActions []string
	Reason           string
}

// SelectorInput carries the per-decision context. Units may be nil when the
// caller cannot supply a roster; the selector then conservatively assumes
// hostile targets exist, since it cannot prove their absence.
type SelectorInput struct {
	AvailableActions []*domain.Action
	Units            []*domain.Unit
	Overrides        map[string]Relation
	Turn             int
}

type scoredGoal struct {
	goal   domain.GoalDef
	score  int
	reason string
}

// Selector scores a fixed goal catalog against a unit's current properties
// and picks the highest-scoring goal with at least one executable action.
type Selector struct {
	goals []domain.GoalDef
}

func NewSelector(goals []domain.GoalDef) *Selector {
	return &Selector{goals: goals}
}

// Choose evaluates the catalog for one unit. Deterministic: a fixed unit
// state and a fixed action list always yield the same goal and action.
func (s *Selector) Choose(agent *domain.Unit, in SelectorInput) Choice {
	candidates := s.scoreCandidates(agent, in)

	// Stable sort keeps catalog order as the tie-break:
	// first-declared goal wins on equal score.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	for _, c := range candidates {
		if action := firstExecutable(c.goal, in.AvailableActions); action != nil {
			return Choice{
				Goal:             c.goal,
				Action:           action,
				CandidateActions: c.goal.CandidateActions,
				Reason:           c.reason,
			}
		}
	}

	// No candidate goal has an executable action: degrade to the first
	// usable action overall, paired with the top-scored goal, or with a
	// synthetic goal when the catalog itself is empty.
	fallbackGoal := domain.GoalDef{ID: "Default", Label: "Default", Scope: domain.ScopeUnit}
	if len(candidates) > 0 {
		fallbackGoal = candidates[0].goal
	}
	var action *domain.Action
	for _, a := range in.AvailableActions {
		if a != nil {
			action = a
			break
		}
	}
	return Choice{
		Goal:             fallbackGoal,
		Action:           action,
		CandidateActions: fallbackGoal.CandidateActions,
		Reason:           "no goal had an executable action, using fallback",
	}
}

// scoreCandidates walks the catalog in order and scores each goal that
// qualifies. Higher scores win.
func (s *Selector) scoreCandidates(agent *domain.Unit, in SelectorInput) []scoredGoal {
	healthRatio := resourceRatio(agent, domain.PropHealth, domain.PropMaxHealth)
	manaRatio := resourceRatio(agent, domain.PropMana, domain.PropMaxMana)

	var out []scoredGoal
	for _, g := range s.goals {
		switch g.ID {
		case domain.GoalRecoverHealth:
			switch {
			case healthRatio < 0.30:
				out = append(out, scoredGoal{g, 100, fmt.Sprintf("health critically low (%.0f%%)", healthRatio*100)})
			case healthRatio < 0.60:
				out = append(out, scoredGoal{g, 75, fmt.Sprintf("health low (%.0f%%)", healthRatio*100)})
			}

		case domain.GoalRecoverMana:
			switch {
			case manaRatio < 0.25:
				out = append(out, scoredGoal{g, 70, fmt.Sprintf("mana critically low (%.0f%%)", manaRatio*100)})
			case manaRatio < 0.50:
				out = append(out, scoredGoal{g, 45, fmt.Sprintf("mana low (%.0f%%)", manaRatio*100)})
			}

		case domain.GoalAttackEnemy:
			if !hostilesPresent(agent, in) {
				continue
			}
			if healthRatio > 0.35 {
				out = append(out, scoredGoal{g, 60, "hostile target in reach, fit to fight"})
			} else {
				out = append(out, scoredGoal{g, 25, "hostile target in reach, but wounded"})
			}

		case domain.GoalExplore:
			// Guaranteed fallback, always a candidate.
			out = append(out, scoredGoal{g, 10, "nothing pressing, wandering"})

		default:
			// Unknown catalog entries are legal but never score.
		}
	}
	return out
}

// hostilesPresent scans the roster for hostile units. A nil roster means the
// selector cannot prove absence, so it assumes hostiles exist.
func hostilesPresent(agent *domain.Unit, in SelectorInput) bool {
	if in.Units == nil {
		return true
	}
	for _, other := range in.Units {
		if other.ID == agent.ID || !other.IsAlive() {
			continue
		}
		if Classify(agent, other, in.Overrides) == RelationHostile {
			return true
		}
	}
	return false
}

// firstExecutable returns the first available action whose type appears in
// the goal's candidate list, honoring candidate order.
func firstExecutable(goal domain.GoalDef, available []*domain.Action) *domain.Action {
	for _, want := range goal.CandidateActions {
		for _, a := range available {
			if a != nil && a.Type == want {
				return a
			}
		}
	}
	return nil
}

// resourceRatio returns current/max for a resource pair. A missing or zero
// maximum reads as fully stocked to avoid division by zero.
func resourceRatio(u *domain.Unit, prop, maxProp string) float64 {
	max := u.NumberOr(maxProp, 0)
	if max <= 0 {
		return 1
	}
	return u.NumberOr(prop, 0) / max
}
