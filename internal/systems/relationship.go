package systems

import "narrative-server/internal/domain"

// Relation is the stance one unit takes toward another.
type Relation string

const (
	RelationAlly    Relation = "ally"
	RelationNeutral Relation = "neutral"
	RelationHostile Relation = "hostile"
)

// Classify derives the actor's stance toward the target from faction tags.
// An explicit per-actor override map, when it contains the target's id,
// always wins over faction inference. Pure lookup, no side effects.
func Classify(actor, target *domain.Unit, overrides map[string]Relation) Relation {
	if actor.ID == target.ID {
		return RelationAlly
	}
	if overrides != nil {
		if r, ok := overrides[target.ID]; ok {
			return r
		}
	}

	actorFaction := actor.TextOr(domain.PropFaction, domain.FactionNeutral)
	targetFaction := target.TextOr(domain.PropFaction, domain.FactionNeutral)

	if actorFaction == domain.FactionNeutral || targetFaction == domain.FactionNeutral {
		return RelationNeutral
	}
	if actorFaction == targetFaction {
		return RelationAlly
	}
	return RelationHostile
}
