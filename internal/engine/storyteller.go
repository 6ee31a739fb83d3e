package engine

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"

	"narrative-server/internal/catalog"
	"narrative-server/internal/domain"
	"narrative-server/internal/systems"
	"narrative-server/pkg/logger"
)

// StoryTeller is the per-turn glue: it asks the selector what an actor
// wants, walks the actor toward its target when out of reach, resolves the
// action's effects when in reach, and narrates the result into the diary.
//
// Failures affecting a single actor (no position, unreachable target) are
// logged and skip that actor's turn; the round always continues.
type StoryTeller struct {
	world     *domain.World
	gates     *domain.GateRegistry
	selector  *systems.Selector
	resolver  *systems.Resolver
	mover     *systems.Mover
	actions   *catalog.ActionCatalog
	diary     *Diary
	overrides map[string]systems.Relation
	rng       *rand.Rand
}

func NewStoryTeller(
	world *domain.World,
	gates *domain.GateRegistry,
	selector *systems.Selector,
	resolver *systems.Resolver,
	actions *catalog.ActionCatalog,
	diary *Diary,
	rng *rand.Rand,
) *StoryTeller {
	return &StoryTeller{
		world:    world,
		gates:    gates,
		selector: selector,
		resolver: resolver,
		mover:    systems.NewMover(world, gates),
		actions:  actions,
		diary:    diary,
		rng:      rng,
	}
}

// SetRelationOverrides installs scenario-level relation overrides consulted
// during goal selection and target hunting.
func (st *StoryTeller) SetRelationOverrides(o map[string]systems.Relation) {
	st.overrides = o
}

// TakeTurn runs one actor's full pipeline: choose, approach or act, narrate.
func (st *StoryTeller) TakeTurn(actor *domain.Unit, round, turn int) {
	turnLog := logger.Log.WithFields(logrus.Fields{
		"component": "storyteller",
		"unit_id":   actor.ID,
		"unit":      actor.Name,
		"round":     round,
		"turn":      turn,
	})

	units := st.world.Units()
	choice := st.selector.Choose(actor, systems.SelectorInput{
		AvailableActions: st.actions.ActionsFor(actor),
		Units:            units,
		Overrides:        st.overrides,
		Turn:             turn,
	})
	if choice.Action == nil {
		turnLog.Warn("No executable action available, turn skipped.")
		st.diary.Record(DiaryEntry{
			Round: round, Turn: turn,
			ActorID: actor.ID, ActorName: actor.Name,
			GoalID: choice.Goal.ID,
			Text:   actor.Name + " hesitates, finding nothing to do.",
		})
		return
	}

	act := cloneAction(choice.Action)
	act.Player = actor.ID
	pinActorVariables(act, actor)
	turnLog = turnLog.WithFields(logrus.Fields{"goal": choice.Goal.ID, "action": act.Type})
	turnLog.Debug(choice.Reason)

	target := st.resolveTarget(actor, act, choice, units)

	if target != nil {
		actorLoc, err := actor.Location()
		if err != nil {
			turnLog.WithError(err).Error("Actor has no position, turn skipped.")
			return
		}
		targetLoc, err := target.Location()
		if err != nil {
			turnLog.WithError(err).Error("Target has no position, turn skipped.")
			return
		}

		outOfReach := actorLoc.MapID != targetLoc.MapID ||
			actorLoc.Pos.ManhattanTo(targetLoc.Pos) > act.Range()
		if outOfReach {
			st.approach(actor, target, targetLoc, act, choice, units, round, turn, turnLog)
			return
		}
	}

	st.execute(actor, target, act, choice, units, round, turn, turnLog)
}

// resolveTarget finds the unit an action is aimed at. An explicit payload
// reference wins; otherwise hostile-facing actions hunt the nearest living
// hostile and pin it into the payload so the effect batch sees it too.
func (st *StoryTeller) resolveTarget(actor *domain.Unit, act *domain.Action, choice systems.Choice, units []*domain.Unit) *domain.Unit {
	if ref, ok := act.TargetRef(); ok {
		if u, found := st.world.FindUnit(ref); found {
			return u
		}
		logger.Log.WithFields(logrus.Fields{
			"component": "storyteller",
			"unit_id":   actor.ID,
			"target":    ref,
		}).Warn("Explicit target not found in world.")
		return nil
	}

	if choice.Goal.ID != domain.GoalAttackEnemy && !wantsEnemy(act) {
		return nil
	}

	target := st.nearestHostile(actor, units)
	if target != nil {
		if act.Payload == nil {
			act.Payload = domain.Payload{}
		}
		act.Payload["targetUnit"] = target.ID
	}
	return target
}

// approach moves the actor one planned step toward the target and narrates
// the pursuit. Effects are not executed this turn.
func (st *StoryTeller) approach(
	actor, target *domain.Unit,
	targetLoc domain.Location,
	act *domain.Action,
	choice systems.Choice,
	units []*domain.Unit,
	round, turn int,
	turnLog *logrus.Entry,
) {
	plan, err := systems.PlanApproach(st.world, actor, targetLoc, units, act.Range())
	if err != nil {
		switch {
		case errors.Is(err, systems.ErrNoGoalTiles):
			turnLog.Debug("Target unreachable: no goal tile in range.")
			st.diary.Record(DiaryEntry{
				Round: round, Turn: turn,
				ActorID: actor.ID, ActorName: actor.Name, GoalID: choice.Goal.ID,
				Text: actor.Name + " circles " + target.Name + ", but there is nowhere to strike from.",
			})
		case errors.Is(err, systems.ErrNoPath):
			turnLog.Debug("Target unreachable: no path.")
			st.diary.Record(DiaryEntry{
				Round: round, Turn: turn,
				ActorID: actor.ID, ActorName: actor.Name, GoalID: choice.Goal.ID,
				Text: actor.Name + " can find no way to reach " + target.Name + " and waits.",
			})
		default:
			turnLog.WithError(err).Error("Movement planning failed, turn skipped.")
		}
		return
	}

	if len(plan.Steps) > 0 {
		st.mover.ApplyStep(actor.ID, plan.Steps[0])
	}
	st.diary.Record(DiaryEntry{
		Round: round, Turn: turn,
		ActorID: actor.ID, ActorName: actor.Name,
		GoalID: choice.Goal.ID, Action: act.Type,
		Text: actor.Name + " moves closer to " + target.Name + ".",
	})
}

// execute applies the action's effects and narrates the outcome.
func (st *StoryTeller) execute(
	actor, target *domain.Unit,
	act *domain.Action,
	choice systems.Choice,
	units []*domain.Unit,
	round, turn int,
	turnLog *logrus.Entry,
) {
	// Wandering actions take one random walkable step instead of effects.
	if len(act.Effects) == 0 && target == nil && (act.Type == "explore" || act.Type == "move") {
		st.wander(actor, turnLog)
	}

	outcome := st.resolver.Apply(act, nil, units)
	text := renderDescription(act, actor, target)
	if !outcome.Success {
		turnLog.WithField("error", outcome.ErrorMessage).Warn("Effect application failed.")
		text = actor.Name + " tries to " + act.Type + ", but falters."
	}

	st.diary.Record(DiaryEntry{
		Round: round, Turn: turn,
		ActorID: actor.ID, ActorName: actor.Name,
		GoalID: choice.Goal.ID, Action: act.Type,
		Text: text,
	})
}

// wander nudges the actor onto a random adjacent walkable tile.
func (st *StoryTeller) wander(actor *domain.Unit, turnLog *logrus.Entry) {
	loc, err := actor.Location()
	if err != nil {
		turnLog.WithError(err).Debug("Cannot wander without a position.")
		return
	}
	m, ok := st.world.Map(loc.MapID)
	if !ok {
		return
	}

	dirs := [][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	if st.rng != nil {
		st.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	}
	for _, d := range dirs {
		next := loc.Pos.Shift(d[0], d[1])
		if m.Walkable(next.X, next.Y) {
			st.mover.ApplyStep(actor.ID, domain.Location{MapID: loc.MapID, Pos: next})
			return
		}
	}
}

// nearestHostile picks the closest living hostile on the actor's map,
// falling back to any living hostile anywhere. Nil when the world holds no
// hostiles at all.
func (st *StoryTeller) nearestHostile(actor *domain.Unit, units []*domain.Unit) *domain.Unit {
	actorLoc, locErr := actor.Location()

	var nearest, anywhere *domain.Unit
	best := -1
	for _, other := range units {
		if other.ID == actor.ID || !other.IsAlive() {
			continue
		}
		if systems.Classify(actor, other, st.overrides) != systems.RelationHostile {
			continue
		}
		if anywhere == nil {
			anywhere = other
		}
		if locErr != nil {
			continue
		}
		otherLoc, err := other.Location()
		if err != nil || otherLoc.MapID != actorLoc.MapID {
			continue
		}
		d := actorLoc.Pos.ManhattanTo(otherLoc.Pos)
		if best < 0 || d < best {
			best = d
			nearest = other
		}
	}
	if nearest != nil {
		return nearest
	}
	return anywhere
}

// wantsEnemy reports whether any of the action's effects address an enemy.
func wantsEnemy(act *domain.Action) bool {
	for _, e := range act.Effects {
		if e.Target == domain.TargetEnemy || e.Target == domain.TargetTarget {
			return true
		}
	}
	return false
}

// pinActorVariables copies the actor's own stats into the payload for every
// variable-valued effect, so "attack" damage reads the attacker's attack.
// Explicit payload entries always win.
func pinActorVariables(act *domain.Action, actor *domain.Unit) {
	for _, e := range act.Effects {
		if e.Value.Kind != domain.ValueVariable || e.Value.Variable == "" {
			continue
		}
		if act.Payload != nil {
			if _, ok := act.Payload[e.Value.Variable]; ok {
				continue
			}
		}
		if v, ok := actor.Number(e.Value.Variable); ok {
			if act.Payload == nil {
				act.Payload = domain.Payload{}
			}
			act.Payload[e.Value.Variable] = v
		}
	}
}

// cloneAction deep-copies an action so catalog entries stay immutable while
// a turn decorates its own copy.
func cloneAction(a *domain.Action) *domain.Action {
	out := &domain.Action{
		Type:        a.Type,
		Player:      a.Player,
		Description: a.Description,
	}
	if a.Payload != nil {
		out.Payload = make(domain.Payload, len(a.Payload))
		for k, v := range a.Payload {
			out.Payload[k] = v
		}
	}
	if len(a.Effects) > 0 {
		out.Effects = make([]domain.EffectDef, len(a.Effects))
		copy(out.Effects, a.Effects)
	}
	return out
}

// renderDescription fills the {player} and {target} placeholders of a
// catalog description template.
func renderDescription(act *domain.Action, actor, target *domain.Unit) string {
	text := act.Description
	if text == "" {
		text = actor.Name + " performs " + act.Type + "."
	}
	text = strings.ReplaceAll(text, "{player}", actor.Name)
	if target != nil {
		text = strings.ReplaceAll(text, "{target}", target.Name)
	} else {
		text = strings.ReplaceAll(text, "{target}", "the air")
	}
	return text
}
