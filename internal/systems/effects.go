package systems

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"narrative-server/internal/domain"
	"narrative-server/pkg/logger"
)

// missingBaseline is the value a target property is lazily initialized to
// before an operation touches it, so "+2 courage" on a unit that has no
// courage property yields 3, not 2.
const missingBaseline = 1

// Outcome reports the result of one effect batch.
type Outcome struct {
	Success      bool
	ErrorMessage string
}

// Resolver applies declarative effect batches to units. It owns the RNG for
// random value specs so that runs seeded equally replay equally.
type Resolver struct {
	rng *rand.Rand
}

func NewResolver(rng *rand.Rand) *Resolver {
	return &Resolver{rng: rng}
}

// Apply runs a batch of effects for an action against the given unit set.
//
// The effect source is, in order of preference: the explicit effects slice,
// the action's inline effects, the action payload's "effects" entry. With no
// source at all the batch is a successful no-op.
//
// A missing target only skips that one effect; an actual failure while
// mutating (readonly property, division by zero, unknown operation) aborts
// the remaining effects and surfaces in the outcome.
func (r *Resolver) Apply(action *domain.Action, effects []domain.EffectDef, units []*domain.Unit) Outcome {
	if len(effects) == 0 && action != nil {
		effects = action.Effects
	}
	if len(effects) == 0 && action != nil && action.Payload != nil {
		if raw, ok := action.Payload["effects"].([]domain.EffectDef); ok {
			effects = raw
		}
	}
	if len(effects) == 0 {
		return Outcome{Success: true}
	}

	effectLog := logger.Log.WithFields(logrus.Fields{
		"component": "effect_resolver",
		"action":    actionType(action),
	})

	for i, effect := range effects {
		targets := r.resolveTargets(action, effect.Target, units)
		if len(targets) == 0 {
			effectLog.WithFields(logrus.Fields{
				"effect_index": i,
				"target_kind":  effect.Target,
				"property":     effect.Property,
			}).Warn("No target found for effect, skipping.")
			continue
		}

		for _, target := range targets {
			scalar, err := r.resolveValue(action, effect, target)
			if err != nil {
				return Outcome{Success: false, ErrorMessage: err.Error()}
			}
			if err := applyOperation(target, effect, scalar); err != nil {
				effectLog.WithError(err).WithFields(logrus.Fields{
					"effect_index": i,
					"target_id":    target.ID,
				}).Error("Effect application failed, aborting batch.")
				return Outcome{Success: false, ErrorMessage: err.Error()}
			}
		}
	}

	return Outcome{Success: true}
}

func actionType(a *domain.Action) string {
	if a == nil {
		return ""
	}
	return a.Type
}

// resolveTargets expands a target discriminator into concrete units.
func (r *Resolver) resolveTargets(action *domain.Action, kind domain.TargetKind, units []*domain.Unit) []*domain.Unit {
	self := findActor(action, units)
	explicit := findExplicitTarget(action, units)

	switch kind {
	case domain.TargetSelf, "":
		if self == nil {
			return nil
		}
		return []*domain.Unit{self}

	case domain.TargetTarget:
		if explicit == nil {
			return nil
		}
		return []*domain.Unit{explicit}

	case domain.TargetAll:
		// Applied once per unit; the loop must not stop at the first hit.
		return units

	case domain.TargetAlly:
		var out []*domain.Unit
		if self != nil {
			out = append(out, self)
		}
		if explicit != nil && explicit != self {
			out = append(out, explicit)
		}
		return out

	case domain.TargetEnemy:
		if explicit != nil {
			return []*domain.Unit{explicit}
		}
		for _, u := range units {
			if self == nil || u.ID != self.ID {
				return []*domain.Unit{u}
			}
		}
		return nil
	}

	return nil
}

// findActor resolves the acting unit. Callers inconsistently put either a
// name or an id into action.Player, so both are tried.
func findActor(action *domain.Action, units []*domain.Unit) *domain.Unit {
	if action == nil || action.Player == "" {
		return nil
	}
	return findByRef(action.Player, units)
}

func findExplicitTarget(action *domain.Action, units []*domain.Unit) *domain.Unit {
	if action == nil {
		return nil
	}
	ref, ok := action.TargetRef()
	if !ok {
		return nil
	}
	return findByRef(ref, units)
}

func findByRef(ref string, units []*domain.Unit) *domain.Unit {
	for _, u := range units {
		if u.ID == ref {
			return u
		}
	}
	for _, u := range units {
		if u.Name == ref {
			return u
		}
	}
	return nil
}

// resolveValue computes the scalar for one effect on one target.
func (r *Resolver) resolveValue(action *domain.Action, effect domain.EffectDef, target *domain.Unit) (float64, error) {
	switch effect.Value.Kind {
	case domain.ValueStatic, domain.ValueCalculation, "":
		// calculation is accepted but resolves as static for now.
		return effect.Value.Static, nil

	case domain.ValueRandom:
		return float64(r.rollRange(effect.Value.Min, effect.Value.Max)), nil

	case domain.ValueVariable:
		if action != nil && action.Payload != nil {
			if raw, ok := action.Payload[effect.Value.Variable]; ok {
				return r.resolvePayloadValue(raw)
			}
		}
		// Fall back to the target's own property of that name, then zero.
		return target.NumberOr(effect.Value.Variable, 0), nil
	}

	return 0, fmt.Errorf("unknown value kind %q", effect.Value.Kind)
}

// resolvePayloadValue coerces a payload entry into a scalar. A payload entry
// may itself be a random-range descriptor, resolved at application time.
func (r *Resolver) resolvePayloadValue(raw any) (float64, error) {
	switch v := raw.(type) {
	case domain.RandomRange:
		return float64(r.rollRange(v.Min, v.Max)), nil
	case *domain.RandomRange:
		return float64(r.rollRange(v.Min, v.Max)), nil
	case map[string]any:
		// JSON-decoded range descriptor.
		minRaw, hasMin := v["min"]
		maxRaw, hasMax := v["max"]
		if hasMin && hasMax {
			lo, err1 := coerceNumber(minRaw)
			hi, err2 := coerceNumber(maxRaw)
			if err1 == nil && err2 == nil {
				return float64(r.rollRange(int(lo), int(hi))), nil
			}
		}
		return 0, fmt.Errorf("payload map is not a random range: %v", v)
	default:
		return coerceNumber(raw)
	}
}

func coerceNumber(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("payload value %v (%T) is not numeric", raw, raw)
	}
}

// rollRange returns an inclusive uniform integer in [lo, hi].
func (r *Resolver) rollRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}
	return lo + r.rng.Intn(hi-lo+1)
}

// applyOperation mutates one property on one unit. Permanent effects rewrite
// the base value directly, ignoring the operation.
func applyOperation(target *domain.Unit, effect domain.EffectDef, scalar float64) error {
	if effect.Permanent {
		return target.SetBase(effect.Property, domain.Number(clampProperty(effect.Property, scalar)))
	}

	current, ok := target.Number(effect.Property)
	if !ok {
		current = missingBaseline
	}

	var next float64
	switch effect.Operation {
	case domain.OpAdd:
		next = current + scalar
	case domain.OpSubtract:
		next = current - scalar
	case domain.OpMultiply:
		next = current * scalar
	case domain.OpDivide:
		if scalar == 0 {
			return fmt.Errorf("divide %q by zero on %s", effect.Property, target.ID)
		}
		next = current / scalar
	case domain.OpSet, "":
		next = scalar
	default:
		return fmt.Errorf("unknown operation %q", effect.Operation)
	}

	return target.SetNumber(effect.Property, clampProperty(effect.Property, next))
}

// clampProperty enforces the resource bounds: health and mana live in
// [ResourceMin, ResourceMax], every other numeric property is floored at zero.
func clampProperty(name string, v float64) float64 {
	if v < domain.ResourceMin {
		v = domain.ResourceMin
	}
	if (name == domain.PropHealth || name == domain.PropMana) && v > domain.ResourceMax {
		v = domain.ResourceMax
	}
	return v
}
