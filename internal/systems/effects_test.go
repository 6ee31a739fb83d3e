package systems

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narrative-server/internal/domain"
)

func newResolver() *Resolver {
	return NewResolver(rand.New(rand.NewSource(42)))
}

func combatant(id string, health float64) *domain.Unit {
	u := domain.NewUnit(id, id, domain.UnitKindNPC)
	u.SetNumber(domain.PropHealth, health)
	u.SetNumber(domain.PropMaxHealth, 100)
	return u
}

func TestApply_StaticSubtract(t *testing.T) {
	attacker := combatant("orm", 90)
	target := combatant("vex", 70)

	action := &domain.Action{
		Type:    "attack",
		Player:  "orm",
		Payload: domain.Payload{"targetUnit": "vex"},
	}
	effects := []domain.EffectDef{{
		Target:    domain.TargetTarget,
		Property:  domain.PropHealth,
		Operation: domain.OpSubtract,
		Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 15},
	}}

	out := newResolver().Apply(action, effects, []*domain.Unit{attacker, target})
	require.True(t, out.Success)
	assert.Equal(t, 55.0, target.NumberOr(domain.PropHealth, -1))
}

func TestApply_NoEffectsIsNoOpSuccess(t *testing.T) {
	out := newResolver().Apply(&domain.Action{Type: "wait", Player: "a"}, nil, []*domain.Unit{combatant("a", 50)})
	assert.True(t, out.Success)
	assert.Empty(t, out.ErrorMessage)
}

func TestApply_PayloadEffectsFallback(t *testing.T) {
	self := combatant("a", 40)
	action := &domain.Action{
		Type:   "rest",
		Player: "a",
		Payload: domain.Payload{
			"effects": []domain.EffectDef{{
				Target:    domain.TargetSelf,
				Property:  domain.PropHealth,
				Operation: domain.OpAdd,
				Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 20},
			}},
		},
	}

	out := newResolver().Apply(action, nil, []*domain.Unit{self})
	require.True(t, out.Success)
	assert.Equal(t, 60.0, self.NumberOr(domain.PropHealth, -1))
}

func TestApply_HealthClampedToResourceBounds(t *testing.T) {
	self := combatant("a", 95)
	heal := []domain.EffectDef{{
		Target:    domain.TargetSelf,
		Property:  domain.PropHealth,
		Operation: domain.OpAdd,
		Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 50},
	}}
	out := newResolver().Apply(&domain.Action{Type: "heal", Player: "a"}, heal, []*domain.Unit{self})
	require.True(t, out.Success)
	assert.Equal(t, 100.0, self.NumberOr(domain.PropHealth, -1))

	hit := []domain.EffectDef{{
		Target:    domain.TargetSelf,
		Property:  domain.PropHealth,
		Operation: domain.OpSubtract,
		Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 500},
	}}
	out = newResolver().Apply(&domain.Action{Type: "hit", Player: "a"}, hit, []*domain.Unit{self})
	require.True(t, out.Success)
	assert.Equal(t, 0.0, self.NumberOr(domain.PropHealth, -1))
}

func TestApply_GenericPropertyFlooredAtZero(t *testing.T) {
	self := combatant("a", 50)
	self.SetNumber("courage", 3)

	effects := []domain.EffectDef{{
		Target:    domain.TargetSelf,
		Property:  "courage",
		Operation: domain.OpSubtract,
		Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 10},
	}}
	out := newResolver().Apply(&domain.Action{Type: "scare", Player: "a"}, effects, []*domain.Unit{self})
	require.True(t, out.Success)
	// Floored at zero but not capped at 100 (only health/mana are).
	assert.Equal(t, 0.0, self.NumberOr("courage", -1))
}

func TestApply_MissingPropertyInitializedToBaseline(t *testing.T) {
	self := combatant("a", 50)
	effects := []domain.EffectDef{{
		Target:    domain.TargetSelf,
		Property:  "courage",
		Operation: domain.OpAdd,
		Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 2},
	}}
	out := newResolver().Apply(&domain.Action{Type: "rally", Player: "a"}, effects, []*domain.Unit{self})
	require.True(t, out.Success)
	assert.Equal(t, 3.0, self.NumberOr("courage", -1), "baseline 1 plus 2")
}

func TestApply_AllTargetsEveryUnit(t *testing.T) {
	a := combatant("a", 50)
	b := combatant("b", 50)
	c := combatant("c", 50)

	effects := []domain.EffectDef{{
		Target:    domain.TargetAll,
		Property:  domain.PropHealth,
		Operation: domain.OpSubtract,
		Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 10},
	}}
	out := newResolver().Apply(&domain.Action{Type: "quake", Player: "a"}, effects, []*domain.Unit{a, b, c})
	require.True(t, out.Success)
	for _, u := range []*domain.Unit{a, b, c} {
		assert.Equal(t, 40.0, u.NumberOr(domain.PropHealth, -1), u.ID)
	}
}

func TestApply_AllySelfAndExplicitTarget(t *testing.T) {
	a := combatant("a", 50)
	b := combatant("b", 50)
	c := combatant("c", 50)

	action := &domain.Action{Type: "bless", Player: "a", Payload: domain.Payload{"targetUnit": "b"}}
	effects := []domain.EffectDef{{
		Target:    domain.TargetAlly,
		Property:  domain.PropHealth,
		Operation: domain.OpAdd,
		Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 10},
	}}
	out := newResolver().Apply(action, effects, []*domain.Unit{a, b, c})
	require.True(t, out.Success)
	assert.Equal(t, 60.0, a.NumberOr(domain.PropHealth, -1))
	assert.Equal(t, 60.0, b.NumberOr(domain.PropHealth, -1))
	assert.Equal(t, 50.0, c.NumberOr(domain.PropHealth, -1))
}

func TestApply_EnemyFallsBackToAnyOther(t *testing.T) {
	a := combatant("a", 50)
	b := combatant("b", 50)

	action := &domain.Action{Type: "strike", Player: "a"}
	effects := []domain.EffectDef{{
		Target:    domain.TargetEnemy,
		Property:  domain.PropHealth,
		Operation: domain.OpSubtract,
		Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 5},
	}}
	out := newResolver().Apply(action, effects, []*domain.Unit{a, b})
	require.True(t, out.Success)
	assert.Equal(t, 45.0, b.NumberOr(domain.PropHealth, -1))
	assert.Equal(t, 50.0, a.NumberOr(domain.PropHealth, -1))
}

func TestApply_UnresolvableTargetSkipsNotAborts(t *testing.T) {
	a := combatant("a", 50)
	action := &domain.Action{Type: "attack", Player: "a"} // no targetUnit in payload
	effects := []domain.EffectDef{
		{
			Target:    domain.TargetTarget,
			Property:  domain.PropHealth,
			Operation: domain.OpSubtract,
			Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 5},
		},
		{
			Target:    domain.TargetSelf,
			Property:  domain.PropMana,
			Operation: domain.OpSet,
			Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 30},
		},
	}
	out := newResolver().Apply(action, effects, []*domain.Unit{a})
	// Batch still succeeds and the second effect still lands.
	require.True(t, out.Success)
	assert.Equal(t, 30.0, a.NumberOr(domain.PropMana, -1))
}

func TestApply_DivideByZeroAbortsBatch(t *testing.T) {
	a := combatant("a", 50)
	effects := []domain.EffectDef{
		{
			Target:    domain.TargetSelf,
			Property:  domain.PropHealth,
			Operation: domain.OpDivide,
			Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 0},
		},
		{
			Target:    domain.TargetSelf,
			Property:  domain.PropMana,
			Operation: domain.OpSet,
			Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 30},
		},
	}
	out := newResolver().Apply(&domain.Action{Type: "curse", Player: "a"}, effects, []*domain.Unit{a})
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.ErrorMessage)
	_, hasMana := a.Number(domain.PropMana)
	assert.False(t, hasMana, "remaining effects must not run after a failure")
}

func TestApply_RandomValueWithinRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		a := combatant("a", 50)
		effects := []domain.EffectDef{{
			Target:    domain.TargetSelf,
			Property:  "luck",
			Operation: domain.OpSet,
			Value:     domain.ValueSpec{Kind: domain.ValueRandom, Min: 3, Max: 7},
		}}
		out := NewResolver(rand.New(rand.NewSource(int64(i)))).Apply(&domain.Action{Type: "gamble", Player: "a"}, effects, []*domain.Unit{a})
		require.True(t, out.Success)
		v := a.NumberOr("luck", -1)
		assert.GreaterOrEqual(t, v, 3.0)
		assert.LessOrEqual(t, v, 7.0)
		assert.Equal(t, v, float64(int(v)), "random rolls are integers")
	}
}

func TestApply_VariableFromPayload(t *testing.T) {
	a := combatant("a", 50)
	b := combatant("b", 50)

	action := &domain.Action{
		Type:   "attack",
		Player: "a",
		Payload: domain.Payload{
			"targetUnit": "b",
			"damage":     12.0,
		},
	}
	effects := []domain.EffectDef{{
		Target:    domain.TargetTarget,
		Property:  domain.PropHealth,
		Operation: domain.OpSubtract,
		Value:     domain.ValueSpec{Kind: domain.ValueVariable, Variable: "damage"},
	}}
	out := newResolver().Apply(action, effects, []*domain.Unit{a, b})
	require.True(t, out.Success)
	assert.Equal(t, 38.0, b.NumberOr(domain.PropHealth, -1))
}

func TestApply_VariablePayloadRandomRange(t *testing.T) {
	a := combatant("a", 50)
	b := combatant("b", 50)

	action := &domain.Action{
		Type:   "attack",
		Player: "a",
		Payload: domain.Payload{
			"targetUnit": "b",
			// JSON-decoded payloads carry ranges as plain maps.
			"damage": map[string]any{"min": 2.0, "max": 4.0},
		},
	}
	effects := []domain.EffectDef{{
		Target:    domain.TargetTarget,
		Property:  domain.PropHealth,
		Operation: domain.OpSubtract,
		Value:     domain.ValueSpec{Kind: domain.ValueVariable, Variable: "damage"},
	}}
	out := newResolver().Apply(action, effects, []*domain.Unit{a, b})
	require.True(t, out.Success)
	got := 50 - b.NumberOr(domain.PropHealth, -1)
	assert.GreaterOrEqual(t, got, 2.0)
	assert.LessOrEqual(t, got, 4.0)
}

func TestApply_VariableFallsBackToTargetProperty(t *testing.T) {
	a := combatant("a", 50)
	a.SetNumber("focus", 6)

	action := &domain.Action{Type: "channel", Player: "a"}
	effects := []domain.EffectDef{{
		Target:    domain.TargetSelf,
		Property:  domain.PropMana,
		Operation: domain.OpAdd,
		Value:     domain.ValueSpec{Kind: domain.ValueVariable, Variable: "focus"},
	}}
	out := newResolver().Apply(action, effects, []*domain.Unit{a})
	require.True(t, out.Success)
	// missing mana -> baseline 1, plus focus 6
	assert.Equal(t, 7.0, a.NumberOr(domain.PropMana, -1))
}

func TestApply_CalculationResolvesAsStatic(t *testing.T) {
	a := combatant("a", 50)
	effects := []domain.EffectDef{{
		Target:    domain.TargetSelf,
		Property:  domain.PropHealth,
		Operation: domain.OpSet,
		Value:     domain.ValueSpec{Kind: domain.ValueCalculation, Static: 66},
	}}
	out := newResolver().Apply(&domain.Action{Type: "ritual", Player: "a"}, effects, []*domain.Unit{a})
	require.True(t, out.Success)
	assert.Equal(t, 66.0, a.NumberOr(domain.PropHealth, -1))
}

func TestApply_PermanentWritesBaseValueDirectly(t *testing.T) {
	a := combatant("a", 50)
	effects := []domain.EffectDef{{
		Target:    domain.TargetSelf,
		Property:  domain.PropHealth,
		Operation: domain.OpAdd, // ignored for permanent effects
		Value:     domain.ValueSpec{Kind: domain.ValueStatic, Static: 80},
		Permanent: true,
	}}
	out := newResolver().Apply(&domain.Action{Type: "ascend", Player: "a"}, effects, []*domain.Unit{a})
	require.True(t, out.Success)

	p, ok := a.Property(domain.PropHealth)
	require.True(t, ok)
	assert.Equal(t, 80.0, p.BaseValue.Num)
	assert.Equal(t, 50.0, p.Value.Num, "permanent writes leave the current value alone")
}
