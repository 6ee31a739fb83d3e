package domain

// TargetKind selects which units an effect applies to.
type TargetKind string

const (
	TargetSelf   TargetKind = "self"
	TargetTarget TargetKind = "target"
	TargetAll    TargetKind = "all"
	TargetAlly   TargetKind = "ally"
	TargetEnemy  TargetKind = "enemy"
)

// Operation is the arithmetic applied to the targeted property.
type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
	OpSet      Operation = "set"
)

// EffectValueKind discriminates how an effect's scalar is obtained.
type EffectValueKind string

const (
	// ValueStatic uses the literal number in the spec.
	ValueStatic EffectValueKind = "static"
	// ValueCalculation is accepted in the schema but currently resolves
	// identically to static. Known limitation, kept on purpose.
	ValueCalculation EffectValueKind = "calculation"
	// ValueVariable looks the scalar up in the action payload, falling back
	// to the target's own property of that name.
	ValueVariable EffectValueKind = "variable"
	// ValueRandom rolls an inclusive uniform integer in [Min, Max].
	ValueRandom EffectValueKind = "random"
)

// ValueSpec describes where an effect's scalar comes from.
type ValueSpec struct {
	Kind     EffectValueKind `json:"kind"`
	Static   float64         `json:"value,omitempty"`
	Variable string          `json:"variable,omitempty"`
	Min      int             `json:"min,omitempty"`
	Max      int             `json:"max,omitempty"`
}

// EffectDef is a single declarative property mutation.
// Permanent effects rewrite the base value directly (operation ignored);
// everything else operates on the current value.
type EffectDef struct {
	Target    TargetKind `json:"target,omitempty"`
	Property  string     `json:"property"`
	Operation Operation  `json:"operation"`
	Value     ValueSpec  `json:"value"`
	Permanent bool       `json:"permanent,omitempty"`
}

// RandomRange is a payload entry that resolves to an inclusive uniform
// integer when an effect reads it through a variable lookup.
type RandomRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Payload is the free-form key/value bag attached to an action.
// Well-known keys: "targetUnit" (name or id of the explicit target),
// "range" (the action's declared reach in tiles).
type Payload map[string]any

// Action is a concrete, executable behaviour.
type Action struct {
	Type        string      `json:"type"`
	Player      string      `json:"player,omitempty"`
	Description string      `json:"description,omitempty"`
	Payload     Payload     `json:"payload,omitempty"`
	Effects     []EffectDef `json:"effects,omitempty"`
}

// TargetRef returns the explicit target reference from the payload, if any.
func (a *Action) TargetRef() (string, bool) {
	if a.Payload == nil {
		return "", false
	}
	v, ok := a.Payload["targetUnit"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// Range returns the action's declared reach, defaulting when absent.
func (a *Action) Range() int {
	if a.Payload != nil {
		switch v := a.Payload["range"].(type) {
		case int:
			return v
		case float64:
			return int(v)
		}
	}
	return DefaultActionRange
}
