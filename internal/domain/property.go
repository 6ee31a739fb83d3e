package domain

// ValueKind discriminates the tagged union stored in a property slot.
type ValueKind int

const (
	KindNumber ValueKind = iota
	KindText
	KindLocation
)

// Value is the tagged union a property can hold. Properties are semantically
// numeric (health, mana), textual (faction, status) or structural (position).
type Value struct {
	Kind ValueKind `json:"kind"`
	Num  float64   `json:"num,omitempty"`
	Text string    `json:"text,omitempty"`
	Loc  Location  `json:"loc,omitempty"`
}

func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func Text(s string) Value    { return Value{Kind: KindText, Text: s} }
func Loc(l Location) Value   { return Value{Kind: KindLocation, Loc: l} }

// Modifier is a named adjustment layered on top of a base value
// (equipment bonus, aura, curse). It exists so externally authored property
// bags survive persistence round-trips intact; no read path resolves
// modifiers, because the effect engine's read-modify-write would bake them
// into the stored value on every write.
type Modifier struct {
	Source   string  `json:"source"`
	Value    float64 `json:"value"`
	Priority int     `json:"priority"`
}

// Property is one slot of a unit's property bag.
type Property struct {
	Value     Value      `json:"value"`
	BaseValue Value      `json:"baseValue"`
	Modifiers []Modifier `json:"modifiers,omitempty"`
	ReadOnly  bool       `json:"readonly,omitempty"`
}
