package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPosition is returned when a unit participating in movement has no
	// position property. This is a hard error at the point of use, never a
	// silent default.
	ErrNoPosition = errors.New("unit has no position property")

	// ErrReadOnly is returned on writes to a readonly property.
	ErrReadOnly = errors.New("property is readonly")
)

// Unit is an autonomous entity with identity and a property bag.
// Properties may be absent; readers get an explicit (Value, bool) contract
// instead of an implicit zero.
type Unit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`

	Props map[string]*Property `json:"props"`
}

func NewUnit(id, name, kind string) *Unit {
	if id == "" {
		id = GenerateID()
	}
	return &Unit{
		ID:    id,
		Name:  name,
		Kind:  kind,
		Props: make(map[string]*Property),
	}
}

// Property returns the property record for a name, if present.
func (u *Unit) Property(name string) (*Property, bool) {
	p, ok := u.Props[name]
	return p, ok
}

// Get returns the current value of a property, if present.
func (u *Unit) Get(name string) (Value, bool) {
	p, ok := u.Props[name]
	if !ok {
		return Value{}, false
	}
	return p.Value, true
}

// Number returns the numeric value of a property, if present and numeric.
func (u *Unit) Number(name string) (float64, bool) {
	v, ok := u.Get(name)
	if !ok || v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// NumberOr returns the numeric value of a property or a fallback.
func (u *Unit) NumberOr(name string, fallback float64) float64 {
	if n, ok := u.Number(name); ok {
		return n
	}
	return fallback
}

// TextOr returns the text value of a property or a fallback.
func (u *Unit) TextOr(name string, fallback string) string {
	v, ok := u.Get(name)
	if !ok || v.Kind != KindText {
		return fallback
	}
	return v.Text
}

// Set writes the current value of a property, creating the record if needed.
// The base value of a new record starts out equal to the written value.
func (u *Unit) Set(name string, v Value) error {
	p, ok := u.Props[name]
	if !ok {
		u.Props[name] = &Property{Value: v, BaseValue: v}
		return nil
	}
	if p.ReadOnly {
		return fmt.Errorf("set %q on %s: %w", name, u.ID, ErrReadOnly)
	}
	p.Value = v
	return nil
}

// SetBase writes the base value of a property, creating the record if needed.
func (u *Unit) SetBase(name string, v Value) error {
	p, ok := u.Props[name]
	if !ok {
		u.Props[name] = &Property{Value: v, BaseValue: v}
		return nil
	}
	if p.ReadOnly {
		return fmt.Errorf("set base %q on %s: %w", name, u.ID, ErrReadOnly)
	}
	p.BaseValue = v
	return nil
}

// SetNumber is a convenience wrapper for numeric writes.
func (u *Unit) SetNumber(name string, n float64) error {
	return u.Set(name, Number(n))
}

// Location returns the unit's map position. Absence is a hard error.
func (u *Unit) Location() (Location, error) {
	v, ok := u.Get(PropPosition)
	if !ok || v.Kind != KindLocation {
		return Location{}, fmt.Errorf("unit %s (%s): %w", u.Name, u.ID, ErrNoPosition)
	}
	return v.Loc, nil
}

// SetLocation rewrites the unit's map position.
func (u *Unit) SetLocation(l Location) error {
	return u.Set(PropPosition, Loc(l))
}

// IsAlive reports whether the unit can still act. Units without a health
// property are considered alive (scenery-style actors).
func (u *Unit) IsAlive() bool {
	h, ok := u.Number(PropHealth)
	if !ok {
		return true
	}
	return h > 0
}
