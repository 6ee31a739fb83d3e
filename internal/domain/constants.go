package domain

// Unit kinds
const (
	UnitKindHero    = "HERO"
	UnitKindVillain = "VILLAIN"
	UnitKindNPC     = "NPC"
	UnitKindBeast   = "BEAST"
)

// Well-known property names. The bag accepts arbitrary names; these are the
// ones the engine itself reads.
const (
	PropHealth        = "health"
	PropMaxHealth     = "maxHealth"
	PropMana          = "mana"
	PropMaxMana       = "maxMana"
	PropAttack        = "attack"
	PropFaction       = "faction"
	PropStatus        = "status"
	PropPosition      = "position"
	PropExperience    = "experience"
	PropMovementRange = "movementRange"
)

// FactionNeutral is the sentinel faction for units without an allegiance.
// A missing faction property reads as this value.
const FactionNeutral = "neutral"

// Resource clamp bounds. health and mana are hard-capped to this range by the
// effect engine; every other numeric property is only floored at zero.
const (
	ResourceMin = 0
	ResourceMax = 100
)

// Movement defaults used when a unit carries no explicit property.
const (
	DefaultMovementRange = 3
	DefaultActionRange   = 1
)
