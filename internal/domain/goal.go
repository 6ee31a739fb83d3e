package domain

// GoalScope says whether a goal is evaluated per unit or per squad.
type GoalScope string

const (
	ScopeUnit  GoalScope = "unit"
	ScopeSquad GoalScope = "squad"
)

// CompletionKind describes how a goal knows it is done.
type CompletionKind string

const (
	CompletionStatAtLeast  CompletionKind = "stat-at-least"
	CompletionConditionMet CompletionKind = "condition-met"
	CompletionNone         CompletionKind = "none"
)

type Completion struct {
	Kind      CompletionKind `json:"kind"`
	Stat      string         `json:"stat,omitempty"`
	Threshold float64        `json:"threshold,omitempty"`
	Condition string         `json:"condition,omitempty"`
}

// GoalDef is static catalog data: a scored behavioural objective mapped to
// the action types that can satisfy it. Goals are not owned by any unit.
type GoalDef struct {
	ID               string     `json:"id"`
	Label            string     `json:"label"`
	Scope            GoalScope  `json:"scope"`
	Completion       Completion `json:"completion"`
	CandidateActions []string   `json:"candidateActions"`
}

// Well-known goal IDs the selector scores.
const (
	GoalRecoverHealth = "RecoverHealth"
	GoalRecoverMana   = "RecoverMana"
	GoalAttackEnemy   = "AttackEnemy"
	GoalExplore       = "Explore"
)
