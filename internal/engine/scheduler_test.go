package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RoundLifecycle(t *testing.T) {
	s := NewScheduler()
	assert.False(t, s.RoundInProgress())
	assert.Equal(t, "", s.CurrentActorID())

	s.StartNewRound([]string{"a", "b", "c"}, 0)
	assert.Equal(t, 1, s.CurrentRound())
	assert.True(t, s.RoundInProgress())
	assert.Equal(t, "a", s.CurrentActorID())

	s.EndTurn()
	assert.Equal(t, "b", s.CurrentActorID())
	s.EndTurn()
	assert.Equal(t, "c", s.CurrentActorID())
	s.EndTurn()

	assert.False(t, s.RoundInProgress())
	assert.Equal(t, "", s.CurrentActorID())
	assert.Empty(t, s.TurnOrder())
	assert.Equal(t, 3, s.GlobalTurn())
}

func TestScheduler_StartWhileActivePanics(t *testing.T) {
	s := NewScheduler()
	s.StartNewRound([]string{"a", "b"}, 0)

	assert.Panics(t, func() {
		s.StartNewRound([]string{"c"}, 0)
	})
}

func TestScheduler_EmptyOrderPanics(t *testing.T) {
	s := NewScheduler()
	assert.Panics(t, func() {
		s.StartNewRound(nil, 0)
	})
}

func TestScheduler_EndTurnAlwaysCountsGlobally(t *testing.T) {
	s := NewScheduler()

	// Idle turns still advance the global counter.
	s.EndTurn()
	s.EndTurn()
	assert.Equal(t, 2, s.GlobalTurn())
	assert.False(t, s.RoundInProgress())

	s.StartNewRound([]string{"a"}, 0)
	s.EndTurn()
	assert.Equal(t, 3, s.GlobalTurn())
}

func TestScheduler_ExplicitRoundNumber(t *testing.T) {
	s := NewScheduler()
	s.StartNewRound([]string{"a"}, 7)
	assert.Equal(t, 7, s.CurrentRound())
	s.EndTurn()

	// round <= 0 continues from the last explicit number.
	s.StartNewRound([]string{"a"}, 0)
	assert.Equal(t, 8, s.CurrentRound())
}

func TestScheduler_OrderIsCopied(t *testing.T) {
	s := NewScheduler()
	order := []string{"a", "b"}
	s.StartNewRound(order, 0)

	order[0] = "mutated"
	require.Equal(t, "a", s.CurrentActorID())

	snapshot := s.TurnOrder()
	snapshot[1] = "mutated"
	s.EndTurn()
	assert.Equal(t, "b", s.CurrentActorID())
}

func TestScheduler_HasPendingTurns(t *testing.T) {
	s := NewScheduler()
	assert.False(t, s.HasPendingTurns())

	s.StartNewRound([]string{"a", "b"}, 0)
	assert.True(t, s.HasPendingTurns())
	s.EndTurn()
	assert.True(t, s.HasPendingTurns())
	s.EndTurn()
	assert.False(t, s.HasPendingTurns())
}
