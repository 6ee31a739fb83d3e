package engine

import (
	"fmt"

	"narrative-server/pkg/logger"
)

// phase is the scheduler's explicit state. Illegal transitions are
// programmer errors and panic instead of silently no-opping.
type phase int

const (
	phaseIdle phase = iota
	phaseRoundActive
)

// Scheduler advances one actor at a time through a fixed per-round turn
// order. The order is set when a round starts and only consulted, never
// mutated, until it is exhausted.
type Scheduler struct {
	phase        phase
	currentRound int
	turnOrder    []string
	turnIndex    int
	globalTurn   int
}

func NewScheduler() *Scheduler {
	return &Scheduler{phase: phaseIdle}
}

// StartNewRound activates a round with the given turn order. round <= 0
// means "the next round number". Starting while a round is active, or with
// an empty order, is a scheduler-invariant violation and panics.
func (s *Scheduler) StartNewRound(order []string, round int) {
	if s.phase == phaseRoundActive {
		panic(fmt.Sprintf("scheduler: StartNewRound called while round %d is in progress", s.currentRound))
	}
	if len(order) == 0 {
		panic("scheduler: StartNewRound called with an empty turn order")
	}

	if round <= 0 {
		round = s.currentRound + 1
	}
	s.currentRound = round
	s.turnOrder = make([]string, len(order))
	copy(s.turnOrder, order)
	s.turnIndex = 0
	s.phase = phaseRoundActive

	logger.Log.WithField("round", round).Debugf("Round started with %d actors", len(order))
}

// CurrentActorID returns the id whose turn it is, or "" when no round is
// active.
func (s *Scheduler) CurrentActorID() string {
	if s.phase != phaseRoundActive || s.turnIndex >= len(s.turnOrder) {
		return ""
	}
	return s.turnOrder[s.turnIndex]
}

// EndTurn always advances the global turn counter. While a round is active
// it also advances the in-round index; exhausting the order deactivates the
// round and clears it, forcing the orchestrator to rebuild an order for the
// next round.
func (s *Scheduler) EndTurn() {
	s.globalTurn++

	if s.phase != phaseRoundActive {
		return
	}
	s.turnIndex++
	if s.turnIndex >= len(s.turnOrder) {
		logger.Log.WithField("round", s.currentRound).Debug("Round complete")
		s.phase = phaseIdle
		s.turnOrder = nil
		s.turnIndex = 0
	}
}

func (s *Scheduler) CurrentRound() int { return s.currentRound }

func (s *Scheduler) GlobalTurn() int { return s.globalTurn }

func (s *Scheduler) RoundInProgress() bool { return s.phase == phaseRoundActive }

// HasPendingTurns reports whether actors are still waiting this round.
func (s *Scheduler) HasPendingTurns() bool {
	return s.phase == phaseRoundActive && s.turnIndex < len(s.turnOrder)
}

// TurnOrder returns a copy of the active round's order. Empty when idle.
func (s *Scheduler) TurnOrder() []string {
	out := make([]string, len(s.turnOrder))
	copy(out, s.turnOrder)
	return out
}
