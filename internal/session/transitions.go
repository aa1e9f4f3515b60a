package session

import (
	"fmt"

	"agentmux/internal/apperr"
)

// transitions encodes the state machine table: for each (from, event) pair
// the defined next state. Events not present for a state are rejected with
// an Error transcript entry rather than a panic, per the closure property.
type event int

const (
	evChildSpawned event = iota
	evInitializeOK
	evSessionNewOK
	evPromptSubmitted
	evSessionUpdate
	evPermissionRequested
	evPermissionDecided
	evQuestionAsked
	evQuestionAnswered
	evTurnComplete
	evWriterFailure
	evUserKill
)

var transitionTable = map[State]map[event]State{
	Spawning: {
		evChildSpawned: Initializing,
	},
	Initializing: {
		evInitializeOK: Initializing, // "Initializing'" collapses to the same label; session/new follows immediately
		evSessionNewOK: Idle,
	},
	Idle: {
		evPromptSubmitted: Prompting,
	},
	Prompting: {
		evSessionUpdate:        Prompting,
		evPermissionRequested:  AwaitingPermission,
		evQuestionAsked:        AwaitingUserInput,
		evTurnComplete:         Idle,
	},
	AwaitingPermission: {
		evPermissionDecided: Prompting,
	},
	AwaitingUserInput: {
		evQuestionAnswered: Prompting,
	},
}

// transition looks up the next state for (s.State, ev). Every state also
// accepts evWriterFailure -> Crashed and evUserKill -> Killed regardless
// of what's in transitionTable, since those are defined for "any" state.
func (s *Session) transition(ev event) error {
	if ev == evWriterFailure {
		s.State = Crashed
		return nil
	}
	if ev == evUserKill {
		s.State = Killed
		return nil
	}
	row, ok := transitionTable[s.State]
	if !ok {
		err := fmt.Errorf("session %d: %w: no transitions defined from %s", s.LocalID, apperr.ErrInvalidState, s.State)
		s.Transcript.AppendError("invalid_state", err.Error())
		return err
	}
	next, ok := row[ev]
	if !ok {
		err := fmt.Errorf("session %d: %w: event %d not valid from %s", s.LocalID, apperr.ErrInvalidState, ev, s.State)
		s.Transcript.AppendError("invalid_state", err.Error())
		return err
	}
	s.State = next
	return nil
}

// OnChildSpawned moves Spawning -> Initializing and should be followed by
// sending the initialize request.
func (s *Session) OnChildSpawned() error { return s.transition(evChildSpawned) }

// OnInitializeOK should be followed by sending session/new.
func (s *Session) OnInitializeOK() error { return s.transition(evInitializeOK) }

// OnSessionNewOK records the assigned id and moves to Idle.
func (s *Session) OnSessionNewOK(agentID string) error {
	if err := s.transition(evSessionNewOK); err != nil {
		return err
	}
	s.AgentID = agentID
	return nil
}

// OnPromptSubmitted rejects unless Idle.
func (s *Session) OnPromptSubmitted(text string) error {
	if s.State != Idle {
		err := fmt.Errorf("session %d: %w: send rejected, not Idle (in %s)", s.LocalID, apperr.ErrInvalidState, s.State)
		s.Transcript.AppendError("invalid_state", err.Error())
		return err
	}
	if err := s.transition(evPromptSubmitted); err != nil {
		return err
	}
	s.Transcript.AppendUserMessage(text)
	return nil
}

// OnSessionUpdate is a no-op transition (Prompting -> Prompting) that
// exists so callers go through the same enforcement path as every other
// event; a streaming chunk arriving outside Prompting or
// AwaitingPermission is logged rather than treated as an error, since
// the agent and client can briefly disagree about state mid-stream.
func (s *Session) OnSessionUpdate() error {
	if s.State == AwaitingPermission {
		return nil
	}
	if s.State != Prompting {
		return fmt.Errorf("session %d: %w: update outside Prompting (in %s)", s.LocalID, apperr.ErrInvalidState, s.State)
	}
	return s.transition(evSessionUpdate)
}

// OnPermissionRequested rejects a second concurrent pending permission,
// enforcing the single-pending-permission invariant.
func (s *Session) OnPermissionRequested(p *PendingPermission) error {
	if s.PendingPermission != nil {
		return fmt.Errorf("session %d: %w: permission already pending", s.LocalID, apperr.ErrProtocol)
	}
	if err := s.transition(evPermissionRequested); err != nil {
		return err
	}
	s.PendingPermission = p
	return nil
}

func (s *Session) OnPermissionDecided(decision string) error {
	if s.PendingPermission == nil {
		return fmt.Errorf("session %d: %w: no permission pending", s.LocalID, apperr.ErrInvalidState)
	}
	toolCallID := s.PendingPermission.ToolCallID
	if err := s.transition(evPermissionDecided); err != nil {
		return err
	}
	s.PendingPermission = nil
	s.Transcript.AppendPermissionResolved(toolCallID, decision)
	return nil
}

func (s *Session) OnQuestionAsked(q *PendingQuestion) error {
	if s.PendingQuestion != nil {
		return fmt.Errorf("session %d: %w: question already pending", s.LocalID, apperr.ErrProtocol)
	}
	if err := s.transition(evQuestionAsked); err != nil {
		return err
	}
	s.PendingQuestion = q
	return nil
}

func (s *Session) OnQuestionAnswered(answer string) error {
	if s.PendingQuestion == nil {
		return fmt.Errorf("session %d: %w: no question pending", s.LocalID, apperr.ErrInvalidState)
	}
	question := s.PendingQuestion.Question
	if err := s.transition(evQuestionAnswered); err != nil {
		return err
	}
	s.PendingQuestion = nil
	s.Transcript.AppendQuestionResolved(question, answer)
	return nil
}

func (s *Session) OnTurnComplete() error { return s.transition(evTurnComplete) }

func (s *Session) OnWriterFailure() error { return s.transition(evWriterFailure) }

func (s *Session) OnUserKill() error { return s.transition(evUserKill) }
