package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects who plays O.
type Mode uint8

const (
	TwoPlayer Mode = iota
	OnePlayer
)

func (m Mode) String() string {
	if m == OnePlayer {
		return "one"
	}
	return "two"
}

// ParseMode accepts "one"/"onePlayer" and "two"/"twoPlayer".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "two", "twoplayer":
		return TwoPlayer, nil
	case "one", "oneplayer":
		return OnePlayer, nil
	}
	return TwoPlayer, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Status is the phase of a session.
type Status uint8

const (
	InProgress Status = iota
	Won
	Draw
)

// Outcome is the result of evaluating a session after a move.
type Outcome struct {
	Status Status
	Winner Cell
	// Next is the player to move while InProgress.
	Next Cell
}

// Message is the status line shown to players.
func (o Outcome) Message() string {
	switch o.Status {
	case Won:
		return fmt.Sprintf("Player %s wins!", o.Winner)
	case Draw:
		return "Draw!"
	default:
		return fmt.Sprintf("It's %s's turn", o.Next)
	}
}

// Errors returned by Validate. ApplyMove turns them into a no-op.
var (
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("cell occupied")
	ErrGameOver    = errors.New("game over")
	ErrUnknownMode = errors.New("unknown game mode")
)

// Session holds the current state of a match.
type Session struct {
	Board   Board
	Current Cell
	Active  bool
	Mode    Mode
	Moves   int
	Outcome Outcome
}

// NewSession returns an empty session with X to move.
func NewSession(mode Mode) Session {
	return Session{
		Current: X,
		Active:  true,
		Mode:    mode,
		Outcome: Outcome{Status: InProgress, Next: X},
	}
}

// Reset returns the session to its initial state under the given mode.
func (s *Session) Reset(mode Mode) {
	*s = NewSession(mode)
}

// Validate reports why a move at idx would be rejected, or nil.
func (s *Session) Validate(idx int) error {
	if !s.Active {
		return ErrGameOver
	}
	if idx < 0 || idx >= len(s.Board) {
		return ErrOutOfBounds
	}
	if s.Board[idx] != Empty {
		return ErrOccupied
	}
	return nil
}

// ApplyMove places the current player's mark at idx. It returns false and
// leaves the session untouched when the move is not allowed.
func (s *Session) ApplyMove(idx int) bool {
	if s.Validate(idx) != nil {
		return false
	}
	s.Board[idx] = s.Current
	s.Moves++
	return true
}

// Evaluate checks the board after a move: a completed line or a full board
// ends the session, otherwise the turn passes to the other player.
// On an inactive session it only returns the stored outcome.
func (s *Session) Evaluate() Outcome {
	if !s.Active {
		return s.Outcome
	}
	if w := Winner(&s.Board); w != Empty {
		s.Active = false
		s.Outcome = Outcome{Status: Won, Winner: w}
		return s.Outcome
	}
	if s.Board.Full() {
		s.Active = false
		s.Outcome = Outcome{Status: Draw}
		return s.Outcome
	}
	s.Current = s.Current.Opponent()
	s.Outcome = Outcome{Status: InProgress, Next: s.Current}
	return s.Outcome
}

// ComputerToMove reports whether the computer owes a reply.
func (s *Session) ComputerToMove() bool {
	return s.Mode == OnePlayer && s.Active && s.Current == O
}
