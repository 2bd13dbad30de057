package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/jaminalder/tictactoe-minimax/internal/solver"
)

// Errors exposed by the service layer.
var (
	ErrNotFound       = errors.New("game not found")
	ErrNoComputerMove = errors.New("solver returned no move")
)

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Session domain.Session
	// LastComputerMove is the cell of the latest computer reply, or solver.NoMove.
	LastComputerMove int
	Created          time.Time
	Updated          time.Time
}

// SolveFunc picks a move for player on board.
type SolveFunc func(board domain.Board, player domain.Cell) solver.Analysis

type subscriber struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// trySend delivers payload without blocking. It reports false when the
// subscriber's buffer is full.
func (s *subscriber) trySend(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- payload:
		return true
	default:
		return false
	}
}

// Service manages games and subscribers.
type Service struct {
	log    *slog.Logger
	mu     sync.Mutex
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	solve  SolveFunc
}

// Option configures a Service.
type Option func(*Service)

// WithRenderer sets the function producing broadcast payloads.
func WithRenderer(renderer func(GameState) []byte) Option {
	return func(s *Service) {
		if renderer != nil {
			s.render = renderer
		}
	}
}

// WithSolver replaces the computer player.
func WithSolver(fn SolveFunc) Option {
	return func(s *Service) {
		if fn != nil {
			s.solve = fn
		}
	}
}

// NewService creates a service. A nil logger discards log output.
func NewService(logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		log:    logger.With("component", "app"),
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: func(GameState) []byte { return nil },
		solve:  solver.Analyze,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame(mode domain.Mode) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := time.Now()
	gs := &GameState{
		ID:               id,
		Session:          domain.NewSession(mode),
		LastComputerMove: solver.NoMove,
		Created:          now,
		Updated:          now,
	}
	s.games[id] = gs
	s.log.Debug("game created", "game", id, "mode", mode.String())
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Play applies the human move at cell, evaluates it and, in one-player mode,
// answers with the computer's move. A rejected move leaves the game untouched
// and returns the domain error together with the current state.
func (s *Service) Play(id string, cell int) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if err := gs.Session.Validate(cell); err != nil {
		cp := *gs
		s.mu.Unlock()
		s.log.Debug("move ignored", "game", id, "cell", cell, "error", err)
		return &cp, err
	}

	player := gs.Session.Current
	gs.Session.ApplyMove(cell)
	out := gs.Session.Evaluate()
	gs.LastComputerMove = solver.NoMove
	s.log.Debug("move played", "game", id, "player", player.String(), "cell", cell, "status", out.Message())

	var err error
	if gs.Session.ComputerToMove() {
		err = s.computerMoveLocked(gs)
	}
	gs.Updated = time.Now()

	// Snapshot state and subscribers
	cp := *gs
	subs := s.copySubsLocked(id)
	payload := s.render(cp)
	s.mu.Unlock()

	s.broadcast(id, subs, payload)
	return &cp, err
}

func (s *Service) computerMoveLocked(gs *GameState) error {
	start := time.Now()
	a := s.solve(gs.Session.Board, gs.Session.Current)
	if !gs.Session.ApplyMove(a.Move.Index) {
		s.log.Error("computer move rejected", "game", gs.ID, "cell", a.Move.Index)
		return ErrNoComputerMove
	}
	out := gs.Session.Evaluate()
	gs.LastComputerMove = a.Move.Index
	s.log.Debug("computer moved",
		"game", gs.ID,
		"cell", a.Move.Index,
		"score", a.Move.Score,
		"nodes", a.Nodes,
		"elapsed", time.Since(start),
		"status", out.Message(),
	)
	return nil
}

// Reset starts the game over under mode and broadcasts the empty board.
func (s *Service) Reset(id string, mode domain.Mode) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	gs.Session.Reset(mode)
	gs.LastComputerMove = solver.NoMove
	gs.Updated = time.Now()
	cp := *gs
	subs := s.copySubsLocked(id)
	payload := s.render(cp)
	s.mu.Unlock()

	s.log.Debug("game reset", "game", id, "mode", mode.String())
	s.broadcast(id, subs, payload)
	return &cp, nil
}

// broadcast fans payload out; slow subscribers are closed and forgotten.
func (s *Service) broadcast(id string, subs map[*subscriber]struct{}, payload []byte) {
	var toDrop []*subscriber
	for sub := range subs {
		if !sub.trySend(payload) {
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) == 0 {
		return
	}
	s.mu.Lock()
	for _, sub := range toDrop {
		if set, ok := s.subs[id]; ok {
			delete(set, sub)
		}
	}
	s.mu.Unlock()
	s.log.Debug("dropped slow subscribers", "game", id, "count", len(toDrop))
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
// The channel is closed when ctx is done, on unsubscribe, or when the
// subscriber falls behind.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
