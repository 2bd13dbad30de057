package term

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/jaminalder/tictactoe-minimax/internal/solver"
)

// Game runs one terminal session, reading commands line by line.
type Game struct {
	in      *bufio.Scanner
	out     io.Writer
	profile termenv.Profile
	log     *slog.Logger
	session domain.Session
}

// NewGame starts a session in mode reading commands from in and drawing to out.
func NewGame(in io.Reader, out io.Writer, mode domain.Mode, profile termenv.Profile, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Game{
		in:      bufio.NewScanner(in),
		out:     out,
		profile: profile,
		log:     logger.With("component", "term"),
		session: domain.NewSession(mode),
	}
}

// Session returns a copy of the current session.
func (g *Game) Session() domain.Session { return g.session }

// Run reads commands until "q", end of input or ctx is done. Input is read
// on a separate goroutine so cancellation does not wait for a line.
func (g *Game) Run(ctx context.Context) error {
	g.printf("Tic Tac Toe (%s player mode). Type 1-9 to play, r to restart, q to quit.\n", g.session.Mode)
	g.show()

	stop := make(chan struct{})
	defer close(stop)
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		for g.in.Scan() {
			select {
			case lines <- g.in.Text():
			case <-stop:
				return
			}
		}
		readErr <- g.in.Err()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case line := <-lines:
			if err := ctx.Err(); err != nil {
				return err
			}
			if quit := g.handle(line); quit {
				return nil
			}
		}
	}
}

// handle runs one command line and reports whether the player quit.
func (g *Game) handle(line string) bool {
	switch cmd := strings.ToLower(strings.TrimSpace(line)); cmd {
	case "":
	case "q", "quit":
		return true
	case "r", "reset":
		g.session.Reset(g.session.Mode)
		g.show()
	default:
		n, err := strconv.Atoi(cmd)
		if err != nil {
			g.printf("Unknown command %q\n", cmd)
			return false
		}
		g.play(n - 1)
	}
	return false
}

func (g *Game) play(idx int) {
	if err := g.session.Validate(idx); err != nil {
		g.printf("%s\n", notice(err))
		return
	}
	g.session.ApplyMove(idx)
	g.session.Evaluate()

	if g.session.ComputerToMove() {
		a := solver.Analyze(g.session.Board, g.session.Current)
		g.log.Debug("computer moved", "cell", a.Move.Index, "score", a.Move.Score, "nodes", a.Nodes)
		if g.session.ApplyMove(a.Move.Index) {
			g.session.Evaluate()
			g.printf("Computer plays %d\n", a.Move.Index+1)
		}
	}
	g.show()
}

func (g *Game) show() {
	g.printf("\n%s\n%s\n", Render(g.session.Board, g.profile), g.session.Outcome.Message())
	if !g.session.Active {
		g.printf("Type r to play again or q to quit.\n")
	}
}

func (g *Game) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(g.out, format, args...)
}

func notice(err error) string {
	switch {
	case errors.Is(err, domain.ErrOccupied):
		return "Cell is occupied"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "Pick a cell from 1 to 9"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over"
	}
	return "Invalid move"
}
