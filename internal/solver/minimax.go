// Package solver picks moves by exhaustive minimax search over the full game tree.
//
// O is the maximising side and X the minimising one, so scores are always
// from O's point of view: +10 for an O win, -10 for an X win, 0 for a draw.
package solver

import "github.com/jaminalder/tictactoe-minimax/internal/domain"

const (
	WinScore  = 10
	LossScore = -10
	DrawScore = 0

	// NoMove is the index reported for boards that are already terminal.
	NoMove = -1
)

// MoveResult is the best cell for the player to move and its score.
type MoveResult struct {
	Index int
	Score int
}

// Analysis is a MoveResult plus the number of positions visited to find it.
type Analysis struct {
	Move  MoveResult
	Nodes int
}

// Minimax searches every continuation of b with player to move. It plays
// moves on b and takes them back, so b is unchanged on return.
func Minimax(b *domain.Board, player domain.Cell) MoveResult {
	var nodes int
	return search(b, player, &nodes)
}

// BestMove runs Minimax on a copy of b.
func BestMove(b domain.Board, player domain.Cell) MoveResult {
	return Minimax(&b, player)
}

// Analyze runs Minimax on a copy of b and counts visited positions.
func Analyze(b domain.Board, player domain.Cell) Analysis {
	var a Analysis
	a.Move = search(&b, player, &a.Nodes)
	return a
}

func search(b *domain.Board, player domain.Cell, nodes *int) MoveResult {
	*nodes++

	// terminal checks run before any child is generated
	switch {
	case domain.CheckWin(b, domain.X):
		return MoveResult{Index: NoMove, Score: LossScore}
	case domain.CheckWin(b, domain.O):
		return MoveResult{Index: NoMove, Score: WinScore}
	case b.Full():
		return MoveResult{Index: NoMove, Score: DrawScore}
	}

	best := MoveResult{Index: NoMove}
	for i := range b {
		if b[i] != domain.Empty {
			continue
		}
		b[i] = player
		score := search(b, player.Opponent(), nodes).Score
		b[i] = domain.Empty

		// strict comparison keeps the lowest index among equal scores
		if best.Index == NoMove || better(player, score, best.Score) {
			best = MoveResult{Index: i, Score: score}
		}
	}
	return best
}

func better(player domain.Cell, score, than int) bool {
	if player == domain.O {
		return score > than
	}
	return score < than
}
