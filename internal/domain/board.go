package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other mark. Empty has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// ParseCell accepts "X" or "O" in any case.
func ParseCell(s string) (Cell, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return X, nil
	case "O":
		return O, nil
	}
	return Empty, fmt.Errorf("%w: %q", ErrBadPlayer, s)
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// WinningLines lists the rows, columns and diagonals of the board.
var WinningLines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

var (
	ErrBadBoard  = errors.New("malformed board")
	ErrBadPlayer = errors.New("player must be X or O")
)

// CheckWin reports whether side holds all three cells of any winning line.
func CheckWin(b *Board, side Cell) bool {
	if side == Empty {
		return false
	}
	for _, ln := range WinningLines {
		if b[ln[0]] == side && b[ln[1]] == side && b[ln[2]] == side {
			return true
		}
	}
	return false
}

// Winner returns the mark that completed a line, or Empty.
func Winner(b *Board) Cell {
	switch {
	case CheckWin(b, X):
		return X
	case CheckWin(b, O):
		return O
	}
	return Empty
}

// Full reports whether no Empty cell remains.
func (b *Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Available returns the empty cell indexes in ascending order.
func (b *Board) Available() []int {
	out := make([]int, 0, len(b))
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// String encodes the board as 9 characters, '.' for empty cells.
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c == Empty {
			sb.WriteByte('.')
			continue
		}
		sb.WriteString(c.String())
	}
	return sb.String()
}

// ParseBoard decodes the 9 character form produced by Board.String.
// '.', '-', '_' and ' ' all mean an empty cell.
func ParseBoard(s string) (Board, error) {
	var b Board
	if len(s) != len(b) {
		return b, fmt.Errorf("%w: want %d cells, got %d", ErrBadBoard, len(b), len(s))
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'X', 'x':
			b[i] = X
		case 'O', 'o':
			b[i] = O
		case '.', '-', '_', ' ':
			b[i] = Empty
		default:
			return b, fmt.Errorf("%w: unexpected %q at %d", ErrBadBoard, s[i], i)
		}
	}
	return b, nil
}
