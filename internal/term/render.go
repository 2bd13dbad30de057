// Package term plays the game on a terminal.
package term

import (
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

const (
	colorX = "#ff5f87"
	colorO = "#5fafff"
)

// Render draws the board as a 3x3 grid. Empty cells show the number (1-9)
// a player types to take them.
func Render(b domain.Board, p termenv.Profile) string {
	var sb strings.Builder
	for r := 0; r < 3; r++ {
		if r > 0 {
			sb.WriteString("---+---+---\n")
		}
		for c := 0; c < 3; c++ {
			if c > 0 {
				sb.WriteString("|")
			}
			i := r*3 + c
			sb.WriteString(" ")
			sb.WriteString(cell(b[i], i, p))
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func cell(c domain.Cell, i int, p termenv.Profile) string {
	switch c {
	case domain.X:
		return p.String("X").Foreground(p.Color(colorX)).Bold().String()
	case domain.O:
		return p.String("O").Foreground(p.Color(colorO)).Bold().String()
	default:
		return p.String(strconv.Itoa(i + 1)).Faint().String()
	}
}
