package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaminalder/tictactoe-minimax/internal/app"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/jaminalder/tictactoe-minimax/internal/solver"
)

type gameDTO struct {
	ID               string `json:"id"`
	Board            string `json:"board"`
	Current          string `json:"current"`
	Active           bool   `json:"active"`
	Mode             string `json:"mode"`
	Moves            int    `json:"moves"`
	Winner           string `json:"winner,omitempty"`
	Message          string `json:"message"`
	LastComputerMove int    `json:"last_computer_move"`
}

func toGameDTO(gs app.GameState) gameDTO {
	sess := gs.Session
	return gameDTO{
		ID:               gs.ID,
		Board:            sess.Board.String(),
		Current:          sess.Current.String(),
		Active:           sess.Active,
		Mode:             sess.Mode.String(),
		Moves:            sess.Moves,
		Winner:           sess.Outcome.Winner.String(),
		Message:          sess.Outcome.Message(),
		LastComputerMove: gs.LastComputerMove,
	}
}

type minimaxRequest struct {
	Board  string `json:"board"`
	Player string `json:"player"`
}

type minimaxResponse struct {
	Index int `json:"index"`
	Score int `json:"score"`
	Nodes int `json:"nodes"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handlers) apiGame(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": app.ErrNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toGameDTO(*gs))
}

// apiMinimax answers with the solver's move for an arbitrary position.
func (h *handlers) apiMinimax(w http.ResponseWriter, r *http.Request) {
	var req minimaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	board, err := domain.ParseBoard(req.Board)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	player, err := domain.ParseCell(req.Player)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if domain.Winner(&board) != domain.Empty || board.Full() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": domain.ErrGameOver.Error()})
		return
	}
	a := solver.Analyze(board, player)
	writeJSON(w, http.StatusOK, minimaxResponse{Index: a.Move.Index, Score: a.Move.Score, Nodes: a.Nodes})
}
