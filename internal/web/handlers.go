package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jaminalder/tictactoe-minimax/internal/app"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

type handlers struct {
	svc         *app.Service
	tpl         *templates
	log         *slog.Logger
	defaultMode domain.Mode
	heartbeat   time.Duration
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.tpl.index, "base", nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	mode, err := formMode(r, h.defaultMode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	gs, err := h.svc.CreateGame(mode)
	if err != nil {
		h.log.Error("create game", "error", err)
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	// Render page with embedded board container
	_, _ = w.Write(renderTemplate(h.tpl.game, "base", newBoardView(*gs, "")))
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	cell, convErr := strconv.Atoi(r.Form.Get("cell"))
	if convErr != nil {
		cell = -1
	}
	gs, err := h.svc.Play(id, cell)
	if gs == nil {
		http.NotFound(w, r)
		return
	}
	var errMsg string
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOccupied):
			errMsg = "Cell is occupied"
		case errors.Is(err, domain.ErrOutOfBounds):
			errMsg = "Out of bounds"
		case errors.Is(err, domain.ErrGameOver):
			errMsg = "Game is over"
		default:
			h.log.Error("play", "game", id, "cell", cell, "error", err)
			errMsg = "Invalid move"
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.tpl.renderBoard(*gs, errMsg))
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cur, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	_ = r.ParseForm()
	mode, err := formMode(r, cur.Session.Mode)
	if err != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(h.tpl.renderBoard(*cur, "Unknown mode"))
		return
	}
	gs, err := h.svc.Reset(id, mode)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.tpl.renderBoard(*gs, ""))
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// plain requests only get the headers
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub := h.svc.Subscribe(ctx, id)
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, "board", b)
			flusher.Flush()
		}
	}
}

// writeEvent writes one SSE event, prefixing every payload line with "data:".
func writeEvent(w io.Writer, name string, payload []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", name)
	for _, line := range bytes.Split(payload, []byte("\n")) {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}
