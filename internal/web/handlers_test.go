package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaminalder/tictactoe-minimax/internal/app"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	s := app.NewService(nil)
	h := NewServer(s, nil)
	return s, h
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "htmx.org")
	assert.Contains(t, body, `action="/game"`)
	assert.Contains(t, body, `value="one"`)
	assert.Contains(t, body, `value="two"`)
}

func TestCreateRedirectsToGame(t *testing.T) {
	s, h := newTestServer(t)

	rr := postForm(h, "/game", url.Values{"mode": {"one"}})

	require.Equal(t, http.StatusSeeOther, rr.Code)
	loc := rr.Result().Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/game/"), "location %q", loc)
	gs, ok := s.Get(strings.TrimPrefix(loc, "/game/"))
	require.True(t, ok)
	assert.Equal(t, domain.OnePlayer, gs.Session.Mode)
}

func TestCreateRejectsUnknownMode(t *testing.T) {
	_, h := newTestServer(t)

	rr := postForm(h, "/game", url.Values{"mode": {"three"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGamePage(t *testing.T) {
	s, h := newTestServer(t)
	gs, _ := s.CreateGame(domain.TwoPlayer)

	req := httptest.NewRequest(http.MethodGet, "/game/"+url.PathEscape(gs.ID), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `hx-ext="sse"`)
	assert.Contains(t, body, "/game/"+gs.ID+"/events")
	assert.Contains(t, body, `id="board"`)
	assert.Contains(t, body, "It&#39;s X&#39;s turn")
	assert.Equal(t, 9, strings.Count(body, `class="cell"`))
}

func TestGamePageNotFound(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/game/missing", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
	s, h := newTestServer(t)
	gs, _ := s.CreateGame(domain.TwoPlayer)

	rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {"0"}})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `id="board"`)
	assert.Contains(t, rr.Body.String(), "It&#39;s O&#39;s turn")
	latest, _ := s.Get(gs.ID)
	assert.Equal(t, 1, latest.Session.Moves)
	assert.Equal(t, domain.X, latest.Session.Board[0])
}

func TestPlayOccupiedShowsNotice(t *testing.T) {
	s, h := newTestServer(t)
	gs, _ := s.CreateGame(domain.TwoPlayer)
	postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {"0"}})

	rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {"0"}})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Cell is occupied")
	latest, _ := s.Get(gs.ID)
	assert.Equal(t, 1, latest.Session.Moves)
}

func TestPlayBadCellShowsNotice(t *testing.T) {
	s, h := newTestServer(t)
	gs, _ := s.CreateGame(domain.TwoPlayer)

	rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {"abc"}})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Out of bounds")
}

func TestPlayUnknownGame(t *testing.T) {
	_, h := newTestServer(t)

	rr := postForm(h, "/game/missing/play", url.Values{"cell": {"0"}})

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlayOnePlayerShowsComputerReply(t *testing.T) {
	s, h := newTestServer(t)
	gs, _ := s.CreateGame(domain.OnePlayer)

	rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {"4"}})

	require.Equal(t, http.StatusOK, rr.Code)
	latest, _ := s.Get(gs.ID)
	assert.Equal(t, 2, latest.Session.Moves)
	assert.Equal(t, domain.O, latest.Session.Board[0])
	assert.Contains(t, rr.Body.String(), "It&#39;s X&#39;s turn")
}

func TestWinShowsResultOverlay(t *testing.T) {
	s, h := newTestServer(t)
	gs, _ := s.CreateGame(domain.TwoPlayer)
	var rr *httptest.ResponseRecorder
	for _, c := range []string{"0", "3", "1", "4", "2"} {
		rr = postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {c}})
	}

	body := rr.Body.String()
	assert.Contains(t, body, `id="result"`)
	assert.Contains(t, body, "Player X wins!")
	assert.Contains(t, body, "New game")
}

func TestResetEndpoint(t *testing.T) {
	s, h := newTestServer(t)
	gs, _ := s.CreateGame(domain.TwoPlayer)
	postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {"0"}})

	t.Run("Keeps mode when omitted", func(t *testing.T) {
		rr := postForm(h, "/game/"+gs.ID+"/reset", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		latest, _ := s.Get(gs.ID)
		assert.Equal(t, domain.NewSession(domain.TwoPlayer), latest.Session)
	})

	t.Run("Switches mode", func(t *testing.T) {
		rr := postForm(h, "/game/"+gs.ID+"/reset", url.Values{"mode": {"one"}})

		require.Equal(t, http.StatusOK, rr.Code)
		latest, _ := s.Get(gs.ID)
		assert.Equal(t, domain.OnePlayer, latest.Session.Mode)
	})

	t.Run("Unknown game", func(t *testing.T) {
		rr := postForm(h, "/game/missing/reset", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	rrCreate := postForm(h, "/game", nil)
	loc := rrCreate.Result().Header.Get("Location")
	require.NotEmpty(t, loc)

	req := httptest.NewRequest(http.MethodGet, loc+"/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Result().Header.Get("Content-Type"), "text/event-stream"))
}

func TestWriteEventPrefixesEveryLine(t *testing.T) {
	var buf bytes.Buffer

	writeEvent(&buf, "board", []byte("<div>\n<p>x</p>\n</div>"))

	assert.Equal(t, "event: board\ndata: <div>\ndata: <p>x</p>\ndata: </div>\n\n", buf.String())
}

func TestAPIGame(t *testing.T) {
	s, h := newTestServer(t)
	gs, _ := s.CreateGame(domain.OnePlayer)
	_, err := s.Play(gs.ID, 4)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/games/"+gs.ID, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got gameDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, gameDTO{
		ID:               gs.ID,
		Board:            "O...X....",
		Current:          "X",
		Active:           true,
		Mode:             "one",
		Moves:            2,
		Message:          "It's X's turn",
		LastComputerMove: 0,
	}, got)
}

func TestAPIGameNotFound(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/games/missing", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPIMinimax(t *testing.T) {
	_, h := newTestServer(t)

	cases := []struct {
		name   string
		body   string
		status int
		want   *minimaxResponse
	}{
		{name: "O wins", body: `{"board":"XX.OO.X..","player":"O"}`, status: http.StatusOK, want: &minimaxResponse{Index: 5, Score: 10}},
		{name: "X wins", body: `{"board":"XX.OO....","player":"X"}`, status: http.StatusOK, want: &minimaxResponse{Index: 2, Score: -10}},
		{name: "bad json", body: `{`, status: http.StatusBadRequest},
		{name: "bad board", body: `{"board":"XX","player":"O"}`, status: http.StatusBadRequest},
		{name: "bad player", body: `{"board":".........","player":"Z"}`, status: http.StatusBadRequest},
		{name: "finished board", body: `{"board":"XXXOO....","player":"O"}`, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/minimax", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			require.Equal(t, tc.status, rr.Code)
			if tc.want == nil {
				return
			}
			var got minimaxResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, tc.want.Index, got.Index)
			assert.Equal(t, tc.want.Score, got.Score)
			assert.Positive(t, got.Nodes)
		})
	}
}
