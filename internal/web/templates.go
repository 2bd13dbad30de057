package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/jaminalder/tictactoe-minimax/internal/app"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic Tac Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.row{display:flex}.cell{width:4em;height:4em;font-size:2em}
.result{position:fixed;inset:0;display:flex;flex-direction:column;align-items:center;justify-content:center;background:rgba(0,0,0,.6);color:#fff}
</style>
</head><body>{{template "content" .}}</body></html>`))
	// the board is defined inside the page set so game can include it
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic Tac Toe</h1>
<form action="/game" method="post"><input type="hidden" name="mode" value="two"><button>Two players</button></form>
<form action="/game" method="post"><input type="hidden" name="mode" value="one"><button>Vs computer</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div id="board-container" sse-swap="board" hx-target="#board" hx-swap="outerHTML">{{template "board" .}}</div>
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

// renderTemplate executes the named template of t, or t itself when name is empty.
func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board">
  <p id="status">{{.Message}}</p>
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  {{range .Rows}}
  <div class="row">
    {{range .}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="cell" value="{{.Index}}">
        <button class="cell" type="submit" data-index="{{.Index}}"{{if not .Playable}} disabled{{end}}>{{.Symbol}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  <div class="controls">
    <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post"><button>Reset</button></form>
    <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post"><input type="hidden" name="mode" value="two"><button>Two players</button></form>
    <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post"><input type="hidden" name="mode" value="one"><button>Vs computer</button></form>
  </div>
  {{if .Over}}
  <div id="result" class="result">
    <p id="result-message">{{.Message}}</p>
    <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post"><button>New game</button></form>
  </div>
  {{end}}
</div>
`

type cellView struct {
	Index    int
	Symbol   string
	Playable bool
}

type boardView struct {
	ID      string
	Mode    string
	Message string
	Error   string
	Over    bool
	Rows    [3][3]cellView
}

func newBoardView(gs app.GameState, errMsg string) boardView {
	sess := gs.Session
	v := boardView{
		ID:      gs.ID,
		Mode:    sess.Mode.String(),
		Message: sess.Outcome.Message(),
		Error:   errMsg,
		Over:    !sess.Active,
	}
	for i, c := range sess.Board {
		v.Rows[i/3][i%3] = cellView{
			Index:    i,
			Symbol:   c.String(),
			Playable: sess.Active && c == domain.Empty,
		}
	}
	return v
}

// renderBoard renders the board fragment; it is also the SSE payload.
func (t *templates) renderBoard(gs app.GameState, errMsg string) []byte {
	return renderTemplate(t.board, "", newBoardView(gs, errMsg))
}

// Helper to read a mode from a form, falling back to def.
func formMode(r *http.Request, def domain.Mode) (domain.Mode, error) {
	v := r.Form.Get("mode")
	if v == "" {
		return def, nil
	}
	return domain.ParseMode(v)
}
