package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/muesli/termenv"

	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/jaminalder/tictactoe-minimax/internal/logging"
	"github.com/jaminalder/tictactoe-minimax/internal/term"
)

func main() {
	modeFlag := flag.String("mode", "one", "game mode: one (vs computer) or two")
	logLevel := flag.String("log-level", "error", "log level for stderr")
	flag.Parse()

	mode, err := domain.ParseMode(*modeFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := termenv.NewOutput(os.Stdout)
	logger := logging.New(os.Stderr, *logLevel)
	g := term.NewGame(os.Stdin, out, mode, out.Profile, logger)
	if err := g.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
