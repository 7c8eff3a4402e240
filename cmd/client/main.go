package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/fading-tictactoe/internal/bot"
	"github.com/rocketscienceinc/fading-tictactoe/internal/client"
	"github.com/rocketscienceinc/fading-tictactoe/internal/solo"
)

func main() {
	cfg, err := client.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		exitf("parse flags: %v", err)
	}

	if cfg.Solo {
		computer := bot.NewBot(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
		if err = client.RunSolo(os.Stdin, os.Stdout, solo.New(cfg.PlayerID, computer)); err != nil {
			exitf("solo game: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = client.RunOnline(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		stop()
		exitf("online game: %v", err)
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
