//go:build ebiten

package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"cogcanvas/internal/app"
	"cogcanvas/internal/core"
	"cogcanvas/internal/doc"
	"cogcanvas/internal/host"
	"cogcanvas/internal/logs"
	"cogcanvas/internal/sims"
	"cogcanvas/internal/vault"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	log, err := logs.New(os.Stderr, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Debug {
		logs.Level.Set(slog.LevelDebug)
	}

	v, err := vault.Load(os.DirFS(cfg.Vault))
	if err != nil {
		log.Error("loading vault", "path", cfg.Vault, "err", err)
		os.Exit(1)
	}

	sched := &core.Scheduler{}
	h := host.New(sched, log)
	document := doc.NewDocument(v, h, sims.NewRegistry(), doc.Layout{})
	game := app.New(cfg, log, document, sched)

	ebiten.SetWindowTitle(v.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)

	err = ebiten.RunGame(game)
	document.Close()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error("reader exited", "err", err)
		os.Exit(1)
	}
}
