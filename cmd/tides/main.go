package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/tides/internal/bootstrap"
	"github.com/matheus3301/tides/internal/config"
	"github.com/matheus3301/tides/internal/lock"
	"github.com/matheus3301/tides/internal/session"
	"github.com/matheus3301/tides/internal/tui"
	"go.uber.org/fx"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	orgFlag := flag.String("org", "", "organization code; also names the session when --session is not set")
	flag.Parse()

	name := *sessionFlag
	if name == "" && *orgFlag != "" {
		name = session.NameFromShortcode(*orgFlag)
	}
	sessionName := session.Resolve(name)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(sessionName, *orgFlag, cfg); err != nil {
		var held *lock.HeldError
		if errors.As(err, &held) {
			fmt.Fprintf(os.Stderr, "session %q is already open (pid %d)\n", sessionName, held.PID)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(sessionName, org string, cfg *config.Config) error {
	var deps tui.Deps
	app := fx.New(
		bootstrap.Module(bootstrap.Params{SessionName: sessionName, Config: cfg}),
		fx.Invoke(func(d tui.Deps) { deps = d }),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	ui := tui.NewApp(deps, sessionName, cfg)
	defer ui.Stop()
	if err := ui.Preselect(startCtx, org); err != nil {
		return fmt.Errorf("organization %q: %w", org, err)
	}
	return ui.Run()
}
