package main

import (
	"context"
	"errors"
	"time"

	"github.com/matheus3301/tides/internal/bootstrap"
	"github.com/matheus3301/tides/internal/config"
	"github.com/matheus3301/tides/internal/organization"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var (
	sessionFlag string
	timeoutFlag time.Duration
)

// errSignedOut is returned by commands that need the API when the session
// holds no access token.
var errSignedOut = errors.New("not signed in: open tides to sign in")

var rootCmd = &cobra.Command{
	Use:   "tidesctl",
	Short: "Inspect and script a tides session",
	Long: `tidesctl reads the settings of a tides session and talks to the
organization's API with the session's stored credentials. It never needs
the interactive client to be running.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", "", "session name (overrides config default)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 15*time.Second, "timeout for API calls")
}

func sessionName() (string, error) {
	name := session.Resolve(sessionFlag)
	return name, session.ValidateName(name)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeoutFlag)
}

// core is a started bootstrap.Core for one command.
type core struct {
	app    *fx.App
	cfg    *config.Config
	orgs   *organization.Service
	client *remote.Client
}

func openCore(ctx context.Context) (*core, error) {
	name, err := sessionName()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		return nil, err
	}
	c := &core{cfg: cfg.WithDefaults()}
	c.app = fx.New(
		bootstrap.Core(bootstrap.Params{SessionName: name, Config: cfg}),
		fx.Populate(&c.orgs, &c.client),
		fx.NopLogger,
	)
	if err := c.app.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// signedIn fails unless the session can call the API.
func (c *core) signedIn() error {
	if !c.client.Authenticated() {
		return errSignedOut
	}
	return nil
}

func (c *core) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.app.Stop(ctx)
}
