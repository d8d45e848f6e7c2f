// Package bootstrap wires a session's components with fx.
package bootstrap

import (
	"context"
	"errors"

	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/config"
	"github.com/matheus3301/tides/internal/control"
	"github.com/matheus3301/tides/internal/feed"
	"github.com/matheus3301/tides/internal/lock"
	"github.com/matheus3301/tides/internal/logging"
	"github.com/matheus3301/tides/internal/menu"
	"github.com/matheus3301/tides/internal/notify"
	"github.com/matheus3301/tides/internal/organization"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/render"
	"github.com/matheus3301/tides/internal/session"
	"github.com/matheus3301/tides/internal/status"
	"github.com/matheus3301/tides/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved session configuration passed to the fx modules.
type Params struct {
	SessionName string
	Config      *config.Config
	SocketPath  string // optional override for testing; empty = use default
	Console     bool   // tee logs to stderr
}

func (p Params) config() *config.Config {
	if p.Config == nil {
		return config.Default()
	}
	return p.Config.WithDefaults()
}

// Core provides what every entry point needs: logging, the event bus, the
// status machine, the settings store, the selected organization and an API
// client pointed at it.
func Core(p Params) fx.Option {
	return fx.Module("core",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideStore,
			provideOrganization,
			provideClient,
		),
		fx.Invoke(registerStore),
	)
}

// Module returns the fx module of the interactive client: Core plus the
// session lock, the control socket and the screen controllers.
func Module(p Params) fx.Option {
	return fx.Options(
		Core(p),
		fx.Module("client",
			fx.Provide(
				provideLock,
				provideControlServer,
				provideFeed,
				provideNotifications,
				provideFlowCache,
				provideOpener,
			),
			fx.Invoke(registerLifecycle),
		),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	return logging.New(session.LogPath(p.SessionName), p.SessionName, logging.Options{
		Console: p.Console,
		Level:   p.config().LogLevel,
	})
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.DBPath(p.SessionName)
	db, result, err := store.OpenMigrated(dbPath)
	if err != nil {
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideOrganization(p Params, db *store.DB, b *bus.Bus, logger *zap.Logger) *organization.Service {
	return organization.NewService(db, p.config().Domain, organization.RemoteLookup(remote.WithLogger(logger)), b, logger)
}

// provideClient points the client at the stored organization and signs it in
// with the stored session. Either may be missing on a first run.
func provideClient(orgs *organization.Service, logger *zap.Logger) (*remote.Client, error) {
	var baseURL string
	org, err := orgs.Current()
	switch {
	case err == nil:
		baseURL = org.URL
	case !errors.Is(err, organization.ErrNotConfigured):
		return nil, err
	}

	c := remote.New(baseURL, remote.WithLogger(logger))
	sess, err := orgs.Session()
	switch {
	case err == nil:
		c.SetToken(sess.AccessToken)
	case !errors.Is(err, organization.ErrSignedOut):
		return nil, err
	}
	return c, nil
}

func provideControlServer(p Params, _ *lock.Lock, m *status.Machine, b *bus.Bus, logger *zap.Logger) (*control.Server, error) {
	socketPath := p.SocketPath
	if socketPath == "" {
		socketPath = session.SocketPath(p.SessionName)
	}
	return control.NewServer(socketPath, m, b, logger)
}

func provideFeed(p Params, c *remote.Client, b *bus.Bus, logger *zap.Logger) *feed.Feed {
	return feed.New(c, p.config().PageSize, b, logger)
}

func provideNotifications(c *remote.Client, b *bus.Bus, logger *zap.Logger) *notify.Panel {
	return notify.New(c, notify.DefaultLimit, b, logger)
}

func provideFlowCache() *menu.FlowCache {
	return menu.NewFlowCache(menu.FlowTTL)
}

func provideOpener(logger *zap.Logger) render.Opener {
	return render.NewSystemOpener(logger)
}

// InitialState derives where the status machine starts from what is stored.
func InitialState(orgs *organization.Service) status.State {
	if _, err := orgs.Current(); err != nil {
		return status.Unconfigured
	}
	if _, err := orgs.Session(); err != nil {
		return status.AuthRequired
	}
	return status.Connecting
}

func registerStore(lc fx.Lifecycle, db *store.DB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			_ = logger.Sync()
			return nil
		},
	})
}

func registerLifecycle(lc fx.Lifecycle, srv *control.Server, lk *lock.Lock, orgs *organization.Service, machine *status.Machine, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("control server error", zap.Error(err))
				}
			}()

			state := InitialState(orgs)
			if err := machine.Transition(state); err != nil {
				return err
			}
			logger.Info("session started", zap.String("state", string(state)))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("session stopped")
			return nil
		},
	})
}
