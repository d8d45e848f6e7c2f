package session

import (
	"os"

	"github.com/matheus3301/tides/internal/config"
)

// DefaultSessionName is used when nothing else names a session.
const DefaultSessionName = "main"

// SessionEnv names the session when no flag does.
const SessionEnv = "TIDES_SESSION"

// Resolve picks the session name: the flag, then $TIDES_SESSION, then the
// config file's default_session, then "main".
func Resolve(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if name := os.Getenv(SessionEnv); name != "" {
		return name
	}
	if cfg, err := config.Load(ConfigPath()); err == nil && cfg.DefaultSession != "" {
		return cfg.DefaultSession
	}
	return DefaultSessionName
}
