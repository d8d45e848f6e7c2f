package session

import (
	"testing"

	"github.com/matheus3301/tides/internal/config"
)

func TestResolvePrecedence(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())
	t.Setenv(SessionEnv, "")

	if got := Resolve(""); got != DefaultSessionName {
		t.Errorf("Resolve() without config = %q, want %q", got, DefaultSessionName)
	}

	if err := config.Save(ConfigPath(), &config.Config{DefaultSession: "ngo"}); err != nil {
		t.Fatal(err)
	}
	if got := Resolve(""); got != "ngo" {
		t.Errorf("Resolve() with config = %q, want ngo", got)
	}
	t.Setenv(SessionEnv, "fromenv")
	if got := Resolve(""); got != "fromenv" {
		t.Errorf("Resolve() with %s = %q, want fromenv", SessionEnv, got)
	}
	if got := Resolve("flagged"); got != "flagged" {
		t.Errorf("Resolve(flagged) = %q, want flagged", got)
	}
}
