package render

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/matheus3301/tides/internal/logging"
	"go.uber.org/zap"
)

// Opener opens a URL outside the terminal.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// SystemOpener hands URLs to the desktop's default handler. It does not wait
// for the handler to exit.
type SystemOpener struct {
	logger *zap.Logger
}

// NewSystemOpener creates an opener that logs through logger.
func NewSystemOpener(logger *zap.Logger) *SystemOpener {
	return &SystemOpener{logger: logging.OrNop(logger).Named("opener")}
}

func (o *SystemOpener) Open(url string) error {
	name, args := openCommand(runtime.GOOS, url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	o.logger.Debug("opened link", zap.String("url", url), zap.String("handler", name))
	go func() {
		if err := cmd.Wait(); err != nil {
			o.logger.Warn("link handler failed", zap.String("url", url), zap.Error(err))
		}
	}()
	return nil
}

func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
