package browser

import (
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/jaki95/lyrics-relay/internal/domain"
)

// DefaultCommands is the platform dispatch table for the default browser.
var DefaultCommands = map[string]string{
	"linux":  "xdg-open",
	"darwin": "open",
}

// Opener hands URLs to the platform's default browser.
type Opener struct {
	goos     string
	commands map[string]string
	start    func(name string, args ...string) error
}

// Option customises an Opener.
type Option func(*Opener)

// WithGOOS overrides the platform used to pick the command.
func WithGOOS(goos string) Option {
	return func(o *Opener) { o.goos = goos }
}

// WithStarter replaces the process launcher.
func WithStarter(start func(name string, args ...string) error) Option {
	return func(o *Opener) { o.start = start }
}

// NewOpener creates an Opener. A nil table means DefaultCommands.
func NewOpener(commands map[string]string, opts ...Option) *Opener {
	if commands == nil {
		commands = DefaultCommands
	}
	o := &Opener{
		goos:     runtime.GOOS,
		commands: commands,
		start:    startDetached,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open launches the browser command with url as its only argument. It never
// waits for the browser and never reports launch failures to the caller.
func (o *Opener) Open(url string) {
	command, ok := o.commands[o.goos]
	if !ok || command == "" {
		slog.Error("Cannot open link", "error", domain.ErrUnsupportedPlatform, "platform", o.goos, "url", url)
		return
	}

	slog.Info("Executing", "command", command, "url", url)
	if err := o.start(command, url); err != nil {
		slog.Debug("Browser launch failed", "command", command, "error", err)
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child without surfacing its exit status.
	go func() { _ = cmd.Wait() }()
	return nil
}
