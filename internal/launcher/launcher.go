// Package launcher opens article links with an external application. Only
// http and https links are handed over, and nothing is fetched by kbsearch
// itself.
package launcher

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pders01/kbsearch/internal/validation"
)

type Launcher struct {
	opener    []string
	validator *validation.URLValidator
	start     func(*exec.Cmd) error
	logger    *slog.Logger
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithValidator replaces the link validator.
func WithValidator(v *validation.URLValidator) Option {
	return func(l *Launcher) {
		l.validator = v
	}
}

// WithStarter replaces how the opener process is started.
func WithStarter(start func(*exec.Cmd) error) Option {
	return func(l *Launcher) {
		l.start = start
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// New creates a launcher. opener is a command line such as "xdg-open" or
// "firefox --new-tab"; empty picks the platform opener.
func New(opener string, opts ...Option) *Launcher {
	fields := strings.Fields(opener)
	if len(fields) == 0 {
		fields = platformOpener()
	}
	l := &Launcher{
		opener:    fields,
		validator: validation.NewLinkValidator(),
		start:     startDetached,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func platformOpener() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32"}
	default:
		return []string{"xdg-open"}
	}
}

// Command builds the opener invocation for rawURL without running it.
func (l *Launcher) Command(rawURL string) (*exec.Cmd, error) {
	link, err := l.validator.ValidateLink(rawURL)
	if err != nil {
		return nil, fmt.Errorf("refusing to open %q: %w", rawURL, err)
	}

	args := append([]string{}, l.opener[1:]...)
	if l.opener[0] == "rundll32" && len(args) == 0 {
		// rundll32 avoids cmd /c start and its shell parsing.
		args = append(args, "url.dll,FileProtocolHandler")
	}
	args = append(args, link)
	return exec.Command(l.opener[0], args...), nil
}

// Open hands rawURL to the opener.
func (l *Launcher) Open(rawURL string) error {
	cmd, err := l.Command(rawURL)
	if err != nil {
		return err
	}
	l.logger.Debug("opening link", "url", rawURL, "opener", l.opener[0])
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.opener[0], err)
	}
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
