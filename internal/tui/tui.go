// Package tui provides terminal UI utilities using charmbracelet libraries.
// It detects terminal capabilities and falls back to plain output when piping
// or redirecting.
//
// Environment variables:
//   - NO_COLOR or EXTFORGE_NO_COLOR: disable colors (respects https://no-color.org/)
//   - TERM=dumb: disable colors
//   - EXTFORGE_QUIET: disable all UI output
package tui

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	colorGreen = lipgloss.ANSIColor(2)
	colorBlue  = lipgloss.ANSIColor(4)
)

// stderrRenderer keeps colors working on stderr even when stdout is piped.
var (
	stderrRenderer = lipgloss.NewRenderer(os.Stderr)
	successStyle   = lipgloss.NewStyle().Renderer(stderrRenderer).Foreground(colorGreen).Bold(true)
	spinnerStyle   = lipgloss.NewStyle().Renderer(stderrRenderer).Foreground(colorBlue)
)

// UI provides terminal UI functionality with automatic TTY detection
type UI struct {
	stdoutIsTTY      bool
	enabled          bool
	colorEnabled     bool
	currentSpinner   *spinnerState
	markdownRenderer *glamour.TermRenderer
}

type spinnerState struct {
	started time.Time
	ticker  clockwork.Ticker
	message string
	done    chan struct{}
}

var (
	defaultUI    *UI
	spinnerClock clockwork.Clock = clockwork.NewRealClock()
)

func init() {
	defaultUI = New()
}

// New creates a new UI instance with automatic TTY detection
func New() *UI {
	stdoutIsTTY := IsTerminal(os.Stdout)
	stderrIsTTY := IsTerminal(os.Stderr)

	// Progress goes to stderr, so stderr decides whether UI output appears.
	enabled := stderrIsTTY && !isDisabled()
	colorEnabled := stderrIsTTY && !isColorDisabled()

	ui := &UI{
		stdoutIsTTY:  stdoutIsTTY,
		enabled:      enabled,
		colorEnabled: colorEnabled,
	}

	if colorEnabled && stdoutIsTTY {
		width := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			ui.markdownRenderer = renderer
		}
	}

	return ui
}

// IsTerminal checks if a file descriptor is connected to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func isDisabled() bool {
	if val := os.Getenv("EXTFORGE_QUIET"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
		return true
	}
	return false
}

func isColorDisabled() bool {
	// Standard NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	if os.Getenv("EXTFORGE_NO_COLOR") != "" {
		return true
	}
	if os.Getenv("TERM") == "dumb" {
		return true
	}
	return false
}

// Enabled returns whether UI output should be shown
func (u *UI) Enabled() bool {
	return u.enabled
}

// printSpinnerFrame prints the current animation frame of a spinner message.
func (u *UI) printSpinnerFrame(state *spinnerState) {
	elapsed := time.Since(state.started)
	frame := int(elapsed/spinner.Line.FPS) % len(spinner.Line.Frames)
	spinnerChar := spinner.Line.Frames[frame]

	if !u.colorEnabled {
		fmt.Fprintf(os.Stderr, "\r%s %s", "...", state.message)
		return
	}
	fmt.Fprintf(os.Stderr, "\r%s %s", spinnerStyle.Render(spinnerChar), state.message)
}

// stopSpinner stops the current spinner animation and clears its line.
func (u *UI) stopSpinner() {
	if u.currentSpinner == nil {
		return
	}
	if u.currentSpinner.ticker != nil {
		u.currentSpinner.ticker.Stop()
	}
	if u.currentSpinner.done != nil {
		close(u.currentSpinner.done)
	}
	// Give the animation goroutine time to observe done before clearing.
	time.Sleep(10 * time.Millisecond)
	fmt.Fprint(os.Stderr, "\r", ansi.EraseLine(2))
	u.currentSpinner = nil
}

// Progress shows a progress message with an animated spinner.
// Example: "Initializing repository..."
func (u *UI) Progress(message string) {
	if !u.enabled {
		return
	}

	if u.currentSpinner != nil {
		if u.currentSpinner.message == message {
			u.printSpinnerFrame(u.currentSpinner)
			return
		}
		u.stopSpinner()
	}

	state := &spinnerState{
		started: time.Now(),
		message: message,
		done:    make(chan struct{}),
		ticker:  spinnerClock.NewTicker(100 * time.Millisecond),
	}
	u.currentSpinner = state

	u.printSpinnerFrame(state)

	go func() {
		for {
			select {
			case <-state.ticker.Chan():
				u.printSpinnerFrame(state)
			case <-state.done:
				return
			}
		}
	}()
}

// ProgressSuccess stops the spinner and shows a checkmarked success message.
func (u *UI) ProgressSuccess(message string) {
	if !u.enabled {
		return
	}

	if u.currentSpinner == nil {
		zap.L().Error("ProgressSuccess called without a spinner")
		return
	}

	if message == "" {
		message = u.currentSpinner.message
	}
	u.stopSpinner()

	if u.colorEnabled {
		fmt.Fprintf(os.Stderr, "%s %s\n", successStyle.Render("✓"), message)
	} else {
		fmt.Fprintf(os.Stderr, "✓ %s\n", message)
	}
}

// Info prints an informational message to stderr.
// Writes to stderr even when not a TTY (e.g., when piping output).
// Respects the EXTFORGE_QUIET environment variable.
func (u *UI) Info(format string, args ...any) {
	if isDisabled() {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// RenderMarkdown renders markdown content using glamour.
// Returns plain text if not in a TTY or if rendering fails.
func (u *UI) RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("width must be greater than 0")
	}

	if !u.stdoutIsTTY || !u.colorEnabled {
		return content, nil
	}

	renderer := u.markdownRenderer
	if renderer == nil {
		var err error
		renderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content, err
		}
	}

	return renderer.Render(content)
}

// Default returns the default UI instance
func Default() *UI {
	return defaultUI
}

// Reset resets the default UI instance (useful for testing)
func Reset() {
	defaultUI = New()
}

// Convenience functions that use the default UI instance

// Info prints an informational message using the default UI
func Info(format string, args ...any) {
	defaultUI.Info(format, args...)
}

// Progress prints a progress message using the default UI
func Progress(message string) {
	defaultUI.Progress(message)
}

// ProgressSuccess stops the spinner and shows success using the default UI
func ProgressSuccess(message string) {
	defaultUI.ProgressSuccess(message)
}

// RenderMarkdown renders markdown content using the default UI
func RenderMarkdown(content string, width int) (string, error) {
	return defaultUI.RenderMarkdown(content, width)
}
