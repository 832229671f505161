// Package formatter reformats the Claude CLI's streaming JSON output into
// human-readable terminal text. It is a line-oriented filter: each input
// line is one JSON event (optionally SSE-framed) or opaque text, and each
// event renders as zero or more colorized output lines while small
// counters accumulate toward per-iteration and session summaries.
package formatter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// Config holds formatter options.
type Config struct {
	Output io.Writer
	// Passthrough copies input to output without any event interpretation.
	Passthrough bool
	// Debug tees every raw input line to stderr.
	Debug bool
	// Interactive enables the animated progress indication.
	Interactive bool
	// Markdown renders assistant text through glamour.
	Markdown bool
	// Color mode: "auto", "always", or "never".
	Color string
}

// Formatter drives the parse/render pipeline over one input stream.
type Formatter struct {
	cfg      Config
	renderer *Renderer
}

// New creates a Formatter. Each Formatter owns its own run state, so
// independent instances never share counters.
func New(cfg Config) *Formatter {
	return &Formatter{
		cfg: cfg,
		renderer: NewRenderer(RendererConfig{
			Output:      cfg.Output,
			Interactive: cfg.Interactive,
			Markdown:    cfg.Markdown,
			Color:       cfg.Color,
		}),
	}
}

// State returns a copy of the current run state.
func (f *Formatter) State() RunState {
	return f.renderer.State()
}

// Run consumes input until end of stream, rendering each line. A closed
// downstream pipe terminates quietly; malformed input never fails.
func (f *Formatter) Run(input io.Reader) error {
	if f.cfg.Passthrough {
		_, err := io.Copy(f.cfg.Output, input)
		return suppressPipeError(err)
	}

	scanner := bufio.NewScanner(input)
	const maxScannerBuffer = 1024 * 1024
	scanner.Buffer(make([]byte, 0, 64*1024), maxScannerBuffer)

	for scanner.Scan() {
		line := scanner.Text()
		if f.cfg.Debug {
			fmt.Fprintf(os.Stderr, "%s\n", line)
		}
		ev, ok := ParseLine(line)
		if !ok {
			continue
		}
		f.renderer.Render(ev)
	}

	f.renderer.Close()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}
	return nil
}

// Interrupt stops any active progress indication so an external signal
// leaves no partial escape sequences on the terminal.
func (f *Formatter) Interrupt() {
	f.renderer.spin.Stop()
}

func suppressPipeError(err error) error {
	if err == nil || errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}
