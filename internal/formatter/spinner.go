package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// spinner is the single owned progress indication. Start on an active
// spinner implicitly stops the previous one, and Stop blocks until the
// redraw goroutine has exited and the line is cleared, so regular output
// never interleaves with a partial frame.
type spinner struct {
	out     io.Writer
	enabled bool

	mu   sync.Mutex
	quit chan struct{}
	done chan struct{}
}

func newSpinner(out io.Writer, enabled bool) *spinner {
	return &spinner{out: out, enabled: enabled}
}

// Start begins redrawing the indication with the given label.
func (s *spinner) Start(label string) {
	if !s.enabled {
		return
	}
	s.Stop()

	s.mu.Lock()
	quit := make(chan struct{})
	done := make(chan struct{})
	s.quit = quit
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		frame := 0
		for {
			_, _ = fmt.Fprintf(s.out, "\r\x1b[2K%s %s", dimStyle.Render(spinnerFrames[frame]), label)
			frame = (frame + 1) % len(spinnerFrames)
			select {
			case <-quit:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts the indication and clears its line. Safe to call when no
// indication is active, and safe to call repeatedly.
func (s *spinner) Stop() {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	quit, done := s.quit, s.done
	s.quit, s.done = nil, nil
	s.mu.Unlock()

	if quit == nil {
		return
	}
	close(quit)
	<-done
	_, _ = fmt.Fprint(s.out, "\r\x1b[2K")
}
