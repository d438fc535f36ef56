package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const barWidth = 40

var spinnerFrames = []string{"|", "/", "-", "\\"}

// isTerminal reports whether w is an *os.File-like writer attached to a
// terminal. Buffers and pipes are not.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

// ProgressBar tracks a count of completed steps against a total.
// On a terminal it redraws in place:
//
//	[=================>                      ]  45% Parsing desktop files
//
// Elsewhere it prints a single line once the total is reached. Update and
// Increment are safe to call from scanner workers.
type ProgressBar struct {
	mu       sync.Mutex
	done     int
	total    int
	label    string
	out      io.Writer
	tty      bool
	printed  bool
	finished bool
}

// NewProgress creates a bar on stderr so it never mixes with stdout.
func NewProgress(total int, label string) *ProgressBar {
	return &ProgressBar{total: total, label: label, out: os.Stderr, tty: isTerminal(os.Stderr)}
}

// SetWriter redirects the bar.
func (p *ProgressBar) SetWriter(w io.Writer) {
	p.mu.Lock()
	p.out, p.tty = w, isTerminal(w)
	p.mu.Unlock()
}

// Update records done of total steps. Its signature matches
// scanner.Scanner.Progress.
func (p *ProgressBar) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.done = clamp(done, 0, total)
	p.draw()
}

// SetTotal changes the expected number of steps without redrawing.
func (p *ProgressBar) SetTotal(total int) {
	p.mu.Lock()
	p.total = total
	p.done = clamp(p.done, 0, total)
	p.mu.Unlock()
}

// Increment advances the bar by one step.
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = clamp(p.done+1, 0, p.total)
	p.draw()
}

// Current returns the number of completed steps.
func (p *ProgressBar) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Finish fills the bar. On a terminal it also ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.done = p.total
	p.draw()
	if p.tty {
		fmt.Fprintln(p.out)
	}
	p.finished = true
}

// draw must be called with mu held.
func (p *ProgressBar) draw() {
	if p.finished {
		return
	}
	if p.tty {
		fmt.Fprintf(p.out, "\r%s", p.line())
		return
	}
	if p.done == p.total && !p.printed {
		fmt.Fprintln(p.out, p.line())
		p.printed = true
	}
}

func (p *ProgressBar) line() string {
	pct, filled := 0, 0
	if p.total > 0 {
		pct = p.done * 100 / p.total
		filled = p.done * barWidth / p.total
	}
	bar := strings.Repeat(" ", barWidth)
	if filled > 0 {
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(" ", barWidth-filled)
	}
	return fmt.Sprintf("[%s] %3d%% %s", bar, pct, p.label)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Spinner animates a message while a compositor request or cache rebuild
// is in flight. On a non-terminal it prints the message once.
type Spinner struct {
	mu      sync.Mutex
	message string
	out     io.Writer
	tty     bool
	active  bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewSpinner creates a spinner on stderr. Call Start to show it.
func NewSpinner(message string) *Spinner {
	return &Spinner{message: message, out: os.Stderr, tty: isTerminal(os.Stderr)}
}

// SetWriter redirects the spinner.
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	s.out, s.tty = w, isTerminal(w)
	s.mu.Unlock()
}

// Start shows the spinner. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true

	if !s.tty {
		fmt.Fprintf(s.out, "%s...\n", s.message)
		return
	}

	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.spin(s.stop)
}

func (s *Spinner) spin(stop <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.out, "\r%s  %s", spinnerFrames[frame%len(spinnerFrames)], s.message)
			s.mu.Unlock()
		}
	}
}

// Stop hides the spinner and waits for the animation to end. Extra calls
// are no-ops.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	s.wg.Wait()

	s.mu.Lock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+3))
	s.mu.Unlock()
}

// StopWithMessage stops the spinner and prints message on its own line.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	fmt.Fprintln(s.out, message)
	s.mu.Unlock()
}
