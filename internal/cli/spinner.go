package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerFrames is the braille-dot cycle drawn while waiting.
var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// spinnerInterval paces the animation.
const spinnerInterval = 80 * time.Millisecond

// Spinner animates a one-line wait indicator on stderr while a slow
// engine operation runs, typically a render. It ends on Stop or when
// the caller's context does, and always erases its line so whatever
// status is printed next starts at a clean column.
type Spinner struct {
	message string

	// parent distinguishes "the command was interrupted" from an
	// ordinary Stop; Cancelled reads it.
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	halt chan struct{}
	idle chan struct{}
	once sync.Once
	out  sync.Mutex
}

// newSpinner returns a spinner that only stops when told to.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext returns a spinner that also stops, erasing its
// line, when ctx ends.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	derived, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		parent:  ctx,
		ctx:     derived,
		cancel:  cancel,
		halt:    make(chan struct{}),
		idle:    make(chan struct{}),
	}
}

// Start launches the animation goroutine. Call Stop (or one of its
// variants) afterwards, even on error paths.
func (s *Spinner) Start() {
	go func() {
		defer close(s.idle)
		tick := time.NewTicker(spinnerInterval)
		defer tick.Stop()

		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				s.erase()
				return
			case <-s.halt:
				return
			case <-tick.C:
				s.draw(spinnerFrames[frame%len(spinnerFrames)])
			}
		}
	}()
}

// Stop ends the animation and erases the indicator line. Calling it
// more than once is harmless.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.halt) })
	s.cancel()
	<-s.idle
	s.erase()
}

// StopWithSuccess stops the spinner and prints a success line in its
// place.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line in its
// place.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the caller's context ended, as opposed to
// the spinner being stopped normally. Export uses it to tell an
// interrupted render from a failed one.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

func (s *Spinner) draw(frame rune) {
	s.out.Lock()
	defer s.out.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(string(frame)), StyleDim.Render(s.message))
}

func (s *Spinner) erase() {
	s.out.Lock()
	defer s.out.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+2))
}
