package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// Thinking cycles a growing and shrinking row of dots every half second.
var Thinking = spinner.Spinner{
	Frames: []string{"", ".", "..", "...", "....", "...", "..", "."},
	FPS:    time.Second / 2,
}

const (
	label      = "Thinking"
	clearWidth = 20
)

// Indicator draws a one-line animation on out until it is stopped.
type Indicator struct {
	out     io.Writer
	spinner spinner.Spinner
	style   lipgloss.Style
	term    *terminal
}

// terminal is shared by copies made with WithSpinner.
type terminal struct {
	// writeMu serialises writes when several calls animate on the same terminal.
	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
	next   int
	active map[int]func()
}

func NewIndicator(out io.Writer) *Indicator {
	return &Indicator{
		out:     out,
		spinner: Thinking,
		style:   lipgloss.NewRenderer(out).NewStyle().Foreground(lipgloss.Color("11")),
		term:    &terminal{active: make(map[int]func())},
	}
}

// WithSpinner returns a copy of the indicator that cycles s instead.
func (i *Indicator) WithSpinner(s spinner.Spinner) *Indicator {
	cp := *i
	cp.spinner = s
	return &cp
}

// Start launches the animation goroutine. The returned stop func cancels it,
// waits for the goroutine to exit and wipes the line. Calling stop more than
// once is harmless. After Close, Start draws nothing.
func (i *Indicator) Start() func() {
	i.term.mu.Lock()
	defer i.term.mu.Unlock()
	if i.term.closed {
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	id := i.term.next
	i.term.next++

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-done
			i.write("\r" + strings.Repeat(" ", clearWidth) + "\r")

			i.term.mu.Lock()
			delete(i.term.active, id)
			i.term.mu.Unlock()
		})
	}
	i.term.active[id] = stop

	go i.run(ctx, done)
	return stop
}

// Close stops every running animation and turns later Starts into no-ops.
// Calls still in flight keep running; only their drawing ends.
func (i *Indicator) Close() {
	i.term.mu.Lock()
	i.term.closed = true
	stops := make([]func(), 0, len(i.term.active))
	for _, stop := range i.term.active {
		stops = append(stops, stop)
	}
	i.term.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

func (i *Indicator) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(i.spinner.FPS)
	defer ticker.Stop()

	frame := 0
	for {
		i.write("\r" + i.style.Render(label+i.spinner.Frames[frame]))
		frame = (frame + 1) % len(i.spinner.Frames)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (i *Indicator) write(s string) {
	i.term.writeMu.Lock()
	defer i.term.writeMu.Unlock()
	_, _ = fmt.Fprint(i.out, s)
}
