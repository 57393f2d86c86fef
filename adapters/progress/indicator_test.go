package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestIndicator_AnimatesUntilStopped(t *testing.T) {
	out := &syncBuffer{}
	ind := NewIndicator(out).WithSpinner(spinner.Spinner{
		Frames: []string{"", ".", ".."},
		FPS:    5 * time.Millisecond,
	})

	stop := ind.Start()
	assert.Eventually(t, func() bool {
		return strings.Count(out.String(), "Thinking") >= 3
	}, time.Second, 5*time.Millisecond)
	stop()

	written := out.String()
	assert.True(t, strings.HasSuffix(written, "\r"+strings.Repeat(" ", 20)+"\r"), "line is wiped on stop")

	// Nothing is drawn after stop returns.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, written, out.String())
}

func TestIndicator_StopIsIdempotent(t *testing.T) {
	out := &syncBuffer{}
	stop := NewIndicator(out).Start()

	stop()
	first := out.String()
	stop()

	assert.Equal(t, first, out.String())
}

func TestIndicator_StopRightAway(t *testing.T) {
	out := &syncBuffer{}
	stop := NewIndicator(out).Start()
	stop()

	assert.Contains(t, out.String(), "\r"+strings.Repeat(" ", 20)+"\r")
}

func TestIndicator_CloseStopsRunningAndLaterAnimations(t *testing.T) {
	out := &syncBuffer{}
	ind := NewIndicator(out).WithSpinner(spinner.Spinner{
		Frames: []string{"", "."},
		FPS:    5 * time.Millisecond,
	})

	stopFirst := ind.Start()
	stopSecond := ind.Start()
	assert.Eventually(t, func() bool {
		return strings.Count(out.String(), "Thinking") >= 2
	}, time.Second, 5*time.Millisecond)

	ind.Close()
	written := out.String()
	assert.True(t, strings.HasSuffix(written, "\r"+strings.Repeat(" ", 20)+"\r"), "line is wiped on close")

	stopLater := ind.Start()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, written, out.String(), "nothing is drawn after close")

	// Owners still call their stop funcs once their call resolves.
	stopFirst()
	stopSecond()
	stopLater()
	assert.Equal(t, written, out.String())
}

func TestThinkingSpinner(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, Thinking.FPS)
	assert.Equal(t, []string{"", ".", "..", "...", "....", "...", "..", "."}, Thinking.Frames)
}
