package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/satriahrh/refchat/domain"
	"github.com/satriahrh/refchat/utils/log"
)

const (
	msgWelcome     = "Selamat datang di Chatbot Ahmad Yazid Arifuddin!"
	msgHowToExit   = "Ketik 'keluar' untuk mengakhiri percakapan"
	msgGoodbye     = "Terima kasih telah menggunakan chatbot ini!"
	msgInterrupted = "Program dihentikan oleh pengguna."
	promptUser     = "\nAnda: "
	promptBot      = "\nBot: "
)

var exitKeywords = map[string]bool{"keluar": true, "exit": true, "quit": true}

// Completer runs one bounded chat turn.
type Completer interface {
	Complete(ctx context.Context, message string, timeout time.Duration) domain.CompletionResult
}

// REPL is the interactive terminal loop.
type REPL struct {
	in      io.Reader
	out     io.Writer
	svc     Completer
	timeout time.Duration

	onInterrupt func()

	replyStyle lipgloss.Style
	errStyle   lipgloss.Style
}

func NewREPL(in io.Reader, out io.Writer, svc Completer, timeout time.Duration) *REPL {
	renderer := lipgloss.NewRenderer(out)
	return &REPL{
		in:         in,
		out:        out,
		svc:        svc,
		timeout:    timeout,
		replyStyle: renderer.NewStyle().Foreground(lipgloss.Color("14")),
		errStyle:   renderer.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// OnInterrupt registers fn to run when the user interrupts, before the
// farewell is printed. The chat call in flight is not cancelled.
func (r *REPL) OnInterrupt(fn func()) *REPL {
	r.onInterrupt = fn
	return r
}

// Run reads lines until an exit keyword, end of input or ctx is cancelled
// (the user pressed Ctrl+C).
func (r *REPL) Run(ctx context.Context) error {
	lines, readErr := r.readLines()

	rule := strings.Repeat("=", 50)
	r.println(rule)
	r.println(msgWelcome)
	r.println(msgHowToExit)
	r.println(rule)

	for {
		r.print(promptUser)

		var line string
		select {
		case <-ctx.Done():
			r.interrupted()
			return nil
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				r.println("\n" + msgGoodbye)
				return nil
			}
			line = l
		}

		message := strings.TrimSpace(line)
		if exitKeywords[strings.ToLower(message)] {
			r.println("\n" + msgGoodbye)
			return nil
		}
		if message == "" {
			continue
		}

		if interrupted := r.turn(ctx, message); interrupted {
			r.interrupted()
			return nil
		}
	}
}

func (r *REPL) interrupted() {
	if r.onInterrupt != nil {
		r.onInterrupt()
	}
	r.println("\n\n" + msgInterrupted)
}

type turnPanic struct {
	value any
}

func (p turnPanic) Error() string { return fmt.Sprint(p.value) }

// turn sends one message and prints the outcome. It reports whether the user
// interrupted while waiting.
func (r *REPL) turn(ctx context.Context, message string) bool {
	r.print(promptBot)

	results := make(chan domain.CompletionResult, 1)
	go func() {
		defer func() {
			if v := recover(); v != nil {
				results <- domain.CompletionResult{Err: turnPanic{value: v}}
			}
		}()
		// The provider call is never cancelled once sent; only its own timeout bounds it.
		results <- r.svc.Complete(context.Background(), message, r.timeout)
	}()

	select {
	case <-ctx.Done():
		return true
	case res := <-results:
		var p turnPanic
		if errors.As(res.Err, &p) {
			log.With(zap.Any("panic", p.value)).Error("chat turn panicked")
			r.println("\nTerjadi kesalahan: " + p.Error())
			return false
		}

		text, elapsed := Describe(res)
		line := fmt.Sprintf("%s (Waktu: %.2f detik)", text, elapsed.Seconds())
		if res.Err != nil {
			r.println(r.errStyle.Render(line))
		} else {
			r.println(r.replyStyle.Render(line))
		}
		return false
	}
}

// Describe turns a turn's outcome into the text and elapsed time shown to the
// user. Transport failures report zero elapsed time.
func Describe(res domain.CompletionResult) (string, time.Duration) {
	err := res.Err
	var statusErr *domain.StatusError
	switch {
	case err == nil:
		return res.Reply, res.Elapsed
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Error: API mengembalikan status %d", statusErr.Code), res.Elapsed
	case errors.Is(err, domain.ErrMalformedResponse):
		return "Error: Format respons tidak valid", res.Elapsed
	case errors.Is(err, domain.ErrTimeout):
		return "Error: Waktu koneksi ke API habis", 0
	case errors.Is(err, domain.ErrConnection):
		cause := strings.TrimPrefix(err.Error(), domain.ErrConnection.Error()+": ")
		return "Error: Tidak dapat terhubung ke API - " + cause, 0
	default:
		return "Error: Terjadi kesalahan - " + err.Error(), 0
	}
}

func (r *REPL) readLines() (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	// Lines have no length limit; a long paste is still one message.
	go func() {
		defer close(lines)
		reader := bufio.NewReader(r.in)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				lines <- strings.TrimRight(line, "\r\n")
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				errc <- err
				return
			}
		}
	}()
	return lines, errc
}

func (r *REPL) print(s string) {
	_, _ = fmt.Fprint(r.out, s)
}

func (r *REPL) println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}
