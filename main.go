package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/refchat/adapters/cli"
	httpadapter "github.com/satriahrh/refchat/adapters/http"
	"github.com/satriahrh/refchat/adapters/llm"
	"github.com/satriahrh/refchat/adapters/progress"
	"github.com/satriahrh/refchat/adapters/reference"
	"github.com/satriahrh/refchat/adapters/websocket"
	"github.com/satriahrh/refchat/config"
	"github.com/satriahrh/refchat/domain"
	"github.com/satriahrh/refchat/usecase"
	"github.com/satriahrh/refchat/utils/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log.Configure(cfg.Debug)
	defer log.Sync()

	root := &cobra.Command{
		Use:           "refchat",
		Short:         "Chat with a Gemini-backed assistant grounded on a reference file",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), cfg)
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve POST /chat, GET /ws and GET /health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), cfg)
		},
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.With(zap.Error(err)).Error("fatal error")
		fmt.Printf("\nTerjadi kesalahan fatal: %v\n", err)
		log.Sync()
		os.Exit(1)
	}
}

func newChatService(ctx context.Context, cfg *config.Config, indicator domain.Progress) (*usecase.ChatService, error) {
	if cfg.GeminiAPIKey == "" {
		log.With().Warn("GEMINI_API_KEY is not set; provider calls will be rejected")
	}

	gen, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ref := reference.Load(cfg.ReferenceFile)
	return usecase.NewChatService(gen, ref.Content, indicator), nil
}

func runChat(ctx context.Context, cfg *config.Config) error {
	indicator := progress.NewIndicator(os.Stdout)
	svc, err := newChatService(ctx, cfg, indicator)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewREPL(os.Stdin, os.Stdout, svc, cfg.ChatTimeout).
		OnInterrupt(indicator.Close).
		Run(ctx)
}

// runServer serves until SIGINT or SIGTERM. Requests drive the terminal
// progress indicator only when SERVE_PROGRESS is set.
func runServer(ctx context.Context, cfg *config.Config) error {
	var indicator domain.Progress = domain.NopProgress{}
	if cfg.ServeProgress {
		indicator = progress.NewIndicator(os.Stdout)
	}

	svc, err := newChatService(ctx, cfg, indicator)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws := websocket.NewServer(svc)
	e := httpadapter.NewServer(httpadapter.NewChatHandler(svc, cfg.HTTPChatTimeout), ws.Handler)

	serverErr := make(chan error, 1)
	go func() {
		log.With(zap.String("addr", cfg.ListenAddr), zap.String("backend", cfg.Backend)).Info("starting server")
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.With().Info("shutting down")
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	ws.Close()
	if err := e.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.With().Info("server stopped")
	return nil
}
