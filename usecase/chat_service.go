package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/refchat/domain"
	"github.com/satriahrh/refchat/utils/log"
)

// ChatService answers single, stateless messages against a fixed reference text.
type ChatService struct {
	llm       domain.Llm
	reference string
	progress  domain.Progress
}

func NewChatService(gen domain.Llm, reference string, progress domain.Progress) *ChatService {
	if progress == nil {
		progress = domain.NopProgress{}
	}
	return &ChatService{llm: gen, reference: reference, progress: progress}
}

// Prompt returns the full prompt that Reply would send for message.
func (s *ChatService) Prompt(message string) string {
	return BuildPrompt(s.reference, message)
}

// Reply sends one message to the provider. The progress indicator runs for the
// duration of the call and is stopped on every return path.
func (s *ChatService) Reply(ctx context.Context, message string) (string, error) {
	prompt := s.Prompt(message)

	stop := s.progress.Start()
	defer stop()

	reply, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		log.WithCtx(ctx).Debug("chat reply failed", zap.Error(err))
		return "", err
	}
	return reply, nil
}

// Complete is Reply bounded by timeout, reporting the wall-clock time spent.
// A zero timeout leaves ctx untouched.
func (s *ChatService) Complete(ctx context.Context, message string, timeout time.Duration) domain.CompletionResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.Reply(ctx, message)
	return domain.CompletionResult{Reply: reply, Err: err, Elapsed: time.Since(start)}
}
