package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/refchat/domain"
	"github.com/satriahrh/refchat/utils/log"
)

// GeminiClient talks to the generateContent REST endpoint directly.
type GeminiClient struct {
	endpoint   string
	model      string
	httpClient *http.Client
	genConfig  domain.GenerationConfig
}

// NewGeminiClient builds a client for baseURL (e.g.
// "https://generativelanguage.googleapis.com/v1beta"). The API key travels in
// the query string. A nil httpClient means http.DefaultClient, which has no
// timeout; callers bound the call through ctx.
func NewGeminiClient(baseURL, model, apiKey string, httpClient *http.Client) *GeminiClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiClient{
		endpoint:   fmt.Sprintf("%s/models/%s:generateContent?key=%s", baseURL, url.PathEscape(model), url.QueryEscape(apiKey)),
		model:      model,
		httpClient: httpClient,
		genConfig:  domain.DefaultGenerationConfig,
	}
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig domain.GenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text *string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	logger := log.WithCtx(ctx).With(zap.String("model", g.model))

	body, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: &prompt}}}},
		GenerationConfig: g.genConfig,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		err = classify(err)
		logger.Warn("gemini request failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warn("gemini returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)))
		return "", &domain.StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if isTimeout(err) {
			return "", classify(err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	text, err := firstText(out)
	if err != nil {
		return "", err
	}

	logger.Debug("gemini request done", zap.Duration("elapsed", time.Since(start)))
	return text, nil
}

func firstText(out geminiResponse) (string, error) {
	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", domain.ErrMalformedResponse)
	}
	content := out.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0].Text == nil {
		return "", fmt.Errorf("%w: first candidate has no text part", domain.ErrMalformedResponse)
	}
	return *content.Parts[0].Text, nil
}

// classify sorts a transport error into the timeout or connection bucket.
// Errors that came from neither layer are returned unchanged. The request URL
// is dropped from *url.Error since it carries the API key.
func classify(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() || isTimeout(urlErr.Err) {
			return fmt.Errorf("%w: %s %v", domain.ErrTimeout, urlErr.Op, urlErr.Err)
		}
		return fmt.Errorf("%w: %s %v", domain.ErrConnection, urlErr.Op, urlErr.Err)
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
