package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/refchat/domain"
	"github.com/satriahrh/refchat/utils/log"
)

// GenAIClient serves the same contract as GeminiClient through the official
// SDK. The SDK sends the key as a header instead of in the URL.
type GenAIClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGenAIClient(ctx context.Context, baseURL, model, apiKey string, httpClient *http.Client) (*GenAIClient, error) {
	root, version := splitAPIVersion(baseURL)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    root,
			APIVersion: version,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	gc := domain.DefaultGenerationConfig
	return &GenAIClient{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(gc.Temperature),
			TopK:            genai.Ptr(float32(gc.TopK)),
			TopP:            genai.Ptr(gc.TopP),
			MaxOutputTokens: int32(gc.MaxOutputTokens),
		},
	}, nil
}

func (g *GenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	logger := log.WithCtx(ctx).With(zap.String("model", g.model))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			logger.Warn("genai returned non-success status", zap.Int("status", apiErr.Code))
			return "", &domain.StatusError{Code: apiErr.Code, Body: apiErr.Message}
		}
		err = classify(err)
		logger.Warn("genai request failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", domain.ErrMalformedResponse)
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || !isTextPart(content.Parts[0]) {
		return "", fmt.Errorf("%w: first candidate has no text part", domain.ErrMalformedResponse)
	}

	logger.Debug("genai request done", zap.Duration("elapsed", time.Since(start)))
	return content.Parts[0].Text, nil
}

// isTextPart reports whether p is a text part. The SDK drops the difference
// between an absent and an empty text field, so an empty text counts as text
// unless the part carries some other payload.
func isTextPart(p *genai.Part) bool {
	if p == nil {
		return false
	}
	if p.Text != "" {
		return true
	}
	return p.InlineData == nil && p.FileData == nil &&
		p.FunctionCall == nil && p.FunctionResponse == nil &&
		p.ExecutableCode == nil && p.CodeExecutionResult == nil
}

// splitAPIVersion turns "https://host/v1beta" into ("https://host/", "v1beta").
func splitAPIVersion(baseURL string) (string, string) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return baseURL, ""
	}
	trimmed := strings.TrimRight(u.Path, "/")
	version := path.Base(trimmed)
	u.Path = strings.TrimSuffix(trimmed, version)
	return u.String(), version
}
