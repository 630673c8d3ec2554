package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	"github.com/kailas-cloud/mediasearch/internal/metrics"
)

// Expander defaults.
const (
	DefaultMaxQueries = 3
	DefaultCacheSize  = 1024
	DefaultTimeout    = 5 * time.Second
)

const expansionPrompt = `You rewrite search queries for a media library of images and videos.
Given a user query, reply with alternative phrasings that describe the same visual content:
synonyms, closely related subjects, and more concrete descriptions.
Reply with one query per line, no numbering, no commentary. Do not repeat the original query.`

// Expander rewrites queries via an OpenAI-compatible chat completions API.
type Expander struct {
	client     *openai.Client
	model      string
	maxQueries int
	timeout    time.Duration
	cache      *lru.Cache[string, []string]
	logger     *zap.Logger
}

// Config holds the expansion provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxQueries int
	CacheSize  int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewExpander creates an OpenAI-compatible query expander.
func NewExpander(cfg *Config) (*Expander, error) {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxQueries := cfg.MaxQueries
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}

	cache, err := lru.New[string, []string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create expansion cache: %w", err)
	}

	return &Expander{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		maxQueries: maxQueries,
		timeout:    timeout,
		cache:      cache,
		logger:     l,
	}, nil
}

// Expand returns up to maxQueries alternative phrasings of q.
// The original query is not included.
func (e *Expander) Expand(ctx context.Context, q string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(q))
	if cached, ok := e.cache.Get(key); ok {
		metrics.ExpansionRequestsTotal.WithLabelValues("cache_hit").Inc()
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: expansionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: q},
		},
		MaxTokens:   150,
		Temperature: 0.3,
	})
	if err != nil {
		metrics.ExpansionRequestsTotal.WithLabelValues("error").Inc()
		err = parseAPIError(err)
		e.logger.Warn("Expansion request failed", zap.String("model", e.model), zap.Error(err))
		return nil, err
	}
	if len(resp.Choices) == 0 {
		metrics.ExpansionRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("empty expansion response: %w", domain.ErrTransient)
	}

	queries := parseQueries(resp.Choices[0].Message.Content, q, e.maxQueries)
	metrics.ExpansionRequestsTotal.WithLabelValues("ok").Inc()
	e.cache.Add(key, queries)
	return queries, nil
}

// Ping verifies API availability via ListModels (free endpoint).
func (e *Expander) Ping(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])?\s*`)

// parseQueries splits a completion into queries, dropping list markers,
// blanks, duplicates and echoes of the original.
func parseQueries(content, original string, limit int) []string {
	seen := map[string]struct{}{strings.ToLower(strings.TrimSpace(original)): {}}
	out := make([]string, 0, limit)
	for _, line := range strings.Split(content, "\n") {
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(line, `"'`)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key := strings.ToLower(line)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}

// parseAPIError extracts a human-readable error from the API response.
// Rate limits and server errors are transient; auth failures are permission errors.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("expansion API error %d: %s: %w",
			reqErr.HTTPStatusCode, detail, classifyStatus(reqErr.HTTPStatusCode))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("expansion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, classifyStatus(apiErr.HTTPStatusCode))
	}

	return fmt.Errorf("expansion request failed: %w: %w", domain.ErrTransient, err)
}

func classifyStatus(code int) error {
	if code == 401 || code == 403 {
		return domain.ErrPermissionDenied
	}
	return domain.ErrTransient
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}

// Disabled is an expander that never expands.
type Disabled struct{}

// Expand returns no alternatives.
func (Disabled) Expand(context.Context, string) ([]string, error) { return nil, nil }
