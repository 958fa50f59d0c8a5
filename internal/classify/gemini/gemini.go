// Package gemini classifies notes with the Gemini API. Replies are JSON
// (requested via response MIME type, repaired when the model drifts) and
// decode into one-or-list raw intents. Calls run under a per-call timeout
// and a token-bucket rate limiter; any transport or parse failure is
// returned to the engine, which degrades the note to a single ignore.
package gemini

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Gopher0727/Ideario/internal/classify"
	"github.com/Gopher0727/Ideario/internal/intent"
	"github.com/Gopher0727/Ideario/utils/ratelimit"
)

const (
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 30 * time.Second
	defaultPerMin  = 15

	// limiterKey buckets all classification calls together; the quota is
	// per process, not per note.
	limiterKey = "classify"
)

// Config holds the adapter settings.
type Config struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	CallsPerMin int
}

// Classifier implements classify.Classifier on the Gemini API.
type Classifier struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	limiter ratelimit.Limiter
	perMin  int
	logger  *zap.Logger
}

// New creates the adapter. The limiter may be nil to run unguarded, for
// example in tests against a fake transport.
func New(ctx context.Context, cfg Config, limiter ratelimit.Limiter, logger *zap.Logger) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CallsPerMin <= 0 {
		cfg.CallsPerMin = defaultPerMin
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: limiter,
		perMin:  cfg.CallsPerMin,
		logger:  logger,
	}, nil
}

// Classify sends the note and hierarchy digest to the model and decodes
// the reply.
func (c *Classifier) Classify(ctx context.Context, note, digest string) ([]intent.RawIntent, error) {
	if c.limiter != nil {
		allowed, err := c.limiter.Allow(ctx, limiterKey, c.perMin, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("gemini: rate limit check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("gemini: classification quota exhausted")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(BuildPrompt(note, digest)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(float32(0.1)),
			MaxOutputTokens:   512,
			ResponseMIMEType:  "application/json",
		})
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}

	text := resp.Text()
	c.logger.Debug("classification reply", zap.Int("chars", len(text)))

	data, err := classify.ExtractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	raws, err := classify.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return raws, nil
}
