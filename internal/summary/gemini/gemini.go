// Package gemini generates container summaries with the Gemini API. The
// reply is a plain Spanish paragraph, no JSON; there is nothing
// structured to repair here.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Gopher0727/Ideario/utils/ratelimit"
)

const (
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 30 * time.Second
	defaultPerMin  = 5

	limiterKey = "summarize"
)

// systemPrompt matches the register the product always used for
// summaries: short, motivating, plain text.
const systemPrompt = `Eres un asistente conciso y motivador. Resume las ideas de un grupo en un párrafo claro de 2 a 4 frases. Responde solo con el texto del párrafo, sin JSON ni formato adicional.`

// Config holds the adapter settings.
type Config struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	CallsPerMin int
}

// Summarizer implements summary.Summarizer on the Gemini API.
type Summarizer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	limiter ratelimit.Limiter
	perMin  int
	logger  *zap.Logger
}

// New creates the adapter. The limiter may be nil to run unguarded.
func New(ctx context.Context, cfg Config, limiter ratelimit.Limiter, logger *zap.Logger) (*Summarizer, error) {
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
	return &Summarizer{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: limiter,
		perMin:  cfg.CallsPerMin,
		logger:  logger,
	}, nil
}

// BuildPrompt lists the container and its ideas for the model.
func BuildPrompt(container string, ideas []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "GRUPO: %s\nIDEAS:\n", container)
	for _, idea := range ideas {
		fmt.Fprintf(&b, "- %s\n", idea)
	}
	b.WriteString("\nPárrafo:")
	return b.String()
}

// Summarize sends the container's ideas to the model and returns the
// paragraph.
func (s *Summarizer) Summarize(ctx context.Context, container string, ideas []string) (string, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, limiterKey, s.perMin, time.Minute)
		if err != nil {
			return "", fmt.Errorf("gemini: rate limit check: %w", err)
		}
		if !allowed {
			return "", fmt.Errorf("gemini: summary quota exhausted")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Models.GenerateContent(ctx, s.model,
		genai.Text(BuildPrompt(container, ideas)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(float32(0.3)),
			MaxOutputTokens:   256,
		})
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: empty summary reply")
	}
	s.logger.Debug("summary reply", zap.Int("chars", len(text)))
	return text, nil
}
