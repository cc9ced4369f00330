package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"docassist-backend/internal/llm"
	"docassist-backend/internal/shared/telemetry"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("gemini returned no text")

type generateFunc func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)

// Client talks to Gemini through a throttle and a circuit breaker.
type Client struct {
	genai    *genai.Client
	model    string
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
	generate generateFunc
}

// New creates a Gemini client. rpm <= 0 disables throttling.
func New(ctx context.Context, apiKey, model string, rpm int) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, llm.ErrNotConfigured
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}

	c := newClient(model, rpm, nil)
	c.genai = gc
	c.generate = c.sendChat
	return c, nil
}

func newClient(model string, rpm int, generate generateFunc) *Client {
	c := &Client{
		model:    model,
		generate: generate,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "gemini",
			MaxRequests: 1,
			Interval:    30 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				telemetry.Warn("llm.breaker_state", map[string]any{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				})
			},
		}),
	}
	if rpm > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
	}
	return c
}

// Generate sends prompt as the first message of a fresh chat.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("docassist-backend/llm").Start(ctx, "gemini.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("gemini.model", c.model),
		attribute.Int("gemini.prompt_chars", len(prompt)),
	)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
			return "", fmt.Errorf("gemini rate limit wait: %w", err)
		}
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.generate(ctx, prompt)
		if err != nil {
			return nil, err
		}
		return responseText(resp)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return "", fmt.Errorf("gemini circuit breaker open: %w", err)
		}
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", err
	}
	return out.(string), nil
}

func (c *Client) sendChat(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	cs := c.genai.GenerativeModel(c.model).StartChat()
	return cs.SendMessage(ctx, genai.Text(prompt))
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.genai != nil {
		return c.genai.Close()
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

var _ llm.Client = (*Client)(nil)
