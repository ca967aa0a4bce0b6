// Package gateway wraps the Gemini API behind a single blocking call per
// user turn. The client is configured once per composed system prompt with
// fixed generation parameters; every failure is surfaced immediately with
// no retry, caching, or streaming.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"BukuBot/internal/session"
)

// Failure taxonomy. Callers classify with errors.Is.
var (
	// ErrBlocked indicates the service rejected the input under a safety
	// policy.
	ErrBlocked = errors.New("request blocked by safety policy")
	// ErrStopped indicates generation was halted mid-response for safety
	// reasons.
	ErrStopped = errors.New("generation stopped by safety policy")
	// ErrTransport covers every other service-level failure (network, auth,
	// quota, empty response).
	ErrTransport = errors.New("generation service failed")
)

// Options are the fixed generation parameters.
type Options struct {
	APIKey          string
	Model           string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
}

// Client is a synchronous wrapper around the Gemini API.
type Client struct {
	client  *genai.Client
	opts    Options
	logger  *slog.Logger
	tracer  trace.Tracer
	latency metric.Float64Histogram

	mu     sync.RWMutex
	config *genai.GenerateContentConfig
}

// New creates a Gemini client. The system prompt is set separately via
// SetSystemPrompt, once per prompt composition.
func New(ctx context.Context, opts Options, logger *slog.Logger, tracer trace.Tracer, meter metric.Meter) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	latency, err := meter.Float64Histogram(
		"gateway.request.duration",
		metric.WithDescription("Gemini request duration in milliseconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}

	c := &Client{
		client:  client,
		opts:    opts,
		logger:  logger,
		tracer:  tracer,
		latency: latency,
	}
	c.SetSystemPrompt("")
	return c, nil
}

// SetSystemPrompt installs a freshly composed system instruction, replacing
// the generation config wholesale so in-flight calls keep the old one.
func (c *Client) SetSystemPrompt(prompt string) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.opts.Temperature)),
		TopP:            genai.Ptr(float32(c.opts.TopP)),
		MaxOutputTokens: int32(c.opts.MaxOutputTokens),
	}
	if prompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(prompt, genai.RoleUser)
	}
	c.mu.Lock()
	c.config = cfg
	c.mu.Unlock()
}

// Respond sends the full ordered transcript, ending in the new user turn,
// and returns the assistant reply. Prior turns are resent on every call;
// the remote service is treated as stateless. Error-role notices in the
// transcript are skipped.
func (c *Client) Respond(ctx context.Context, transcript []session.Message) (string, error) {
	ctx, span := c.tracer.Start(ctx, "gemini_generate")
	defer span.End()

	start := time.Now()

	contents := make([]*genai.Content, 0, len(transcript))
	for _, msg := range transcript {
		switch msg.Role {
		case session.RoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case session.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		}
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("%w: empty transcript", ErrTransport)
	}

	c.mu.RLock()
	cfg := c.config
	c.mu.RUnlock()

	resp, err := c.client.Models.GenerateContent(ctx, c.opts.Model, contents, cfg)
	if err != nil {
		c.logger.Error("Gemini request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}

	c.latency.Record(ctx, float64(time.Since(start).Milliseconds()))

	return classify(resp)
}

// classify maps a Gemini response to the gateway failure taxonomy and
// extracts the reply text.
func classify(resp *genai.GenerateContentResponse) (string, error) {
	if fb := resp.PromptFeedback; fb != nil &&
		fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("%w: %s", ErrBlocked, fb.BlockReason)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: empty response from Gemini", ErrTransport)
	}

	switch resp.Candidates[0].FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return "", fmt.Errorf("%w: %s", ErrStopped, resp.Candidates[0].FinishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response from Gemini", ErrTransport)
	}
	return text, nil
}

// Close closes the underlying Gemini client.
// The google.golang.org/genai Client holds no closable resources and
// exposes no Close method, so this is a no-op.
func (c *Client) Close() error {
	return nil
}
