package generate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/shpitdev/outreach-mailer/internal/contact"
	"github.com/shpitdev/outreach-mailer/internal/redact"
	"github.com/shpitdev/outreach-mailer/internal/retry"
)

const (
	DefaultMaxOutputTokens int32   = 1000
	DefaultTemperature     float32 = 0.7
)

// Request is one synchronous text-generation call.
type Request struct {
	Model           string
	System          string
	Prompt          string
	MaxOutputTokens int32
	Temperature     float32
}

// Completer performs a single generation call against an external model endpoint.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

type Config struct {
	Model  string
	Sender contact.Sender

	// Template overrides DefaultTemplate when non-empty.
	Template string

	// MaxOutputTokens <= 0 selects DefaultMaxOutputTokens.
	MaxOutputTokens int32
	// Temperature nil selects DefaultTemperature; an explicit zero is sent as zero.
	Temperature *float32

	// RateLimitRPS caps completer calls per second, retries included. <= 0 disables it.
	RateLimitRPS float64

	Policy retry.Policy
	// Sleep waits between attempts. Nil uses retry.TimerSleep.
	Sleep retry.Sleep

	Logger *slog.Logger
}

// Client personalizes the email template for one contact at a time.
type Client struct {
	completer   Completer
	cfg         Config
	temperature float32
	limiter     *rate.Limiter
	logger      *slog.Logger
}

func New(completer Completer, cfg Config) (*Client, error) {
	if completer == nil {
		return nil, errors.New("generate: completer is required")
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		return nil, errors.New("generate: model is required")
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}
	if cfg.Sleep == nil {
		cfg.Sleep = retry.TimerSleep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		completer:   completer,
		cfg:         cfg,
		temperature: temperature,
		limiter:     limiter,
		logger:      logger.With("component", "generate", "model", cfg.Model),
	}, nil
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Generate returns the personalized email for rec.
//
// It returns "" without calling the endpoint when rec has no contact name. Failures are
// retried per the configured policy; once exhausted the result is a Marker string rather
// than an error so a batch can keep going.
func (c *Client) Generate(ctx context.Context, rec contact.Record) string {
	if !rec.HasName() {
		return ""
	}
	logger := c.logger.With("contact", rec.Name, "company", rec.Company)

	prompt, err := BuildPrompt(c.cfg.Template, c.cfg.Sender, rec)
	if err != nil {
		logger.ErrorContext(ctx, "build prompt failed", "error", err)
		return Marker(err)
	}
	req := Request{
		Model:           c.cfg.Model,
		System:          SystemInstruction,
		Prompt:          prompt,
		MaxOutputTokens: c.cfg.MaxOutputTokens,
		Temperature:     c.temperature,
	}

	maxAttempts := c.cfg.Policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = retry.DefaultMaxAttempts
	}
	var started time.Time
	hooks := retry.Hooks{
		OnAttempt: func(s retry.State, err error, tr retry.Transition) {
			elapsed := time.Since(started).Round(time.Millisecond)
			switch tr.Outcome {
			case retry.Done:
				logger.DebugContext(ctx, "generation succeeded", "attempt", s.Attempt, "duration", elapsed)
			case retry.Retry:
				logger.WarnContext(ctx, "generation failed, retrying",
					"attempt", s.Attempt,
					"max_attempts", maxAttempts,
					"duration", elapsed,
					"retry_in", tr.Wait,
					"error", redact.Secrets(err.Error()))
			case retry.Failed:
				logger.ErrorContext(ctx, "generation failed, giving up",
					"attempt", s.Attempt,
					"max_attempts", maxAttempts,
					"duration", elapsed,
					"error", redact.Secrets(err.Error()))
			}
		},
	}

	text, _, err := retry.Do(ctx, c.cfg.Policy, c.cfg.Sleep, hooks, func(ctx context.Context, attempt int) (string, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		started = time.Now()
		logger.DebugContext(ctx, "generation request", "attempt", attempt, "prompt_length", len(prompt))
		return c.completer.Complete(ctx, req)
	})
	if err != nil {
		return Marker(err)
	}
	return strings.TrimSpace(text)
}
