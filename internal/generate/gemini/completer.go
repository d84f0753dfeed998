package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shpitdev/outreach-mailer/internal/generate"
)

type Config struct {
	APIKey string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string
}

// Completer sends generate.Request values to the Gemini API.
type Completer struct {
	client *genai.Client
}

func New(ctx context.Context, cfg Config) (*Completer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Completer{client: client}, nil
}

var errNoCandidates = errors.New("gemini: response has no candidates")

func (c *Completer) Complete(ctx context.Context, req generate.Request) (string, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return "", errors.New("gemini: model is required")
	}

	cfg := &genai.GenerateContentConfig{
		CandidateCount:  1,
		MaxOutputTokens: req.MaxOutputTokens,
		Temperature:     genai.Ptr(req.Temperature),
	}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", describeErr(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", errNoCandidates
	}
	return resp.Text(), nil
}

// describeErr keeps the API status in the message; failure markers carry only text.
func describeErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini api error: code=%d status=%s: %s", apiErr.Code, apiErr.Status, apiErr.Message)
	}
	return fmt.Errorf("gemini: %w", err)
}
