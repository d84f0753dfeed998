// Package config resolves run settings from literal defaults, an optional YAML file and
// a key-value Lookup (normally the environment, after .env loading), in that order of
// increasing precedence. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shpitdev/outreach-mailer/internal/contact"
	"github.com/shpitdev/outreach-mailer/internal/generate"
	"github.com/shpitdev/outreach-mailer/internal/pipeline"
	"github.com/shpitdev/outreach-mailer/internal/retry"
)

// Environment keys.
const (
	EnvSenderName     = "YOUR_NAME"
	EnvSenderPosition = "YOUR_POSITION"
	EnvSenderCompany  = "YOUR_COMPANY"
	EnvSenderEmail    = "YOUR_EMAIL"
	EnvSenderPhone    = "YOUR_PHONE"

	EnvAPIKey  = "GEMINI_API_KEY"
	EnvModel   = "GEMINI_MODEL"
	EnvBaseURL = "GEMINI_BASE_URL"

	EnvTemperature     = "TEMPERATURE"
	EnvMaxOutputTokens = "MAX_OUTPUT_TOKENS"
	EnvMaxAttempts     = "MAX_ATTEMPTS"
	EnvRetryBaseDelay  = "RETRY_BASE_DELAY"
	EnvCallDelay       = "CALL_DELAY"
	EnvRateLimitRPS    = "RATE_LIMIT_RPS"
)

const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned by RequireAPIKey when no credential is configured.
var ErrMissingAPIKey = errors.New(EnvAPIKey + " is required")

// DefaultSender holds the literal fallbacks used when no sender identity is configured.
func DefaultSender() contact.Sender {
	return contact.Sender{
		Name:     "Your Full Name",
		Position: "Your Position/Title",
		Company:  "Your Company/Startup Name",
		Email:    "your.email@example.com",
		Phone:    "Your Phone Number",
	}
}

// Config is everything needed to wire a run, minus per-invocation flags.
type Config struct {
	Sender contact.Sender

	APIKey  string
	Model   string
	BaseURL string

	// TemplatePath points at a plain-text email template replacing the built-in one.
	TemplatePath string

	MaxOutputTokens int32
	Temperature     float32
	Retry           retry.Policy
	CallDelay       time.Duration
	// RateLimitRPS caps API requests per second, retries included. 0 disables it.
	RateLimitRPS float64
}

func Defaults() Config {
	return Config{
		Sender:          DefaultSender(),
		Model:           DefaultModel,
		MaxOutputTokens: generate.DefaultMaxOutputTokens,
		Temperature:     generate.DefaultTemperature,
		Retry:           retry.DefaultPolicy(),
		CallDelay:       pipeline.DefaultCallDelay,
	}
}

// File is the YAML configuration file layout. Durations are strings such as "5s".
type File struct {
	Sender     contact.Sender `yaml:"sender"`
	Generation struct {
		Model           string        `yaml:"model"`
		BaseURL         string        `yaml:"base_url"`
		TemplatePath    string        `yaml:"template_path"`
		MaxOutputTokens int32         `yaml:"max_output_tokens"`
		Temperature     *float32      `yaml:"temperature"`
		MaxAttempts     int           `yaml:"max_attempts"`
		RetryBaseDelay  time.Duration `yaml:"retry_base_delay"`
		CallDelay       time.Duration `yaml:"call_delay"`
		RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	} `yaml:"generation"`
}

// Load resolves a Config. path may be empty to skip the YAML file.
func Load(path string, l Lookup) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		f, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg.applyFile(f)
	}
	if l == nil {
		return cfg, nil
	}
	if err := cfg.applyLookup(l); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return f, nil
}

func (c *Config) applyFile(f File) {
	setString(&c.Sender.Name, f.Sender.Name)
	setString(&c.Sender.Position, f.Sender.Position)
	setString(&c.Sender.Company, f.Sender.Company)
	setString(&c.Sender.Email, f.Sender.Email)
	setString(&c.Sender.Phone, f.Sender.Phone)

	g := f.Generation
	setString(&c.Model, g.Model)
	setString(&c.BaseURL, g.BaseURL)
	setString(&c.TemplatePath, g.TemplatePath)
	if g.MaxOutputTokens > 0 {
		c.MaxOutputTokens = g.MaxOutputTokens
	}
	if g.Temperature != nil {
		c.Temperature = *g.Temperature
	}
	if g.MaxAttempts > 0 {
		c.Retry.MaxAttempts = g.MaxAttempts
	}
	if g.RetryBaseDelay > 0 {
		c.Retry.BaseDelay = g.RetryBaseDelay
	}
	if g.CallDelay > 0 {
		c.CallDelay = g.CallDelay
	}
	if g.RateLimitRPS > 0 {
		c.RateLimitRPS = g.RateLimitRPS
	}
}

func (c *Config) applyLookup(l Lookup) error {
	c.Sender = contact.Sender{
		Name:     String(l, EnvSenderName, c.Sender.Name),
		Position: String(l, EnvSenderPosition, c.Sender.Position),
		Company:  String(l, EnvSenderCompany, c.Sender.Company),
		Email:    String(l, EnvSenderEmail, c.Sender.Email),
		Phone:    String(l, EnvSenderPhone, c.Sender.Phone),
	}
	c.APIKey = String(l, EnvAPIKey, c.APIKey)
	c.Model = String(l, EnvModel, c.Model)
	c.BaseURL = String(l, EnvBaseURL, c.BaseURL)

	var err error
	if c.Temperature, err = Float32(l, EnvTemperature, c.Temperature); err != nil {
		return err
	}
	maxTokens, err := Int(l, EnvMaxOutputTokens, int(c.MaxOutputTokens))
	if err != nil {
		return err
	}
	c.MaxOutputTokens = int32(maxTokens)
	if c.Retry.MaxAttempts, err = Int(l, EnvMaxAttempts, c.Retry.MaxAttempts); err != nil {
		return err
	}
	if c.Retry.BaseDelay, err = Duration(l, EnvRetryBaseDelay, c.Retry.BaseDelay); err != nil {
		return err
	}
	if c.CallDelay, err = Duration(l, EnvCallDelay, c.CallDelay); err != nil {
		return err
	}
	if c.RateLimitRPS, err = Float64(l, EnvRateLimitRPS, c.RateLimitRPS); err != nil {
		return err
	}
	return nil
}

// RequireAPIKey reports ErrMissingAPIKey when live generation is impossible.
func (c Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// LoadTemplate returns the custom email template, or "" when none is configured.
func (c Config) LoadTemplate() (string, error) {
	if strings.TrimSpace(c.TemplatePath) == "" {
		return "", nil
	}
	b, err := os.ReadFile(c.TemplatePath)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", fmt.Errorf("template %s is empty", c.TemplatePath)
	}
	return string(b), nil
}

// LoadDotEnv exports variables from a .env file into the process environment without
// overriding ones already set. An empty path means ".env". A missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
