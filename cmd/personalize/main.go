package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shpitdev/outreach-mailer/internal/app"
	"github.com/shpitdev/outreach-mailer/internal/config"
	"github.com/shpitdev/outreach-mailer/internal/generate"
	"github.com/shpitdev/outreach-mailer/internal/generate/gemini"
	"github.com/shpitdev/outreach-mailer/internal/logging"
	"github.com/shpitdev/outreach-mailer/internal/pipeline"
	"github.com/shpitdev/outreach-mailer/internal/redact"
	"github.com/shpitdev/outreach-mailer/internal/version"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	input        string
	output       string
	model        string
	limit        int
	dryRun       bool
	configPath   string
	templatePath string
	delay        time.Duration
	rateLimitRPS float64
	logLevel     string
	envFile      string
	noColor      bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var f flags
	code := exitOK

	cmd := &cobra.Command{
		Use:   "personalize",
		Short: "Generate a personalized outreach email for every contact in a CSV file",
		Long: `personalize reads a contact list, asks Gemini to tailor the email template to each
contact, and writes the successful emails to an output CSV.

Sender identity is read from YOUR_NAME, YOUR_POSITION, YOUR_COMPANY, YOUR_EMAIL and
YOUR_PHONE (a .env file in the working directory is loaded first). GEMINI_API_KEY is
required unless --dry-run is set.`,
		Version:       version.Current,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code = execute(cmd, f, stdout, stderr)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "contacts.csv", "Input CSV file with contact information")
	fl.StringVarP(&f.output, "output", "o", "Generated_Emails.csv", "Output CSV file for generated emails")
	fl.StringVarP(&f.model, "model", "m", config.DefaultModel, "Gemini model to use (env: GEMINI_MODEL)")
	fl.IntVarP(&f.limit, "limit", "l", 0, "Limit the number of input rows to process (0 = all)")
	fl.BoolVarP(&f.dryRun, "dry-run", "d", false, "Run without calling the API")
	fl.StringVar(&f.configPath, "config", "", "Optional YAML config file")
	fl.StringVar(&f.templatePath, "template", "", "Plain-text email template replacing the built-in one")
	fl.DurationVar(&f.delay, "delay", pipeline.DefaultCallDelay, "Pause after each API call (env: CALL_DELAY)")
	fl.Float64Var(&f.rateLimitRPS, "rate-limit-rps", 0, "Request rate limit (RPS) across attempts, 0 disables (env: RATE_LIMIT_RPS)")
	fl.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fl.StringVar(&f.envFile, "env-file", ".env", "Path to a .env file; missing is fine")
	fl.BoolVar(&f.noColor, "no-color", false, "Disable colored log output")

	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "usage error: %s\n\n", err)
		_ = cmd.Usage()
		return exitConfig
	}
	return code
}

func execute(cmd *cobra.Command, f flags, stdout, stderr io.Writer) int {
	ctx := cmd.Context()

	if err := config.LoadDotEnv(f.envFile); err != nil {
		return configError(stderr, err)
	}
	cfg, err := config.Load(f.configPath, config.EnvLookup{})
	if err != nil {
		return configError(stderr, err)
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = f.model
	}
	if cmd.Flags().Changed("delay") {
		cfg.CallDelay = f.delay
	}
	if cmd.Flags().Changed("rate-limit-rps") {
		cfg.RateLimitRPS = f.rateLimitRPS
	}
	if cmd.Flags().Changed("template") {
		cfg.TemplatePath = f.templatePath
	}
	if cfg.CallDelay < 0 || cfg.RateLimitRPS < 0 {
		return configError(stderr, fmt.Errorf("--delay and --rate-limit-rps must be >= 0"))
	}
	if f.limit < 0 {
		return configError(stderr, fmt.Errorf("--limit must be >= 0, got %d", f.limit))
	}

	level, err := logging.ParseLevel(f.logLevel)
	if err != nil {
		return configError(stderr, err)
	}
	logger := logging.New(stderr, level, f.noColor)

	tmpl, err := cfg.LoadTemplate()
	if err != nil {
		return configError(stderr, err)
	}

	var gen pipeline.Generator
	if f.dryRun {
		logger.InfoContext(ctx, "dry run: no API calls will be made", "model", cfg.Model)
	} else {
		if err := cfg.RequireAPIKey(); err != nil {
			return configError(stderr, err)
		}
		completer, err := gemini.New(ctx, gemini.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
		if err != nil {
			return configError(stderr, err)
		}
		client, err := generate.New(completer, generate.Config{
			Model:           cfg.Model,
			Sender:          cfg.Sender,
			Template:        tmpl,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Temperature:     &cfg.Temperature,
			RateLimitRPS:    cfg.RateLimitRPS,
			Policy:          cfg.Retry,
			Logger:          logger,
		})
		if err != nil {
			return configError(stderr, err)
		}
		gen = client
	}

	_, err = app.Run(ctx, app.Options{
		InputPath:  f.input,
		OutputPath: f.output,
		Pipeline: pipeline.Options{
			Limit:     f.limit,
			Simulate:  f.dryRun,
			Model:     cfg.Model,
			CallDelay: cfg.CallDelay,
		},
	}, gen, stdout, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "run failed: %s\n", redact.Secrets(err.Error()))
		return exitFailed
	}
	return exitOK
}

func configError(w io.Writer, err error) int {
	_, _ = fmt.Fprintf(w, "config error: %s\n", redact.Secrets(err.Error()))
	return exitConfig
}
