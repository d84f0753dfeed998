package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shpitdev/outreach-mailer/internal/contact"
	"github.com/shpitdev/outreach-mailer/internal/pipeline"
)

// NoOutputMessage is printed instead of writing an output file when nothing succeeded.
const NoOutputMessage = "No emails were generated. Check the input data and API connection."

type Options struct {
	InputPath  string
	OutputPath string
	Pipeline   pipeline.Options
}

// Run reads the contact list, generates emails, writes the output CSV once and prints a
// summary to out.
//
// An unreadable input file aborts before any generation. The output file is only
// written when at least one email succeeded.
func Run(ctx context.Context, opts Options, gen pipeline.Generator, out io.Writer, logger *slog.Logger) (pipeline.Report, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	runID := uuid.NewString()
	logger = logger.With("run", runID)
	runStart := time.Now()

	records, err := contact.ReadFile(opts.InputPath)
	if err != nil {
		return pipeline.Report{}, fmt.Errorf("read input: %w", err)
	}
	logger.InfoContext(ctx, "read input", "rows", len(records), "path", opts.InputPath)

	popts := opts.Pipeline
	popts.Logger = logger
	report, err := pipeline.Process(ctx, records, gen, popts)
	if err != nil {
		return report, err
	}

	if len(report.Results) > 0 {
		if err := contact.WriteFile(opts.OutputPath, report.Results); err != nil {
			return report, fmt.Errorf("write output: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Successfully generated %d emails and saved to %s\n", len(report.Results), opts.OutputPath)
	} else {
		_, _ = fmt.Fprintln(out, NoOutputMessage)
	}

	PrintSummary(out, report.Summary)
	logger.InfoContext(ctx, "run complete",
		"total", report.Summary.Total,
		"succeeded", report.Summary.Succeeded,
		"failed", report.Summary.Failed,
		"duration", time.Since(runStart).Round(time.Millisecond),
	)
	return report, nil
}

func PrintSummary(w io.Writer, s pipeline.Summary) {
	_, _ = fmt.Fprintf(w, "\nSummary:\nTotal contacts processed: %d\nSuccessful emails generated: %d\nFailed emails: %d\n",
		s.Total, s.Succeeded, s.Failed)
}
