package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shpitdev/outreach-mailer/internal/contact"
	"github.com/shpitdev/outreach-mailer/internal/generate"
	"github.com/shpitdev/outreach-mailer/internal/retry"
)

// DefaultCallDelay is the pause after each live generation call.
const DefaultCallDelay = 500 * time.Millisecond

// Generator produces email text for one contact, or a failure marker.
type Generator interface {
	Generate(ctx context.Context, rec contact.Record) string
}

type Options struct {
	// Limit keeps only the first Limit input rows when > 0. Applied before the name filter.
	Limit int
	// Simulate fabricates placeholder output and never calls the Generator.
	Simulate bool
	// Model is reported in simulate mode only; live calls use the Generator's model.
	Model string
	// CallDelay is a fixed pause after each live call returns, before the next one
	// starts. <= 0 disables it.
	CallDelay time.Duration
	// Sleep performs the pause. Nil uses retry.TimerSleep.
	Sleep retry.Sleep

	Logger *slog.Logger
}

// Summary counts one run. Succeeded + Failed == Total.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Report is the outcome of Process.
type Report struct {
	// Results holds successful generations in input order.
	Results []contact.Result
	Summary Summary
}

// Process runs gen over records sequentially.
//
// Records without a contact name are skipped and not counted. Generation failures are
// counted and left out of Results; they never abort the run. The only error returned
// is ctx's, along with the partial report built so far.
func Process(ctx context.Context, records []contact.Record, gen Generator, opts Options) (Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.Limit > 0 {
		logger.InfoContext(ctx, "limiting input rows", "limit", opts.Limit)
		if len(records) > opts.Limit {
			records = records[:opts.Limit]
		}
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = retry.TimerSleep
	}

	var report Report
	// pending is set once a live call returns; the pause runs before the next call.
	pending := false
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !rec.HasName() {
			continue
		}
		if pending {
			if err := sleep(ctx, opts.CallDelay); err != nil {
				return report, err
			}
		}
		report.Summary.Total++

		logger.InfoContext(ctx, "generating email",
			"row", fmt.Sprintf("%d/%d", i+1, len(records)),
			"contact", strings.TrimSpace(rec.Name),
			"company", rec.Company,
		)

		var text string
		if opts.Simulate {
			text = simulate(ctx, logger, rec, opts.Model)
		} else {
			text = gen.Generate(ctx, rec)
			pending = opts.CallDelay > 0
		}

		if !generate.IsSuccess(text) {
			report.Summary.Failed++
			continue
		}
		report.Summary.Succeeded++
		report.Results = append(report.Results, contact.Result{
			Company: rec.Company,
			Name:    rec.Name,
			Email:   text,
		})
	}
	return report, nil
}

func simulate(ctx context.Context, logger *slog.Logger, rec contact.Record, model string) string {
	logger.InfoContext(ctx, "[DRY RUN] would generate email",
		"contact", rec.Name,
		"company", rec.Company,
		"industry", rec.Industry,
		"position", rec.Position,
		"model", model,
	)
	return "[DRY RUN] Sample email for " + rec.Name
}
