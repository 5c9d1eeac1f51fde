package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/1A7432/wcf-onebot/internal/domain"
	"github.com/1A7432/wcf-onebot/internal/ports"
)

// RunProbes probes every endpoint once, in order, one at a time.
type RunProbes struct {
	prober   ports.Prober
	store    ports.ReportStore
	onResult func(domain.ProbeResult)
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time
}

type Option func(*RunProbes)

// WithStore saves the finished run. A nil store disables saving.
func WithStore(s ports.ReportStore) Option {
	return func(uc *RunProbes) { uc.store = s }
}

// WithObserver is called with each result as soon as its probe completes.
func WithObserver(fn func(domain.ProbeResult)) Option {
	return func(uc *RunProbes) { uc.onResult = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(uc *RunProbes) { uc.logger = l }
}

// WithIDFunc and WithNow are useful for tests.
func WithIDFunc(fn func() string) Option {
	return func(uc *RunProbes) { uc.newID = fn }
}

func WithNow(fn func() time.Time) Option {
	return func(uc *RunProbes) { uc.now = fn }
}

func NewRunProbes(p ports.Prober, opts ...Option) *RunProbes {
	uc := &RunProbes{
		prober: p,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs the probes. A failed probe never stops the run; only context
// cancellation does, in which case the partial run is returned with ctx.Err().
// The report id is empty when no store is configured.
func (uc *RunProbes) Execute(ctx context.Context, baseURL string, endpoints []domain.Endpoint) (domain.ProbeRun, string, error) {
	run := domain.ProbeRun{
		ID:        uc.newID(),
		BaseURL:   baseURL,
		StartedAt: uc.now(),
		Results:   make([]domain.ProbeResult, 0, len(endpoints)),
	}

	uc.logger.Info("probe.run.start", "run_id", run.ID, "base_url", baseURL, "endpoints", len(endpoints))

	for _, ep := range endpoints {
		if err := ctx.Err(); err != nil {
			run.EndedAt = uc.now()
			uc.logger.Warn("probe.run.cancelled", "run_id", run.ID, "completed", len(run.Results))
			return run, "", err
		}

		res, err := uc.prober.Probe(ctx, baseURL, ep)
		if err != nil {
			// Request could not be built; record it like any other failure.
			res = domain.ProbeResult{
				Description: ep.Description,
				Path:        ep.Path,
				URL:         ep.URL(baseURL),
				Error:       domain.NewRunError(err),
			}
		}

		run.Results = append(run.Results, res)
		if uc.onResult != nil {
			uc.onResult(res)
		}
	}

	run.EndedAt = uc.now()
	uc.logger.Info("probe.run.end", "run_id", run.ID, "failed", run.FailedCount(), "duration", run.EndedAt.Sub(run.StartedAt))

	if uc.store == nil {
		return run, "", nil
	}

	id, err := uc.store.SaveRun(run)
	if err != nil {
		return run, "", err
	}
	uc.logger.Info("report.saved", "run_id", run.ID, "report_id", id)
	return run, id, nil
}
