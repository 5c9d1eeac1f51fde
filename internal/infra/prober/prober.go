package prober

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/1A7432/wcf-onebot/internal/domain"
	"github.com/1A7432/wcf-onebot/internal/infra/httpclient"
	"github.com/1A7432/wcf-onebot/internal/ports"
)

type Prober struct {
	exec   *httpclient.Executor
	logger *slog.Logger
}

type Option func(*Prober)

func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) { p.logger = l }
}

func New(client *http.Client, opts ...Option) *Prober {
	p := &Prober{
		exec:   httpclient.NewExecutor(client),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ ports.Prober = (*Prober)(nil)

// Probe issues one GET to baseURL+ep.Path. The returned error is non-nil only
// when the request could not even be built; network failures land in
// result.Error.
func (p *Prober) Probe(ctx context.Context, baseURL string, ep domain.Endpoint) (domain.ProbeResult, error) {
	result := domain.ProbeResult{
		Description: ep.Description,
		Path:        ep.Path,
		URL:         ep.URL(baseURL),
	}

	req, err := httpclient.BuildGet(ctx, result.URL)
	if err != nil {
		return domain.ProbeResult{}, err
	}

	p.logger.Debug("probe.request", "url", result.URL)

	resp, err := p.exec.Do(ctx, req)
	result.LatencyMS = resp.Duration.Milliseconds()
	result.StatusCode = resp.Status
	if err != nil {
		result.Error = domain.NewRunError(err)
		p.logger.Warn("probe.result", "url", result.URL, "error", err.Error(), "kind", result.Error.Kind, "latency_ms", result.LatencyMS)
		return result, nil
	}

	result.Body = string(resp.BodyBytes)
	p.logger.Info("probe.result", "url", result.URL, "status", result.StatusCode, "bytes", len(resp.BodyBytes), "latency_ms", result.LatencyMS)
	return result, nil
}
