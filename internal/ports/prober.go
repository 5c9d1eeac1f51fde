package ports

import (
	"context"

	"github.com/1A7432/wcf-onebot/internal/domain"
)

// Prober performs a single GET against baseURL + ep.Path.
// Transport failures are reported in the result, not as an error.
type Prober interface {
	Probe(ctx context.Context, baseURL string, ep domain.Endpoint) (domain.ProbeResult, error)
}
