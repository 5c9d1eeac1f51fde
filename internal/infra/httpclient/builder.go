package httpclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/1A7432/wcf-onebot/internal/domain"
)

// BuildGet builds a bare GET: no body, no auth, no headers of our own.
func BuildGet(ctx context.Context, rawURL string) (*http.Request, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Err:  domain.ErrInvalidConfig,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Err:  err,
		}
	}

	return req, nil
}
