package domain

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"time"
)

// RunErrorKind is a high-level classification of transport failures.
type RunErrorKind string

const (
	RunErrorUnknown RunErrorKind = "unknown"
	RunErrorTimeout RunErrorKind = "timeout"
	RunErrorDNS     RunErrorKind = "dns"
	RunErrorConn    RunErrorKind = "connection"
)

// RunError is a probe failure recorded as data. Message is the client's own
// error text, unmodified.
type RunError struct {
	Kind    RunErrorKind `json:"kind" yaml:"kind"`
	Message string       `json:"message" yaml:"message"`
}

// NewRunError classifies err. It returns nil for a nil error.
func NewRunError(err error) *RunError {
	if err == nil {
		return nil
	}
	return &RunError{
		Kind:    classify(err),
		Message: err.Error(),
	}
}

func classify(err error) RunErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return RunErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return RunErrorTimeout
		}
		return RunErrorDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return RunErrorTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return RunErrorConn
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return RunErrorConn
	}

	return RunErrorUnknown
}

// ProbeResult is the outcome of one GET against one endpoint.
// A non-2xx status is a successful probe; only transport failures set Error.
type ProbeResult struct {
	Description string `json:"description" yaml:"description"`
	Path        string `json:"path" yaml:"path"`
	URL         string `json:"url" yaml:"url"`

	StatusCode int    `json:"status_code" yaml:"status_code"`
	Body       string `json:"body" yaml:"body"`
	LatencyMS  int64  `json:"latency_ms" yaml:"latency_ms"`

	Error *RunError `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the request never produced a response.
func (r ProbeResult) Failed() bool {
	return r.Error != nil
}

// ProbeRun is one sequential pass over an endpoint list.
type ProbeRun struct {
	ID      string `json:"id" yaml:"id"`
	BaseURL string `json:"base_url" yaml:"base_url"`

	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time `json:"ended_at" yaml:"ended_at"`

	Results []ProbeResult `json:"results" yaml:"results"`
}

// FailedCount returns how many probes got no response at all.
func (r ProbeRun) FailedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}
