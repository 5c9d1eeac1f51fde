package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"
)

// ResponseData captures the response details and duration.
type ResponseData struct {
	Status    int
	BodyBytes []byte
	Duration  time.Duration
}

// Executor executes HTTP requests with timing.
type Executor struct {
	client *http.Client
}

// NewExecutor wraps client. A nil client gets a DefaultConfig one.
func NewExecutor(client *http.Client) *Executor {
	if client == nil {
		client = New(DefaultConfig())
	}
	return &Executor{client: client}
}

// Do executes the request and returns the full response body plus duration.
func (e *Executor) Do(ctx context.Context, req *http.Request) (ResponseData, error) {
	start := time.Now()

	resp, err := e.client.Do(req.WithContext(ctx))
	if err != nil {
		return ResponseData{Duration: time.Since(start)}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		return ResponseData{Status: resp.StatusCode, Duration: duration}, err
	}

	return ResponseData{
		Status:    resp.StatusCode,
		BodyBytes: body,
		Duration:  duration,
	}, nil
}
