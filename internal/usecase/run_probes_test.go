package usecase

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/1A7432/wcf-onebot/internal/domain"
	"github.com/1A7432/wcf-onebot/internal/infra/httpclient"
	"github.com/1A7432/wcf-onebot/internal/infra/prober"
	"github.com/1A7432/wcf-onebot/internal/ports"
)

// --- fakes ---

type fakeStore struct {
	saved bool
	last  domain.ProbeRun
}

func (s *fakeStore) SaveRun(run domain.ProbeRun) (string, error) {
	s.saved = true
	s.last = run
	return "report-123", nil
}

type errStore struct{ err error }

func (s *errStore) SaveRun(_ domain.ProbeRun) (string, error) { return "", s.err }

// recordingProber records the URLs it was asked for and returns 200/"OK".
type recordingProber struct {
	urls []string
	errs map[string]error
}

func (p *recordingProber) Probe(_ context.Context, baseURL string, ep domain.Endpoint) (domain.ProbeResult, error) {
	u := ep.URL(baseURL)
	p.urls = append(p.urls, u)
	if err := p.errs[ep.Path]; err != nil {
		return domain.ProbeResult{}, err
	}
	return domain.ProbeResult{Path: ep.Path, URL: u, StatusCode: 200, Body: "OK"}, nil
}

// ctxCancelProber cancels the given context on its first call.
type ctxCancelProber struct {
	cancel context.CancelFunc
	called int
}

func (p *ctxCancelProber) Probe(_ context.Context, baseURL string, ep domain.Endpoint) (domain.ProbeResult, error) {
	p.called++
	if p.called == 1 {
		p.cancel()
	}
	return domain.ProbeResult{Path: ep.Path, URL: ep.URL(baseURL), StatusCode: 200}, nil
}

// --- unit tests ---

func TestRunProbes_RequestsEveryEndpointInOrder(t *testing.T) {
	p := &recordingProber{}
	uc := NewRunProbes(p)

	run, id, err := uc.Execute(context.Background(), "http://wcf:8080", domain.DefaultEndpoints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id when store is nil, got %q", id)
	}

	want := []string{
		"http://wcf:8080/islogin",
		"http://wcf:8080/selfwxid",
		"http://wcf:8080/selfinfo",
		"http://wcf:8080/api/is_login",
		"http://wcf:8080/api/get_self_info",
	}
	if len(p.urls) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(p.urls))
	}
	for i := range want {
		if p.urls[i] != want[i] {
			t.Fatalf("request %d: expected %s, got %s", i, want[i], p.urls[i])
		}
	}
	if len(run.Results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(run.Results))
	}
	if run.BaseURL != "http://wcf:8080" {
		t.Fatalf("expected base url recorded, got %q", run.BaseURL)
	}
}

func TestRunProbes_ProberErrorDoesNotStopRun(t *testing.T) {
	p := &recordingProber{errs: map[string]error{"/selfwxid": errors.New("bad url")}}
	uc := NewRunProbes(p)

	run, _, err := uc.Execute(context.Background(), "http://wcf:8080", domain.DefaultEndpoints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.Results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(run.Results))
	}
	failed := run.Results[1]
	if failed.Error == nil || failed.Error.Message != "bad url" {
		t.Fatalf("expected second result to carry the error, got %+v", failed)
	}
	if failed.Path != "/selfwxid" || failed.URL != "http://wcf:8080/selfwxid" {
		t.Fatalf("expected failed result to keep endpoint identity, got %+v", failed)
	}
	if run.Results[2].Error != nil {
		t.Fatalf("expected third probe to succeed")
	}
}

func TestRunProbes_ObserverSeesEachResult(t *testing.T) {
	var seen []string
	uc := NewRunProbes(&recordingProber{}, WithObserver(func(r domain.ProbeResult) {
		seen = append(seen, r.Path)
	}))

	if _, _, err := uc.Execute(context.Background(), "http://x", domain.DefaultEndpoints()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 5 || seen[0] != "/islogin" || seen[4] != "/api/get_self_info" {
		t.Fatalf("unexpected observer sequence: %v", seen)
	}
}

func TestRunProbes_StoreCalled(t *testing.T) {
	store := &fakeStore{}
	start := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	uc := NewRunProbes(&recordingProber{},
		WithStore(store),
		WithIDFunc(func() string { return "run-abc" }),
		WithNow(func() time.Time { return start }),
	)

	_, id, err := uc.Execute(context.Background(), "http://x", domain.DefaultEndpoints())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "report-123" {
		t.Fatalf("expected id=report-123, got %q", id)
	}
	if !store.saved {
		t.Fatal("expected SaveRun to be called")
	}
	if store.last.ID != "run-abc" {
		t.Fatalf("expected run id run-abc, got %q", store.last.ID)
	}
	if !store.last.StartedAt.Equal(start) {
		t.Fatalf("expected injected start time, got %v", store.last.StartedAt)
	}
}

func TestRunProbes_StoreSaveError(t *testing.T) {
	saveErr := errors.New("disk full")
	uc := NewRunProbes(&recordingProber{}, WithStore(&errStore{err: saveErr}))

	run, id, err := uc.Execute(context.Background(), "http://x", domain.DefaultEndpoints())
	if !errors.Is(err, saveErr) {
		t.Fatalf("expected saveErr, got %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id on store error, got %q", id)
	}
	if len(run.Results) != 5 {
		t.Fatalf("expected results even on store error, got %d", len(run.Results))
	}
}

func TestRunProbes_ContextCancelledBeforeFirstProbe(t *testing.T) {
	p := &recordingProber{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, _, err := NewRunProbes(p).Execute(ctx, "http://x", domain.DefaultEndpoints())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(p.urls) != 0 {
		t.Fatalf("expected no probes, got %d", len(p.urls))
	}
	if run.StartedAt.IsZero() || run.EndedAt.IsZero() {
		t.Fatalf("expected timestamps set")
	}
}

func TestRunProbes_ContextCancelledDuringIteration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &ctxCancelProber{cancel: cancel}

	run, _, err := NewRunProbes(p).Execute(ctx, "http://x", domain.DefaultEndpoints())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(run.Results) != 1 {
		t.Fatalf("expected 1 result before cancellation, got %d", len(run.Results))
	}
}

// --- integration tests (real HTTP) ---

func TestRunProbes_AgainstLiveServer(t *testing.T) {
	var mu sync.Mutex
	var paths []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	uc := NewRunProbes(prober.New(httpclient.New(httpclient.DefaultConfig())))
	run, _, err := uc.Execute(context.Background(), srv.URL, domain.DefaultEndpoints())
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	want := []string{"/islogin", "/selfwxid", "/selfinfo", "/api/is_login", "/api/get_self_info"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d requests, got %d (%v)", len(want), len(paths), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("request %d: expected %s, got %s", i, want[i], paths[i])
		}
	}
	for _, r := range run.Results {
		if r.Error != nil || r.StatusCode != 200 || r.Body != "OK" {
			t.Fatalf("unexpected result %+v", r)
		}
	}
}

func TestRunProbes_UnreachableServerCompletes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	run, _, err := NewRunProbes(prober.New(httpclient.New(httpclient.DefaultConfig()))).Execute(context.Background(), "http://"+addr, domain.DefaultEndpoints())
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(run.Results) != 5 {
		t.Fatalf("expected all 5 probes attempted, got %d", len(run.Results))
	}
	if run.FailedCount() != 5 {
		t.Fatalf("expected 5 failures, got %d", run.FailedCount())
	}
}

// compile-time checks
var _ ports.ReportStore = (*fakeStore)(nil)
var _ ports.Prober = (*recordingProber)(nil)
