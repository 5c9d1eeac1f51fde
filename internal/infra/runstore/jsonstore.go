package runstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1A7432/wcf-onebot/internal/domain"
	"github.com/1A7432/wcf-onebot/internal/ports"
)

const DefaultDir = ".wcfprobe/runs"

// JSONStore writes one <timestamp>_<id>.json per run and appends a line to
// <dir>/index.jsonl.
type JSONStore struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*JSONStore)

// WithLogger receives index failures, which do not fail SaveRun.
func WithLogger(l *slog.Logger) Option {
	return func(s *JSONStore) { s.logger = l }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(dir string, opts ...Option) *JSONStore {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir
	}

	s := &JSONStore{
		dir:    dir,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ReportStore = (*JSONStore)(nil)

func (s *JSONStore) SaveRun(run domain.ProbeRun) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", domain.ExecError("runstore.mkdir", s.dir, err)
	}

	ts := run.StartedAt
	if ts.IsZero() {
		ts = s.now()
		run.StartedAt = ts
	}
	ts = ts.UTC()

	suffix := shortID(run.ID)
	if suffix == "" {
		suffix = "run"
	}

	base := fmt.Sprintf("%s_%s", ts.Format("20060102T150405Z"), suffix)
	id, path, err := s.uniquePath(base)
	if err != nil {
		return "", err
	}

	b, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", domain.ExecError("runstore.marshal", path, err)
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", domain.ExecError("runstore.write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", domain.ExecError("runstore.rename", path, err)
	}

	if err := s.appendIndex(id, filepath.Base(path), run); err != nil {
		s.logger.Warn("runstore.index_failed", "report_id", id, "error", err.Error())
	}

	return id, nil
}

// uniquePath appends _2, _3, ... when a report with the same stem exists.
func (s *JSONStore) uniquePath(base string) (string, string, error) {
	id := base
	for i := 2; ; i++ {
		path := filepath.Join(s.dir, id+".json")
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return id, path, nil
		}
		if err != nil {
			return "", "", domain.ExecError("runstore.stat", path, err)
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}

func (s *JSONStore) appendIndex(id, filename string, run domain.ProbeRun) error {
	type idx struct {
		ID        string    `json:"id"`
		RunID     string    `json:"run_id"`
		File      string    `json:"file"`
		BaseURL   string    `json:"base_url"`
		Failed    int       `json:"failed"`
		StartedAt time.Time `json:"started_at"`
	}
	line, err := json.Marshal(idx{
		ID:        id,
		RunID:     run.ID,
		File:      filename,
		BaseURL:   run.BaseURL,
		Failed:    run.FailedCount(),
		StartedAt: run.StartedAt,
	})
	if err != nil {
		return err
	}

	indexPath := filepath.Join(s.dir, "index.jsonl")
	f, err := os.OpenFile(indexPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return domain.ExecError("runstore.index", indexPath, err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return domain.ExecError("runstore.index", indexPath, err)
	}
	if err := f.Close(); err != nil {
		return domain.ExecError("runstore.index", indexPath, err)
	}
	return nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(strings.TrimSpace(id), "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}
