package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/1A7432/wcf-onebot/internal/domain"
)

const (
	EnvWCFHost    = "WCF_HOST"
	EnvWCFPort    = "WCF_PORT"
	EnvWCFBaseURL = "WCF_BASE_URL"
)

// Loader resolves domain.Config from the process environment, falling back to
// dotenv files and then to the built-in defaults.
type Loader struct {
	envFiles []string
	lookup   func(string) (string, bool)
}

type Option func(*Loader)

// WithEnvFiles replaces the dotenv files consulted (default: ".env").
// Missing files are skipped.
func WithEnvFiles(files ...string) Option {
	return func(l *Loader) { l.envFiles = files }
}

// WithLookup is useful for tests.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(l *Loader) { l.lookup = lookup }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		envFiles: []string{".env"},
		lookup:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Load() (domain.Config, error) {
	dotenv := map[string]string{}
	for _, f := range l.envFiles {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return domain.Config{}, &domain.OpError{
				Op:   "config.load_dotenv",
				Kind: domain.KindInvalidConfig,
				Path: f,
				Err:  err,
			}
		}
		// Earlier files win, as with godotenv.Load.
		for k, v := range vals {
			if _, ok := dotenv[k]; !ok {
				dotenv[k] = v
			}
		}
	}

	get := func(key string) string {
		if v, ok := l.lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(dotenv[key])
	}

	cfg := domain.DefaultConfig()

	if host := get(EnvWCFHost); host != "" {
		cfg.WCFHost = host
	}

	if raw := get(EnvWCFPort); raw != "" {
		port, err := parsePort(raw)
		if err != nil {
			return domain.Config{}, invalidField(EnvWCFPort, err.Error())
		}
		cfg.WCFPort = port
	}

	if raw := get(EnvWCFBaseURL); raw != "" {
		base, err := NormalizeBaseURL(raw)
		if err != nil {
			return domain.Config{}, invalidField(EnvWCFBaseURL, err.Error())
		}
		cfg.BaseURLOverride = base
	}

	return cfg, nil
}

// NormalizeBaseURL checks that raw is an absolute http(s) URL without query or
// fragment and strips any trailing slash so that base + "/path" stays well formed.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("host is required")
	}
	// Endpoint paths are appended verbatim, anything after ? or # would swallow them.
	if u.RawQuery != "" || u.ForceQuery || u.Fragment != "" || strings.Contains(raw, "#") {
		return "", errors.New("query and fragment are not allowed")
	}
	return strings.TrimRight(raw, "/"), nil
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("port must be a number, got %q", raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	return port, nil
}

func invalidField(key, msg string) error {
	return &domain.OpError{
		Op:   "config.load",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%w: %s: %s", domain.ErrInvalidConfig, key, msg),
	}
}
