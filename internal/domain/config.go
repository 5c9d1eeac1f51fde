package domain

import "fmt"

const (
	DefaultWCFHost = "localhost"
	DefaultWCFPort = 8080
)

// DefaultBaseURL is the WCF address probed when nothing else is configured.
const DefaultBaseURL = "http://localhost:8080"

// Config is the resolved probe configuration.
type Config struct {
	WCFHost string
	WCFPort int

	// BaseURLOverride, when set, replaces the host/port derived URL.
	BaseURLOverride string
}

// DefaultConfig mirrors the defaults of the WCF bridge.
func DefaultConfig() Config {
	return Config{
		WCFHost: DefaultWCFHost,
		WCFPort: DefaultWCFPort,
	}
}

// BaseURL returns the address every endpoint path is appended to.
func (c Config) BaseURL() string {
	if c.BaseURLOverride != "" {
		return c.BaseURLOverride
	}
	return fmt.Sprintf("http://%s:%d", c.WCFHost, c.WCFPort)
}
