package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/zarrenspry/vcd-inventory/pkg/errors"
)

// EnvPort overrides the default listen port.
const EnvPort = "PORT"

// DefaultConfig returns the server defaults. Requests regenerate the
// inventory, so the rate limit is low and the write timeout covers a full
// vCloud Director fetch.
func DefaultConfig() *Config {
	cfg := &Config{
		Port:            8080,
		RateLimit:       10,
		RateLimitBurst:  20,
		CacheMaxAge:     60,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    5 * time.Minute,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}

	if v, ok := os.LookupEnv(EnvPort); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}

	return cfg
}

// Validate reports the first invalid setting. A zero rate limit disables
// limiting.
func (c *Config) Validate() error {
	switch {
	case c.Port < 0 || c.Port > 65535:
		return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid port %d", c.Port))
	case c.RateLimit < 0:
		return errors.New(errors.ErrCodeInvalidRequest, "rate limit must not be negative")
	case c.RateLimit > 0 && c.RateLimitBurst <= 0:
		return errors.New(errors.ErrCodeInvalidRequest, "rate limit burst must be positive")
	case c.ShutdownTimeout <= 0:
		return errors.New(errors.ErrCodeInvalidRequest, "shutdown timeout must be positive")
	}
	return nil
}
