// Package dispatch executes USSD dial strings. The concrete dispatcher is
// selected once at startup: native when a platform bridge is available,
// simulated otherwise. Callers depend only on the Dispatcher interface.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/jawadev0/ussd-magician/internal/bridge"
	"github.com/jawadev0/ussd-magician/internal/metrics"
)

// Result is the outcome of a dispatch. Execute never returns an error or
// panics; failures are carried in the result.
type Result struct {
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Dispatcher executes a USSD dial string.
type Dispatcher interface {
	Execute(ctx context.Context, dialString string) Result
}

// UsageCounter records completed operations against a SIM slot.
type UsageCounter interface {
	Increment(ctx context.Context, slot int) (int, error)
}

// Config tunes dispatcher construction.
type Config struct {
	// SIM slot used for sends.
	Slot int
	// Delay applied by the simulated dispatcher before resolving.
	SimulatedDelay time.Duration
	// Counter, when set, is bumped after each successful dispatch so the
	// slot's daily operation count reflects real usage.
	Counter UsageCounter
}

// New selects the dispatch strategy: native when a bridge is present,
// simulated otherwise.
func New(b bridge.Bridge, cfg Config, metricRegistry *metrics.Metrics, logger *slog.Logger) Dispatcher {
	if b != nil {
		return NewNative(b, cfg, metricRegistry, logger)
	}
	return NewSimulated(cfg, metricRegistry, logger)
}
