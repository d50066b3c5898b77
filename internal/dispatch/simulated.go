package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jawadev0/ussd-magician/internal/metrics"
)

// Canned responses for simulated execution, keyed by exact dial string.
var simulatedResponses = map[string]string{
	"*100#": "Your balance is 25.50 MAD",
	"*101#": "Recharge successful. New balance: 50.00 MAD",
	"*121#": "Your number is +212 6XX XXX XXX",
	"*555#": "Data bundle activated. 1GB valid for 7 days",
}

// Simulated resolves dial strings against a fixed response table after an
// artificial delay, emulating radio latency for UI testing.
type Simulated struct {
	delay   time.Duration
	slot    int
	counter UsageCounter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewSimulated returns the browser/simulated-context dispatcher.
func NewSimulated(cfg Config, metricRegistry *metrics.Metrics, logger *slog.Logger) *Simulated {
	delay := cfg.SimulatedDelay
	if delay <= 0 {
		delay = 1500 * time.Millisecond
	}
	slot := cfg.Slot
	if slot != 2 {
		slot = 1
	}
	return &Simulated{
		delay:   delay,
		slot:    slot,
		counter: cfg.Counter,
		logger:  logger.With("component", "dispatch_simulated"),
		metrics: metricRegistry,
	}
}

// Execute looks the dial string up in the canned table. Unknown strings
// synthesize a generic success message referencing the code.
func (d *Simulated) Execute(ctx context.Context, dialString string) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{Success: false, Error: fmt.Sprintf("dispatch panic: %v", r)}
		}
		d.observe(res, start)
	}()

	select {
	case <-time.After(d.delay):
	case <-ctx.Done():
		return Result{Success: false, Error: ctx.Err().Error()}
	}

	result, ok := simulatedResponses[dialString]
	if !ok {
		result = fmt.Sprintf("USSD code %s executed successfully. Service response received.", dialString)
	}

	d.logger.Debug("simulated dispatch", "code", dialString, "canned", ok)
	if d.counter != nil {
		if _, err := d.counter.Increment(ctx, d.slot); err != nil {
			d.logger.Warn("failed recording operation", "slot", d.slot, "error", err)
		}
	}
	return Result{Success: true, Result: result}
}

func (d *Simulated) observe(res Result, start time.Time) {
	if d.metrics == nil {
		return
	}
	d.metrics.DispatchTotal.WithLabelValues("simulated", outcomeLabel(res)).Inc()
	d.metrics.DispatchLatency.WithLabelValues("simulated").Observe(time.Since(start).Seconds())
}

func outcomeLabel(res Result) string {
	if res.Success {
		return "success"
	}
	return "failure"
}
