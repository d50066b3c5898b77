package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jawadev0/ussd-magician/internal/bridge"
	"github.com/jawadev0/ussd-magician/internal/metrics"
)

// PermissionDeniedMessage is surfaced to the user when the platform refuses
// phone permissions.
const PermissionDeniedMessage = "Phone permissions are required to send USSD codes. Please enable them in your device settings."

// Native dispatches through the platform bridge, negotiating run-time
// permissions before the first send.
type Native struct {
	bridge  bridge.Bridge
	slot    int
	counter UsageCounter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewNative returns the bridge-backed dispatcher.
func NewNative(b bridge.Bridge, cfg Config, metricRegistry *metrics.Metrics, logger *slog.Logger) *Native {
	slot := cfg.Slot
	if slot != 2 {
		slot = 1
	}
	return &Native{
		bridge:  b,
		slot:    slot,
		counter: cfg.Counter,
		logger:  logger.With("component", "dispatch_native"),
		metrics: metricRegistry,
	}
}

// Execute checks permissions, requesting them if needed, then sends the
// dial string through the bridge. Bridge outcomes are propagated verbatim;
// any failure or panic is converted into a failed Result.
func (d *Native) Execute(ctx context.Context, dialString string) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{Success: false, Error: fmt.Sprintf("dispatch panic: %v", r)}
		}
		d.observe(res, start)
	}()

	perms, err := d.bridge.CheckPermissions(ctx)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("permission check failed: %v", err)}
	}
	if !perms.Granted {
		perms, err = d.bridge.RequestPermissions(ctx)
		if err != nil {
			return Result{Success: false, Error: fmt.Sprintf("permission request failed: %v", err)}
		}
		if !perms.Granted {
			d.logger.Warn("phone permissions denied", "permissions", perms.Permissions)
			return Result{Success: false, Error: PermissionDeniedMessage}
		}
	}

	sent, err := d.bridge.SendUSSDRequest(ctx, dialString, d.slot)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	if sent.Success && d.counter != nil {
		if _, err := d.counter.Increment(ctx, d.slot); err != nil {
			d.logger.Warn("failed recording operation", "slot", d.slot, "error", err)
		}
	}
	return Result{Success: sent.Success, Result: sent.Result, Error: sent.Error}
}

func (d *Native) observe(res Result, start time.Time) {
	if d.metrics == nil {
		return
	}
	d.metrics.DispatchTotal.WithLabelValues("native", outcomeLabel(res)).Inc()
	d.metrics.DispatchLatency.WithLabelValues("native").Observe(time.Since(start).Seconds())
}
