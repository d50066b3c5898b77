package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jawadev0/ussd-magician/internal/bridge"
	"github.com/jawadev0/ussd-magician/internal/metrics"
)

// BridgeProvider reports SIM status through the platform bridge. Both slot
// queries run concurrently; a failure on one slot degrades that slot to
// inactive/unknown-carrier instead of failing the whole report.
type BridgeProvider struct {
	bridge  bridge.Bridge
	counter Counter
	limit   int
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewBridgeProvider returns a provider backed by the given bridge.
func NewBridgeProvider(b bridge.Bridge, counter Counter, dailyLimit int, metricRegistry *metrics.Metrics, logger *slog.Logger) *BridgeProvider {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	if counter == nil {
		counter = NewMemoryCounter()
	}
	return &BridgeProvider{
		bridge:  b,
		counter: counter,
		limit:   dailyLimit,
		logger:  logger.With("component", "sim_bridge"),
		metrics: metricRegistry,
		now:     time.Now,
	}
}

// Status queries both slots independently and joins the results.
func (p *BridgeProvider) Status(ctx context.Context) (DualStatus, error) {
	statuses := make([]SlotStatus, 2)

	var wg sync.WaitGroup
	for i, slot := range []int{1, 2} {
		wg.Add(1)
		go func(i, slot int) {
			defer wg.Done()
			statuses[i] = p.querySlot(ctx, slot)
		}(i, slot)
	}
	wg.Wait()

	return DualStatus{SIM1: statuses[0], SIM2: statuses[1]}, nil
}

func (p *BridgeProvider) querySlot(ctx context.Context, slot int) SlotStatus {
	status := SlotStatus{
		Slot:            slot,
		OperationsLimit: p.limit,
		LastReset:       p.now().Format(dayFormat),
	}

	info, err := p.bridge.GetSIMInfo(ctx, slot)
	if err != nil {
		p.logger.Warn("sim info query failed", "slot", slot, "error", err)
		if p.metrics != nil {
			p.metrics.SIMQueries.WithLabelValues(slotLabel(slot), "error").Inc()
		}
		return status
	}
	if p.metrics != nil {
		p.metrics.SIMQueries.WithLabelValues(slotLabel(slot), "ok").Inc()
	}

	status.Active = info.Active
	status.Carrier = info.Carrier
	status.PhoneNumber = info.PhoneNumber

	ops, err := p.counter.Today(ctx, slot)
	if err != nil {
		p.logger.Warn("daily counter read failed", "slot", slot, "error", err)
	}
	status.DailyOperations = ops
	return status
}

// Activate is not representable through the bridge contract; the platform
// owns slot activation. Reported as unsuccessful.
func (p *BridgeProvider) Activate(ctx context.Context, slot int) bool { return false }

// Deactivate mirrors Activate.
func (p *BridgeProvider) Deactivate(ctx context.Context, slot int) bool { return false }

func slotLabel(slot int) string {
	if slot == 2 {
		return "2"
	}
	return "1"
}
