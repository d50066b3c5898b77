package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Simulated reports a fixed dual-SIM layout for non-mobile targets:
// slot 1 on ORANGE, slot 2 on INWI, both active until toggled.
type Simulated struct {
	mu      sync.Mutex
	active  map[int]bool
	counter Counter
	limit   int
	latency time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// SimulatedConfig tunes the simulated provider.
type SimulatedConfig struct {
	DailyLimit int
	// Latency applied to activate/deactivate toggles.
	ToggleLatency time.Duration
}

// NewSimulated returns the fixed-status provider.
func NewSimulated(cfg SimulatedConfig, counter Counter, logger *slog.Logger) *Simulated {
	limit := cfg.DailyLimit
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if counter == nil {
		counter = NewMemoryCounter()
	}
	return &Simulated{
		active:  map[int]bool{1: true, 2: true},
		counter: counter,
		limit:   limit,
		latency: cfg.ToggleLatency,
		logger:  logger.With("component", "sim_simulated"),
		now:     time.Now,
	}
}

// Status reports both slots with fixed carrier/number data.
func (s *Simulated) Status(ctx context.Context) (DualStatus, error) {
	s.mu.Lock()
	active1, active2 := s.active[1], s.active[2]
	s.mu.Unlock()

	day := s.now().Format(dayFormat)
	ops1, _ := s.counter.Today(ctx, 1)
	ops2, _ := s.counter.Today(ctx, 2)

	return DualStatus{
		SIM1: SlotStatus{
			Slot:            1,
			Active:          active1,
			Carrier:         "ORANGE",
			PhoneNumber:     "+212 6XX XXX XX1",
			DailyOperations: ops1,
			OperationsLimit: s.limit,
			LastReset:       day,
		},
		SIM2: SlotStatus{
			Slot:            2,
			Active:          active2,
			Carrier:         "INWI",
			PhoneNumber:     "+212 6XX XXX XX2",
			DailyOperations: ops2,
			OperationsLimit: s.limit,
			LastReset:       day,
		},
	}, nil
}

// Activate marks the slot active after the simulated toggle latency.
func (s *Simulated) Activate(ctx context.Context, slot int) bool {
	return s.toggle(ctx, slot, true)
}

// Deactivate marks the slot inactive after the simulated toggle latency.
func (s *Simulated) Deactivate(ctx context.Context, slot int) bool {
	return s.toggle(ctx, slot, false)
}

func (s *Simulated) toggle(ctx context.Context, slot int, active bool) bool {
	if slot != 1 && slot != 2 {
		return false
	}
	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return false
		}
	}
	s.mu.Lock()
	s.active[slot] = active
	s.mu.Unlock()
	s.logger.Info("sim toggled", "slot", slot, "active", active)
	return true
}
