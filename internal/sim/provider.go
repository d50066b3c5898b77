// Package sim reports dual-SIM slot status and tracks the per-slot daily
// operation counter used by the eligibility rules.
package sim

import "context"

// DefaultDailyLimit is the number of USSD operations allowed per SIM per day.
const DefaultDailyLimit = 20

// SlotStatus describes one SIM slot.
type SlotStatus struct {
	Slot            int    `json:"slot"`
	Active          bool   `json:"isActive"`
	Carrier         string `json:"carrier,omitempty"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	DailyOperations int    `json:"dailyOperations"`
	OperationsLimit int    `json:"operationsLimit"`
	LastReset       string `json:"lastReset"`
}

// DualStatus holds the status of both slots.
type DualStatus struct {
	SIM1 SlotStatus `json:"sim1"`
	SIM2 SlotStatus `json:"sim2"`
}

// Slot returns the status for slot 1 or 2.
func (d DualStatus) Slot(n int) SlotStatus {
	if n == 2 {
		return d.SIM2
	}
	return d.SIM1
}

// Provider reports SIM status and toggles slot activation.
type Provider interface {
	// Status reports both slots. A failure querying one slot must not
	// prevent reporting the other.
	Status(ctx context.Context) (DualStatus, error)
	// Activate and Deactivate report success via the returned flag.
	Activate(ctx context.Context, slot int) bool
	Deactivate(ctx context.Context, slot int) bool
}
