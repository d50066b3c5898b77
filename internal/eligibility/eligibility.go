// Package eligibility decides whether a stored USSD code may run against a
// SIM slot. The check is advisory: callers use it to gate UI affordances,
// the dispatcher does not consult it.
package eligibility

import (
	"github.com/jawadev0/ussd-magician/internal/repo"
	"github.com/jawadev0/ussd-magician/internal/sim"
)

// Reason explains why a code was rejected for a slot.
type Reason string

const (
	ReasonOK               Reason = "ok"
	ReasonSlotMismatch     Reason = "slot_mismatch"
	ReasonSIMInactive      Reason = "sim_inactive"
	ReasonDailyLimit       Reason = "daily_limit_reached"
	ReasonOperatorMismatch Reason = "operator_mismatch"
)

// Decision is the outcome of an eligibility check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
}

// CanExecute reports whether the code may run against the given slot under
// the current dual-SIM status. Pure, no side effects. Operator matching is
// exact and case-sensitive.
func CanExecute(code repo.USSDCode, slot int, status sim.DualStatus) Decision {
	if code.SIM != slot {
		return Decision{Reason: ReasonSlotMismatch}
	}

	s := status.Slot(slot)
	if !s.Active {
		return Decision{Reason: ReasonSIMInactive}
	}
	if s.DailyOperations >= s.OperationsLimit {
		return Decision{Reason: ReasonDailyLimit}
	}
	if string(code.Operator) != s.Carrier {
		return Decision{Reason: ReasonOperatorMismatch}
	}
	return Decision{Allowed: true, Reason: ReasonOK}
}
