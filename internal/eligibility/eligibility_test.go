package eligibility

import (
	"testing"

	"github.com/jawadev0/ussd-magician/internal/repo"
	"github.com/jawadev0/ussd-magician/internal/sim"
)

func activeStatus(ops1, ops2 int) sim.DualStatus {
	return sim.DualStatus{
		SIM1: sim.SlotStatus{Slot: 1, Active: true, Carrier: "ORANGE", DailyOperations: ops1, OperationsLimit: 20},
		SIM2: sim.SlotStatus{Slot: 2, Active: true, Carrier: "INWI", DailyOperations: ops2, OperationsLimit: 20},
	}
}

func TestCanExecuteSlotMismatch(t *testing.T) {
	code := repo.USSDCode{SIM: 2, Operator: repo.OperatorOrange}
	d := CanExecute(code, 1, activeStatus(0, 0))
	if d.Allowed {
		t.Fatal("expected rejection for slot mismatch")
	}
	if d.Reason != ReasonSlotMismatch {
		t.Fatalf("expected %s, got %s", ReasonSlotMismatch, d.Reason)
	}
}

func TestCanExecuteInactiveSIM(t *testing.T) {
	status := activeStatus(0, 0)
	status.SIM1.Active = false

	code := repo.USSDCode{SIM: 1, Operator: repo.OperatorOrange}
	d := CanExecute(code, 1, status)
	if d.Allowed || d.Reason != ReasonSIMInactive {
		t.Fatalf("expected %s, got allowed=%v reason=%s", ReasonSIMInactive, d.Allowed, d.Reason)
	}
}

func TestCanExecuteDailyLimit(t *testing.T) {
	code := repo.USSDCode{SIM: 1, Operator: repo.OperatorOrange}

	d := CanExecute(code, 1, activeStatus(20, 0))
	if d.Allowed || d.Reason != ReasonDailyLimit {
		t.Fatalf("at limit: expected %s, got allowed=%v reason=%s", ReasonDailyLimit, d.Allowed, d.Reason)
	}

	d = CanExecute(code, 1, activeStatus(19, 0))
	if !d.Allowed {
		t.Fatalf("below limit: expected allowed, got reason=%s", d.Reason)
	}
}

func TestCanExecuteOperatorMismatch(t *testing.T) {
	code := repo.USSDCode{SIM: 2, Operator: repo.OperatorIAM}
	d := CanExecute(code, 2, activeStatus(0, 0))
	if d.Allowed || d.Reason != ReasonOperatorMismatch {
		t.Fatalf("expected %s, got allowed=%v reason=%s", ReasonOperatorMismatch, d.Allowed, d.Reason)
	}
}

func TestCanExecuteOperatorMatchIsCaseSensitive(t *testing.T) {
	status := activeStatus(0, 0)
	status.SIM1.Carrier = "orange"

	code := repo.USSDCode{SIM: 1, Operator: repo.OperatorOrange}
	d := CanExecute(code, 1, status)
	if d.Allowed {
		t.Fatal("expected case-sensitive operator comparison to reject")
	}
}

func TestCanExecuteAccepts(t *testing.T) {
	code := repo.USSDCode{SIM: 2, Operator: repo.OperatorInwi}
	d := CanExecute(code, 2, activeStatus(0, 5))
	if !d.Allowed || d.Reason != ReasonOK {
		t.Fatalf("expected acceptance, got allowed=%v reason=%s", d.Allowed, d.Reason)
	}
}
