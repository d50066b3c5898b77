package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newCode(name, code string) NewCode {
	return NewCode{
		UserID:   "user-1",
		Name:     name,
		Code:     code,
		Type:     CodeTypeActivation,
		SIM:      1,
		Operator: OperatorOrange,
	}
}

func TestCreateThenList(t *testing.T) {
	r := NewMemory()
	ctx := context.Background()

	created, err := r.CreateCode(ctx, newCode("Check Balance", "*123#"))
	if err != nil {
		t.Fatalf("CreateCode failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}
	if created.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected creation timestamp")
	}

	codes, err := r.ListCodes(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListCodes failed: %v", err)
	}
	if len(codes) != 1 {
		t.Fatalf("expected 1 code, got %d", len(codes))
	}
	if codes[0].ID != created.ID {
		t.Fatalf("expected id %s, got %s", created.ID, codes[0].ID)
	}
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	r := NewMemory()
	ctx := context.Background()

	a, _ := r.CreateCode(ctx, newCode("A", "*1#"))
	b, _ := r.CreateCode(ctx, newCode("B", "*2#"))
	if a.ID == b.ID {
		t.Fatalf("expected unique ids, both were %s", a.ID)
	}
}

func TestUpdateMergesPartialFields(t *testing.T) {
	r := NewMemory()
	ctx := context.Background()

	created, _ := r.CreateCode(ctx, newCode("Check Balance", "*123#"))

	name := "Balance"
	updated, err := r.UpdateCode(ctx, created.ID, "user-1", CodeUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateCode failed: %v", err)
	}
	if updated.Name != "Balance" {
		t.Fatalf("expected merged name, got %q", updated.Name)
	}
	if updated.Code != "*123#" {
		t.Fatalf("expected untouched code, got %q", updated.Code)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	r := NewMemory()
	name := "x"
	_, err := r.UpdateCode(context.Background(), "missing", "user-1", CodeUpdate{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	r := NewMemory()
	if err := r.DeleteCode(context.Background(), "missing", "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClearPendingLeavesDoneAndFailed(t *testing.T) {
	r := NewMemory()
	ctx := context.Background()

	p1, _ := r.CreateCode(ctx, newCode("P1", "*1#"))
	p2, _ := r.CreateCode(ctx, newCode("P2", "*2#"))
	d, _ := r.CreateCode(ctx, newCode("D", "*3#"))
	f, _ := r.CreateCode(ctx, newCode("F", "*4#"))

	if err := r.SetExecutionResult(ctx, d.ID, "user-1", StatusDone, "ok"); err != nil {
		t.Fatalf("SetExecutionResult failed: %v", err)
	}
	failedStatus := StatusFailed
	if _, err := r.UpdateCode(ctx, f.ID, "user-1", CodeUpdate{Status: &failedStatus}); err != nil {
		t.Fatalf("UpdateCode failed: %v", err)
	}

	removed, err := r.ClearPending(ctx, "user-1")
	if err != nil {
		t.Fatalf("ClearPending failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	codes, _ := r.ListCodes(ctx, "user-1")
	if len(codes) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(codes))
	}
	for _, c := range codes {
		if c.ID == p1.ID || c.ID == p2.ID {
			t.Fatalf("pending code %s survived", c.ID)
		}
	}
}

func TestSetExecutionResult(t *testing.T) {
	r := NewMemory()
	ctx := context.Background()

	created, _ := r.CreateCode(ctx, newCode("Topup", "*555*100#"))
	if err := r.SetExecutionResult(ctx, created.ID, "user-1", StatusDone, "Top-up successful"); err != nil {
		t.Fatalf("SetExecutionResult failed: %v", err)
	}

	got, err := r.GetCode(ctx, created.ID, "user-1")
	if err != nil {
		t.Fatalf("GetCode failed: %v", err)
	}
	if got.Status != StatusDone {
		t.Fatalf("expected done, got %s", got.Status)
	}
	if got.Result == nil || *got.Result != "Top-up successful" {
		t.Fatalf("unexpected result: %v", got.Result)
	}
	if got.LastExecuted == nil {
		t.Fatal("expected last_executed to be set")
	}
}

func TestListScopedToUser(t *testing.T) {
	r := NewMemory()
	ctx := context.Background()

	r.CreateCode(ctx, newCode("Mine", "*1#"))
	other := newCode("Theirs", "*2#")
	other.UserID = "user-2"
	r.CreateCode(ctx, other)

	codes, _ := r.ListCodes(ctx, "user-1")
	if len(codes) != 1 || codes[0].Name != "Mine" {
		t.Fatalf("expected only user-1 codes, got %+v", codes)
	}
}

func TestListOrdersSameInstantByID(t *testing.T) {
	r := NewMemory()
	ctx := context.Background()

	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	a, _ := r.CreateCode(ctx, newCode("A", "*1#"))
	b, _ := r.CreateCode(ctx, newCode("B", "*2#"))

	lo, hi := a.ID, b.ID
	if lo > hi {
		lo, hi = hi, lo
	}

	codes, err := r.ListCodes(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListCodes failed: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("expected 2 codes, got %d", len(codes))
	}
	if codes[0].ID != lo || codes[1].ID != hi {
		t.Fatalf("expected id-ascending order for equal timestamps, got %s, %s", codes[0].ID, codes[1].ID)
	}
}

func TestGetAPIToken(t *testing.T) {
	r := NewMemory()
	r.SeedToken("secret", "user-1")

	tok, err := r.GetAPIToken(context.Background(), "secret")
	if err != nil {
		t.Fatalf("GetAPIToken failed: %v", err)
	}
	if tok.UserID != "user-1" || !tok.Active {
		t.Fatalf("unexpected token: %+v", tok)
	}

	if _, err := r.GetAPIToken(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
