package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jawadev0/ussd-magician/internal/bridge"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSimulatedCannedResponse(t *testing.T) {
	d := NewSimulated(Config{SimulatedDelay: time.Millisecond}, nil, testLogger())

	res := d.Execute(context.Background(), "*100#")
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.Result != "Your balance is 25.50 MAD" {
		t.Fatalf("unexpected result: %q", res.Result)
	}
}

func TestSimulatedUnknownCodeSynthesizes(t *testing.T) {
	d := NewSimulated(Config{SimulatedDelay: time.Millisecond}, nil, testLogger())

	res := d.Execute(context.Background(), "*999#")
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if !strings.Contains(res.Result, "*999#") || !strings.Contains(res.Result, "executed successfully") {
		t.Fatalf("unexpected synthesized result: %q", res.Result)
	}
}

func TestSimulatedCancelledContext(t *testing.T) {
	d := NewSimulated(Config{SimulatedDelay: time.Minute}, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := d.Execute(ctx, "*100#")
	if res.Success {
		t.Fatal("expected failure on cancelled context")
	}
}

type stubBridge struct {
	sendResult  bridge.SendResult
	sendErr     error
	sendPanics  bool
	checkStatus bridge.PermissionStatus
	checkErr    error
	reqStatus   bridge.PermissionStatus
	requested   bool
}

func (s *stubBridge) SendUSSDRequest(ctx context.Context, code string, slot int) (bridge.SendResult, error) {
	if s.sendPanics {
		panic("bridge exploded")
	}
	return s.sendResult, s.sendErr
}

func (s *stubBridge) GetSIMInfo(ctx context.Context, slot int) (bridge.SIMInfo, error) {
	return bridge.SIMInfo{Slot: slot}, nil
}

func (s *stubBridge) CheckPermissions(ctx context.Context) (bridge.PermissionStatus, error) {
	return s.checkStatus, s.checkErr
}

func (s *stubBridge) RequestPermissions(ctx context.Context) (bridge.PermissionStatus, error) {
	s.requested = true
	return s.reqStatus, nil
}

func TestNativePropagatesBridgeResult(t *testing.T) {
	b := &stubBridge{
		checkStatus: bridge.PermissionStatus{Granted: true},
		sendResult:  bridge.SendResult{Success: true, Result: "OK balance 10 MAD"},
	}
	d := NewNative(b, Config{Slot: 1}, nil, testLogger())

	res := d.Execute(context.Background(), "*100#")
	if !res.Success || res.Result != "OK balance 10 MAD" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestNativeRequestsPermissionsWhenMissing(t *testing.T) {
	b := &stubBridge{
		checkStatus: bridge.PermissionStatus{Granted: false},
		reqStatus:   bridge.PermissionStatus{Granted: true},
		sendResult:  bridge.SendResult{Success: true, Result: "ok"},
	}
	d := NewNative(b, Config{Slot: 1}, nil, testLogger())

	res := d.Execute(context.Background(), "*100#")
	if !b.requested {
		t.Fatal("expected permission request")
	}
	if !res.Success {
		t.Fatalf("expected success after grant, got %+v", res)
	}
}

func TestNativePermissionDenied(t *testing.T) {
	b := &stubBridge{
		checkStatus: bridge.PermissionStatus{Granted: false},
		reqStatus:   bridge.PermissionStatus{Granted: false},
	}
	d := NewNative(b, Config{Slot: 1}, nil, testLogger())

	res := d.Execute(context.Background(), "*100#")
	if res.Success {
		t.Fatal("expected failure on denied permissions")
	}
	if res.Error != PermissionDeniedMessage {
		t.Fatalf("unexpected error message: %q", res.Error)
	}
}

func TestNativeBridgeErrorDoesNotPropagate(t *testing.T) {
	b := &stubBridge{
		checkStatus: bridge.PermissionStatus{Granted: true},
		sendErr:     errors.New("radio unavailable"),
	}
	d := NewNative(b, Config{Slot: 1}, nil, testLogger())

	res := d.Execute(context.Background(), "*100#")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != "radio unavailable" {
		t.Fatalf("expected verbatim bridge error, got %q", res.Error)
	}
}

func TestNativeRecoversPanics(t *testing.T) {
	b := &stubBridge{
		checkStatus: bridge.PermissionStatus{Granted: true},
		sendPanics:  true,
	}
	d := NewNative(b, Config{Slot: 1}, nil, testLogger())

	res := d.Execute(context.Background(), "*100#")
	if res.Success {
		t.Fatal("expected failure from recovered panic")
	}
	if !strings.Contains(res.Error, "bridge exploded") {
		t.Fatalf("expected panic message in error, got %q", res.Error)
	}
}

type stubCounter struct {
	counts map[int]int
}

func (c *stubCounter) Increment(ctx context.Context, slot int) (int, error) {
	c.counts[slot]++
	return c.counts[slot], nil
}

func TestSimulatedRecordsUsage(t *testing.T) {
	c := &stubCounter{counts: map[int]int{}}
	d := NewSimulated(Config{SimulatedDelay: time.Millisecond, Slot: 2, Counter: c}, nil, testLogger())

	d.Execute(context.Background(), "*100#")
	if c.counts[2] != 1 {
		t.Fatalf("expected slot 2 count 1, got %d", c.counts[2])
	}
	if c.counts[1] != 0 {
		t.Fatalf("slot 1 should be untouched, got %d", c.counts[1])
	}
}

func TestSimulatedSkipsUsageOnFailure(t *testing.T) {
	c := &stubCounter{counts: map[int]int{}}
	d := NewSimulated(Config{SimulatedDelay: time.Minute, Slot: 1, Counter: c}, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.Execute(ctx, "*100#")
	if c.counts[1] != 0 {
		t.Fatalf("failed dispatch must not count, got %d", c.counts[1])
	}
}

func TestNativeRecordsUsageOnSuccess(t *testing.T) {
	c := &stubCounter{counts: map[int]int{}}
	b := &stubBridge{
		checkStatus: bridge.PermissionStatus{Granted: true},
		sendResult:  bridge.SendResult{Success: true, Result: "ok"},
	}
	d := NewNative(b, Config{Slot: 1, Counter: c}, nil, testLogger())

	d.Execute(context.Background(), "*100#")
	d.Execute(context.Background(), "*100#")
	if c.counts[1] != 2 {
		t.Fatalf("expected slot 1 count 2, got %d", c.counts[1])
	}
}

func TestNativeSkipsUsageWhenDenied(t *testing.T) {
	c := &stubCounter{counts: map[int]int{}}
	b := &stubBridge{
		checkStatus: bridge.PermissionStatus{Granted: false},
		reqStatus:   bridge.PermissionStatus{Granted: false},
	}
	d := NewNative(b, Config{Slot: 1, Counter: c}, nil, testLogger())

	d.Execute(context.Background(), "*100#")
	if c.counts[1] != 0 {
		t.Fatalf("denied dispatch must not count, got %d", c.counts[1])
	}
}

func TestNewSelectsStrategy(t *testing.T) {
	if _, ok := New(nil, Config{}, nil, testLogger()).(*Simulated); !ok {
		t.Fatal("expected simulated dispatcher without a bridge")
	}
	if _, ok := New(&stubBridge{}, Config{}, nil, testLogger()).(*Native); !ok {
		t.Fatal("expected native dispatcher with a bridge")
	}
}
