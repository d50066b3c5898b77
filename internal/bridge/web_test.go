package bridge

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func newTestWeb() *Web {
	return NewWeb(WebConfig{Delay: time.Millisecond}, slog.New(slog.DiscardHandler))
}

func TestWebSendCanned(t *testing.T) {
	w := newTestWeb()
	res, err := w.SendUSSDRequest(context.Background(), "*100#", 1)
	if err != nil {
		t.Fatalf("SendUSSDRequest failed: %v", err)
	}
	if !res.Success || res.Result != "Your balance is 25.50 MAD" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestWebSendUnknownCode(t *testing.T) {
	w := newTestWeb()
	res, err := w.SendUSSDRequest(context.Background(), "*42#", 1)
	if err != nil {
		t.Fatalf("SendUSSDRequest failed: %v", err)
	}
	if !res.Success || res.Result != "USSD request completed successfully" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestWebSendCancelledContext(t *testing.T) {
	w := NewWeb(WebConfig{Delay: time.Minute}, slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := w.SendUSSDRequest(ctx, "*100#", 1); err == nil {
		t.Fatal("expected context error")
	}
}

func TestWebSIMInfoPerSlot(t *testing.T) {
	w := newTestWeb()

	info1, err := w.GetSIMInfo(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetSIMInfo failed: %v", err)
	}
	if info1.Carrier != "ORANGE" || !info1.Active {
		t.Fatalf("unexpected slot 1 info: %+v", info1)
	}

	info2, _ := w.GetSIMInfo(context.Background(), 2)
	if info2.Carrier != "INWI" {
		t.Fatalf("unexpected slot 2 info: %+v", info2)
	}
}

func TestWebPermissionsAlwaysGranted(t *testing.T) {
	w := newTestWeb()

	check, err := w.CheckPermissions(context.Background())
	if err != nil || !check.Granted {
		t.Fatalf("expected granted, got %+v err=%v", check, err)
	}
	req, err := w.RequestPermissions(context.Background())
	if err != nil || !req.Granted {
		t.Fatalf("expected granted, got %+v err=%v", req, err)
	}
	if len(check.Permissions) == 0 {
		t.Fatal("expected permission list")
	}
}
