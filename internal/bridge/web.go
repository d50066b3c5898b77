package bridge

import (
	"context"
	"log/slog"
	"time"
)

// Canned responses served by the simulated bridge, keyed by exact dial string.
var webResponses = map[string]string{
	"*100#": "Your balance is 25.50 MAD",
	"*101#": "Recharge successful. New balance: 50.00 MAD",
	"*121#": "Your number is +212 6XX XXX XXX",
	"*555#": "Data bundle activated. 1GB valid for 7 days",
}

var webPermissions = []string{"CALL_PHONE", "READ_PHONE_STATE"}

// Web simulates the platform bridge for non-mobile targets. Sends resolve
// against a fixed response table after an artificial radio delay, SIM info
// is static and permissions are always granted.
type Web struct {
	logger *slog.Logger
	delay  time.Duration
}

// WebConfig tunes the simulated bridge.
type WebConfig struct {
	// Delay before a send resolves, emulating network/radio latency.
	Delay time.Duration
}

// NewWeb returns the simulated bridge.
func NewWeb(cfg WebConfig, logger *slog.Logger) *Web {
	delay := cfg.Delay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Web{
		logger: logger.With("component", "bridge_web"),
		delay:  delay,
	}
}

// SendUSSDRequest resolves the dial string against the canned table.
func (w *Web) SendUSSDRequest(ctx context.Context, code string, slot int) (SendResult, error) {
	w.logger.Debug("ussd request (web simulation)", "code", code, "slot", slot)

	select {
	case <-time.After(w.delay):
	case <-ctx.Done():
		return SendResult{}, ctx.Err()
	}

	result, ok := webResponses[code]
	if !ok {
		result = "USSD request completed successfully"
	}
	return SendResult{Success: true, Result: result}, nil
}

// GetSIMInfo reports a fixed dual-SIM layout: slot 1 on ORANGE, slot 2 on INWI.
func (w *Web) GetSIMInfo(ctx context.Context, slot int) (SIMInfo, error) {
	if slot != 2 {
		slot = 1
	}
	info := SIMInfo{Slot: slot, Active: true, Carrier: "ORANGE", PhoneNumber: "+212 6XX XXX XX1"}
	if slot == 2 {
		info.Carrier = "INWI"
		info.PhoneNumber = "+212 6XX XXX XX2"
	}
	return info, nil
}

// CheckPermissions always reports granted in the simulation.
func (w *Web) CheckPermissions(ctx context.Context) (PermissionStatus, error) {
	return PermissionStatus{Granted: true, Permissions: webPermissions}, nil
}

// RequestPermissions always grants in the simulation.
func (w *Web) RequestPermissions(ctx context.Context) (PermissionStatus, error) {
	return PermissionStatus{Granted: true, Permissions: webPermissions}, nil
}
