// Package bridge defines the capability contract a host platform must
// provide to place USSD requests and inspect SIM hardware. The dashboard
// backend never implements the real mobile side; it ships a simulated
// implementation and accepts a native one from the embedding shell.
package bridge

import "context"

// SendResult is the outcome of a USSD send as reported by the platform.
type SendResult struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Error   string `json:"error,omitempty"`
}

// SIMInfo describes one SIM slot as reported by the platform.
type SIMInfo struct {
	Slot        int    `json:"simSlot"`
	Active      bool   `json:"isActive"`
	Carrier     string `json:"carrier,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// PermissionStatus reports the run-time phone permission state.
type PermissionStatus struct {
	Granted     bool     `json:"granted"`
	Permissions []string `json:"permissions"`
}

// Bridge is the host platform contract.
type Bridge interface {
	SendUSSDRequest(ctx context.Context, code string, slot int) (SendResult, error)
	GetSIMInfo(ctx context.Context, slot int) (SIMInfo, error)
	CheckPermissions(ctx context.Context) (PermissionStatus, error)
	RequestPermissions(ctx context.Context) (PermissionStatus, error)
}
