package repo

import (
	"context"
	"errors"
	"io/fs"
)

// ErrNotFound is returned when an operation targets an unknown record id.
var ErrNotFound = errors.New("record not found")

// Repository defines the interface for data persistence.
type Repository interface {
	// Lifecycle
	Close()
	Ping(ctx context.Context) error
	RunMigrations(ctx context.Context, filesystem fs.FS) error

	// USSD codes
	ListCodes(ctx context.Context, userID string) ([]USSDCode, error)
	GetCode(ctx context.Context, id, userID string) (*USSDCode, error)
	CreateCode(ctx context.Context, code NewCode) (*USSDCode, error)
	UpdateCode(ctx context.Context, id, userID string, upd CodeUpdate) (*USSDCode, error)
	DeleteCode(ctx context.Context, id, userID string) error
	ClearPending(ctx context.Context, userID string) (int64, error)
	SetExecutionResult(ctx context.Context, id, userID string, status CodeStatus, result string) error

	// API tokens
	GetAPIToken(ctx context.Context, token string) (*APIToken, error)
}
