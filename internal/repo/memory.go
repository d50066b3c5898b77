package repo

import (
	"context"
	"io/fs"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps records in process memory. It stands in for the
// database during local development and in tests, mirroring the demo code
// list the dashboard ships with.
type MemoryRepository struct {
	mu     sync.Mutex
	codes  []USSDCode
	tokens map[string]APIToken
	now    func() time.Time
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		tokens: map[string]APIToken{},
		now:    time.Now,
	}
}

// SeedDemoCodes loads the built-in demo records for the given user.
func (r *MemoryRepository) SeedDemoCodes(userID string) {
	demo := []struct {
		name, code, category, description string
	}{
		{"Check Balance", "*123#", "Balance Check", "Check your account balance"},
		{"Data Balance", "*131*4#", "Data Plans", "Check your data balance"},
		{"Airtime Transfer", "*131*1*1#", "Airtime", "Transfer airtime to another number"},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range demo {
		category, description := d.category, d.description
		r.codes = append(r.codes, USSDCode{
			ID:          uuid.NewString(),
			UserID:      userID,
			Name:        d.name,
			Code:        d.code,
			Type:        CodeTypeActivation,
			SIM:         1,
			Operator:    OperatorOrange,
			Status:      StatusPending,
			Category:    &category,
			Description: &description,
			CreatedAt:   r.now(),
			UpdatedAt:   r.now(),
		})
	}
}

// SeedToken registers a bearer credential for the given user.
func (r *MemoryRepository) SeedToken(token, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = APIToken{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		Active:    true,
		CreatedAt: r.now(),
	}
}

// SeedTokenExpiring registers a bearer credential with an expiry.
func (r *MemoryRepository) SeedTokenExpiring(token, userID string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = APIToken{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		Active:    true,
		ExpiresAt: &expiresAt,
		CreatedAt: r.now(),
	}
}

// Close is a no-op for the in-memory store.
func (r *MemoryRepository) Close() {}

// Ping always succeeds.
func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }

// RunMigrations is a no-op for the in-memory store.
func (r *MemoryRepository) RunMigrations(ctx context.Context, filesystem fs.FS) error { return nil }

// ListCodes returns every code owned by the user, newest first.
func (r *MemoryRepository) ListCodes(ctx context.Context, userID string) ([]USSDCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var codes []USSDCode
	for _, c := range r.codes {
		if c.UserID == userID {
			codes = append(codes, c)
		}
	}
	// Same ordering as the SQL stores: created_at DESC, id.
	sort.SliceStable(codes, func(i, j int) bool {
		if codes[i].CreatedAt.Equal(codes[j].CreatedAt) {
			return codes[i].ID < codes[j].ID
		}
		return codes[i].CreatedAt.After(codes[j].CreatedAt)
	})
	return codes, nil
}

// GetCode fetches a single code by id, scoped to the owning user.
func (r *MemoryRepository) GetCode(ctx context.Context, id, userID string) (*USSDCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id, userID)
	if idx < 0 {
		return nil, ErrNotFound
	}
	c := r.codes[idx]
	return &c, nil
}

// CreateCode inserts a new record with a fresh id and pending status.
func (r *MemoryRepository) CreateCode(ctx context.Context, code NewCode) (*USSDCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := USSDCode{
		ID:          uuid.NewString(),
		UserID:      code.UserID,
		Name:        code.Name,
		Code:        code.Code,
		Type:        code.Type,
		SIM:         code.SIM,
		Operator:    code.Operator,
		Device:      code.Device,
		Status:      StatusPending,
		Category:    code.Category,
		Description: code.Description,
		CreatedAt:   r.now(),
		UpdatedAt:   r.now(),
	}
	r.codes = append(r.codes, c)
	return &c, nil
}

// UpdateCode merges the provided fields into the existing record.
func (r *MemoryRepository) UpdateCode(ctx context.Context, id, userID string, upd CodeUpdate) (*USSDCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id, userID)
	if idx < 0 {
		return nil, ErrNotFound
	}

	c := &r.codes[idx]
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Code != nil {
		c.Code = *upd.Code
	}
	if upd.Type != nil {
		c.Type = *upd.Type
	}
	if upd.SIM != nil {
		c.SIM = *upd.SIM
	}
	if upd.Operator != nil {
		c.Operator = *upd.Operator
	}
	if upd.Device != nil {
		c.Device = *upd.Device
	}
	if upd.Category != nil {
		c.Category = upd.Category
	}
	if upd.Description != nil {
		c.Description = upd.Description
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	c.UpdatedAt = r.now()

	out := *c
	return &out, nil
}

// DeleteCode removes the matching record.
func (r *MemoryRepository) DeleteCode(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id, userID)
	if idx < 0 {
		return ErrNotFound
	}
	r.codes = append(r.codes[:idx], r.codes[idx+1:]...)
	return nil
}

// ClearPending removes every pending record owned by the user.
func (r *MemoryRepository) ClearPending(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []USSDCode
	var removed int64
	for _, c := range r.codes {
		if c.UserID == userID && c.Status == StatusPending {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.codes = kept
	return removed, nil
}

// SetExecutionResult records the outcome of a dispatch on the code record.
func (r *MemoryRepository) SetExecutionResult(ctx context.Context, id, userID string, status CodeStatus, result string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id, userID)
	if idx < 0 {
		return ErrNotFound
	}
	c := &r.codes[idx]
	c.Status = status
	c.Result = &result
	executed := r.now()
	c.LastExecuted = &executed
	c.UpdatedAt = executed
	return nil
}

// GetAPIToken looks up a bearer credential by its token value.
func (r *MemoryRepository) GetAPIToken(ctx context.Context, token string) (*APIToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) indexOf(id, userID string) int {
	for i, c := range r.codes {
		if c.ID == id && c.UserID == userID {
			return i
		}
	}
	return -1
}
