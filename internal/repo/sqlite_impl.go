package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SQLite mirrors the Postgres queries with ? placeholders and
// CURRENT_TIMESTAMP in place of NOW(). Row ids are generated in Go since
// SQLite has no native UUID default.

func scanCodeRow(row *sql.Row) (*USSDCode, error) {
	var c USSDCode
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Code, &c.Type, &c.SIM, &c.Operator, &c.Device,
		&c.Status, &c.Category, &c.Description, &c.Result, &c.LastExecuted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListCodes returns every code owned by the user, newest first.
func (r *SQLiteRepository) ListCodes(ctx context.Context, userID string) ([]USSDCode, error) {
	q := fmt.Sprintf(`SELECT %s FROM ussd_codes WHERE user_id = ? ORDER BY created_at DESC, id;`, codeColumns)
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()

	var codes []USSDCode
	for rows.Next() {
		var c USSDCode
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Code, &c.Type, &c.SIM, &c.Operator, &c.Device,
			&c.Status, &c.Category, &c.Description, &c.Result, &c.LastExecuted, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate codes: %w", err)
	}
	return codes, nil
}

// GetCode fetches a single code by id, scoped to the owning user.
func (r *SQLiteRepository) GetCode(ctx context.Context, id, userID string) (*USSDCode, error) {
	q := fmt.Sprintf(`SELECT %s FROM ussd_codes WHERE id = ? AND user_id = ? LIMIT 1;`, codeColumns)
	c, err := scanCodeRow(r.db.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get code: %w", err)
	}
	return c, nil
}

// CreateCode inserts a new record with a fresh id and pending status.
func (r *SQLiteRepository) CreateCode(ctx context.Context, code NewCode) (*USSDCode, error) {
	q := fmt.Sprintf(`
INSERT INTO ussd_codes (id, user_id, name, code, type, sim, operator, device, status, category, description)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING %s;`, codeColumns)

	c, err := scanCodeRow(r.db.QueryRowContext(ctx, q,
		uuid.NewString(),
		code.UserID,
		code.Name,
		code.Code,
		code.Type,
		code.SIM,
		code.Operator,
		code.Device,
		StatusPending,
		code.Category,
		code.Description,
	))
	if err != nil {
		return nil, fmt.Errorf("insert code: %w", err)
	}
	return c, nil
}

// UpdateCode merges the provided fields into the existing record.
func (r *SQLiteRepository) UpdateCode(ctx context.Context, id, userID string, upd CodeUpdate) (*USSDCode, error) {
	q := fmt.Sprintf(`
UPDATE ussd_codes SET
    name = COALESCE(?, name),
    code = COALESCE(?, code),
    type = COALESCE(?, type),
    sim = COALESCE(?, sim),
    operator = COALESCE(?, operator),
    device = COALESCE(?, device),
    category = COALESCE(?, category),
    description = COALESCE(?, description),
    status = COALESCE(?, status),
    updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND user_id = ?
RETURNING %s;`, codeColumns)

	c, err := scanCodeRow(r.db.QueryRowContext(ctx, q,
		upd.Name, upd.Code, upd.Type, upd.SIM, upd.Operator, upd.Device,
		upd.Category, upd.Description, upd.Status, id, userID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update code: %w", err)
	}
	return c, nil
}

// DeleteCode removes the matching record.
func (r *SQLiteRepository) DeleteCode(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM ussd_codes WHERE id = ? AND user_id = ?;`
	ct, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearPending removes every pending record owned by the user.
func (r *SQLiteRepository) ClearPending(ctx context.Context, userID string) (int64, error) {
	const q = `DELETE FROM ussd_codes WHERE user_id = ? AND status = ?;`
	ct, err := r.db.ExecContext(ctx, q, userID, StatusPending)
	if err != nil {
		return 0, fmt.Errorf("clear pending: %w", err)
	}
	n, _ := ct.RowsAffected()
	return n, nil
}

// SetExecutionResult records the outcome of a dispatch on the code record.
func (r *SQLiteRepository) SetExecutionResult(ctx context.Context, id, userID string, status CodeStatus, result string) error {
	const q = `
UPDATE ussd_codes
SET status = ?, result = ?, last_executed = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND user_id = ?;`
	ct, err := r.db.ExecContext(ctx, q, status, result, id, userID)
	if err != nil {
		return fmt.Errorf("set execution result: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAPIToken looks up an active bearer credential by its token value.
func (r *SQLiteRepository) GetAPIToken(ctx context.Context, token string) (*APIToken, error) {
	const q = `
SELECT id, token, user_id, active, expires_at, created_at
FROM api_tokens
WHERE token = ?
LIMIT 1;`
	var t APIToken
	err := r.db.QueryRowContext(ctx, q, token).Scan(&t.ID, &t.Token, &t.UserID, &t.Active, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api token: %w", err)
	}
	return &t, nil
}
