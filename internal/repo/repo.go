package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository provides typed access to Supabase (Postgres) resources.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	schema string
}

// New opens a new connection pool to the database with the desired search_path.
func New(ctx context.Context, databaseURL, schema string, logger *slog.Logger) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.ConnConfig.RuntimeParams == nil {
		cfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	if schema != "" {
		cfg.ConnConfig.RuntimeParams["search_path"] = schema
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	r := &PostgresRepository{
		pool:   pool,
		logger: logger.With("component", "repo"),
		schema: schema,
	}

	if err := r.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Ping ensures the database is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// WithTx executes fn within a database transaction.
func (r *PostgresRepository) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

// RunMigrations applies schema migrations on the connected database.
func (r *PostgresRepository) RunMigrations(ctx context.Context, filesystem fs.FS) error {
	return ApplyMigrations(ctx, r.pool, filesystem)
}

const codeColumns = `id, user_id, name, code, type, sim, operator, device, status, category, description, result, last_executed, created_at, updated_at`

func scanCode(row pgx.Row) (*USSDCode, error) {
	var c USSDCode
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Code, &c.Type, &c.SIM, &c.Operator, &c.Device,
		&c.Status, &c.Category, &c.Description, &c.Result, &c.LastExecuted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListCodes returns every code owned by the user, newest first.
func (r *PostgresRepository) ListCodes(ctx context.Context, userID string) ([]USSDCode, error) {
	q := fmt.Sprintf(`SELECT %s FROM ussd_codes WHERE user_id = $1 ORDER BY created_at DESC, id;`, codeColumns)
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()

	var codes []USSDCode
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		codes = append(codes, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate codes: %w", err)
	}
	return codes, nil
}

// GetCode fetches a single code by id, scoped to the owning user.
func (r *PostgresRepository) GetCode(ctx context.Context, id, userID string) (*USSDCode, error) {
	q := fmt.Sprintf(`SELECT %s FROM ussd_codes WHERE id = $1 AND user_id = $2 LIMIT 1;`, codeColumns)
	c, err := scanCode(r.pool.QueryRow(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get code: %w", err)
	}
	return c, nil
}

// CreateCode inserts a new record with a fresh id and pending status.
func (r *PostgresRepository) CreateCode(ctx context.Context, code NewCode) (*USSDCode, error) {
	q := fmt.Sprintf(`
INSERT INTO ussd_codes (id, user_id, name, code, type, sim, operator, device, status, category, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING %s;`, codeColumns)

	c, err := scanCode(r.pool.QueryRow(ctx, q,
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
func (r *PostgresRepository) UpdateCode(ctx context.Context, id, userID string, upd CodeUpdate) (*USSDCode, error) {
	q := fmt.Sprintf(`
UPDATE ussd_codes SET
    name = COALESCE($3, name),
    code = COALESCE($4, code),
    type = COALESCE($5, type),
    sim = COALESCE($6, sim),
    operator = COALESCE($7, operator),
    device = COALESCE($8, device),
    category = COALESCE($9, category),
    description = COALESCE($10, description),
    status = COALESCE($11, status),
    updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING %s;`, codeColumns)

	c, err := scanCode(r.pool.QueryRow(ctx, q, id, userID,
		upd.Name, upd.Code, upd.Type, upd.SIM, upd.Operator, upd.Device,
		upd.Category, upd.Description, upd.Status))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update code: %w", err)
	}
	return c, nil
}

// DeleteCode removes the matching record.
func (r *PostgresRepository) DeleteCode(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM ussd_codes WHERE id = $1 AND user_id = $2;`
	ct, err := r.pool.Exec(ctx, q, id, userID)
	if err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearPending removes every pending record owned by the user.
func (r *PostgresRepository) ClearPending(ctx context.Context, userID string) (int64, error) {
	const q = `DELETE FROM ussd_codes WHERE user_id = $1 AND status = $2;`
	ct, err := r.pool.Exec(ctx, q, userID, StatusPending)
	if err != nil {
		return 0, fmt.Errorf("clear pending: %w", err)
	}
	return ct.RowsAffected(), nil
}

// SetExecutionResult records the outcome of a dispatch on the code record.
func (r *PostgresRepository) SetExecutionResult(ctx context.Context, id, userID string, status CodeStatus, result string) error {
	const q = `
UPDATE ussd_codes
SET status = $3, result = $4, last_executed = NOW(), updated_at = NOW()
WHERE id = $1 AND user_id = $2;`
	ct, err := r.pool.Exec(ctx, q, id, userID, status, result)
	if err != nil {
		return fmt.Errorf("set execution result: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAPIToken looks up an active bearer credential by its token value.
func (r *PostgresRepository) GetAPIToken(ctx context.Context, token string) (*APIToken, error) {
	const q = `
SELECT id, token, user_id, active, expires_at, created_at
FROM api_tokens
WHERE token = $1
LIMIT 1;`
	var t APIToken
	err := r.pool.QueryRow(ctx, q, token).Scan(&t.ID, &t.Token, &t.UserID, &t.Active, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api token: %w", err)
	}
	return &t, nil
}
