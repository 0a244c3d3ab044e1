package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sstcore/internal/apperrors"
)

// PgxPool is the subset of pgxpool.Pool the adapter needs; pgxmock satisfies
// it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres stores each table as (id uuid, tenant_id uuid, seq bigserial,
// doc jsonb, created_at, updated_at). Every statement carries the tenant
// predicate taken from the Handle; there is no code path that queries a
// table without it.
type Postgres struct {
	db PgxPool
}

func NewPostgres(db PgxPool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) List(ctx context.Context, h Handle, table string, f Filter) ([]Row, error) {
	const op = "store.List"
	if err := checkScope(op, h, table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, doc, created_at, updated_at FROM %s WHERE tenant_id = $1`, table)
	args := []any{h.tenantID}
	if len(f.Match) > 0 {
		match, err := json.Marshal(f.Match)
		if err != nil {
			return nil, apperrors.Internal(op, err)
		}
		query += ` AND doc @> $2`
		args = append(args, match)
	}
	if f.Descending {
		query += ` ORDER BY seq DESC`
	} else {
		query += ` ORDER BY seq ASC`
	}
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Unavailable(op, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Doc, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, apperrors.Unavailable(op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable(op, err)
	}
	return out, nil
}

func (p *Postgres) Get(ctx context.Context, h Handle, table string, id uuid.UUID) (*Row, error) {
	const op = "store.Get"
	if err := checkScope(op, h, table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, doc, created_at, updated_at FROM %s WHERE tenant_id = $1 AND id = $2`, table)
	var r Row
	err := p.db.QueryRow(ctx, query, h.tenantID, id).Scan(&r.ID, &r.Doc, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound(op, "row not found")
	}
	if err != nil {
		return nil, apperrors.Unavailable(op, err)
	}
	return &r, nil
}

func (p *Postgres) Append(ctx context.Context, h Handle, table string, doc any) (uuid.UUID, error) {
	const op = "store.Append"
	if err := checkScope(op, h, table); err != nil {
		return uuid.Nil, err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return uuid.Nil, apperrors.Internal(op, err)
	}

	id := uuid.New()
	query := fmt.Sprintf(`INSERT INTO %s (id, tenant_id, doc, created_at, updated_at) VALUES ($1, $2, $3, NOW(), NOW())`, table)
	if _, err := p.db.Exec(ctx, query, id, h.tenantID, data); err != nil {
		return uuid.Nil, apperrors.Unavailable(op, err)
	}
	return id, nil
}

func (p *Postgres) Update(ctx context.Context, h Handle, table string, id uuid.UUID, patch map[string]any) (*Row, error) {
	const op = "store.Update"
	if err := checkScope(op, h, table); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return p.Get(ctx, h, table, id)
	}

	data, err := json.Marshal(patch)
	if err != nil {
		return nil, apperrors.Internal(op, err)
	}

	// Shallow jsonb merge; concurrent updates to the same key are
	// last-write-wins, a single statement either way.
	query := fmt.Sprintf(`UPDATE %s SET doc = doc || $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2 RETURNING id, doc, created_at, updated_at`, table)
	var r Row
	err = p.db.QueryRow(ctx, query, h.tenantID, id, data).Scan(&r.ID, &r.Doc, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound(op, "row not found")
	}
	if err != nil {
		return nil, apperrors.Unavailable(op, err)
	}
	return &r, nil
}

func (p *Postgres) Delete(ctx context.Context, h Handle, table string, id uuid.UUID) error {
	const op = "store.Delete"
	if err := checkScope(op, h, table); err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE tenant_id = $1 AND id = $2`, table)
	tag, err := p.db.Exec(ctx, query, h.tenantID, id)
	if err != nil {
		return apperrors.Unavailable(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(op, "row not found")
	}
	return nil
}
