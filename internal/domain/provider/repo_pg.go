package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soapnote/soapnote/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if conn := db.ConnFromContext(ctx); conn != nil {
		return conn
	}
	return r.pool
}

const provCols = "id, email, name, license_number, specialty, department, is_active, created_at, updated_at, created_by, modified_by"

func (r *repoPG) Create(ctx context.Context, p *Provider) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO providers (id, email, name, license_number, specialty, department, is_active, created_by, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Email, p.Name, p.LicenseNumber, p.Specialty, p.Department, p.IsActive, p.CreatedBy, p.ModifiedBy,
	)
	if err != nil {
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	row := r.conn(ctx).QueryRow(ctx,
		"SELECT "+provCols+" FROM providers WHERE id = $1", id)
	return scanProvider(row)
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Provider, error) {
	row := r.conn(ctx).QueryRow(ctx,
		"SELECT "+provCols+" FROM providers WHERE email = $1", email)
	return scanProvider(row)
}

func (r *repoPG) Update(ctx context.Context, p *Provider) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE providers
		SET email = $2, name = $3, license_number = $4, specialty = $5,
		    department = $6, is_active = $7, modified_by = $8, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Email, p.Name, p.LicenseNumber, p.Specialty, p.Department, p.IsActive, p.ModifiedBy,
	)
	if err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, "DELETE FROM providers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	q := r.conn(ctx)

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM providers").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count providers: %w", err)
	}

	rows, err := q.Query(ctx,
		"SELECT "+provCols+" FROM providers ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	return collectProviders(rows, total)
}

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.Email, &p.Name, &p.LicenseNumber, &p.Specialty, &p.Department,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.ModifiedBy)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProviders(rows pgx.Rows, total int) ([]*Provider, int, error) {
	var out []*Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.Email, &p.Name, &p.LicenseNumber, &p.Specialty, &p.Department,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.ModifiedBy); err != nil {
			return nil, 0, err
		}
		out = append(out, &p)
	}
	return out, total, rows.Err()
}
