package suggest

import (
	"context"
	"fmt"

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

func (r *repoPG) Diagnoses(ctx context.Context, query string, limit int) ([]Diagnosis, error) {
	pattern := "%" + query + "%"
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT code, description FROM icd10_suggestions
		WHERE $1 = '%%' OR code ILIKE $1 OR description ILIKE $1
		ORDER BY code LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("query diagnoses: %w", err)
	}
	defer rows.Close()

	var out []Diagnosis
	for rows.Next() {
		var d Diagnosis
		if err := rows.Scan(&d.Code, &d.Description); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repoPG) Medications(ctx context.Context, query string, limit int) ([]Medication, error) {
	pattern := "%" + query + "%"
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT name, dosage, frequency, route FROM medication_suggestions
		WHERE $1 = '%%' OR name ILIKE $1
		ORDER BY name LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("query medications: %w", err)
	}
	defer rows.Close()

	var out []Medication
	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.Name, &m.Dosage, &m.Frequency, &m.Route); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
