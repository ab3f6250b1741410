package audit

import (
	"context"
	"fmt"
	"strconv"

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

const auditCols = "id, user_id, session_id, ip_address, user_agent, action, resource_type, " +
	"resource_id, success, error_message, additional_data, created_at"

func (r *repoPG) Create(ctx context.Context, l *Log) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO system_audit_logs (id, user_id, session_id, ip_address, user_agent, action,
			resource_type, resource_id, success, error_message, additional_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.ID, l.UserID, l.SessionID, l.IPAddress, l.UserAgent, l.Action,
		l.ResourceType, l.ResourceID, l.Success, l.ErrorMessage, l.AdditionalData,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Log, int, error) {
	q := r.conn(ctx)

	where := " WHERE 1=1"
	var args []any
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += " AND user_id = $" + strconv.Itoa(len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		where += " AND action = $" + strconv.Itoa(len(args))
	}
	if filter.ResourceType != "" {
		args = append(args, filter.ResourceType)
		where += " AND resource_type = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM system_audit_logs"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := q.Query(ctx,
		"SELECT "+auditCols+" FROM system_audit_logs"+where+
			" ORDER BY created_at DESC LIMIT $"+strconv.Itoa(len(args)-1)+" OFFSET $"+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var out []*Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.UserID, &l.SessionID, &l.IPAddress, &l.UserAgent, &l.Action,
			&l.ResourceType, &l.ResourceID, &l.Success, &l.ErrorMessage, &l.AdditionalData,
			&l.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &l)
	}
	return out, total, rows.Err()
}
