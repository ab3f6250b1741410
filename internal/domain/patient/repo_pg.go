package patient

import (
	"context"
	"errors"
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

const patCols = "id, mrn, first_name, last_name, date_of_birth, gender, phone, email, " +
	"address_line1, address_line2, city, state, zip_code, insurance_info, emergency_contact, " +
	"is_active, created_at, updated_at, created_by, modified_by"

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, mrn, first_name, last_name, date_of_birth, gender, phone, email,
			address_line1, address_line2, city, state, zip_code, insurance_info, emergency_contact,
			is_active, created_by, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		p.ID, p.MRN, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.Phone, p.Email,
		p.AddressLine1, p.AddressLine2, p.City, p.State, p.ZipCode, p.InsuranceInfo, p.EmergencyContact,
		p.IsActive, p.CreatedBy, p.ModifiedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateMRN
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.conn(ctx).QueryRow(ctx,
		"SELECT "+patCols+" FROM patients WHERE id = $1", id)
	return scanPatient(row)
}

func (r *repoPG) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	row := r.conn(ctx).QueryRow(ctx,
		"SELECT "+patCols+" FROM patients WHERE mrn = $1", mrn)
	return scanPatient(row)
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients
		SET mrn = $2, first_name = $3, last_name = $4, date_of_birth = $5, gender = $6,
		    phone = $7, email = $8, address_line1 = $9, address_line2 = $10, city = $11,
		    state = $12, zip_code = $13, insurance_info = $14, emergency_contact = $15,
		    is_active = $16, modified_by = $17, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.MRN, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.Phone, p.Email, p.AddressLine1, p.AddressLine2, p.City,
		p.State, p.ZipCode, p.InsuranceInfo, p.EmergencyContact,
		p.IsActive, p.ModifiedBy,
	)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, "DELETE FROM patients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	q := r.conn(ctx)

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM patients").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	rows, err := q.Query(ctx,
		"SELECT "+patCols+" FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	return collectPatients(rows, total)
}

func (r *repoPG) Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error) {
	q := r.conn(ctx)
	pattern := "%" + term + "%"
	where := "first_name ILIKE $1 OR last_name ILIKE $1 OR mrn ILIKE $1"

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM patients WHERE "+where, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patient search: %w", err)
	}

	rows, err := q.Query(ctx,
		"SELECT "+patCols+" FROM patients WHERE "+where+
			" ORDER BY last_name, first_name LIMIT $2 OFFSET $3",
		pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search patients: %w", err)
	}
	defer rows.Close()

	return collectPatients(rows, total)
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.MRN, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender,
		&p.Phone, &p.Email, &p.AddressLine1, &p.AddressLine2, &p.City, &p.State, &p.ZipCode,
		&p.InsuranceInfo, &p.EmergencyContact, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.CreatedBy, &p.ModifiedBy)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var out []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.MRN, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender,
			&p.Phone, &p.Email, &p.AddressLine1, &p.AddressLine2, &p.City, &p.State, &p.ZipCode,
			&p.InsuranceInfo, &p.EmergencyContact, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&p.CreatedBy, &p.ModifiedBy); err != nil {
			return nil, 0, err
		}
		out = append(out, &p)
	}
	return out, total, rows.Err()
}
