package note

import (
	"context"
	"fmt"
	"strconv"
	"time"

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

const noteCols = "n.id, n.provider_id, n.patient_id, n.audio_file_id, n.visit_date, n.visit_type, " +
	"n.transcription, n.transcription_confidence, n.subjective_data, n.objective_data, " +
	"n.assessment_data, n.plan_data, n.chief_complaint, n.primary_diagnosis, n.icd10_codes, " +
	"n.ai_model_used, n.ai_confidence_score, n.processing_time_seconds, n.tokens_used, " +
	"n.estimated_cost, n.status, n.version, n.is_signed, n.signed_at, n.signed_by, " +
	"n.created_at, n.updated_at"

func (r *repoPG) Create(ctx context.Context, n *SOAPNote) error {
	n.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO soap_notes (id, provider_id, patient_id, audio_file_id, visit_date, visit_type,
			transcription, transcription_confidence, subjective_data, objective_data,
			assessment_data, plan_data, chief_complaint, primary_diagnosis, icd10_codes,
			ai_model_used, ai_confidence_score, processing_time_seconds, tokens_used,
			estimated_cost, status, version, is_signed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23)`,
		n.ID, n.ProviderID, n.PatientID, n.AudioFileID, n.VisitDate, n.VisitType,
		n.Transcription, n.TranscriptionConfidence, n.SubjectiveData, n.ObjectiveData,
		n.AssessmentData, n.PlanData, n.ChiefComplaint, n.PrimaryDiagnosis, n.ICD10Codes,
		n.AIModelUsed, n.AIConfidenceScore, n.ProcessingTimeSeconds, n.TokensUsed,
		n.EstimatedCost, n.Status, n.Version, n.IsSigned,
	)
	if err != nil {
		return fmt.Errorf("insert soap note: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*SOAPNote, error) {
	row := r.conn(ctx).QueryRow(ctx,
		"SELECT "+noteCols+" FROM soap_notes n WHERE n.id = $1", id)
	return scanNote(row)
}

func (r *repoPG) Update(ctx context.Context, n *SOAPNote) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE soap_notes
		SET visit_date = $2, visit_type = $3, transcription = $4, transcription_confidence = $5,
		    subjective_data = $6, objective_data = $7, assessment_data = $8, plan_data = $9,
		    chief_complaint = $10, primary_diagnosis = $11, icd10_codes = $12,
		    status = $13, version = $14, is_signed = $15, signed_at = $16, signed_by = $17,
		    updated_at = NOW()
		WHERE id = $1`,
		n.ID, n.VisitDate, n.VisitType, n.Transcription, n.TranscriptionConfidence,
		n.SubjectiveData, n.ObjectiveData, n.AssessmentData, n.PlanData,
		n.ChiefComplaint, n.PrimaryDiagnosis, n.ICD10Codes,
		n.Status, n.Version, n.IsSigned, n.SignedAt, n.SignedBy,
	)
	if err != nil {
		return fmt.Errorf("update soap note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, "DELETE FROM soap_notes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete soap note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*SOAPNote, int, error) {
	q := r.conn(ctx)

	join := " FROM soap_notes n"
	where := " WHERE 1=1"
	var args []any

	if filter.ProviderEmail != "" {
		join += " JOIN providers prov ON prov.id = n.provider_id"
		args = append(args, filter.ProviderEmail)
		where += " AND prov.email = $" + strconv.Itoa(len(args))
	}
	if filter.PatientMRN != "" {
		join += " JOIN patients pat ON pat.id = n.patient_id"
		args = append(args, filter.PatientMRN)
		where += " AND pat.mrn = $" + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND n.status = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+join+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count soap notes: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := q.Query(ctx,
		"SELECT "+noteCols+join+where+
			" ORDER BY n.created_at DESC LIMIT $"+strconv.Itoa(len(args)-1)+" OFFSET $"+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list soap notes: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows, total)
}

func (r *repoPG) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM soap_notes").Scan(&n)
	return n, err
}

func (r *repoPG) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM soap_notes WHERE created_at >= $1", since).Scan(&n)
	return n, err
}

func (r *repoPG) CountByProvider(ctx context.Context, providerID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM soap_notes WHERE provider_id = $1", providerID).Scan(&n)
	return n, err
}

func (r *repoPG) CountSignedByProvider(ctx context.Context, providerID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM soap_notes WHERE provider_id = $1 AND is_signed", providerID).Scan(&n)
	return n, err
}

func (r *repoPG) TopDiagnoses(ctx context.Context, limit int) ([]DiagnosisCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT primary_diagnosis, COUNT(*) AS cnt
		FROM soap_notes
		WHERE primary_diagnosis IS NOT NULL AND primary_diagnosis <> ''
		GROUP BY primary_diagnosis
		ORDER BY cnt DESC, primary_diagnosis
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top diagnoses: %w", err)
	}
	defer rows.Close()

	var out []DiagnosisCount
	for rows.Next() {
		var dc DiagnosisCount
		if err := rows.Scan(&dc.Diagnosis, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

func (r *repoPG) AvgProcessingSeconds(ctx context.Context) (float64, error) {
	var avg *float64
	err := r.conn(ctx).QueryRow(ctx,
		"SELECT AVG(processing_time_seconds) FROM soap_notes WHERE processing_time_seconds IS NOT NULL").Scan(&avg)
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func scanNote(row pgx.Row) (*SOAPNote, error) {
	var n SOAPNote
	err := row.Scan(&n.ID, &n.ProviderID, &n.PatientID, &n.AudioFileID, &n.VisitDate, &n.VisitType,
		&n.Transcription, &n.TranscriptionConfidence, &n.SubjectiveData, &n.ObjectiveData,
		&n.AssessmentData, &n.PlanData, &n.ChiefComplaint, &n.PrimaryDiagnosis, &n.ICD10Codes,
		&n.AIModelUsed, &n.AIConfidenceScore, &n.ProcessingTimeSeconds, &n.TokensUsed,
		&n.EstimatedCost, &n.Status, &n.Version, &n.IsSigned, &n.SignedAt, &n.SignedBy,
		&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func collectNotes(rows pgx.Rows, total int) ([]*SOAPNote, int, error) {
	var out []*SOAPNote
	for rows.Next() {
		var n SOAPNote
		if err := rows.Scan(&n.ID, &n.ProviderID, &n.PatientID, &n.AudioFileID, &n.VisitDate, &n.VisitType,
			&n.Transcription, &n.TranscriptionConfidence, &n.SubjectiveData, &n.ObjectiveData,
			&n.AssessmentData, &n.PlanData, &n.ChiefComplaint, &n.PrimaryDiagnosis, &n.ICD10Codes,
			&n.AIModelUsed, &n.AIConfidenceScore, &n.ProcessingTimeSeconds, &n.TokensUsed,
			&n.EstimatedCost, &n.Status, &n.Version, &n.IsSigned, &n.SignedAt, &n.SignedBy,
			&n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &n)
	}
	return out, total, rows.Err()
}
