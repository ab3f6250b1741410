package audio

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

const audioCols = "id, filename, original_filename, file_size, mime_type, duration_seconds, " +
	"blob_container, blob_name, blob_url, transcription_status, transcription_confidence, " +
	"error_message, provider_id, created_at, updated_at"

func (r *repoPG) Create(ctx context.Context, a *AudioFile) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audio_files (id, filename, original_filename, file_size, mime_type,
			duration_seconds, blob_container, blob_name, blob_url, transcription_status,
			transcription_confidence, error_message, provider_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.Filename, a.OriginalFilename, a.FileSize, a.MimeType,
		a.DurationSeconds, a.BlobContainer, a.BlobName, a.BlobURL, a.TranscriptionStatus,
		a.TranscriptionConfidence, a.ErrorMessage, a.ProviderID,
	)
	if err != nil {
		return fmt.Errorf("insert audio file: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*AudioFile, error) {
	row := r.conn(ctx).QueryRow(ctx,
		"SELECT "+audioCols+" FROM audio_files WHERE id = $1", id)
	return scanAudio(row)
}

func (r *repoPG) Update(ctx context.Context, a *AudioFile) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE audio_files
		SET filename = $2, duration_seconds = $3, blob_url = $4, transcription_status = $5,
		    transcription_confidence = $6, error_message = $7, updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.Filename, a.DurationSeconds, a.BlobURL, a.TranscriptionStatus,
		a.TranscriptionConfidence, a.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("update audio file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, "DELETE FROM audio_files WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete audio file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*AudioFile, int, error) {
	q := r.conn(ctx)

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM audio_files").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audio files: %w", err)
	}

	rows, err := q.Query(ctx,
		"SELECT "+audioCols+" FROM audio_files ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list audio files: %w", err)
	}
	defer rows.Close()

	return collectAudio(rows, total)
}

func (r *repoPG) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*AudioFile, int, error) {
	q := r.conn(ctx)

	var total int
	if err := q.QueryRow(ctx,
		"SELECT COUNT(*) FROM audio_files WHERE provider_id = $1", providerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audio files by provider: %w", err)
	}

	rows, err := q.Query(ctx,
		"SELECT "+audioCols+" FROM audio_files WHERE provider_id = $1 "+
			"ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		providerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list audio files by provider: %w", err)
	}
	defer rows.Close()

	return collectAudio(rows, total)
}

func scanAudio(row pgx.Row) (*AudioFile, error) {
	var a AudioFile
	err := row.Scan(&a.ID, &a.Filename, &a.OriginalFilename, &a.FileSize, &a.MimeType,
		&a.DurationSeconds, &a.BlobContainer, &a.BlobName, &a.BlobURL, &a.TranscriptionStatus,
		&a.TranscriptionConfidence, &a.ErrorMessage, &a.ProviderID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAudio(rows pgx.Rows, total int) ([]*AudioFile, int, error) {
	var out []*AudioFile
	for rows.Next() {
		var a AudioFile
		if err := rows.Scan(&a.ID, &a.Filename, &a.OriginalFilename, &a.FileSize, &a.MimeType,
			&a.DurationSeconds, &a.BlobContainer, &a.BlobName, &a.BlobURL, &a.TranscriptionStatus,
			&a.TranscriptionConfidence, &a.ErrorMessage, &a.ProviderID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &a)
	}
	return out, total, rows.Err()
}
