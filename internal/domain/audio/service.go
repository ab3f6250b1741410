package audio

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/soapnote/soapnote/internal/platform/blobstore"
)

// Container is the logical bucket audio content is stored under.
const Container = "audio-files"

type Service struct {
	repo  Repository
	store blobstore.BlobStore
}

func NewService(repo Repository, store blobstore.BlobStore) *Service {
	return &Service{repo: repo, store: store}
}

// Upload validates and stores the recording content, then creates the
// tracking record in pending state.
func (s *Service) Upload(ctx context.Context, providerID uuid.UUID, originalFilename, contentType string, content io.Reader) (*AudioFile, error) {
	if providerID == uuid.Nil {
		return nil, fmt.Errorf("provider_id is required")
	}
	if originalFilename == "" {
		return nil, blobstore.ErrMissingFileName
	}
	if !blobstore.ValidContentType(contentType) {
		return nil, blobstore.ErrInvalidContentType
	}

	meta, err := s.store.Upload(ctx, blobstore.BlobMetadata{
		FileName:    originalFilename,
		ContentType: contentType,
		CreatedBy:   providerID.String(),
	}, content)
	if err != nil {
		return nil, fmt.Errorf("store audio content: %w", err)
	}

	a := &AudioFile{
		Filename:            meta.ID + strings.ToLower(filepath.Ext(originalFilename)),
		OriginalFilename:    originalFilename,
		FileSize:            meta.Size,
		MimeType:            contentType,
		BlobContainer:       Container,
		BlobName:            meta.ID,
		TranscriptionStatus: StatusPending,
		ProviderID:          providerID,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		_ = s.store.Delete(ctx, meta.ID)
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*AudioFile, error) {
	return s.repo.GetByID(ctx, id)
}

// Download returns the stored content alongside the tracking record.
// The caller must close the reader.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, *AudioFile, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Download(ctx, a.BlobName)
	if err != nil {
		return nil, nil, fmt.Errorf("download audio content: %w", err)
	}
	return rc, a, nil
}

// UpdateStatus moves the transcription through its lifecycle. Confidence
// and errMsg are optional and recorded alongside the new status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, confidence, errMsg *string) (*AudioFile, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.TranscriptionStatus, status) {
		return nil, fmt.Errorf("cannot transition transcription from %s to %s", a.TranscriptionStatus, status)
	}
	a.TranscriptionStatus = status
	if confidence != nil {
		a.TranscriptionConfidence = confidence
	}
	a.ErrorMessage = errMsg
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DiscardContent drops the stored recording while keeping the tracking
// record. Used after failed transcriptions, where the row is preserved
// for audit but the content has no further use.
func (s *Service) DiscardContent(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, a.BlobName)
}

// Delete removes both the tracking record and the stored content.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.store.Delete(ctx, a.BlobName)
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*AudioFile, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*AudioFile, int, error) {
	return s.repo.ListByProvider(ctx, providerID, limit, offset)
}
