package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/model"
	"archive_backend/internals/metrics"
)

type SubmissionService struct {
	DB      *gorm.DB
	Files   *FileService
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func NewSubmissionService(db *gorm.DB, files *FileService, m *metrics.Metrics, log *zap.Logger) *SubmissionService {
	return &SubmissionService{DB: db, Files: files, Metrics: m, Log: log}
}

// Submit stores a subject with its media and links in one transaction.
// Raw files are uploaded before the transaction opens; if it fails they are
// deleted again.
func (s *SubmissionService) Submit(ctx context.Context, spec *model.KindSpec, req dto.CreateRequest, in dto.FileInput) (model.Subject, error) {
	files, uploaded, err := s.Files.Resolve(ctx, in)
	if err != nil {
		s.Metrics.ObserveSubmission(string(spec.Kind), false)
		return nil, err
	}

	subject := req.ToModel()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(subject).Error; err != nil {
			return fmt.Errorf("create %s: %w", spec.Kind, err)
		}
		id := subject.GetID()

		primarySet := false
		for _, f := range files {
			m := f.toMedia()
			if f.Profile && !primarySet && m.Kind.CanBePrimary() {
				m.IsPrimary = true
				primarySet = true
			}
			spec.AttachMedia(m, id)
			if err := tx.Create(m).Error; err != nil {
				return fmt.Errorf("create media: %w", err)
			}
		}

		for _, url := range req.LinkURLs() {
			link := spec.NewLink(id, url)
			if link == nil {
				break
			}
			if err := tx.Create(link).Error; err != nil {
				return fmt.Errorf("create link: %w", err)
			}
		}

		return refreshEvidenceCount(tx, spec, subject)
	})
	if err != nil {
		s.Files.Discard(uploaded)
		s.Metrics.ObserveSubmission(string(spec.Kind), false)
		return nil, err
	}

	s.Metrics.ObserveSubmission(string(spec.Kind), true)
	observeFiles(s.Metrics, spec, files)
	s.Log.Info("subject submitted",
		zap.String("kind", string(spec.Kind)),
		zap.Uint("id", subject.GetID()),
		zap.Int("files", len(files)),
	)
	return subject, nil
}

func observeFiles(m *metrics.Metrics, spec *model.KindSpec, files []storedFile) {
	for _, f := range files {
		m.ObserveMedia(string(spec.Kind), string(model.DetectMediaKind(f.ContentType, f.FileName)), 1)
	}
}

// refreshEvidenceCount sets evidence_count to the number of media rows.
func refreshEvidenceCount(tx *gorm.DB, spec *model.KindSpec, subject model.Subject) error {
	var n int64
	if err := tx.Model(&model.Media{}).
		Where(spec.MediaColumn+" = ?", subject.GetID()).
		Count(&n).Error; err != nil {
		return fmt.Errorf("count media: %w", err)
	}
	if err := tx.Table(spec.Table).
		Where("id = ?", subject.GetID()).
		UpdateColumn("evidence_count", n).Error; err != nil {
		return fmt.Errorf("update evidence_count: %w", err)
	}
	subject.GetVerification().EvidenceCount = int(n)
	return nil
}
