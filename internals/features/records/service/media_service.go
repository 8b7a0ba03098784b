package service

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/model"
	helper "archive_backend/internals/helpers"
	"archive_backend/internals/metrics"
)

type MediaService struct {
	DB      *gorm.DB
	Files   *FileService
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func NewMediaService(db *gorm.DB, files *FileService, m *metrics.Metrics, log *zap.Logger) *MediaService {
	return &MediaService{DB: db, Files: files, Metrics: m, Log: log}
}

// AddMedia attaches files to an existing subject and returns how many rows were written.
// The first file of the batch becomes primary only when the subject has none
// and the file is an image or video.
func (s *MediaService) AddMedia(ctx context.Context, spec *model.KindSpec, id uint, in dto.FileInput) (int, error) {
	db := s.DB.WithContext(ctx)
	var exists int64
	if err := db.Table(spec.Table).Where("id = ?", id).Count(&exists).Error; err != nil {
		return 0, fmt.Errorf("lookup %s: %w", spec.Kind, err)
	}
	if exists == 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "record not found")
	}
	if in.Count() == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "no files provided")
	}

	files, uploaded, err := s.Files.Resolve(ctx, in)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "no valid files provided")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var primaries int64
		if err := tx.Model(&model.Media{}).
			Where(spec.MediaColumn+" = ? AND is_primary = ?", id, true).
			Count(&primaries).Error; err != nil {
			return fmt.Errorf("count primary: %w", err)
		}

		for i, f := range files {
			m := f.toMedia()
			m.IsPrimary = i == 0 && primaries == 0 && m.Kind.CanBePrimary()
			spec.AttachMedia(m, id)
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}

		subject := spec.New()
		if err := tx.First(subject, id).Error; err != nil {
			return err
		}
		return refreshEvidenceCount(tx, spec, subject)
	})
	if err != nil {
		s.Files.Discard(uploaded)
		switch {
		case helper.IsUniqueViolation(err):
			return 0, fiber.NewError(fiber.StatusConflict, "primary media already set")
		case helper.IsForeignKeyViolation(err), isNotFound(err):
			return 0, fiber.NewError(fiber.StatusNotFound, "record not found")
		}
		return 0, fmt.Errorf("add media: %w", err)
	}

	observeFiles(s.Metrics, spec, files)
	s.Log.Info("media attached",
		zap.String("kind", string(spec.Kind)),
		zap.Uint("id", id),
		zap.Int("files", len(files)),
	)
	return len(files), nil
}
