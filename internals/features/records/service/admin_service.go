package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"archive_backend/internals/features/records/model"
)

// AdminService backs the development-only maintenance endpoints.
type AdminService struct {
	DB    *gorm.DB
	Files *FileService
	Log   *zap.Logger
}

func NewAdminService(db *gorm.DB, files *FileService, log *zap.Logger) *AdminService {
	return &AdminService{DB: db, Files: files, Log: log}
}

// DeleteSubject removes media, links and then the subject. Stored objects are
// deleted after commit, best effort.
func (s *AdminService) DeleteSubject(ctx context.Context, spec *model.KindSpec, id uint) error {
	var keys []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Media{}).
			Where(spec.MediaColumn+" = ?", id).
			Pluck("storage_key", &keys).Error; err != nil {
			return err
		}
		if err := tx.Where(spec.MediaColumn+" = ?", id).Delete(&model.Media{}).Error; err != nil {
			return fmt.Errorf("delete media: %w", err)
		}
		if spec.HasLinks() {
			if err := tx.Exec(
				fmt.Sprintf("DELETE FROM %s WHERE %s = ?", spec.LinkTable, spec.LinkColumn), id,
			).Error; err != nil {
				return fmt.Errorf("delete links: %w", err)
			}
		}
		res := tx.Delete(spec.New(), id)
		if res.Error != nil {
			return fmt.Errorf("delete %s: %w", spec.Kind, res.Error)
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "record not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.Files != nil {
		s.Files.Discard(keys)
	}
	s.Log.Warn("subject deleted", zap.String("kind", string(spec.Kind)), zap.Uint("id", id))
	return nil
}

// cleanTables lists every table, children first.
var cleanTables = []string{
	"field_update_audits",
	"media",
	"external_links",
	"twitter_links",
	"victim_records",
	"security_forces",
	"ir_agents",
	"video_submissions",
	"evidence_submissions",
}

// Clean empties every table and resets the id sequences.
func (s *AdminService) Clean(ctx context.Context) error {
	db := s.DB.WithContext(ctx)
	var err error
	if db.Dialector.Name() == "postgres" {
		quoted := make([]string, len(cleanTables))
		for i, t := range cleanTables {
			quoted[i] = pq.QuoteIdentifier(t)
		}
		err = db.Exec("TRUNCATE TABLE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE").Error
	} else {
		err = db.Transaction(func(tx *gorm.DB) error {
			for _, t := range cleanTables {
				if err := tx.Exec("DELETE FROM " + t).Error; err != nil {
					return fmt.Errorf("clean %s: %w", t, err)
				}
			}
			// sqlite_sequence only exists once an AUTOINCREMENT table has been written.
			var n int64
			if err := tx.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'").
				Scan(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return nil
			}
			return tx.Exec("DELETE FROM sqlite_sequence WHERE name IN ?", cleanTables).Error
		})
	}
	if err != nil {
		return fmt.Errorf("clean database: %w", err)
	}
	s.Log.Warn("database cleaned", zap.Strings("tables", cleanTables))
	return nil
}
