package database

import (
	"fmt"

	"gorm.io/gorm"

	recordModel "archive_backend/internals/features/records/model"
)

// Models in creation order; media and links reference the subject tables.
func Models() []any {
	return []any{
		&recordModel.VictimRecord{},
		&recordModel.SecurityForce{},
		&recordModel.IrAgent{},
		&recordModel.VideoSubmission{},
		&recordModel.EvidenceSubmission{},
		&recordModel.Media{},
		&recordModel.ExternalLink{},
		&recordModel.TwitterLink{},
		&recordModel.FieldUpdateAudit{},
	}
}

// Migrate creates the schema and the one-primary-per-subject indexes. Safe to rerun.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	for _, k := range recordModel.AllKinds {
		col := recordModel.MustKind(k).MediaColumn
		stmt := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS uq_media_primary_%s ON media (%s) WHERE is_primary",
			col, col,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("primary index on %s: %w", col, err)
		}
	}
	return nil
}
