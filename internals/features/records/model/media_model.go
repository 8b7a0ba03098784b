package model

import (
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

// CanBePrimary reports whether a file of this kind may act as the display photo/video.
func (k MediaKind) CanBePrimary() bool {
	return k == MediaImage || k == MediaVideo
}

// DetectMediaKind classifies a file by content type, falling back to the file extension.
func DetectMediaKind(contentType, fileName string) MediaKind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" || ct == "application/octet-stream" {
		ct = strings.ToLower(mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))))
	}
	switch {
	case strings.HasPrefix(ct, "image/"):
		return MediaImage
	case strings.HasPrefix(ct, "video/"):
		return MediaVideo
	default:
		return MediaDocument
	}
}

// Media belongs to exactly one subject; the CHECK below enforces it.
type Media struct {
	ID   uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:uuid" json:"uuid"`

	Kind             MediaKind `gorm:"type:varchar(10);not null;column:kind" json:"kind"`
	StorageKey       string    `gorm:"type:text;not null;column:storage_key" json:"storage_key"`
	PublicURL        string    `gorm:"type:text;not null;column:public_url" json:"public_url"`
	OriginalFilename string    `gorm:"type:varchar(255);column:original_filename" json:"original_filename"`
	FileSize         int64     `gorm:"not null;default:0;column:file_size" json:"file_size"`
	ContentType      *string   `gorm:"type:varchar(120);column:content_type" json:"content_type,omitempty"`
	IsPrimary        bool      `gorm:"not null;default:false;column:is_primary" json:"is_primary"`
	UploadedAt       time.Time `gorm:"not null;autoCreateTime;column:uploaded_at" json:"uploaded_at"`

	VictimRecordID       *uint `gorm:"index;column:victim_record_id;check:chk_media_single_owner,(CASE WHEN victim_record_id IS NULL THEN 0 ELSE 1 END + CASE WHEN security_force_id IS NULL THEN 0 ELSE 1 END + CASE WHEN ir_agent_id IS NULL THEN 0 ELSE 1 END + CASE WHEN video_submission_id IS NULL THEN 0 ELSE 1 END + CASE WHEN evidence_submission_id IS NULL THEN 0 ELSE 1 END) = 1" json:"victim_record_id,omitempty"`
	SecurityForceID      *uint `gorm:"index;column:security_force_id" json:"security_force_id,omitempty"`
	IrAgentID            *uint `gorm:"index;column:ir_agent_id" json:"ir_agent_id,omitempty"`
	VideoSubmissionID    *uint `gorm:"index;column:video_submission_id" json:"video_submission_id,omitempty"`
	EvidenceSubmissionID *uint `gorm:"index;column:evidence_submission_id" json:"evidence_submission_id,omitempty"`

	VictimRecord       *VictimRecord       `gorm:"foreignKey:VictimRecordID;constraint:OnDelete:CASCADE" json:"-"`
	SecurityForce      *SecurityForce      `gorm:"foreignKey:SecurityForceID;constraint:OnDelete:CASCADE" json:"-"`
	IrAgent            *IrAgent            `gorm:"foreignKey:IrAgentID;constraint:OnDelete:CASCADE" json:"-"`
	VideoSubmission    *VideoSubmission    `gorm:"foreignKey:VideoSubmissionID;constraint:OnDelete:CASCADE" json:"-"`
	EvidenceSubmission *EvidenceSubmission `gorm:"foreignKey:EvidenceSubmissionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Media) TableName() string { return "media" }

func (m *Media) BeforeCreate(tx *gorm.DB) error {
	ensureUUID(&m.UUID)
	if m.Kind == "" {
		m.Kind = DetectMediaKind(strOr(m.ContentType), m.OriginalFilename)
	}
	return nil
}

// MediaSummary is the {kind, url} pair attached to list items.
type MediaSummary struct {
	Kind      MediaKind `json:"kind"`
	URL       string    `json:"url"`
	IsPrimary bool      `json:"is_primary"`
}
