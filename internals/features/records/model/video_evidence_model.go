package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoSubmission struct {
	ID   uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:uuid" json:"uuid"`

	Location    string  `gorm:"type:varchar(200);not null;column:location" json:"location"`
	Description string  `gorm:"type:text;not null;column:description" json:"description"`
	Hashtags    *string `gorm:"type:text;column:hashtags" json:"hashtags,omitempty"`

	SearchText string `gorm:"type:text;not null;default:'';column:search_text" json:"-"`

	Verification
}

func (VideoSubmission) TableName() string { return "video_submissions" }

func (v *VideoSubmission) GetID() uint                    { return v.ID }
func (v *VideoSubmission) GetUUID() uuid.UUID             { return v.UUID }
func (v *VideoSubmission) GetVerification() *Verification { return &v.Verification }

func (v *VideoSubmission) BuildSearchText() string {
	var p searchParts
	p.add(v.Location, v.Description)
	p.addPtr(v.Hashtags)
	return p.String()
}

func (v *VideoSubmission) BeforeCreate(tx *gorm.DB) error {
	beforeCreateSubject(v, &v.UUID)
	return nil
}

func (v *VideoSubmission) BeforeSave(tx *gorm.DB) error {
	v.SearchText = v.BuildSearchText()
	return nil
}

type EvidenceSubmission struct {
	ID   uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:uuid" json:"uuid"`

	Title       string  `gorm:"type:varchar(300);not null;column:title" json:"title"`
	Description string  `gorm:"type:text;not null;column:description" json:"description"`
	Hashtags    *string `gorm:"type:text;column:hashtags" json:"hashtags,omitempty"`

	SearchText string `gorm:"type:text;not null;default:'';column:search_text" json:"-"`

	Verification
}

func (EvidenceSubmission) TableName() string { return "evidence_submissions" }

func (e *EvidenceSubmission) GetID() uint                    { return e.ID }
func (e *EvidenceSubmission) GetUUID() uuid.UUID             { return e.UUID }
func (e *EvidenceSubmission) GetVerification() *Verification { return &e.Verification }

func (e *EvidenceSubmission) BuildSearchText() string {
	var p searchParts
	p.add(e.Title, e.Description)
	p.addPtr(e.Hashtags)
	return p.String()
}

func (e *EvidenceSubmission) BeforeCreate(tx *gorm.DB) error {
	beforeCreateSubject(e, &e.UUID)
	return nil
}

func (e *EvidenceSubmission) BeforeSave(tx *gorm.DB) error {
	e.SearchText = e.BuildSearchText()
	return nil
}
