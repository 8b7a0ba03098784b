package model

import (
	"time"

	"github.com/google/uuid"
)

// Ordinal trust ladder; escalated outside the submission handlers.
type VerificationLevel string

const (
	VerificationUnverified VerificationLevel = "unverified"
	VerificationCommunity  VerificationLevel = "community"
	VerificationDocument   VerificationLevel = "document"
	VerificationTrusted    VerificationLevel = "trusted"
)

var verificationRank = map[VerificationLevel]int{
	VerificationUnverified: 0,
	VerificationCommunity:  1,
	VerificationDocument:   2,
	VerificationTrusted:    3,
}

// Rank returns the position on the ladder, -1 for unknown levels.
func (l VerificationLevel) Rank() int {
	if r, ok := verificationRank[l]; ok {
		return r
	}
	return -1
}

func (l VerificationLevel) AtLeast(other VerificationLevel) bool {
	return l.Rank() >= other.Rank() && other.Rank() >= 0
}

// Verification is embedded by every subject table.
type Verification struct {
	Verified          bool              `gorm:"not null;default:false;column:verified" json:"verified"`
	VerificationLevel VerificationLevel `gorm:"type:varchar(16);not null;default:'unverified';column:verification_level" json:"verification_level"`
	EvidenceCount     int               `gorm:"not null;default:0;column:evidence_count" json:"evidence_count"`
	SubmittedBy       *string           `gorm:"type:varchar(100);column:submitted_by" json:"submitted_by,omitempty"`
	SubmittedAt       time.Time         `gorm:"not null;autoCreateTime;index;column:submitted_at" json:"submitted_at"`
	UpdatedAt         time.Time         `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`
}

// Reset puts a freshly submitted subject on the bottom rung.
func (v *Verification) Reset() {
	v.Verified = false
	v.VerificationLevel = VerificationUnverified
	v.EvidenceCount = 0
}

// Subject is implemented by the five top-level record kinds.
type Subject interface {
	TableName() string
	GetID() uint
	GetUUID() uuid.UUID
	GetVerification() *Verification
	BuildSearchText() string
}

func ensureUUID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func beforeCreateSubject(s Subject, id *uuid.UUID) {
	ensureUUID(id)
	v := s.GetVerification()
	if v.VerificationLevel == "" {
		v.VerificationLevel = VerificationUnverified
	}
}
