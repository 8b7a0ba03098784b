package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SecurityForce struct {
	ID   uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:uuid" json:"uuid"`

	NameFarsi   *string `gorm:"type:varchar(200);column:name_farsi" json:"name_farsi,omitempty"`
	NameEnglish *string `gorm:"type:varchar(200);column:name_english" json:"name_english,omitempty"`

	City             string   `gorm:"type:varchar(120);not null;column:city" json:"city"`
	Address          *string  `gorm:"type:text;column:address" json:"address,omitempty"`
	ResidenceAddress *string  `gorm:"type:text;column:residence_address" json:"residence_address,omitempty"`
	Latitude         *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude        *float64 `gorm:"column:longitude" json:"longitude,omitempty"`
	Organization     *string  `gorm:"type:varchar(200);column:organization" json:"organization,omitempty"`
	RankPosition     *string  `gorm:"type:varchar(200);column:rank_position" json:"rank_position,omitempty"`

	Instagram *string `gorm:"type:varchar(100);column:instagram" json:"instagram,omitempty"`
	Twitter   *string `gorm:"type:varchar(100);column:twitter" json:"twitter,omitempty"`
	Telegram  *string `gorm:"type:varchar(100);column:telegram" json:"telegram,omitempty"`
	Notes     *string `gorm:"type:text;column:notes" json:"notes,omitempty"`

	SearchText string `gorm:"type:text;not null;default:'';column:search_text" json:"-"`

	Verification
}

func (SecurityForce) TableName() string { return "security_forces" }

func (s *SecurityForce) GetID() uint                    { return s.ID }
func (s *SecurityForce) GetUUID() uuid.UUID             { return s.UUID }
func (s *SecurityForce) GetVerification() *Verification { return &s.Verification }

func (s *SecurityForce) BuildSearchText() string {
	var p searchParts
	p.addPtr(s.NameFarsi, s.NameEnglish)
	p.add(s.City)
	p.addPtr(s.Address, s.ResidenceAddress, s.Organization, s.RankPosition, s.Instagram, s.Twitter, s.Telegram, s.Notes)
	return p.String()
}

func (s *SecurityForce) BeforeCreate(tx *gorm.DB) error {
	beforeCreateSubject(s, &s.UUID)
	return nil
}

func (s *SecurityForce) BeforeSave(tx *gorm.DB) error {
	s.SearchText = s.BuildSearchText()
	return nil
}
