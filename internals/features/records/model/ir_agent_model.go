package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AgentType string

const (
	AgentInternal AgentType = "internal"
	AgentForeign  AgentType = "foreign"
)

type IrAgent struct {
	ID   uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:uuid" json:"uuid"`

	NameFarsi   *string `gorm:"type:varchar(200);column:name_farsi" json:"name_farsi,omitempty"`
	NameEnglish *string `gorm:"type:varchar(200);column:name_english" json:"name_english,omitempty"`

	AgentType   AgentType `gorm:"type:varchar(10);not null;column:agent_type" json:"agent_type"`
	City        *string   `gorm:"type:varchar(120);column:city" json:"city,omitempty"`
	Country     *string   `gorm:"type:varchar(120);column:country" json:"country,omitempty"`
	Address     *string   `gorm:"type:text;column:address" json:"address,omitempty"`
	Latitude    *float64  `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude   *float64  `gorm:"column:longitude" json:"longitude,omitempty"`
	Affiliation *string   `gorm:"type:varchar(200);column:affiliation" json:"affiliation,omitempty"`
	Role        *string   `gorm:"type:varchar(200);column:role" json:"role,omitempty"`

	Instagram *string `gorm:"type:varchar(100);column:instagram" json:"instagram,omitempty"`
	Twitter   *string `gorm:"type:varchar(100);column:twitter" json:"twitter,omitempty"`
	Telegram  *string `gorm:"type:varchar(100);column:telegram" json:"telegram,omitempty"`
	Notes     *string `gorm:"type:text;column:notes" json:"notes,omitempty"`

	SearchText string `gorm:"type:text;not null;default:'';column:search_text" json:"-"`

	Verification
}

func (IrAgent) TableName() string { return "ir_agents" }

func (a *IrAgent) GetID() uint                    { return a.ID }
func (a *IrAgent) GetUUID() uuid.UUID             { return a.UUID }
func (a *IrAgent) GetVerification() *Verification { return &a.Verification }

func (a *IrAgent) BuildSearchText() string {
	var p searchParts
	p.addPtr(a.NameFarsi, a.NameEnglish)
	p.add(string(a.AgentType))
	p.addPtr(a.City, a.Country, a.Address, a.Affiliation, a.Role, a.Instagram, a.Twitter, a.Telegram, a.Notes)
	return p.String()
}

func (a *IrAgent) BeforeCreate(tx *gorm.DB) error {
	beforeCreateSubject(a, &a.UUID)
	return nil
}

func (a *IrAgent) BeforeSave(tx *gorm.DB) error {
	a.SearchText = a.BuildSearchText()
	return nil
}
