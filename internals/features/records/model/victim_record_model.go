package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VictimStatus string

const (
	VictimExecuted     VictimStatus = "executed"
	VictimKilled       VictimStatus = "killed"
	VictimIncarcerated VictimStatus = "incarcerated"
	VictimDisappeared  VictimStatus = "disappeared"
	VictimInjured      VictimStatus = "injured"
	VictimOther        VictimStatus = "other"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type VictimRecord struct {
	ID   uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:uuid" json:"uuid"`

	NameFarsi        *string `gorm:"type:varchar(200);column:name_farsi" json:"name_farsi,omitempty"`
	NameEnglish      *string `gorm:"type:varchar(200);column:name_english" json:"name_english,omitempty"`
	FirstNameFarsi   *string `gorm:"type:varchar(100);column:first_name_farsi" json:"first_name_farsi,omitempty"`
	LastNameFarsi    *string `gorm:"type:varchar(100);column:last_name_farsi" json:"last_name_farsi,omitempty"`
	FirstNameEnglish *string `gorm:"type:varchar(100);column:first_name_english" json:"first_name_english,omitempty"`
	LastNameEnglish  *string `gorm:"type:varchar(100);column:last_name_english" json:"last_name_english,omitempty"`

	Location     string          `gorm:"type:varchar(200);not null;column:location" json:"location"`
	BirthYear    *int            `gorm:"column:birth_year" json:"birth_year,omitempty"`
	Age          *int            `gorm:"column:age" json:"age,omitempty"`
	IncidentDate *datatypes.Date `gorm:"column:incident_date" json:"incident_date,omitempty"`
	NationalID   *string         `gorm:"type:varchar(50);column:national_id" json:"national_id,omitempty"`
	FatherName   *string         `gorm:"type:varchar(100);column:father_name" json:"father_name,omitempty"`
	MotherName   *string         `gorm:"type:varchar(100);column:mother_name" json:"mother_name,omitempty"`

	VictimStatus *VictimStatus `gorm:"type:varchar(20);column:victim_status" json:"victim_status,omitempty"`
	Gender       *Gender       `gorm:"type:varchar(10);column:gender" json:"gender,omitempty"`
	Perpetrator  *string       `gorm:"type:text;column:perpetrator" json:"perpetrator,omitempty"`
	Hashtags     *string       `gorm:"type:text;column:hashtags" json:"hashtags,omitempty"`
	Notes        *string       `gorm:"type:text;column:notes" json:"notes,omitempty"`

	SearchText string `gorm:"type:text;not null;default:'';column:search_text" json:"-"`

	Verification
}

func (VictimRecord) TableName() string { return "victim_records" }

func (v *VictimRecord) GetID() uint                    { return v.ID }
func (v *VictimRecord) GetUUID() uuid.UUID             { return v.UUID }
func (v *VictimRecord) GetVerification() *Verification { return &v.Verification }

func (v *VictimRecord) BuildSearchText() string {
	var p searchParts
	p.addPtr(v.NameFarsi, v.NameEnglish, v.FirstNameFarsi, v.LastNameFarsi, v.FirstNameEnglish, v.LastNameEnglish)
	p.add(v.Location)
	p.addInt(v.BirthYear)
	p.addPtr(v.NationalID, v.FatherName, v.MotherName)
	if v.VictimStatus != nil {
		p.add(string(*v.VictimStatus))
	}
	p.addPtr(v.Perpetrator, v.Hashtags, v.Notes)
	return p.String()
}

func (v *VictimRecord) BeforeCreate(tx *gorm.DB) error {
	beforeCreateSubject(v, &v.UUID)
	return nil
}

func (v *VictimRecord) BeforeSave(tx *gorm.DB) error {
	v.SearchText = v.BuildSearchText()
	return nil
}
