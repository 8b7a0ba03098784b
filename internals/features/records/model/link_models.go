package model

import "time"

// ExternalLink hangs off a security force or a regime agent, never both.
type ExternalLink struct {
	ID              uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	SecurityForceID *uint     `gorm:"index;column:security_force_id;check:chk_external_link_single_owner,(CASE WHEN security_force_id IS NULL THEN 0 ELSE 1 END + CASE WHEN ir_agent_id IS NULL THEN 0 ELSE 1 END) = 1" json:"security_force_id,omitempty"`
	IrAgentID       *uint     `gorm:"index;column:ir_agent_id" json:"ir_agent_id,omitempty"`
	URL             string    `gorm:"type:text;not null;column:url" json:"url"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`

	SecurityForce *SecurityForce `gorm:"foreignKey:SecurityForceID;constraint:OnDelete:CASCADE" json:"-"`
	IrAgent       *IrAgent       `gorm:"foreignKey:IrAgentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ExternalLink) TableName() string { return "external_links" }

type TwitterLink struct {
	ID             uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	VictimRecordID uint      `gorm:"not null;index;column:victim_record_id" json:"victim_record_id"`
	URL            string    `gorm:"type:text;not null;column:url" json:"url"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`

	VictimRecord *VictimRecord `gorm:"foreignKey:VictimRecordID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TwitterLink) TableName() string { return "twitter_links" }

// Link is the kind-agnostic view returned by the detail endpoint.
type Link struct {
	ID        uint      `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// FieldUpdateAudit is append-only; it backs the per-IP daily limit.
type FieldUpdateAudit struct {
	ID                uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	RecordType        string    `gorm:"type:varchar(20);not null;index:idx_field_update_record,priority:1;column:record_type" json:"record_type"`
	RecordID          uint      `gorm:"not null;index:idx_field_update_record,priority:2;column:record_id" json:"record_id"`
	FieldName         string    `gorm:"type:varchar(60);not null;column:field_name" json:"field_name"`
	OldValue          *string   `gorm:"type:text;column:old_value" json:"old_value"`
	NewValue          string    `gorm:"type:text;not null;column:new_value" json:"new_value"`
	ContributorHandle *string   `gorm:"type:varchar(100);column:contributor_handle" json:"contributor_handle,omitempty"`
	ContributorIP     string    `gorm:"type:varchar(64);not null;index:idx_field_update_ip_time,priority:1;column:contributor_ip" json:"-"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime;index:idx_field_update_ip_time,priority:2;column:created_at" json:"created_at"`
}

func (FieldUpdateAudit) TableName() string { return "field_update_audits" }
