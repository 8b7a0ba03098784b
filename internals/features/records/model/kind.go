package model

import (
	"strings"

	"gorm.io/gorm"
)

// SubjectKind is the URL slug of a subject table.
type SubjectKind string

const (
	KindVictim        SubjectKind = "victims"
	KindSecurityForce SubjectKind = "security-forces"
	KindIrAgent       SubjectKind = "ir-agents"
	KindVideo         SubjectKind = "videos"
	KindEvidence      SubjectKind = "evidence"
)

type FieldType int

const (
	FieldText FieldType = iota
	FieldInt
)

// FieldSpec describes a column that may be filled in by the community.
type FieldSpec struct {
	Column  string
	Type    FieldType
	Allowed []string // non-empty means enum
}

// KindSpec binds a slug to its table, child tables and fill allow-list.
type KindSpec struct {
	Kind        SubjectKind
	AuditTag    string
	Table       string
	MediaColumn string
	LinkTable   string
	LinkColumn  string
	Fields      map[string]FieldSpec

	New  func() Subject
	Find func(q *gorm.DB) ([]Subject, error)
}

func textFields(cols ...string) map[string]FieldSpec {
	out := make(map[string]FieldSpec, len(cols))
	for _, c := range cols {
		out[c] = FieldSpec{Column: c, Type: FieldText}
	}
	return out
}

func newOf[T any, PT interface {
	*T
	Subject
}]() func() Subject {
	return func() Subject { return PT(new(T)) }
}

func findOf[T any, PT interface {
	*T
	Subject
}]() func(q *gorm.DB) ([]Subject, error) {
	return func(q *gorm.DB) ([]Subject, error) {
		var rows []T
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]Subject, len(rows))
		for i := range rows {
			out[i] = PT(&rows[i])
		}
		return out, nil
	}
}

var kinds = func() map[SubjectKind]*KindSpec {
	victimFields := textFields("national_id", "father_name", "mother_name", "name_farsi", "name_english", "perpetrator")
	victimFields["birth_year"] = FieldSpec{Column: "birth_year", Type: FieldInt}
	victimFields["age"] = FieldSpec{Column: "age", Type: FieldInt}
	victimFields["gender"] = FieldSpec{Column: "gender", Type: FieldText, Allowed: []string{string(GenderMale), string(GenderFemale)}}

	return map[SubjectKind]*KindSpec{
		KindVictim: {
			Kind:        KindVictim,
			AuditTag:    "victim",
			Table:       "victim_records",
			MediaColumn: "victim_record_id",
			LinkTable:   "twitter_links",
			LinkColumn:  "victim_record_id",
			Fields:      victimFields,
			New:         newOf[VictimRecord](),
			Find:        findOf[VictimRecord](),
		},
		KindSecurityForce: {
			Kind:        KindSecurityForce,
			AuditTag:    "security_force",
			Table:       "security_forces",
			MediaColumn: "security_force_id",
			LinkTable:   "external_links",
			LinkColumn:  "security_force_id",
			Fields:      textFields("address", "residence_address", "organization", "rank_position", "instagram", "twitter", "telegram"),
			New:         newOf[SecurityForce](),
			Find:        findOf[SecurityForce](),
		},
		KindIrAgent: {
			Kind:        KindIrAgent,
			AuditTag:    "ir_agent",
			Table:       "ir_agents",
			MediaColumn: "ir_agent_id",
			LinkTable:   "external_links",
			LinkColumn:  "ir_agent_id",
			Fields:      textFields("address", "affiliation", "role", "instagram", "twitter", "telegram"),
			New:         newOf[IrAgent](),
			Find:        findOf[IrAgent](),
		},
		KindVideo: {
			Kind:        KindVideo,
			AuditTag:    "video",
			Table:       "video_submissions",
			MediaColumn: "video_submission_id",
			Fields:      textFields("hashtags"),
			New:         newOf[VideoSubmission](),
			Find:        findOf[VideoSubmission](),
		},
		KindEvidence: {
			Kind:        KindEvidence,
			AuditTag:    "evidence",
			Table:       "evidence_submissions",
			MediaColumn: "evidence_submission_id",
			Fields:      textFields("hashtags"),
			New:         newOf[EvidenceSubmission](),
			Find:        findOf[EvidenceSubmission](),
		},
	}
}()

// AllKinds lists every subject kind in display order.
var AllKinds = []SubjectKind{KindVictim, KindSecurityForce, KindIrAgent, KindVideo, KindEvidence}

// LookupKind accepts the slug ("security-forces") or the audit tag ("security_force").
func LookupKind(s string) (*KindSpec, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if k, ok := kinds[SubjectKind(s)]; ok {
		return k, true
	}
	for _, k := range kinds {
		if k.AuditTag == s {
			return k, true
		}
	}
	return nil, false
}

func MustKind(k SubjectKind) *KindSpec {
	spec, ok := kinds[k]
	if !ok {
		panic("unknown subject kind " + string(k))
	}
	return spec
}

func (k *KindSpec) HasLinks() bool { return k.LinkTable != "" }

// AttachMedia points the media row at a subject of this kind.
func (k *KindSpec) AttachMedia(m *Media, subjectID uint) {
	id := subjectID
	switch k.Kind {
	case KindVictim:
		m.VictimRecordID = &id
	case KindSecurityForce:
		m.SecurityForceID = &id
	case KindIrAgent:
		m.IrAgentID = &id
	case KindVideo:
		m.VideoSubmissionID = &id
	case KindEvidence:
		m.EvidenceSubmissionID = &id
	}
}

// MediaOwner returns the subject id a media row of this kind points at, 0 if none.
func (k *KindSpec) MediaOwner(m *Media) uint {
	var id *uint
	switch k.Kind {
	case KindVictim:
		id = m.VictimRecordID
	case KindSecurityForce:
		id = m.SecurityForceID
	case KindIrAgent:
		id = m.IrAgentID
	case KindVideo:
		id = m.VideoSubmissionID
	case KindEvidence:
		id = m.EvidenceSubmissionID
	}
	if id == nil {
		return 0
	}
	return *id
}

// NewLink returns the link row for this kind, or nil when the kind has none.
func (k *KindSpec) NewLink(subjectID uint, url string) any {
	id := subjectID
	switch k.Kind {
	case KindVictim:
		return &TwitterLink{VictimRecordID: id, URL: url}
	case KindSecurityForce:
		return &ExternalLink{SecurityForceID: &id, URL: url}
	case KindIrAgent:
		return &ExternalLink{IrAgentID: &id, URL: url}
	}
	return nil
}

// FieldNames lists the fill allow-list, for error messages.
func (k *KindSpec) FieldNames() []string {
	out := make([]string, 0, len(k.Fields))
	for _, c := range []string{
		"national_id", "father_name", "mother_name", "name_farsi", "name_english",
		"birth_year", "age", "perpetrator", "gender",
		"address", "residence_address", "organization", "rank_position",
		"affiliation", "role", "instagram", "twitter", "telegram", "hashtags",
	} {
		if _, ok := k.Fields[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
