package dto

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"archive_backend/internals/features/records/model"
	helper "archive_backend/internals/helpers"
)

// MaxSubmissionLinks caps the links accepted with a new subject; later additions are unbounded.
const MaxSubmissionLinks = 3

// CreateRequest is implemented by every per-kind submission payload.
type CreateRequest interface {
	ToModel() model.Subject
	LinkURLs() []string
}

/* ===============================
   Victim
=================================*/

type VictimCreateRequest struct {
	NameFarsi        *string `json:"name_farsi" validate:"omitempty,max=200"`
	NameEnglish      *string `json:"name_english" validate:"omitempty,max=200"`
	FirstNameFarsi   *string `json:"first_name_farsi" validate:"omitempty,max=100"`
	LastNameFarsi    *string `json:"last_name_farsi" validate:"omitempty,max=100"`
	FirstNameEnglish *string `json:"first_name_english" validate:"omitempty,max=100"`
	LastNameEnglish  *string `json:"last_name_english" validate:"omitempty,max=100"`

	Location     string     `json:"location" validate:"required,max=200"`
	BirthYear    *int       `json:"birth_year" validate:"omitempty,gte=1850,lte=2100"`
	Age          *int       `json:"age" validate:"omitempty,gte=0,lte=150"`
	IncidentDate *time.Time `json:"incident_date"`
	NationalID   *string    `json:"national_id" validate:"omitempty,max=50"`
	FatherName   *string    `json:"father_name" validate:"omitempty,max=100"`
	MotherName   *string    `json:"mother_name" validate:"omitempty,max=100"`

	VictimStatus *string `json:"victim_status" validate:"omitempty,oneof=executed killed incarcerated disappeared injured other"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=male female"`
	Perpetrator  *string `json:"perpetrator"`
	Hashtags     *string `json:"hashtags"`
	Notes        *string `json:"notes"`
	SubmittedBy  *string `json:"submitted_by" validate:"omitempty,max=100"`

	TwitterLinks []string `json:"twitter_links" validate:"max=3,dive,max=2048"`
}

// SplitFullName splits on the first whitespace run. A single word is used
// as both first and last name.
func SplitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// resolveNames fills the missing side of full-name vs split-name input.
func resolveNames(full, first, last **string) {
	switch {
	case *full != nil && *first == nil && *last == nil:
		f, l := SplitFullName(**full)
		*first, *last = &f, &l
	case *full == nil && (*first != nil || *last != nil):
		var parts []string
		if *first != nil {
			parts = append(parts, **first)
		}
		if *last != nil {
			parts = append(parts, **last)
		}
		joined := strings.Join(parts, " ")
		*full = &joined
	}
}

func BindVictim(in *FormInput) (*VictimCreateRequest, error) {
	errs := map[string]string{}
	req := &VictimCreateRequest{
		NameFarsi:        in.StrPtr("full_name_farsi", "name_farsi"),
		NameEnglish:      in.StrPtr("full_name_english", "full_name", "name_english", "name"),
		FirstNameFarsi:   in.StrPtr("first_name_farsi"),
		LastNameFarsi:    in.StrPtr("last_name_farsi"),
		FirstNameEnglish: in.StrPtr("first_name_english", "first_name"),
		LastNameEnglish:  in.StrPtr("last_name_english", "last_name"),

		Location:     in.Str("location"),
		BirthYear:    in.IntPtr("birth_year", errs),
		Age:          in.IntPtr("age", errs),
		IncidentDate: in.DatePtr("incident_date", errs),
		NationalID:   in.StrPtr("national_id"),
		FatherName:   in.StrPtr("father_name"),
		MotherName:   in.StrPtr("mother_name"),

		VictimStatus: lowerPtr(in.StrPtr("victim_status")),
		Gender:       lowerPtr(in.StrPtr("gender")),
		Perpetrator:  in.StrPtr("perpetrator"),
		Hashtags:     in.StrPtr("hashtags"),
		Notes:        in.StrPtr("notes"),
		SubmittedBy:  in.StrPtr("submitted_by", "submitter_twitter_id", "twitter_handle"),

		TwitterLinks: capLinks(in.List("twitter_links", "twitter_links[]", "twitter_link", "links", "links[]")),
	}
	resolveNames(&req.NameEnglish, &req.FirstNameEnglish, &req.LastNameEnglish)
	resolveNames(&req.NameFarsi, &req.FirstNameFarsi, &req.LastNameFarsi)
	return req, finish(req, errs)
}

func (r *VictimCreateRequest) ToModel() model.Subject {
	m := &model.VictimRecord{
		NameFarsi:        r.NameFarsi,
		NameEnglish:      r.NameEnglish,
		FirstNameFarsi:   r.FirstNameFarsi,
		LastNameFarsi:    r.LastNameFarsi,
		FirstNameEnglish: r.FirstNameEnglish,
		LastNameEnglish:  r.LastNameEnglish,
		Location:         r.Location,
		BirthYear:        r.BirthYear,
		Age:              r.Age,
		NationalID:       r.NationalID,
		FatherName:       r.FatherName,
		MotherName:       r.MotherName,
		Perpetrator:      r.Perpetrator,
		Hashtags:         r.Hashtags,
		Notes:            r.Notes,
	}
	if r.IncidentDate != nil {
		d := datatypes.Date(*r.IncidentDate)
		m.IncidentDate = &d
	}
	if r.VictimStatus != nil {
		st := model.VictimStatus(*r.VictimStatus)
		m.VictimStatus = &st
	}
	if r.Gender != nil {
		g := model.Gender(*r.Gender)
		m.Gender = &g
	}
	m.SubmittedBy = r.SubmittedBy
	m.Verification.Reset()
	return m
}

func (r *VictimCreateRequest) LinkURLs() []string { return r.TwitterLinks }

/* ===============================
   Security force
=================================*/

type SecurityForceCreateRequest struct {
	NameFarsi        *string  `json:"name_farsi" validate:"omitempty,max=200"`
	NameEnglish      *string  `json:"name_english" validate:"omitempty,max=200"`
	City             string   `json:"city" validate:"required,max=120"`
	Address          *string  `json:"address"`
	ResidenceAddress *string  `json:"residence_address"`
	Latitude         *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude        *float64 `json:"longitude" validate:"omitempty,longitude"`
	Organization     *string  `json:"organization" validate:"omitempty,max=200"`
	RankPosition     *string  `json:"rank_position" validate:"omitempty,max=200"`
	Instagram        *string  `json:"instagram" validate:"omitempty,max=100"`
	Twitter          *string  `json:"twitter" validate:"omitempty,max=100"`
	Telegram         *string  `json:"telegram" validate:"omitempty,max=100"`
	Notes            *string  `json:"notes"`
	SubmittedBy      *string  `json:"submitted_by" validate:"omitempty,max=100"`

	ExternalLinks []string `json:"external_links" validate:"max=3,dive,max=2048"`
}

func BindSecurityForce(in *FormInput) (*SecurityForceCreateRequest, error) {
	errs := map[string]string{}
	req := &SecurityForceCreateRequest{
		NameFarsi:        in.StrPtr("name_farsi", "full_name_farsi"),
		NameEnglish:      in.StrPtr("name_english", "full_name_english", "name"),
		City:             in.Str("city"),
		Address:          in.StrPtr("address"),
		ResidenceAddress: in.StrPtr("residence_address"),
		Latitude:         in.FloatPtr("latitude", errs),
		Longitude:        in.FloatPtr("longitude", errs),
		Organization:     in.StrPtr("organization"),
		RankPosition:     in.StrPtr("rank_position", "rank"),
		Instagram:        in.StrPtr("instagram"),
		Twitter:          in.StrPtr("twitter"),
		Telegram:         in.StrPtr("telegram"),
		Notes:            in.StrPtr("notes"),
		SubmittedBy:      in.StrPtr("submitted_by", "submitter_twitter_id", "twitter_handle"),
		ExternalLinks:    capLinks(in.List("external_links", "external_links[]", "links", "links[]")),
	}
	return req, finish(req, errs)
}

func (r *SecurityForceCreateRequest) ToModel() model.Subject {
	m := &model.SecurityForce{
		NameFarsi:        r.NameFarsi,
		NameEnglish:      r.NameEnglish,
		City:             r.City,
		Address:          r.Address,
		ResidenceAddress: r.ResidenceAddress,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		Organization:     r.Organization,
		RankPosition:     r.RankPosition,
		Instagram:        r.Instagram,
		Twitter:          r.Twitter,
		Telegram:         r.Telegram,
		Notes:            r.Notes,
	}
	m.SubmittedBy = r.SubmittedBy
	m.Verification.Reset()
	return m
}

func (r *SecurityForceCreateRequest) LinkURLs() []string { return r.ExternalLinks }

/* ===============================
   Regime agent
=================================*/

type IrAgentCreateRequest struct {
	NameFarsi   *string  `json:"name_farsi" validate:"omitempty,max=200"`
	NameEnglish *string  `json:"name_english" validate:"omitempty,max=200"`
	AgentType   string   `json:"agent_type" validate:"required,oneof=internal foreign"`
	City        *string  `json:"city" validate:"required_if=AgentType internal,omitempty,max=120"`
	Country     *string  `json:"country" validate:"required_if=AgentType foreign,omitempty,max=120"`
	Address     *string  `json:"address"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	Affiliation *string  `json:"affiliation" validate:"omitempty,max=200"`
	Role        *string  `json:"role" validate:"omitempty,max=200"`
	Instagram   *string  `json:"instagram" validate:"omitempty,max=100"`
	Twitter     *string  `json:"twitter" validate:"omitempty,max=100"`
	Telegram    *string  `json:"telegram" validate:"omitempty,max=100"`
	Notes       *string  `json:"notes"`
	SubmittedBy *string  `json:"submitted_by" validate:"omitempty,max=100"`

	ExternalLinks []string `json:"external_links" validate:"max=3,dive,max=2048"`
}

func BindIrAgent(in *FormInput) (*IrAgentCreateRequest, error) {
	errs := map[string]string{}
	req := &IrAgentCreateRequest{
		NameFarsi:     in.StrPtr("name_farsi", "full_name_farsi"),
		NameEnglish:   in.StrPtr("name_english", "full_name_english", "name"),
		AgentType:     strings.ToLower(in.Str("agent_type")),
		City:          in.StrPtr("city"),
		Country:       in.StrPtr("country"),
		Address:       in.StrPtr("address"),
		Latitude:      in.FloatPtr("latitude", errs),
		Longitude:     in.FloatPtr("longitude", errs),
		Affiliation:   in.StrPtr("affiliation"),
		Role:          in.StrPtr("role"),
		Instagram:     in.StrPtr("instagram"),
		Twitter:       in.StrPtr("twitter"),
		Telegram:      in.StrPtr("telegram"),
		Notes:         in.StrPtr("notes"),
		SubmittedBy:   in.StrPtr("submitted_by", "submitter_twitter_id", "twitter_handle"),
		ExternalLinks: capLinks(in.List("external_links", "external_links[]", "links", "links[]")),
	}
	return req, finish(req, errs)
}

func (r *IrAgentCreateRequest) ToModel() model.Subject {
	m := &model.IrAgent{
		NameFarsi:   r.NameFarsi,
		NameEnglish: r.NameEnglish,
		AgentType:   model.AgentType(r.AgentType),
		City:        r.City,
		Country:     r.Country,
		Address:     r.Address,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Affiliation: r.Affiliation,
		Role:        r.Role,
		Instagram:   r.Instagram,
		Twitter:     r.Twitter,
		Telegram:    r.Telegram,
		Notes:       r.Notes,
	}
	m.SubmittedBy = r.SubmittedBy
	m.Verification.Reset()
	return m
}

func (r *IrAgentCreateRequest) LinkURLs() []string { return r.ExternalLinks }

/* ===============================
   Video & evidence
=================================*/

type VideoCreateRequest struct {
	Location    string  `json:"location" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Hashtags    *string `json:"hashtags"`
	SubmittedBy *string `json:"submitted_by" validate:"omitempty,max=100"`
}

func BindVideo(in *FormInput) (*VideoCreateRequest, error) {
	req := &VideoCreateRequest{
		Location:    in.Str("location"),
		Description: in.Str("description"),
		Hashtags:    in.StrPtr("hashtags"),
		SubmittedBy: in.StrPtr("submitted_by", "submitter_twitter_id", "twitter_handle"),
	}
	return req, finish(req, map[string]string{})
}

func (r *VideoCreateRequest) ToModel() model.Subject {
	m := &model.VideoSubmission{
		Location:    r.Location,
		Description: r.Description,
		Hashtags:    r.Hashtags,
	}
	m.SubmittedBy = r.SubmittedBy
	m.Verification.Reset()
	return m
}

func (r *VideoCreateRequest) LinkURLs() []string { return nil }

type EvidenceCreateRequest struct {
	Title       string  `json:"title" validate:"required,max=300"`
	Description string  `json:"description" validate:"required"`
	Hashtags    *string `json:"hashtags"`
	SubmittedBy *string `json:"submitted_by" validate:"omitempty,max=100"`
}

func BindEvidence(in *FormInput) (*EvidenceCreateRequest, error) {
	req := &EvidenceCreateRequest{
		Title:       in.Str("title"),
		Description: in.Str("description"),
		Hashtags:    in.StrPtr("hashtags"),
		SubmittedBy: in.StrPtr("submitted_by", "submitter_twitter_id", "twitter_handle"),
	}
	return req, finish(req, map[string]string{})
}

func (r *EvidenceCreateRequest) ToModel() model.Subject {
	m := &model.EvidenceSubmission{
		Title:       r.Title,
		Description: r.Description,
		Hashtags:    r.Hashtags,
	}
	m.SubmittedBy = r.SubmittedBy
	m.Verification.Reset()
	return m
}

func (r *EvidenceCreateRequest) LinkURLs() []string { return nil }

/* ===============================
   Dispatch
=================================*/

// BindCreate binds and validates the payload for kind. Validation failures
// come back as *helper.ValidationError.
func BindCreate(kind model.SubjectKind, in *FormInput) (CreateRequest, error) {
	switch kind {
	case model.KindVictim:
		return BindVictim(in)
	case model.KindSecurityForce:
		return BindSecurityForce(in)
	case model.KindIrAgent:
		return BindIrAgent(in)
	case model.KindVideo:
		return BindVideo(in)
	case model.KindEvidence:
		return BindEvidence(in)
	}
	return nil, &helper.ValidationError{Message: "unknown subject kind", Fields: map[string]string{"kind": string(kind)}}
}

// finish merges parse errors with struct validation. Parse errors win.
func finish(req any, parseErrs map[string]string) error {
	err := helper.ValidateStruct(req)
	if len(parseErrs) == 0 {
		return err
	}
	fields := map[string]string{}
	if ve, ok := err.(*helper.ValidationError); ok {
		for k, v := range ve.Fields {
			fields[k] = v
		}
		if strings.HasPrefix(ve.Message, "missing required fields") {
			for k, v := range parseErrs {
				fields[k] = v
			}
			return &helper.ValidationError{Message: ve.Message, Fields: fields}
		}
	}
	for k, v := range parseErrs {
		fields[k] = v
	}
	return &helper.ValidationError{Message: "invalid input", Fields: fields}
}

func capLinks(urls []string) []string {
	if len(urls) > MaxSubmissionLinks {
		return urls[:MaxSubmissionLinks]
	}
	return urls
}

func lowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(*s)
	return &v
}
