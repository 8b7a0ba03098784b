package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archive_backend/internals/features/records/model"
	helper "archive_backend/internals/helpers"
)

func form(kv ...string) *FormInput {
	values := map[string][]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		values[kv[i]] = append(values[kv[i]], kv[i+1])
	}
	return NewFormInput(values)
}

func validationErr(t *testing.T, err error) *helper.ValidationError {
	t.Helper()
	var ve *helper.ValidationError
	require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
	return ve
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		in, first, last string
	}{
		{"Navid Afkari", "Navid", "Afkari"},
		{"  Mohammad   Reza  Shajarian ", "Mohammad", "Reza Shajarian"},
		{"Mahsa", "Mahsa", "Mahsa"},
		{"   ", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitFullName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}

func TestBindVictim_FullNameDerivesSplit(t *testing.T) {
	req, err := BindVictim(form(
		"full_name_english", "Navid Afkari",
		"location", "Shiraz",
		"victim_status", "Executed",
	))
	require.NoError(t, err)
	assert.Equal(t, "Navid Afkari", *req.NameEnglish)
	assert.Equal(t, "Navid", *req.FirstNameEnglish)
	assert.Equal(t, "Afkari", *req.LastNameEnglish)
	assert.Equal(t, "executed", *req.VictimStatus)
	assert.Nil(t, req.NameFarsi)
}

func TestBindVictim_LegacySplitBuildsFull(t *testing.T) {
	req, err := BindVictim(form(
		"first_name_english", "Mahsa",
		"last_name_english", "Amini",
		"location", "Saqqez",
	))
	require.NoError(t, err)
	assert.Equal(t, "Mahsa Amini", *req.NameEnglish)
}

func TestBindVictim_MissingLocation(t *testing.T) {
	_, err := BindVictim(form("full_name_english", "Someone"))
	ve := validationErr(t, err)
	assert.Equal(t, "missing required fields: location", ve.Message)
	assert.Equal(t, "required", ve.Fields["location"])
}

func TestBindVictim_InvalidEnumAndNumber(t *testing.T) {
	_, err := BindVictim(form("location", "Tehran", "gender", "other", "birth_year", "abc"))
	ve := validationErr(t, err)
	assert.Equal(t, "invalid input", ve.Message)
	assert.Contains(t, ve.Fields, "gender")
	assert.Equal(t, "must be an integer", ve.Fields["birth_year"])
}

func TestBindVictim_LinksCappedAndBlanksDropped(t *testing.T) {
	req, err := BindVictim(form(
		"location", "Tehran",
		"twitter_links", "https://x.com/a/status/1",
		"twitter_links", "   ",
		"twitter_links", "https://x.com/a/status/2",
		"twitter_links", "https://x.com/a/status/3",
		"twitter_links", "https://x.com/a/status/4",
	))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://x.com/a/status/1",
		"https://x.com/a/status/2",
		"https://x.com/a/status/3",
	}, req.LinkURLs())
}

func TestVictimToModelResetsVerification(t *testing.T) {
	req, err := BindVictim(form("location", "Tehran", "submitted_by", "@someone", "incident_date", "2022-09-16"))
	require.NoError(t, err)
	m := req.ToModel().(*model.VictimRecord)
	assert.False(t, m.Verified)
	assert.Equal(t, model.VerificationUnverified, m.VerificationLevel)
	assert.Zero(t, m.EvidenceCount)
	require.NotNil(t, m.SubmittedBy)
	assert.Equal(t, "@someone", *m.SubmittedBy)
	require.NotNil(t, m.IncidentDate)
}

func TestBindIrAgent_ConditionalRequirements(t *testing.T) {
	_, err := BindIrAgent(form("agent_type", "internal"))
	assert.Equal(t, "missing required fields: city", validationErr(t, err).Message)

	_, err = BindIrAgent(form("agent_type", "foreign", "city", "Paris"))
	assert.Equal(t, "missing required fields: country", validationErr(t, err).Message)

	_, err = BindIrAgent(form("agent_type", "spy"))
	assert.Contains(t, validationErr(t, err).Fields, "agent_type")

	req, err := BindIrAgent(form("agent_type", "Foreign", "country", "France"))
	require.NoError(t, err)
	assert.Equal(t, "foreign", req.AgentType)
}

func TestBindCreate_RequiredFieldsPerKind(t *testing.T) {
	tests := []struct {
		kind    model.SubjectKind
		message string
	}{
		{model.KindVictim, "missing required fields: location"},
		{model.KindSecurityForce, "missing required fields: city"},
		{model.KindIrAgent, "missing required fields: agent_type"},
		{model.KindVideo, "missing required fields: description, location"},
		{model.KindEvidence, "missing required fields: description, title"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			_, err := BindCreate(tt.kind, form())
			assert.Equal(t, tt.message, validationErr(t, err).Message)
		})
	}
}

func TestBindSecurityForce_Coordinates(t *testing.T) {
	_, err := BindSecurityForce(form("city", "Tehran", "latitude", "95"))
	assert.Contains(t, validationErr(t, err).Fields, "latitude")

	req, err := BindSecurityForce(form("city", "Tehran", "latitude", "35.7", "longitude", "51.4", "links", "https://t.me/x"))
	require.NoError(t, err)
	assert.InDelta(t, 35.7, *req.Latitude, 0.0001)
	assert.Equal(t, []string{"https://t.me/x"}, req.LinkURLs())
}
