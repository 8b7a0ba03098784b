package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/model"
)

func fillReq(recordType string, id uint, field, value string) *dto.FieldUpdateRequest {
	return &dto.FieldUpdateRequest{RecordType: recordType, RecordID: id, FieldName: field, Value: value}
}

func TestFill_WritesValueAuditAndSearchText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.submitVictim(t, dto.FileInput{})

	handle := "@helper"
	req := fillReq("victim", v.ID, "father_name", "  Reza ")
	req.SubmitterTwitterID = &handle
	res, err := f.fills.Fill(ctx, req, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "victim", res.RecordType)
	assert.Equal(t, "father_name", res.FieldName)
	assert.Equal(t, "Reza", res.Value)
	assert.Equal(t, DailyFieldFillLimit-1, res.Remaining)

	var got model.VictimRecord
	require.NoError(t, f.db.First(&got, v.ID).Error)
	require.NotNil(t, got.FatherName)
	assert.Equal(t, "Reza", *got.FatherName)
	assert.Contains(t, got.SearchText, "reza")
	assert.False(t, got.UpdatedAt.Before(v.UpdatedAt))

	var audits []model.FieldUpdateAudit
	require.NoError(t, f.db.Find(&audits).Error)
	require.Len(t, audits, 1)
	a := audits[0]
	assert.Equal(t, "victim", a.RecordType)
	assert.Equal(t, v.ID, a.RecordID)
	assert.Equal(t, "father_name", a.FieldName)
	assert.Equal(t, "Reza", a.NewValue)
	assert.Nil(t, a.OldValue)
	assert.Equal(t, "10.0.0.1", a.ContributorIP)
	require.NotNil(t, a.ContributorHandle)
	assert.Equal(t, handle, *a.ContributorHandle)

	found, err := f.query.Search(ctx, model.MustKind(model.KindVictim), "reza")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestFill_SlugAndTagBothAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, err := dto.BindSecurityForce(formOf("name", "Officer", "organization", "Basij", "city", "Tehran"))
	require.NoError(t, err)
	s, err := f.submissions.Submit(ctx, model.MustKind(model.KindSecurityForce), req, dto.FileInput{})
	require.NoError(t, err)

	_, err = f.fills.Fill(ctx, fillReq("security_force", s.GetID(), "telegram", "@one"), "ip")
	require.NoError(t, err)
	_, err = f.fills.Fill(ctx, fillReq("security-forces", s.GetID(), "instagram", "@two"), "ip")
	require.NoError(t, err)
}

func TestFill_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.submitVictim(t, dto.FileInput{},
		"full_name_english", "Test Victim", "location", "Tehran", "national_id", "123")

	tests := []struct {
		name string
		req  *dto.FieldUpdateRequest
		code int
	}{
		{"unknown record type", fillReq("planet", v.ID, "father_name", "x"), 400},
		{"field outside allow-list", fillReq("victim", v.ID, "location", "Shiraz"), 400},
		{"verification is not fillable", fillReq("victim", v.ID, "verified", "true"), 400},
		{"non integer", fillReq("victim", v.ID, "birth_year", "nineteen"), 400},
		{"enum outside set", fillReq("victim", v.ID, "gender", "unknown"), 400},
		{"blank value", fillReq("victim", v.ID, "father_name", "   "), 400},
		{"populated field", fillReq("victim", v.ID, "national_id", "999"), 403},
		{"missing record", fillReq("victim", 9999, "father_name", "x"), 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.fills.Fill(ctx, tt.req, "10.0.0.2")
			assertStatus(t, err, tt.code)
		})
	}

	var got model.VictimRecord
	require.NoError(t, f.db.First(&got, v.ID).Error)
	assert.Equal(t, "123", *got.NationalID, "populated value must be untouched")
	assert.Nil(t, got.FatherName)
	assert.Zero(t, countRows(t, f.db, "field_update_audits"))
}

func TestFill_CoercesIntAndEnum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.submitVictim(t, dto.FileInput{})

	_, err := f.fills.Fill(ctx, fillReq("victims", v.ID, "birth_year", " 1999 "), "ip")
	require.NoError(t, err)
	_, err = f.fills.Fill(ctx, fillReq("victims", v.ID, "gender", "FEMALE"), "ip")
	require.NoError(t, err)

	var got model.VictimRecord
	require.NoError(t, f.db.First(&got, v.ID).Error)
	require.NotNil(t, got.BirthYear)
	assert.Equal(t, 1999, *got.BirthYear)
	require.NotNil(t, got.Gender)
	assert.Equal(t, model.GenderFemale, *got.Gender)

	_, err = f.fills.Fill(ctx, fillReq("victims", v.ID, "birth_year", "2000"), "ip")
	assertStatus(t, err, 403)
}

func TestFill_EmptyStringCountsAsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.submitVictim(t, dto.FileInput{})
	require.NoError(t, f.db.Model(&model.VictimRecord{}).Where("id = ?", v.ID).
		UpdateColumn("mother_name", "").Error)

	_, err := f.fills.Fill(ctx, fillReq("victim", v.ID, "mother_name", "Maryam"), "ip")
	require.NoError(t, err)

	var audit model.FieldUpdateAudit
	require.NoError(t, f.db.First(&audit).Error)
	require.NotNil(t, audit.OldValue)
	assert.Equal(t, "", *audit.OldValue)
}

func TestFill_DailyLimitPerIP(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.submitVictim(t, dto.FileInput{})
	b := f.submitVictim(t, dto.FileInput{})

	fields := []string{"national_id", "father_name", "mother_name", "name_farsi", "perpetrator", "birth_year", "age"}
	values := map[string]string{"birth_year": "1990", "age": "30"}
	value := func(field string) string {
		if v, ok := values[field]; ok {
			return v
		}
		return "value-" + field
	}

	n := 0
	for _, id := range []uint{a.ID, b.ID} {
		for _, field := range fields {
			if n == DailyFieldFillLimit {
				break
			}
			res, err := f.fills.Fill(ctx, fillReq("victim", id, field, value(field)), "1.1.1.1")
			require.NoError(t, err, "fill %d", n)
			n++
			assert.Equal(t, DailyFieldFillLimit-n, res.Remaining)
		}
	}
	require.Equal(t, DailyFieldFillLimit, n)

	_, err := f.fills.Fill(ctx, fillReq("victim", b.ID, "gender", "male"), "1.1.1.1")
	assertStatus(t, err, 429)

	// another address has its own budget
	_, err = f.fills.Fill(ctx, fillReq("victim", b.ID, "gender", "male"), "2.2.2.2")
	require.NoError(t, err)
}

func TestFill_LimitResetsAtUTCMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.submitVictim(t, dto.FileInput{})

	now := time.Date(2024, 5, 2, 0, 30, 0, 0, time.UTC)
	f.fills.now = func() time.Time { return now }

	for i := 0; i < DailyFieldFillLimit; i++ {
		require.NoError(t, f.db.Create(&model.FieldUpdateAudit{
			RecordType:    "victim",
			RecordID:      v.ID,
			FieldName:     "notes",
			NewValue:      fmt.Sprint(i),
			ContributorIP: "3.3.3.3",
			CreatedAt:     now.Add(-time.Hour),
		}).Error)
	}

	res, err := f.fills.Fill(ctx, fillReq("victim", v.ID, "father_name", "x"), "3.3.3.3")
	require.NoError(t, err)
	assert.Equal(t, DailyFieldFillLimit-1, res.Remaining)
}
