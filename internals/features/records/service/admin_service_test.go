package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/model"
	helperOSS "archive_backend/internals/helpers/oss"
)

func TestDeleteSubject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spec := model.MustKind(model.KindVictim)

	keep := f.submitVictim(t, dto.FileInput{Uploaded: []helperOSS.UploadedFile{
		f.preUploaded("keep.jpg", "image/jpeg", helperOSS.RoleProfile, 1),
	}})
	photo := f.preUploaded("gone.jpg", "image/jpeg", helperOSS.RoleProfile, 1)
	doc := f.preUploaded("gone.pdf", "application/pdf", helperOSS.RoleSupporting, 1)
	gone := f.submitVictim(t, dto.FileInput{Uploaded: []helperOSS.UploadedFile{photo, doc}},
		"full_name_english", "Gone", "location", "Tehran", "twitter_links", "https://x.com/a/status/1")

	require.NoError(t, f.admin.DeleteSubject(ctx, spec, gone.ID))

	detail, err := f.query.Get(ctx, spec, gone.ID)
	require.NoError(t, err)
	assert.Nil(t, detail)
	assert.ElementsMatch(t, []string{photo.Key, doc.Key}, f.store.Deleted())
	assert.EqualValues(t, 1, countRows(t, f.db, "media"))
	assert.Zero(t, countRows(t, f.db, "twitter_links"))

	detail, err = f.query.Get(ctx, spec, keep.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Len(t, detail.Media, 1)

	assertStatus(t, f.admin.DeleteSubject(ctx, spec, gone.ID), 404)
}

func TestDeleteSubject_KindWithoutLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spec := model.MustKind(model.KindVideo)
	req, err := dto.BindVideo(formOf("description", "clip", "location", "Zahedan"))
	require.NoError(t, err)
	s, err := f.submissions.Submit(ctx, spec, req, dto.FileInput{})
	require.NoError(t, err)

	require.NoError(t, f.admin.DeleteSubject(ctx, spec, s.GetID()))
	assert.Zero(t, countRows(t, f.db, spec.Table))
}

func TestClean_EmptiesTablesAndResetsIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// on a fresh database there is nothing to reset yet
	require.NoError(t, f.admin.Clean(ctx))

	v := f.submitVictim(t, dto.FileInput{Uploaded: []helperOSS.UploadedFile{
		f.preUploaded("a.jpg", "image/jpeg", helperOSS.RoleProfile, 1),
	}}, "full_name_english", "A", "location", "Tehran", "twitter_links", "https://x.com/a/status/1")
	f.submitVictim(t, dto.FileInput{})
	_, err := f.fills.Fill(ctx, fillReq("victim", v.ID, "father_name", "x"), "ip")
	require.NoError(t, err)

	require.NoError(t, f.admin.Clean(ctx))
	for _, table := range cleanTables {
		assert.Zero(t, countRows(t, f.db, table), table)
	}

	again := f.submitVictim(t, dto.FileInput{})
	assert.EqualValues(t, 1, again.ID)
}
