package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"archive_backend/internals/configs"
	database "archive_backend/internals/databases"
	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/model"
	helperOSS "archive_backend/internals/helpers/oss"
	"archive_backend/internals/metrics"
)

type fixture struct {
	db    *gorm.DB
	store *helperOSS.MockBlobStore
	files *FileService

	submissions *SubmissionService
	media       *MediaService
	query       *QueryService
	fills       *FieldUpdateService
	admin       *AdminService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := zaptest.NewLogger(t)
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(filepath.Join(t.TempDir(), "test.db"))), &gorm.Config{
		Logger:         configs.NewGormLogger(log, logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	database.TunePool(db, log)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zaptest.NewLogger(t)
	m := metrics.New()
	store := helperOSS.NewMockBlobStore()
	files := NewFileService(store, false, log)
	return &fixture{
		db:          db,
		store:       store,
		files:       files,
		submissions: NewSubmissionService(db, files, m, log),
		media:       NewMediaService(db, files, m, log),
		query:       NewQueryService(db),
		fills:       NewFieldUpdateService(db, m, log),
		admin:       NewAdminService(db, files, log),
	}
}

func formOf(kv ...string) *dto.FormInput {
	values := map[string][]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		values[kv[i]] = append(values[kv[i]], kv[i+1])
	}
	return dto.NewFormInput(values)
}

// rawFile builds a multipart file header the way fiber hands it to controllers.
func rawFile(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="f"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["f"][0]
}

// preUploaded puts an object in the mock store as if the browser had PUT it.
func (f *fixture) preUploaded(name, contentType, role string, size int) helperOSS.UploadedFile {
	key := f.store.GenerateKey(name, string(model.DetectMediaKind(contentType, name)))
	f.store.Put(key, bytes.Repeat([]byte("x"), size), contentType)
	return helperOSS.UploadedFile{
		Key:         key,
		PublicURL:   f.store.PublicURL(key),
		FileName:    name,
		FileSize:    int64(size),
		ContentType: contentType,
		Role:        role,
	}
}

func (f *fixture) submitVictim(t *testing.T, in dto.FileInput, kv ...string) *model.VictimRecord {
	t.Helper()
	if len(kv) == 0 {
		kv = []string{"full_name_english", "Test Victim", "location", "Tehran"}
	}
	req, err := dto.BindVictim(formOf(kv...))
	require.NoError(t, err)
	s, err := f.submissions.Submit(context.Background(), model.MustKind(model.KindVictim), req, in)
	require.NoError(t, err)
	return s.(*model.VictimRecord)
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}
