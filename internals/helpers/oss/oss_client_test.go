package helper

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Photo 1.JPG", "photo_1.jpg"},
		{"Résumé final.pdf", "resume_final.pdf"},
		{"../../etc/passwd", "passwd"},
		{"تصویر.png", "file.png"},
		{"   ", "file"},
		{"a b\tc.tar.gz", "a_b_c.tar.gz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFileName(tt.in), tt.in)
	}

	long := strings.Repeat("x", 200) + ".jpg"
	got := SanitizeFileName(long)
	assert.True(t, strings.HasSuffix(got, ".jpg"))
	assert.LessOrEqual(t, len(got), maxFileBaseName+len(".jpg"))
}

func TestBuildObjectKey(t *testing.T) {
	now := time.Date(2022, 9, 16, 13, 4, 5, 0, time.UTC)
	key := BuildObjectKey("/uploads/", "My Photo.jpg", "image", now)
	assert.Regexp(t, regexp.MustCompile(`^uploads/images/20220916_130405_[0-9a-f]{6}_my_photo\.jpg$`), key)

	key = BuildObjectKey("", "scan.pdf", "", now)
	assert.True(t, strings.HasPrefix(key, "documents/20220916_130405_"), key)

	a := BuildObjectKey("uploads", "x.jpg", "image", now)
	b := BuildObjectKey("uploads", "x.jpg", "image", now)
	assert.NotEqual(t, a, b, "random suffix keeps same-second keys apart")
}

func TestOwnsKey(t *testing.T) {
	assert.True(t, ownsKey("uploads", "uploads/images/a.jpg"))
	assert.False(t, ownsKey("uploads", "other/images/a.jpg"))
	assert.False(t, ownsKey("uploads", "uploads/../secret"))
	assert.False(t, ownsKey("uploads", "/uploads/a.jpg"))
	assert.False(t, ownsKey("uploads", ""))
	assert.True(t, ownsKey("", "anything/a.jpg"))
}

func TestParseUploadedFiles(t *testing.T) {
	files, err := ParseUploadedFiles(`[
		{"key":" uploads/images/a.jpg ","file_size":10,"role":"PROFILE"},
		{"key":"uploads/documents/b.pdf","file_name":"b.pdf","role":"whatever"}
	]`)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "uploads/images/a.jpg", files[0].Key)
	assert.Equal(t, RoleProfile, files[0].Role)
	assert.Equal(t, "a.jpg", files[0].FileName)
	assert.Equal(t, "image/jpeg", files[0].ContentType)

	assert.Equal(t, RoleSupporting, files[1].Role)
	assert.Equal(t, "application/pdf", files[1].ContentType)

	files, err = ParseUploadedFiles("  ")
	require.NoError(t, err)
	assert.Nil(t, files)

	_, err = ParseUploadedFiles("{")
	assert.Error(t, err)
}

func TestDetectContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	assert.Equal(t, "image/png", DetectContentType(png, "noext", ""))
	assert.Equal(t, "image/webp", DetectContentType(nil, "x.webp", "application/octet-stream"))
	assert.Equal(t, "image/jpeg", DetectContentType(nil, "x.jpg", ""))
	assert.Equal(t, "application/pdf", DetectContentType(nil, "x.bin", "application/pdf"))
}

func TestMockBlobStore(t *testing.T) {
	ctx := context.Background()
	s := NewMockBlobStore()

	key := s.GenerateKey("a.jpg", "image")
	require.True(t, s.OwnsKey(key))

	url, err := s.Upload(ctx, bytes.NewReader([]byte("abc")), key, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, s.PublicURL(key), url)
	assert.Equal(t, "image/jpeg", s.ContentType(key))

	n, err := s.ObjectSize(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = s.ObjectSize(ctx, "uploads/missing")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	p, err := s.Presign(ctx, "clip.mp4", "video/mp4", "video")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Key, "uploads/videos/"))
	assert.Equal(t, s.PublicURL(p.Key), p.PublicURL)

	require.NoError(t, s.DeleteObjects(ctx, []string{key}))
	assert.Empty(t, s.Keys())
	assert.Equal(t, []string{key}, s.Deleted())

	s.FailUpload = true
	_, err = s.Upload(ctx, bytes.NewReader(nil), "uploads/x", "")
	assert.ErrorIs(t, err, ErrUploadFailed)
}
