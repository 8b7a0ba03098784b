package helper

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrUploadFailed   = errors.New("upload failed")
	ErrObjectNotFound = errors.New("object not found")
)

type PresignedUpload struct {
	PresignedURL string `json:"presigned_url"`
	PublicURL    string `json:"public_url"`
	Key          string `json:"key"`
}

/*
BlobStore is the storage facade used by the record services.

- Upload and Presign both return PublicURL(key), so callers never care
  which path put the bytes there.
- DeleteObjects is only used to compensate a failed transaction.
*/
type BlobStore interface {
	GenerateKey(fileName, mediaKind string) string
	Upload(ctx context.Context, r io.Reader, key, contentType string) (publicURL string, err error)
	Presign(ctx context.Context, fileName, contentType, mediaKind string) (PresignedUpload, error)
	ObjectSize(ctx context.Context, key string) (int64, error)
	DeleteObjects(ctx context.Context, keys []string) error
	PublicURL(key string) string
	OwnsKey(key string) bool
}

var _ BlobStore = (*OSSService)(nil)
var _ BlobStore = (*MockBlobStore)(nil)

// IsMultipart reports whether the request is multipart/form-data
func IsMultipart(c *fiber.Ctx) bool {
	ct := strings.ToLower(strings.TrimSpace(c.Get(fiber.HeaderContentType)))
	return strings.HasPrefix(ct, "multipart/form-data")
}

// --------------------------------------------------
// In-memory store for tests and local runs without OSS
// --------------------------------------------------

type MockBlobStore struct {
	Prefix     string
	PublicBase string

	// FailUpload makes every Upload return ErrUploadFailed.
	FailUpload bool

	mu      sync.Mutex
	objects map[string]mockObject
	deleted []string
}

type mockObject struct {
	data        []byte
	contentType string
}

func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{
		Prefix:     "uploads",
		PublicBase: "https://cdn.example.test",
		objects:    map[string]mockObject{},
	}
}

func (m *MockBlobStore) GenerateKey(fileName, mediaKind string) string {
	return BuildObjectKey(m.Prefix, fileName, mediaKind, time.Now())
}

func (m *MockBlobStore) Upload(ctx context.Context, r io.Reader, key, contentType string) (string, error) {
	if m.FailUpload {
		return "", ErrUploadFailed
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", ErrUploadFailed
	}
	m.Put(key, data, contentType)
	return m.PublicURL(key), nil
}

// Put stores bytes directly, standing in for a browser PUT to a presigned URL.
func (m *MockBlobStore) Put(key string, data []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string]mockObject{}
	}
	m.objects[key] = mockObject{data: bytes.Clone(data), contentType: contentType}
}

func (m *MockBlobStore) Presign(ctx context.Context, fileName, contentType, mediaKind string) (PresignedUpload, error) {
	key := m.GenerateKey(fileName, mediaKind)
	return PresignedUpload{
		PresignedURL: m.PublicURL(key) + "?signature=mock",
		PublicURL:    m.PublicURL(key),
		Key:          key,
	}, nil
}

func (m *MockBlobStore) ObjectSize(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return 0, ErrObjectNotFound
	}
	return int64(len(obj.data)), nil
}

func (m *MockBlobStore) DeleteObjects(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.objects, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

func (m *MockBlobStore) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(m.PublicBase, "/") + "/" + key
}

func (m *MockBlobStore) OwnsKey(key string) bool { return ownsKey(m.Prefix, key) }

// Keys returns the stored keys, sorted.
func (m *MockBlobStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *MockBlobStore) ContentType(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[key].contentType
}

func (m *MockBlobStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
