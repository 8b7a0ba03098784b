// internals/helpers/oss/oss_client.go
package helper

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"archive_backend/internals/configs"
)

const (
	cacheForever    = "public, max-age=31536000, immutable"
	maxFileBaseName = 80
)

/* =======================================================================
   OSS Service
======================================================================= */

type OSSService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	Prefix     string // e.g. "uploads"
	PublicBase string
	PresignTTL time.Duration

	log *zap.Logger
}

func NewOSSService(cfg configs.OSSConfig, log *zap.Logger) (*OSSService, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var (
		client *oss.Client
		err    error
	)
	if cfg.SecurityToken != "" {
		client, err = oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, oss.SecurityToken(cfg.SecurityToken))
	} else {
		client, err = oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	}
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	// light bucket check; AccessDenied on location is tolerated
	if loc, err := client.GetBucketLocation(cfg.Bucket); err != nil {
		var se oss.ServiceError
		if errors.As(err, &se) && se.StatusCode == 403 && se.Code == "AccessDenied" {
			log.Warn("skip bucket location check", zap.String("bucket", cfg.Bucket))
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.Info("oss bucket ready", zap.String("bucket", cfg.Bucket), zap.String("location", loc))
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &OSSService{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   cfg.Endpoint,
		BucketName: cfg.Bucket,
		Prefix:     strings.Trim(cfg.Prefix, "/"),
		PublicBase: strings.TrimRight(strings.TrimSpace(cfg.PublicBase), "/"),
		PresignTTL: ttl,
		log:        log.Named("oss"),
	}, nil
}

/* =======================================================================
   BlobStore implementation
======================================================================= */

func (s *OSSService) GenerateKey(fileName, mediaKind string) string {
	return BuildObjectKey(s.Prefix, fileName, mediaKind, time.Now())
}

func (s *OSSService) Upload(ctx context.Context, r io.Reader, key, contentType string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl(cacheForever),
	}
	if err := s.Bucket.PutObject(key, r, opts...); err != nil {
		s.log.Error("put object failed", zap.String("key", key), zap.Error(err))
		return "", ErrUploadFailed
	}
	return s.PublicURL(key), nil
}

func (s *OSSService) Presign(ctx context.Context, fileName, contentType, mediaKind string) (PresignedUpload, error) {
	key := s.GenerateKey(fileName, mediaKind)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	signed, err := s.Bucket.SignURL(key, oss.HTTPPut, int64(s.PresignTTL.Seconds()), oss.ContentType(contentType))
	if err != nil {
		s.log.Error("sign url failed", zap.String("key", key), zap.Error(err))
		return PresignedUpload{}, ErrUploadFailed
	}
	return PresignedUpload{
		PresignedURL: signed,
		PublicURL:    s.PublicURL(key),
		Key:          key,
	}, nil
}

// ObjectSize HEADs the object; used when pre-uploaded metadata carries no size.
func (s *OSSService) ObjectSize(ctx context.Context, key string) (int64, error) {
	hdr, err := s.Bucket.GetObjectDetailedMeta(key, oss.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return 0, ErrObjectNotFound
		}
		return 0, err
	}
	cl := hdr.Get(oss.HTTPHeaderContentLength)
	if cl == "" {
		return 0, fmt.Errorf("Content-Length header missing")
	}
	return strconv.ParseInt(cl, 10, 64)
}

func (s *OSSService) DeleteObjects(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.Bucket.DeleteObjects(keys, oss.WithContext(ctx), oss.DeleteObjectsQuiet(true))
	return err
}

func (s *OSSService) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return s.PublicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

func (s *OSSService) OwnsKey(key string) bool {
	return ownsKey(s.Prefix, key)
}

/* =======================================================================
   Key utils
======================================================================= */

// BuildObjectKey: <prefix>/<kind>s/<YYYYMMDD_HHMMSS>_<6 hex>_<sanitized name>
func BuildObjectKey(prefix, fileName, mediaKind string, now time.Time) string {
	kind := strings.ToLower(strings.TrimSpace(mediaKind))
	if kind == "" {
		kind = "document"
	}
	parts := make([]string, 0, 3)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, kind+"s")
	name := fmt.Sprintf("%s_%s_%s", now.UTC().Format("20060102_150405"), randHex(3), SanitizeFileName(fileName))
	return strings.Join(append(parts, name), "/")
}

// SanitizeFileName strips diacritics, lowercases and replaces anything but
// [a-z0-9.] with "_". The extension is kept.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	for _, r := range norm.NFKD.String(strings.ToLower(base)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_.")
	if out == "" || out == "." {
		out = "file"
	}
	if len(out) > maxFileBaseName {
		out = out[:maxFileBaseName]
	}

	cleanExt := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, ext)
	if cleanExt == "." {
		cleanExt = ""
	}
	return out + cleanExt
}

func ownsKey(prefix, key string) bool {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return false
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(key, prefix+"/")
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func isNotFound(err error) bool {
	var se oss.ServiceError
	if errors.As(err, &se) {
		return se.StatusCode == 404
	}
	return false
}

func init() {
	_ = mime.AddExtensionType(".webp", "image/webp")
	_ = mime.AddExtensionType(".avif", "image/avif")
	_ = mime.AddExtensionType(".heic", "image/heic")
	_ = mime.AddExtensionType(".mov", "video/quicktime")
}
