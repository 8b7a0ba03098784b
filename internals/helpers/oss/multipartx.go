// file: internals/helpers/oss/multipartx.go
package helper

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
)

// ==============================
// File collector
// ==============================

// Field names the submission forms use.
var (
	ProfileFileFields    = []string{"profile_file", "primary_file", "profile_image"}
	SupportingFileFields = []string{"supporting_files", "supporting_files[]", "files[]", "files"}
)

// CollectUploadFiles gathers file headers from the candidate fields in order.
// Zero-byte and nameless parts are skipped.
func CollectUploadFiles(form *multipart.Form, candidates []string) []*multipart.FileHeader {
	if form == nil || form.File == nil {
		return nil
	}
	var out []*multipart.FileHeader
	for _, key := range candidates {
		for _, fh := range form.File[key] {
			if fh != nil && fh.Filename != "" && fh.Size > 0 {
				out = append(out, fh)
			}
		}
	}
	return out
}

// ==============================
// Pre-uploaded file metadata
// ==============================

const (
	RoleProfile    = "profile"
	RoleSupporting = "supporting"
)

// UploadedFile describes an object the browser already PUT via a presigned URL.
type UploadedFile struct {
	Key         string `json:"key"`
	PublicURL   string `json:"public_url"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`
	Role        string `json:"role"`
}

// Normalize trims fields and defaults the role and content type.
func (u *UploadedFile) Normalize() {
	u.Key = strings.TrimSpace(u.Key)
	u.PublicURL = strings.TrimSpace(u.PublicURL)
	u.FileName = strings.TrimSpace(u.FileName)
	u.ContentType = strings.TrimSpace(u.ContentType)
	u.Role = strings.ToLower(strings.TrimSpace(u.Role))
	if u.Role != RoleProfile {
		u.Role = RoleSupporting
	}
	if u.FileName == "" {
		u.FileName = filepath.Base(u.Key)
	}
	if u.ContentType == "" {
		u.ContentType = contentTypeFromExt(u.FileName)
	}
}

// ParseUploadedFiles decodes the `uploaded_files` JSON array. Blank input yields nil.
func ParseUploadedFiles(raw string) ([]UploadedFile, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var files []UploadedFile
	if err := sonic.UnmarshalString(raw, &files); err != nil {
		return nil, fmt.Errorf("uploaded_files: %w", err)
	}
	for i := range files {
		files[i].Normalize()
	}
	return files, nil
}

// ==============================
// Raw upload preparation
// ==============================

// PreparedFile is a raw multipart file read into memory with its sniffed type.
type PreparedFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

func (p *PreparedFile) Size() int64 { return int64(len(p.Data)) }

// PrepareUpload reads the part and, when convertWebP is set, re-encodes
// jpeg/png/webp images as WebP. Images that fail to decode are kept as-is.
func PrepareUpload(fh *multipart.FileHeader, convertWebP bool) (*PreparedFile, error) {
	if fh == nil {
		return nil, fmt.Errorf("nil file header")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	p := &PreparedFile{
		FileName:    fh.Filename,
		ContentType: DetectContentType(data, fh.Filename, fh.Header.Get("Content-Type")),
		Data:        data,
	}
	if convertWebP && IsWebPConvertible(p.ContentType) {
		if out, err := ConvertToWebP(data, fh.Filename, DefaultWebPOptions()); err == nil {
			p.Data = out
			p.ContentType = "image/webp"
			p.FileName = strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename)) + ".webp"
		}
	}
	return p, nil
}

// DetectContentType: declared type, then extension, then a 512-byte sniff.
// Modern formats are hard-overridden by extension.
func DetectContentType(head []byte, filename, declared string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".webp":
		return "image/webp"
	case ".avif":
		return "image/avif"
	case ".heic":
		return "image/heic"
	case ".svg":
		return "image/svg+xml"
	}

	ct := strings.TrimSpace(declared)
	if ct == "" || ct == "application/octet-stream" {
		ct = contentTypeFromExt(filename)
	}
	if (ct == "" || ct == "application/octet-stream") && len(head) > 0 {
		if len(head) > 512 {
			head = head[:512]
		}
		ct = http.DetectContentType(head)
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 && strings.HasPrefix(ct, "image/") {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

func contentTypeFromExt(filename string) string {
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
}
