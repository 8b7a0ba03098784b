package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/model"
	helperOSS "archive_backend/internals/helpers/oss"
)

// storedFile is an object already sitting in the bucket, ready to become a media row.
type storedFile struct {
	Key         string
	PublicURL   string
	FileName    string
	ContentType string
	Size        int64
	Profile     bool
}

func (f storedFile) toMedia() *model.Media {
	m := &model.Media{
		Kind:             model.DetectMediaKind(f.ContentType, f.FileName),
		StorageKey:       f.Key,
		PublicURL:        f.PublicURL,
		OriginalFilename: f.FileName,
		FileSize:         f.Size,
	}
	if f.ContentType != "" {
		ct := f.ContentType
		m.ContentType = &ct
	}
	return m
}

// FileService turns both upload paths into storedFiles.
type FileService struct {
	Store       helperOSS.BlobStore
	ConvertWebP bool
	Log         *zap.Logger
}

func NewFileService(store helperOSS.BlobStore, convertWebP bool, log *zap.Logger) *FileService {
	return &FileService{Store: store, ConvertWebP: convertWebP, Log: log}
}

// Resolve validates pre-uploaded metadata first, then uploads raw parts.
// Profile files come first so the caller can pick the primary in order.
// uploaded holds only the keys this call wrote; the caller discards them if
// its transaction fails.
func (s *FileService) Resolve(ctx context.Context, in dto.FileInput) (files []storedFile, uploaded []string, err error) {
	var profileMeta, supportMeta []storedFile
	for _, u := range in.Uploaded {
		f, ok, err := s.fromMetadata(ctx, u)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		if f.Profile {
			profileMeta = append(profileMeta, f)
		} else {
			supportMeta = append(supportMeta, f)
		}
	}

	upload := func(fhs []*multipart.FileHeader, profile bool) ([]storedFile, error) {
		out := make([]storedFile, 0, len(fhs))
		for _, fh := range fhs {
			f, err := s.uploadRaw(ctx, fh, profile)
			if err != nil {
				return out, err
			}
			uploaded = append(uploaded, f.Key)
			out = append(out, f)
		}
		return out, nil
	}

	profileRaw, err := upload(in.Profile, true)
	if err != nil {
		s.Discard(uploaded)
		return nil, nil, err
	}
	supportRaw, err := upload(in.Supporting, false)
	if err != nil {
		s.Discard(uploaded)
		return nil, nil, err
	}

	files = make([]storedFile, 0, len(profileMeta)+len(profileRaw)+len(supportMeta)+len(supportRaw))
	files = append(files, profileMeta...)
	files = append(files, profileRaw...)
	files = append(files, supportMeta...)
	files = append(files, supportRaw...)
	return files, uploaded, nil
}

func (s *FileService) fromMetadata(ctx context.Context, u helperOSS.UploadedFile) (storedFile, bool, error) {
	if !s.Store.OwnsKey(u.Key) {
		return storedFile{}, false, fiber.NewError(fiber.StatusBadRequest, "invalid uploaded file key")
	}
	// the stored object is authoritative; a client-declared size is ignored
	size, err := s.Store.ObjectSize(ctx, u.Key)
	if errors.Is(err, helperOSS.ErrObjectNotFound) {
		return storedFile{}, false, fiber.NewError(fiber.StatusBadRequest, "uploaded file not found")
	}
	if err != nil {
		s.Log.Error("object size lookup failed", zap.String("key", u.Key), zap.Error(err))
		return storedFile{}, false, fiber.NewError(fiber.StatusInternalServerError, "upload failed")
	}
	if size <= 0 {
		return storedFile{}, false, nil
	}
	return storedFile{
		Key:         u.Key,
		PublicURL:   s.Store.PublicURL(u.Key),
		FileName:    u.FileName,
		ContentType: u.ContentType,
		Size:        size,
		Profile:     u.Role == helperOSS.RoleProfile,
	}, true, nil
}

func (s *FileService) uploadRaw(ctx context.Context, fh *multipart.FileHeader, profile bool) (storedFile, error) {
	p, err := helperOSS.PrepareUpload(fh, s.ConvertWebP)
	if err != nil {
		s.Log.Warn("read upload failed", zap.String("file", fh.Filename), zap.Error(err))
		return storedFile{}, fiber.NewError(fiber.StatusBadRequest, "unreadable file")
	}
	kind := model.DetectMediaKind(p.ContentType, p.FileName)
	key := s.Store.GenerateKey(p.FileName, string(kind))
	url, err := s.Store.Upload(ctx, bytes.NewReader(p.Data), key, p.ContentType)
	if err != nil {
		s.Log.Error("upload failed", zap.String("key", key), zap.Error(err))
		return storedFile{}, fiber.NewError(fiber.StatusInternalServerError, "upload failed")
	}
	return storedFile{
		Key:         key,
		PublicURL:   url,
		FileName:    fh.Filename,
		ContentType: p.ContentType,
		Size:        p.Size(),
		Profile:     profile,
	}, nil
}

// Discard removes objects written for a request whose transaction failed.
// Best effort: failures are logged and otherwise ignored.
func (s *FileService) Discard(keys []string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Store.DeleteObjects(ctx, keys); err != nil {
		s.Log.Warn("discard uploaded objects failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Presign hands out a client-direct upload target.
func (s *FileService) Presign(ctx context.Context, req dto.PresignRequest) (helperOSS.PresignedUpload, error) {
	ct := req.ContentType
	if ct == "" {
		ct = helperOSS.DetectContentType(nil, req.FileName, "")
	}
	kind := model.DetectMediaKind(ct, req.FileName)
	out, err := s.Store.Presign(ctx, req.FileName, ct, string(kind))
	if err != nil {
		s.Log.Error("presign failed", zap.String("file", req.FileName), zap.Error(err))
		return helperOSS.PresignedUpload{}, fiber.NewError(fiber.StatusInternalServerError, "upload failed")
	}
	return out, nil
}
