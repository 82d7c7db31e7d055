package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/logger"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UploadService struct {
	Storage  *StorageService
	UserRepo *repository.UserRepository
	MaxBytes int64
}

func NewUploadService(storage *StorageService, userRepo *repository.UserRepository, maxBytes int64) *UploadService {
	return &UploadService{Storage: storage, UserRepo: userRepo, MaxBytes: maxBytes}
}

type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// sniff checks the declared extension and the detected content against the
// whitelists and rewinds the file.
func sniff(file multipart.File, name string, exts map[string]bool, mimes []string) (string, error) {
	ext := util.FileExtension(name)
	if !exts[ext] {
		return "", util.ErrBadRequest("File type not allowed")
	}

	mimeType, err := util.ValidateMimeType(file, mimes)
	if err != nil {
		return "", util.ErrBadRequest("File content does not match an allowed type")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	// Markdown sniffs as text/plain; report the declared type instead.
	if ext == ".md" {
		mimeType = "text/markdown"
	} else if i := strings.Index(mimeType, ";"); i > 0 {
		mimeType = mimeType[:i]
	}
	return mimeType, nil
}

func (s *UploadService) store(ctx context.Context, dir string, header *multipart.FileHeader, exts map[string]bool, mimes []string) (*UploadResult, error) {
	if header.Size > s.MaxBytes {
		return nil, util.ErrBadRequest("File too large")
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mimeType, err := sniff(file, header.Filename, exts, mimes)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(file, s.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.MaxBytes {
		return nil, util.ErrBadRequest("File too large")
	}

	filename := fmt.Sprintf("%s/%s/%s%s", dir, time.Now().Format("2006/01"), uuid.New().String(), util.FileExtension(header.Filename))
	url, err := s.Storage.Upload(ctx, filename, bytes.NewReader(data), int64(len(data)), mimeType)
	if err != nil {
		logger.Log.Error("Upload failed", zap.String("file", filename), zap.Error(err))
		return nil, err
	}

	return &UploadResult{
		URL:      url,
		Filename: filename,
		Size:     int64(len(data)),
		MimeType: mimeType,
	}, nil
}

func (s *UploadService) Upload(ctx context.Context, header *multipart.FileHeader) (*UploadResult, error) {
	return s.store(ctx, "files", header, util.AllowedUploadExtensions, util.AllowedUploadMimeTypes)
}

// UploadAvatar stores an image and sets it as the user's avatar.
func (s *UploadService) UploadAvatar(ctx context.Context, user *model.User, header *multipart.FileHeader) (*UploadResult, error) {
	result, err := s.store(ctx, "avatars", header, util.AllowedImageExtensions, util.AllowedImageMimeTypes)
	if err != nil {
		return nil, err
	}
	if err := s.UserRepo.UpdateFields(user.ID, map[string]interface{}{"profile_avatar": result.URL}); err != nil {
		return nil, err
	}
	user.Profile.Avatar = result.URL
	return result, nil
}
