// internal/domain/upload/service.go
package upload

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles sticker design uploads
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new upload service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{db: db, config: cfg, logger: logger}
}

// UploadRequest represents a design upload
type UploadRequest struct {
	File       multipart.File
	Header     *multipart.FileHeader
	UploadedBy uint
}

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// UploadDesign validates and stores a design file, recording it in the
// database. The stored file is removed again if the record cannot be
// written.
func (s *Service) UploadDesign(ctx context.Context, req *UploadRequest) (*UploadedFile, error) {
	if err := s.validate(req.Header); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(req.Header.Filename))
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	relativePath := filepath.Join("designs", filename)
	fullPath := filepath.Join(s.config.Upload.LocalPath, relativePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, req.File); err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	width, height := imageDimensions(fullPath)

	uploaded := UploadedFile{
		OriginalName: req.Header.Filename,
		Filename:     filename,
		Path:         relativePath,
		URL:          s.fileURL(relativePath),
		MimeType:     mimeTypes[ext],
		Size:         req.Header.Size,
		Width:        width,
		Height:       height,
		UploadedBy:   req.UploadedBy,
	}

	if err := s.db.WithContext(ctx).Create(&uploaded).Error; err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to save file info: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"filename": filename,
		"user_id":  req.UploadedBy,
		"size":     uploaded.Size,
	}).Info("Design uploaded")

	return &uploaded, nil
}

// Get retrieves an upload record by id
func (s *Service) Get(ctx context.Context, id uint) (*UploadedFile, error) {
	var uploaded UploadedFile
	if err := s.db.WithContext(ctx).First(&uploaded, id).Error; err != nil {
		return nil, fmt.Errorf("file not found")
	}
	return &uploaded, nil
}

// Delete removes an upload, owner only
func (s *Service) Delete(ctx context.Context, fileID, userID uint) error {
	var uploaded UploadedFile
	if err := s.db.WithContext(ctx).First(&uploaded, fileID).Error; err != nil {
		return fmt.Errorf("file not found")
	}
	if uploaded.UploadedBy != userID {
		return fmt.Errorf("file not found")
	}

	fullPath := filepath.Join(s.config.Upload.LocalPath, uploaded.Path)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return s.db.WithContext(ctx).Delete(&uploaded).Error
}

func (s *Service) validate(header *multipart.FileHeader) error {
	if header.Size > s.config.Upload.MaxSize {
		return fmt.Errorf("file exceeds maximum size of %d bytes", s.config.Upload.MaxSize)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	for _, allowed := range s.config.Upload.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("file type .%s is not allowed", ext)
}

func (s *Service) fileURL(relativePath string) string {
	return s.config.Upload.PublicBaseURL + "/" + filepath.ToSlash(relativePath)
}

func imageDimensions(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
