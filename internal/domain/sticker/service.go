// internal/domain/sticker/service.go
package sticker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/config"
	"github.com/stickerly/stickershop-backend/internal/pkg/artgen"
	"gorm.io/gorm"
)

// Service handles sticker catalog business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	generator *artgen.Generator
	logger    *logrus.Logger
}

// NewService creates a new sticker service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		generator: artgen.NewGenerator(),
		logger:    logger,
	}
}

// ListParams controls template listing
type ListParams struct {
	CategorySlug string
	FeaturedOnly bool
	Page         int
	Limit        int
}

// TemplateList is a paginated template listing
type TemplateList struct {
	Templates []Template `json:"templates"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
}

// CreateCustomRequest represents a custom sticker creation request
type CreateCustomRequest struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt"`
}

// ListCategories returns all active categories in sort order
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order asc, name asc").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListTemplates returns active templates, optionally filtered by category
func (s *Service) ListTemplates(ctx context.Context, params ListParams) (*TemplateList, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Template{}).Where("is_active = ?", true)

	if params.CategorySlug != "" {
		query = query.Joins("JOIN sticker_categories ON sticker_categories.id = sticker_templates.category_id").
			Where("sticker_categories.slug = ?", params.CategorySlug)
	}
	if params.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count templates: %w", err)
	}

	var templates []Template
	offset := (params.Page - 1) * params.Limit
	err := query.Preload("Category").
		Order("created_at desc").
		Offset(offset).Limit(params.Limit).
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return &TemplateList{
		Templates: templates,
		Total:     total,
		Page:      params.Page,
		Limit:     params.Limit,
	}, nil
}

// GetTemplate retrieves a single active template by id
func (s *Service) GetTemplate(ctx context.Context, id uint) (*Template, error) {
	var template Template
	err := s.db.WithContext(ctx).Preload("Category").
		Where("id = ? AND is_active = ?", id, true).
		First(&template).Error
	if err != nil {
		return nil, fmt.Errorf("sticker template not found")
	}
	return &template, nil
}

// CreateCustom creates a user-created sticker from an uploaded image
// or from a generated design. Exactly one of ImageURL or Prompt must
// be supplied; a prompt produces a deterministic placeholder design.
func (s *Service) CreateCustom(ctx context.Context, userID uint, req *CreateCustomRequest) (*CustomSticker, error) {
	if req.ImageURL == "" && req.Prompt == "" {
		return nil, fmt.Errorf("either image_url or prompt is required")
	}

	custom := CustomSticker{
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		Price:    s.customStickerPrice(),
		Currency: s.config.Currency.BaseCode,
	}

	if req.ImageURL != "" {
		custom.ImageURL = req.ImageURL
		custom.Source = "upload"
	} else {
		custom.ImageURL = s.generator.GenerateDataURL(req.Prompt)
		custom.Source = "generated"
		custom.Prompt = req.Prompt
	}

	if err := s.db.WithContext(ctx).Create(&custom).Error; err != nil {
		return nil, fmt.Errorf("failed to create custom sticker: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"sticker_id": custom.ID,
		"source":     custom.Source,
	}).Info("Custom sticker created")

	return &custom, nil
}

// GenerateDesign produces a deterministic placeholder design for a prompt
// without persisting anything, for client-side preview
func (s *Service) GenerateDesign(prompt string) string {
	return s.generator.GenerateDataURL(prompt)
}

// GetCustom retrieves a custom sticker. Unpublished designs are only
// visible to their owner.
func (s *Service) GetCustom(ctx context.Context, requesterID *uint, id uint) (*CustomSticker, error) {
	var custom CustomSticker
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&custom).Error
	if err != nil {
		return nil, fmt.Errorf("custom sticker not found")
	}

	if !custom.IsPublished && (requesterID == nil || *requesterID != custom.UserID) {
		return nil, fmt.Errorf("custom sticker not found")
	}

	return &custom, nil
}

// Resolve resolves a sticker reference to its catalog snapshot. Cart and
// checkout denormalize this snapshot into their own line items.
func (s *Service) Resolve(ctx context.Context, stickerType Type, stickerID uint) (*Snapshot, error) {
	switch stickerType {
	case TypeTemplate:
		template, err := s.GetTemplate(ctx, stickerID)
		if err != nil {
			return nil, err
		}
		return &Snapshot{
			StickerID: template.ID,
			Type:      TypeTemplate,
			Name:      template.Name,
			Category:  template.Category.Name,
			Price:     template.Price,
			Currency:  template.Currency,
			ImageURL:  template.ImageURL,
		}, nil

	case TypeUserCreated:
		var custom CustomSticker
		err := s.db.WithContext(ctx).Where("id = ?", stickerID).First(&custom).Error
		if err != nil {
			return nil, fmt.Errorf("custom sticker not found")
		}
		return &Snapshot{
			StickerID: custom.ID,
			Type:      TypeUserCreated,
			Name:      custom.Name,
			Category:  "Custom",
			Price:     custom.Price,
			Currency:  custom.Currency,
			ImageURL:  custom.ImageURL,
		}, nil

	default:
		return nil, fmt.Errorf("unknown sticker type: %s", stickerType)
	}
}

// SetPublished flips the published flag on a user's custom sticker
func (s *Service) SetPublished(ctx context.Context, userID, stickerID uint, published bool) (*CustomSticker, error) {
	var custom CustomSticker
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", stickerID, userID).
		First(&custom).Error
	if err != nil {
		return nil, fmt.Errorf("custom sticker not found")
	}

	custom.IsPublished = published
	if published {
		now := time.Now().UTC()
		custom.PublishedAt = &now
	} else {
		custom.PublishedAt = nil
	}

	if err := s.db.WithContext(ctx).Save(&custom).Error; err != nil {
		return nil, fmt.Errorf("failed to update custom sticker: %w", err)
	}

	return &custom, nil
}

// customStickerPrice is the flat price for user-created stickers
func (s *Service) customStickerPrice() float64 {
	return 4.99
}
