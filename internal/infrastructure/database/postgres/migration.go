// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/domain/cart"
	"github.com/stickerly/stickershop-backend/internal/domain/order"
	"github.com/stickerly/stickershop-backend/internal/domain/social"
	"github.com/stickerly/stickershop-backend/internal/domain/sticker"
	"github.com/stickerly/stickershop-backend/internal/domain/upload"
	"github.com/stickerly/stickershop-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations and seed data
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{db: db, logger: logger}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	models := []interface{}{
		&user.User{},

		&sticker.Category{},
		&sticker.Template{},
		&sticker.CustomSticker{},

		&cart.LineItem{},

		&order.Order{},
		&order.Item{},

		&social.StickerLike{},
		&upload.UploadedFile{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	m.logger.Info("Database migrations completed")
	return nil
}

// SeedInitialData populates the catalog and a test account for
// development environments
func (m *Migration) SeedInitialData() error {
	m.logger.Info("Seeding initial data")

	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	if err := m.seedTestUser(); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}
	return nil
}

func (m *Migration) seedCatalog() error {
	categories := []sticker.Category{
		{Name: "Animals", Slug: "animals", Description: "Cute animal stickers", SortOrder: 1, IsActive: true},
		{Name: "Space", Slug: "space", Description: "Rockets, planets and stars", SortOrder: 2, IsActive: true},
		{Name: "Food", Slug: "food", Description: "Snacks and treats", SortOrder: 3, IsActive: true},
		{Name: "Memes", Slug: "memes", Description: "Internet classics", SortOrder: 4, IsActive: true},
	}

	for i := range categories {
		var existing sticker.Category
		result := m.db.Where("slug = ?", categories[i].Slug).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := m.db.Create(&categories[i]).Error; err != nil {
				return err
			}
		} else if result.Error != nil {
			return result.Error
		} else {
			categories[i] = existing
		}
	}

	templates := []sticker.Template{
		{Name: "Happy Corgi", Slug: "happy-corgi", CategoryID: categories[0].ID, Price: 2.50, Currency: "USD", ImageURL: "/assets/templates/happy-corgi.png", IsActive: true, IsFeatured: true},
		{Name: "Grumpy Cat", Slug: "grumpy-cat", CategoryID: categories[0].ID, Price: 2.50, Currency: "USD", ImageURL: "/assets/templates/grumpy-cat.png", IsActive: true},
		{Name: "Rocket Launch", Slug: "rocket-launch", CategoryID: categories[1].ID, Price: 3.00, Currency: "USD", ImageURL: "/assets/templates/rocket-launch.png", IsActive: true, IsFeatured: true},
		{Name: "Saturn Rings", Slug: "saturn-rings", CategoryID: categories[1].ID, Price: 3.00, Currency: "USD", ImageURL: "/assets/templates/saturn-rings.png", IsActive: true},
		{Name: "Pizza Slice", Slug: "pizza-slice", CategoryID: categories[2].ID, Price: 2.00, Currency: "USD", ImageURL: "/assets/templates/pizza-slice.png", IsActive: true},
		{Name: "Boba Tea", Slug: "boba-tea", CategoryID: categories[2].ID, Price: 2.00, Currency: "USD", ImageURL: "/assets/templates/boba-tea.png", IsActive: true},
	}

	for _, tmpl := range templates {
		var existing sticker.Template
		result := m.db.Where("slug = ?", tmpl.Slug).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := m.db.Create(&tmpl).Error; err != nil {
				return err
			}
		} else if result.Error != nil {
			return result.Error
		}
	}

	return nil
}

func (m *Migration) seedTestUser() error {
	const testEmail = "test@example.com"

	var existing user.User
	result := m.db.Where("email = ?", testEmail).First(&existing)
	if result.Error == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Test1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	testUser := user.User{
		Email:     testEmail,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
	}
	if err := m.db.Create(&testUser).Error; err != nil {
		return err
	}

	m.logger.WithField("email", testEmail).Info("Test user seeded")
	return nil
}
