package bootstrap

import (
	"errors"
	"log"

	"anoa.com/eventhub/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Profile{},
		&entity.Category{},
		&entity.Event{},
		&entity.EventOrganizer{},
		&entity.EventImage{},
		&entity.Registration{},
		&entity.Invitation{},
		&entity.Notification{},
		&entity.UserPreference{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Super administrator"},
		{Name: entity.RoleUser, Description: "Student"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedCategories(db *gorm.DB) error {
	defaults := []entity.Category{
		{Name: "Competition", Slug: "competition", Description: "Contests and hackathons"},
		{Name: "Workshop", Slug: "workshop", Description: "Hands-on sessions"},
		{Name: "Seminar", Slug: "seminar", Description: "Talks and webinars"},
		{Name: "Volunteer", Slug: "volunteer", Description: "Community service"},
		{Name: "Sports", Slug: "sports", Description: "Matches and tournaments"},
		{Name: "Arts", Slug: "arts", Description: "Music, theatre and exhibitions"},
	}

	for _, category := range defaults {
		err := db.Where("slug = ?", category.Slug).First(&entity.Category{}).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&category).Error; err != nil {
			return err
		}
	}

	return nil
}

// SeedAdminUser creates the development admin account once.
func SeedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	const email = "admin@eventhub.local"
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		adminUser := entity.User{
			Email:        email,
			PasswordHash: string(hashedPasswordBytes),
			RoleID:       &adminRole.ID,
		}
		if err := tx.Omit("Profile", "Role").Create(&adminUser).Error; err != nil {
			return err
		}

		adminProfile := entity.Profile{
			UserID: adminUser.ID,
			Name:   "Administrator",
		}
		if err := tx.Create(&adminProfile).Error; err != nil {
			return err
		}

		log.Println("✅ Admin user seeded successfully")
		log.Printf("   Email: %s", email)
		log.Printf("   Password: %s", password)
		return nil
	})
}
