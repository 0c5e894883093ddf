package database

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tutorhub/backend/internal/models"
)

// seedTutors are the bootstrap catalog entries, inserted once on first run.
var seedTutors = []models.Tutor{
	{Name: "Ivan Ivanov", Rating: 4.9, Subjects: "Mathematics, Physics", Image: "tutor1.jpg"},
	{Name: "Maria Petrova", Rating: 4.7, Subjects: "English", Image: "tutor2.jpg"},
	{Name: "Alexey Sidorov", Rating: 4.8, Subjects: "Computer Science", Image: "tutor3.jpg"},
}

// Seed applies the bootstrap policy: initial tutors when the catalog is
// empty, and the admin account from ADMIN_EMAIL/ADMIN_PASSWORD. Admin
// promotion never happens on the request path.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Tutor{}).Count(&count).Error; err != nil {
		return fmt.Errorf("error counting tutors: %w", err)
	}

	if count == 0 {
		if err := db.Create(&seedTutors).Error; err != nil {
			return fmt.Errorf("error seeding tutors: %w", err)
		}
		log.Println("✅ Seeded initial tutors")
	}

	return seedAdmin(db)
}

func seedAdmin(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if email == "" || adminPassword == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if existing.Role != models.RoleAdmin {
			existing.Role = models.RoleAdmin
			if err := db.Save(&existing).Error; err != nil {
				return fmt.Errorf("error promoting admin user: %w", err)
			}
			log.Printf("✅ Promoted %s to admin", email)
		}
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("error looking up admin user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	admin := models.User{
		Name:     "Administrator",
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("error creating admin user: %w", err)
	}

	log.Printf("✅ Created admin user %s", email)
	return nil
}
