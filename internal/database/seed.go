// internal/database/seed.go
package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/riteshop/riteshop-backend/internal/models"
)

type seedUser struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

var seedUsers = []seedUser{
	{"admin user", "admin@gmail.com", "password123", models.RoleAdmin},
	{"Stone Sink", "stonesink@gmail.com", "password123", models.RoleSalesAgent},
	{"Shaw craw", "shawcraw1234@gmail.com", "password123", models.RoleCustomer},
	{"rando random", "randorandom@gmail.com", "password123", models.RoleCustomer},
}

var seedProducts = []models.Product{
	{Name: "first", Description: "demo product", Price: 200, Quantity: 90},
	{Name: "second", Description: "second product", Price: 200, Quantity: 100},
	{Name: "third", Description: "third product", Price: 300, Quantity: 291},
	{Name: "Keira Tempo Sundress", Description: "Lovely sundress", Price: 150, Quantity: 100},
	{Name: "Sweatpants for dancing", Description: "Dancing for sweatpants", Price: 100, Quantity: 190},
	{Name: "Men's sweatpants", Description: "Sweatpants for men", Price: 20, Quantity: 200},
	{Name: "Leather pants for rockstars", Description: "Rockstars for leather pants", Price: 100, Quantity: 100},
	{Name: "Women's blue shirt", Description: "Blue shirt for women", Price: 110, Quantity: 120},
	{Name: "Olive green men's shirt", Description: "Men's shirt olive green", Price: 100, Quantity: 120},
	{Name: "Women's denim jacket and jeans set", Description: "Set for women's jacket and jeans", Price: 190, Quantity: 300},
}

// SeedInitialData loads the demo users and catalog. Existing rows are left
// alone, so the seeder is safe to run repeatedly.
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	for _, su := range seedUsers {
		var count int64
		db.Model(&models.User{}).Where("email = ?", su.Email).Count(&count)
		if count > 0 {
			continue
		}

		user := &models.User{
			Name:  su.Name,
			Email: su.Email,
			Role:  su.Role,
		}
		if err := user.SetPassword(su.Password); err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", su.Email, err)
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", su.Email, err)
		}
	}

	var productCount int64
	db.Model(&models.Product{}).Count(&productCount)
	if productCount == 0 {
		for i := range seedProducts {
			if err := db.Create(&seedProducts[i]).Error; err != nil {
				return fmt.Errorf("failed to create product %q: %w", seedProducts[i].Name, err)
			}
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}
