// internal/services/helpers_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/riteshop/riteshop-backend/internal/config"
	"github.com/riteshop/riteshop-backend/internal/database"
	"github.com/riteshop/riteshop-backend/internal/models"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

// setupTestDB opens a fresh in-memory SQLite database with the full schema,
// standing in for Postgres the way the original tests ran against an
// in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testPagination() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey: "test-secret",
			TokenTTL:  1,
		},
	}
}

func createProduct(t *testing.T, db *gorm.DB, name string, price float64, quantity int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:        name,
		Description: "test product",
		Price:       price,
		Quantity:    quantity,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Name:  "Test User",
		Email: email,
		Role:  role,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}
