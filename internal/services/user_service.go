// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riteshop/riteshop-backend/internal/config"
	"github.com/riteshop/riteshop-backend/internal/models"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

type UserService struct {
	db  *gorm.DB
	cfg *config.Config
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name     string      `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email    string      `json:"email,omitempty" validate:"omitempty,email"`
	Password string      `json:"password,omitempty" validate:"omitempty,min=6"`
	Role     models.Role `json:"role,omitempty" validate:"omitempty,role"`
}

func NewUserService(db *gorm.DB, cfg *config.Config) *UserService {
	return &UserService{db: db, cfg: cfg}
}

// Register creates a customer account and returns a signed token.
func (s *UserService) Register(req *RegisterRequest) (string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return "", ErrEmailTaken
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  models.RoleCustomer,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return s.token(user)
}

func (s *UserService) Login(req *LoginRequest) (string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.token(&user)
}

// Logout puts the token on the denylist until its own expiry.
func (s *UserService) Logout(token string, expiresAt time.Time) error {
	revoked := &models.RevokedToken{
		TokenHash: utils.HashString(token),
		ExpiresAt: expiresAt,
	}
	if err := s.db.Create(revoked).Error; err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	// Opportunistic pruning of tokens that expired on their own.
	s.db.Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{})
	return nil
}

// IsTokenRevoked implements middleware.TokenChecker.
func (s *UserService) IsTokenRevoked(token string) bool {
	var count int64
	s.db.Model(&models.RevokedToken{}).
		Where("token_hash = ?", utils.HashString(token)).
		Count(&count)
	return count > 0
}

func (s *UserService) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// Update edits an account. Role changes are applied only when the actor is
// an admin; everyone else keeps their current role regardless of the patch.
func (s *UserService) Update(id uuid.UUID, req *UpdateUserRequest, actorRole models.Role) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password"] = user.Password
	}
	if req.Role != "" && actorRole == models.RoleAdmin {
		updates["role"] = req.Role
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.GetByID(id)
}

func (s *UserService) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// FindOrCreateGoogleUser links a Google identity to an account, creating a
// customer account on first sign-in, and returns a signed token.
func (s *UserService) FindOrCreateGoogleUser(googleID, name, email string) (string, error) {
	var user models.User
	err := s.db.Where("google_id = ?", googleID).First(&user).Error
	if err == nil {
		return s.token(&user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("database error: %w", err)
	}

	// Attach the Google identity to an existing account with the same email.
	err = s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		if err := s.db.Model(&user).Update("google_id", googleID).Error; err != nil {
			return "", fmt.Errorf("failed to link google account: %w", err)
		}
		return s.token(&user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("database error: %w", err)
	}

	user = models.User{
		Name:     name,
		Email:    email,
		Role:     models.RoleCustomer,
		GoogleID: googleID,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return s.token(&user)
}

func (s *UserService) token(user *models.User) (string, error) {
	token, err := utils.GenerateJWT(user.ID, user.Name, string(user.Role), s.cfg.JWT.TokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
