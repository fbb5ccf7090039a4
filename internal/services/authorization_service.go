// internal/services/authorization_service.go
package services

import (
	"github.com/google/uuid"

	"github.com/riteshop/riteshop-backend/internal/models"
)

// Actor is the authenticated caller as seen by the policy layer.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// AuthorizationService centralises the owner-or-admin checks that the
// handlers used to scatter per route.
type AuthorizationService struct{}

func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// CanActOnUser allows admins and the user themselves.
func (s *AuthorizationService) CanActOnUser(actor Actor, userID uuid.UUID) bool {
	return actor.Role == models.RoleAdmin || actor.ID == userID
}

// CanActOnOrder allows admins and the order's owner.
func (s *AuthorizationService) CanActOnOrder(actor Actor, order *models.Order) bool {
	if order == nil {
		return false
	}
	return actor.Role == models.RoleAdmin || actor.ID == order.UserID
}

func (s *AuthorizationService) IsAdmin(actor Actor) bool {
	return actor.Role == models.RoleAdmin
}
