// internal/services/role_request_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riteshop/riteshop-backend/internal/models"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

// RoleRequestService runs the elevation workflow: a user files a request for
// a role, an admin approves or rejects it, approval changes the user's role.
type RoleRequestService struct {
	db *gorm.DB
}

type CreateRoleRequestRequest struct {
	Role models.Role `json:"requestedRole" validate:"required"`
}

type ReviewRoleRequestRequest struct {
	Status models.RequestStatus `json:"status" validate:"required,request_status"`
}

func NewRoleRequestService(db *gorm.DB) *RoleRequestService {
	return &RoleRequestService{db: db}
}

// Create files a role request. A user can have at most one pending request
// at a time, whatever role it asks for.
func (s *RoleRequestService) Create(requesterID uuid.UUID, req *CreateRoleRequestRequest) (*models.RoleRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !models.ValidRole(req.Role) {
		return nil, ErrInvalidRole
	}

	var request *models.RoleRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var pending int64
		err := tx.Model(&models.RoleRequest{}).
			Where("requester_id = ? AND status = ?", requesterID, models.RequestStatusPending).
			Count(&pending).Error
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if pending > 0 {
			return ErrPendingRequestExists
		}

		request = &models.RoleRequest{
			RequesterID:   requesterID,
			RequestedRole: req.Role,
			Status:        models.RequestStatusPending,
		}
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("failed to create role request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Review settles a pending request. Approval and the requester's role change
// commit together; a rejected request touches nothing but its own status.
func (s *RoleRequestService) Review(id uuid.UUID, reviewerID uuid.UUID, req *ReviewRoleRequestRequest) (*models.RoleRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.Status == models.RequestStatusPending {
		return nil, fmt.Errorf("validation failed: status must be approved or rejected")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.RoleRequest
		if err := tx.First(&request, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		if !request.IsPending() {
			return ErrRequestReviewed
		}

		updates := map[string]interface{}{
			"status":      req.Status,
			"reviewer_id": reviewerID,
		}
		if err := tx.Model(&request).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update role request: %w", err)
		}

		if req.Status == models.RequestStatusApproved {
			if err := tx.Model(&models.User{}).
				Where("id = ?", request.RequesterID).
				Update("role", request.RequestedRole).Error; err != nil {
				return fmt.Errorf("failed to update requester role: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// GetAll lists every request newest-first with the total count.
func (s *RoleRequestService) GetAll(params utils.PaginationParams) ([]models.RoleRequest, int64, error) {
	var total int64
	if err := s.db.Model(&models.RoleRequest{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count role requests: %w", err)
	}

	query := s.db.Preload("Requester").Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var requests []models.RoleRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch role requests: %w", err)
	}
	return requests, total, nil
}

// GetByRequester lists a single user's requests newest-first.
func (s *RoleRequestService) GetByRequester(requesterID uuid.UUID) ([]models.RoleRequest, error) {
	var requests []models.RoleRequest
	err := s.db.Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role requests: %w", err)
	}
	return requests, nil
}

func (s *RoleRequestService) GetByID(id uuid.UUID) (*models.RoleRequest, error) {
	var request models.RoleRequest
	err := s.db.Preload("Requester").First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &request, nil
}
