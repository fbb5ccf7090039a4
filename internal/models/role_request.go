// internal/models/role_request.go
package models

import (
	"github.com/google/uuid"
)

// RoleRequest lets a user ask for an elevated role. At most one pending
// request may exist per requester; a request leaves pending exactly once.
type RoleRequest struct {
	BaseModel
	RequesterID   uuid.UUID     `json:"requester" gorm:"type:uuid;index;not null"`
	ReviewerID    *uuid.UUID    `json:"reviewer,omitempty" gorm:"type:uuid"`
	RequestedRole Role          `json:"requestedRole" gorm:"type:varchar(20);not null"`
	Status        RequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	Requester *User `json:"-" gorm:"foreignKey:RequesterID"`
}

func (r *RoleRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
