// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the UUID in-process so the same models work on
// Postgres in production and SQLite in tests.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Enums
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleSalesAgent Role = "salesagent"
	RoleAdmin      Role = "admin"
)

// ValidRole reports whether r is one of the requestable roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleSalesAgent, RoleAdmin:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)
