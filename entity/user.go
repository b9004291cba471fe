package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles understood by the dashboard gate.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// User is the base auth profile for dashboard operators.
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	FullName     string         `json:"full_name" gorm:"type:text;not null"`
	Email        string         `json:"email" gorm:"type:text;uniqueIndex;not null"`
	Phone        string         `json:"phone,omitempty" gorm:"type:text;index"`
	PasswordHash string         `json:"-" gorm:"type:text"`
	FirebaseUID  *string        `json:"firebase_uid,omitempty" gorm:"type:text;uniqueIndex;default:null"`
	Role         string         `json:"role" gorm:"type:text;index;not null"`
	Active       bool           `json:"active" gorm:"default:true;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
