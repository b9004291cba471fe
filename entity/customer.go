package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gender enumerates the values accepted on a customer record.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// CustomerStatus enumerates the lifecycle states of a customer record.
type CustomerStatus string

const (
	CustomerActive      CustomerStatus = "ACTIVE"
	CustomerInactive    CustomerStatus = "INACTIVE"
	CustomerBlacklisted CustomerStatus = "BLACKLISTED"
)

// Customer is a customer record managed from the dashboard. The four document
// columns hold stored references (URLs) to previously uploaded images.
type Customer struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	FullName    string         `json:"full_name" gorm:"type:text;not null"`
	Email       string         `json:"email" gorm:"type:text;not null;uniqueIndex:idx_customers_email_live,where:deleted_at IS NULL"`
	Phone       string         `json:"phone" gorm:"type:text;index;not null"`
	Address     string         `json:"address" gorm:"type:text"`
	Gender      Gender         `json:"gender" gorm:"type:text"`
	Status      CustomerStatus `json:"status" gorm:"type:text;index;default:'ACTIVE'"`
	DateOfBirth time.Time      `json:"date_of_birth" gorm:"type:date"`
	Profile     string         `json:"profile,omitempty" gorm:"type:text"`
	AadharFront string         `json:"aadharFront,omitempty" gorm:"column:aadhar_front;type:text"`
	AadharBack  string         `json:"aadharBack,omitempty" gorm:"column:aadhar_back;type:text"`
	DrivingLic  string         `json:"drivingLic,omitempty" gorm:"column:driving_lic;type:text"`
	CreatedBy   *uuid.UUID     `json:"created_by,omitempty" gorm:"type:uuid;index;default:null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
