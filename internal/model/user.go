package model

import (
	"time"

	"github.com/google/uuid"
)

// Role values determine which operations a user may perform.
var (
	// RoleStudent owns applications and scholarship applications.
	RoleStudent = "student"
	// RoleAgent reviews applications and attaches notes.
	RoleAgent = "agent"
	// RoleAdmin manages applications and the scholarship catalog.
	RoleAdmin = "admin"
)

// User is gorm model for a portal account. Password holds the bcrypt hash
// and is never serialized.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name     string    `gorm:"type:text;not null" json:"name"`
	Email    string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Password string    `gorm:"type:text;not null" json:"-"`
	Role     string    `gorm:"type:text;not null;default:'student'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
