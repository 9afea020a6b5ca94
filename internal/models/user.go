package models

import "time"

// Role values recognised by the platform. The column stays a plain string so
// deployments can extend the set, but registration validates against this list.
const (
	RoleAdmin        = "admin"
	RoleManager      = "manager"
	RoleAcquisitions = "acquisitions"
	RoleMember       = "member"
)

// User is a team member account. Records are never physically deleted;
// deactivation flips IsActive instead.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Role         string     `gorm:"size:32;not null;default:member" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login"`
}
