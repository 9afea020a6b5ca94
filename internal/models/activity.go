package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is one append-only audit trail row. UserID is a soft reference:
// listings must tolerate a missing user rather than fail the join.
type ActivityLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    *uint             `gorm:"index" json:"user_id"`
	Action    string            `gorm:"size:64;not null" json:"action"`
	Endpoint  string            `gorm:"size:255" json:"endpoint"`
	Detail    string            `gorm:"size:255" json:"detail"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	IPAddress string            `gorm:"size:64" json:"ip_address"`
	CreatedAt time.Time         `json:"created_at"`
}
