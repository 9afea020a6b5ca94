package dto

import (
	"time"

	"github.com/rei-nationwide/platform-api/internal/repository"
)

// UserListResponse wraps the administrative user listing.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// ActivityEntryResponse is one audit trail row joined with actor display
// fields. Actor fields are null when the user is missing or system-initiated.
type ActivityEntryResponse struct {
	ID        uint                   `json:"id"`
	UserName  *string                `json:"user_name"`
	UserEmail *string                `json:"user_email"`
	Action    string                 `json:"action"`
	Endpoint  string                 `json:"endpoint"`
	Detail    string                 `json:"details"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	IPAddress string                 `json:"ip"`
	Timestamp time.Time              `json:"timestamp"`
}

// ActivityListResponse wraps the administrative activity listing.
type ActivityListResponse struct {
	Activity []ActivityEntryResponse `json:"activity"`
}

// NewActivityEntryResponse converts a joined activity row into its projection.
func NewActivityEntryResponse(entry repository.ActivityWithActor) ActivityEntryResponse {
	return ActivityEntryResponse{
		ID:        entry.ID,
		UserName:  entry.UserName,
		UserEmail: entry.UserEmail,
		Action:    entry.Action,
		Endpoint:  entry.Endpoint,
		Detail:    entry.Detail,
		Metadata:  entry.Metadata,
		IPAddress: entry.IPAddress,
		Timestamp: entry.CreatedAt,
	}
}
