package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/rei-nationwide/platform-api/internal/dto"
	"github.com/rei-nationwide/platform-api/internal/models"
	"github.com/rei-nationwide/platform-api/internal/observability"
	"github.com/rei-nationwide/platform-api/internal/repository"
)

const (
	defaultActivityLimit = 100
	maxDetailLength      = 200
)

// ActivityEntry captures the details of one auditable action.
type ActivityEntry struct {
	UserID    *uint
	Action    string
	Endpoint  string
	Detail    string
	IPAddress string
	Metadata  map[string]interface{}
}

// EventPublisher publishes raw activity events to a message bus. *nats.Conn
// satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// ActivityRecorder records audit entries as a side effect of business
// operations. Record never returns an error: a failed write must not change
// the outcome of the request that triggered it.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
}

// ActivityService exposes the audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, limit int) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo      repository.ActivityLogRepository
	publisher EventPublisher
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewActivityService constructs the audit trail service. publisher may be nil
// when no message bus is configured.
func NewActivityService(repo repository.ActivityLogRepository, publisher EventPublisher, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:      repo,
		publisher: publisher,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	if action == "" {
		s.logger.Warn().Msg("dropping activity entry without action")
		return
	}

	detail := strings.TrimSpace(s.sanitizer.Sanitize(entry.Detail))
	if len(detail) > maxDetailLength {
		detail = detail[:maxDetailLength]
	}

	model := models.ActivityLog{
		UserID:    entry.UserID,
		Action:    action,
		Endpoint:  entry.Endpoint,
		Detail:    detail,
		Metadata:  toJSONMap(entry.Metadata),
		IPAddress: entry.IPAddress,
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		observability.AuditWriteFailures().Inc()
		s.logger.Warn().Err(err).Str("action", action).Msg("activity log write failed")
		return
	}

	s.publish(action, model)
}

func (s *activityService) List(ctx context.Context, limit int) (dto.ActivityListResponse, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	entries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	responses := make([]dto.ActivityEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityEntryResponse(entry))
	}

	return dto.ActivityListResponse{Activity: responses}, nil
}

// publish mirrors the audit row onto the message bus for operational
// telemetry. Failures are swallowed like the write itself.
func (s *activityService) publish(action string, model models.ActivityLog) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"action":    action,
		"user_id":   model.UserID,
		"endpoint":  model.Endpoint,
		"ip":        model.IPAddress,
		"timestamp": time.Now().UTC(),
	})
	if err != nil {
		return
	}

	if err := s.publisher.Publish("activity."+action, payload); err != nil {
		s.logger.Debug().Err(err).Str("action", action).Msg("activity event publish failed")
	}
}

func toJSONMap(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return nil
	}
	return datatypes.JSONMap(metadata)
}
