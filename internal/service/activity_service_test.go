package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rei-nationwide/platform-api/internal/models"
	"github.com/rei-nationwide/platform-api/internal/repository"
)

type activityRepoStub struct {
	mu        sync.Mutex
	created   []models.ActivityLog
	failWrite bool
	lastLimit int
	listRows  []repository.ActivityWithActor
}

func (s *activityRepoStub) Create(_ context.Context, entry *models.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errors.New("disk full")
	}
	entry.ID = uint(len(s.created) + 1)
	s.created = append(s.created, *entry)
	return nil
}

func (s *activityRepoStub) ListRecent(_ context.Context, limit int) ([]repository.ActivityWithActor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLimit = limit
	return s.listRows, nil
}

type publisherStub struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (p *publisherStub) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return p.err
}

func TestRecordPersistsSanitizedDetail(t *testing.T) {
	repo := &activityRepoStub{}
	svc := NewActivityService(repo, nil, testLogger())

	userID := uint(7)
	svc.Record(context.Background(), ActivityEntry{
		UserID:    &userID,
		Action:    " Property_Search ",
		Endpoint:  "/api/v1/properties/search",
		Detail:    "<script>alert(1)</script>Plano, TX",
		IPAddress: "203.0.113.5",
	})

	require.Len(t, repo.created, 1)
	stored := repo.created[0]
	require.Equal(t, "property_search", stored.Action)
	require.Equal(t, "Plano, TX", stored.Detail)
	require.Equal(t, "203.0.113.5", stored.IPAddress)
	require.NotNil(t, stored.UserID)
	require.Equal(t, uint(7), *stored.UserID)
}

func TestRecordTruncatesLongDetail(t *testing.T) {
	repo := &activityRepoStub{}
	svc := NewActivityService(repo, nil, testLogger())

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'q'
	}
	svc.Record(context.Background(), ActivityEntry{Action: "ai_query", Detail: string(long)})

	require.Len(t, repo.created, 1)
	require.Len(t, repo.created[0].Detail, maxDetailLength)
}

func TestRecordSwallowsWriteFailure(t *testing.T) {
	repo := &activityRepoStub{failWrite: true}
	svc := NewActivityService(repo, nil, testLogger())

	// Must not panic or propagate; the triggering request is unaffected.
	svc.Record(context.Background(), ActivityEntry{Action: "login"})
	require.Empty(t, repo.created)
}

func TestRecordDropsEntryWithoutAction(t *testing.T) {
	repo := &activityRepoStub{}
	svc := NewActivityService(repo, nil, testLogger())

	svc.Record(context.Background(), ActivityEntry{Detail: "no action"})
	require.Empty(t, repo.created)
}

func TestRecordPublishesEvent(t *testing.T) {
	repo := &activityRepoStub{}
	publisher := &publisherStub{}
	svc := NewActivityService(repo, publisher, testLogger())

	svc.Record(context.Background(), ActivityEntry{Action: "skip_trace", Endpoint: "/api/v1/skip-trace"})

	require.Equal(t, []string{"activity.skip_trace"}, publisher.subjects)
	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &event))
	require.Equal(t, "skip_trace", event["action"])
	require.Equal(t, "/api/v1/skip-trace", event["endpoint"])
}

func TestRecordSwallowsPublishFailure(t *testing.T) {
	repo := &activityRepoStub{}
	publisher := &publisherStub{err: errors.New("bus down")}
	svc := NewActivityService(repo, publisher, testLogger())

	svc.Record(context.Background(), ActivityEntry{Action: "login"})
	require.Len(t, repo.created, 1)
}

func TestListDefaultsLimit(t *testing.T) {
	repo := &activityRepoStub{}
	svc := NewActivityService(repo, nil, testLogger())

	_, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, defaultActivityLimit, repo.lastLimit)

	_, err = svc.List(context.Background(), 25)
	require.NoError(t, err)
	require.Equal(t, 25, repo.lastLimit)
}

func TestListProjectsActorFields(t *testing.T) {
	name := "Carol"
	email := "carol@example.com"
	repo := &activityRepoStub{listRows: []repository.ActivityWithActor{
		{ActivityLog: models.ActivityLog{ID: 2, Action: "login"}, UserName: &name, UserEmail: &email},
		{ActivityLog: models.ActivityLog{ID: 1, Action: "startup"}},
	}}
	svc := NewActivityService(repo, nil, testLogger())

	resp, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, resp.Activity, 2)
	require.Equal(t, "Carol", *resp.Activity[0].UserName)
	require.Nil(t, resp.Activity[1].UserName)
}
