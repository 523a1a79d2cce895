package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"auctionhouse-backend/internal/domains/notification/model"
	"auctionhouse-backend/internal/shared"
)

// ================================================
// IN-MEMORY FAKES
// ================================================

type fakeNotificationRepo struct {
	mu      sync.Mutex
	byKey   map[string]*model.Notification
	created []model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{byKey: make(map[string]*model.Notification)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *model.Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byKey[n.IdempotencyKey]; exists {
		return false, nil
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.EmailStatus == "" {
		n.EmailStatus = model.EmailStatusPending
	}
	n.CreatedAt = time.Now()
	cp := *n
	r.byKey[n.IdempotencyKey] = &cp
	r.created = append(r.created, cp)
	return true, nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.byKey {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, model.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, q *model.ListNotificationsQuery) ([]model.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.created {
		if n.UserID == userID && (!q.UnreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.byKey {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.byKey {
		if n.ID == id {
			if n.UserID != userID {
				return model.ErrUnauthorized
			}
			if !n.IsRead {
				n.IsRead = true
				now := time.Now()
				n.ReadAt = &now
			}
			return nil
		}
	}
	return model.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for _, n := range r.byKey {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (r *fakeNotificationRepo) UpdateEmailStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.byKey {
		if n.ID == id {
			n.EmailStatus = status
			return nil
		}
	}
	return model.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type recordingEnqueuer struct {
	mu    sync.Mutex
	err   error
	tasks []struct {
		Type    string
		Payload interface{}
	}
}

func (e *recordingEnqueuer) Enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.tasks = append(e.tasks, struct {
		Type    string
		Payload interface{}
	}{taskType, payload})
	return nil
}

// ================================================
// DISPATCHER TESTS
// ================================================

func sampleInput(key string) *DispatchInput {
	itemID := uuid.New()
	return &DispatchInput{
		UserID:         uuid.New(),
		Type:           model.TypeOutbid,
		Title:          "You have been outbid",
		Message:        "A new bid leads the auction.",
		AuctionItemID:  &itemID,
		IdempotencyKey: key,
	}
}

func TestDispatch_CreatesAndEnqueuesEmail(t *testing.T) {
	repo := newFakeNotificationRepo()
	queue := &recordingEnqueuer{}
	d := NewDispatcher(repo, queue)

	input := sampleInput("outbid:item:bid")
	created, err := d.Dispatch(context.Background(), input)
	require.NoError(t, err)
	require.True(t, created)

	require.Len(t, repo.created, 1)
	require.Equal(t, model.EmailStatusPending, repo.created[0].EmailStatus)

	require.Len(t, queue.tasks, 1)
	require.Equal(t, shared.TypeSendNotificationEmail, queue.tasks[0].Type)
	payload := queue.tasks[0].Payload.(shared.NotificationEmailPayload)
	require.Equal(t, repo.created[0].ID, payload.NotificationID)
	require.Equal(t, input.UserID, payload.UserID)
}

func TestDispatch_DuplicateKeySuppressed(t *testing.T) {
	repo := newFakeNotificationRepo()
	queue := &recordingEnqueuer{}
	d := NewDispatcher(repo, queue)

	_, err := d.Dispatch(context.Background(), sampleInput("ending:item:user"))
	require.NoError(t, err)

	created, err := d.Dispatch(context.Background(), sampleInput("ending:item:user"))
	require.NoError(t, err)
	require.False(t, created)

	require.Len(t, repo.created, 1, "second dispatch must not insert")
	require.Len(t, queue.tasks, 1, "second dispatch must not enqueue")
}

func TestDispatch_EnqueueFailureKeepsNotification(t *testing.T) {
	repo := newFakeNotificationRepo()
	queue := &recordingEnqueuer{err: errors.New("redis down")}
	d := NewDispatcher(repo, queue)

	created, err := d.Dispatch(context.Background(), sampleInput("won:item"))
	require.NoError(t, err, "email enqueue failure must not fail the dispatch")
	require.True(t, created)
	require.Len(t, repo.created, 1)
}

// ================================================
// NOTIFICATION SERVICE TESTS
// ================================================

func TestNotificationService_ReadFlow(t *testing.T) {
	repo := newFakeNotificationRepo()
	queue := &recordingEnqueuer{}
	d := NewDispatcher(repo, queue)
	svc := NewNotificationService(repo)

	user := uuid.New()
	stranger := uuid.New()

	for _, key := range []string{"a", "b", "c"} {
		input := sampleInput(key)
		input.UserID = user
		_, err := d.Dispatch(context.Background(), input)
		require.NoError(t, err)
	}

	count, err := svc.CountUnread(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	items, total, err := svc.List(context.Background(), user, &model.ListNotificationsQuery{UnreadOnly: true})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, items, 3)

	// Foreign user cannot ack someone else's notification.
	err = svc.MarkAsRead(context.Background(), items[0].ID, stranger)
	require.ErrorIs(t, err, model.ErrUnauthorized)

	require.NoError(t, svc.MarkAsRead(context.Background(), items[0].ID, user))

	updated, err := svc.MarkAllAsRead(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, int64(2), updated)

	count, err = svc.CountUnread(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}
