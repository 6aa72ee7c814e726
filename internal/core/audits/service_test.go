package audits

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoauditor/internal/core/audit"
	"seoauditor/internal/core/queue"
	"seoauditor/internal/storage"
)

func newTestService() (*Service, *storage.Memory, *queue.Queue) {
	store := storage.NewMemory()
	store.PutProfile(storage.Profile{UserID: "user-1", Credits: 3})
	q := queue.New(store, time.Minute)
	return NewService(store, q), store, q
}

func TestSubmitDebitsCreditAndEnqueues(t *testing.T) {
	s, store, q := newTestService()
	ctx := context.Background()

	rec, err := s.Submit(ctx, "user-1", "https://example.com/start")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "example.com", rec.Domain)
	assert.Equal(t, storage.AuditPending, rec.Status)

	profile, err := store.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, profile.Credits)

	txs := store.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, -1, txs[0].Amount)
	assert.Equal(t, "audit_submitted", txs[0].Reason)

	assert.Equal(t, 1, q.Size())
	job, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, rec.ID, job.AuditID)
	assert.Equal(t, "https://example.com/start", job.URL)
}

func TestSubmitRejectsInvalidURL(t *testing.T) {
	s, store, q := newTestService()

	for _, raw := range []string{"", "notaurl", "ftp://example.com", "https://"} {
		_, err := s.Submit(context.Background(), "user-1", raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}

	// No credit was touched.
	profile, err := store.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, profile.Credits)
	assert.Equal(t, 0, q.Size())
}

func TestSubmitRejectsWhenOutOfCredits(t *testing.T) {
	s, store, q := newTestService()
	store.PutProfile(storage.Profile{UserID: "broke", Credits: 0})

	_, err := s.Submit(context.Background(), "broke", "https://example.com")
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Equal(t, 0, q.Size())
}

type enqueueFailStore struct {
	*storage.Memory
}

func (s *enqueueFailStore) UpdateAudit(context.Context, string, storage.AuditUpdate) error {
	return fmt.Errorf("connection reset")
}

func TestSubmitReversesDebitWhenEnqueueFails(t *testing.T) {
	store := &enqueueFailStore{Memory: storage.NewMemory()}
	store.PutProfile(storage.Profile{UserID: "user-1", Credits: 3})
	q := queue.New(store, time.Minute)
	s := NewService(store, q)

	_, err := s.Submit(context.Background(), "user-1", "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enqueue")

	profile, err := store.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, profile.Credits)
	assert.Equal(t, 0, q.Size())
}

func TestSubmitUnknownUser(t *testing.T) {
	s, _, _ := newTestService()
	_, err := s.Submit(context.Background(), "ghost", "https://example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProgressPrefersQueueEntry(t *testing.T) {
	s, _, q := newTestService()

	rec, err := s.Submit(context.Background(), "user-1", "https://example.com")
	require.NoError(t, err)

	q.SetProgress(rec.ID, audit.Progress{Stage: audit.StageFixing, Message: "Generating fixes", Percent: 60})

	p, err := s.Progress(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, audit.StageFixing, p.Stage)
	assert.Equal(t, 60, p.Percent)
}

func TestProgressDerivedFromRecordAfterPurge(t *testing.T) {
	s, store, _ := newTestService()
	ctx := context.Background()

	rec, err := s.Submit(ctx, "user-1", "https://example.com")
	require.NoError(t, err)

	completed := storage.AuditCompleted
	require.NoError(t, store.UpdateAudit(ctx, rec.ID, storage.AuditUpdate{Status: &completed}))

	// Simulate a fresh queue whose progress entry was purged.
	fresh := NewService(store, queue.New(store, time.Minute))
	p, err := fresh.Progress(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, audit.StageDone, p.Stage)
	assert.Equal(t, 100, p.Percent)
}

func TestProgressUnknownAudit(t *testing.T) {
	s, _, _ := newTestService()
	_, err := s.Progress(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
