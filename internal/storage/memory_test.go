package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAuditLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateAudit(ctx, AuditRecord{
		ID: "a1", UserID: "u1", URL: "https://example.com", Status: AuditPending,
	}))

	completed := AuditCompleted
	overall := 92
	summary := "all good"
	now := time.Now().UTC()
	require.NoError(t, m.UpdateAudit(ctx, "a1", AuditUpdate{
		Status:       &completed,
		OverallScore: &overall,
		Summary:      &summary,
		CompletedAt:  &now,
	}))

	rec, err := m.GetAudit(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, AuditCompleted, rec.Status)
	assert.Equal(t, 92, rec.OverallScore)
	assert.Equal(t, "all good", rec.Summary)
	require.NotNil(t, rec.CompletedAt)
	// Fields not in the update stay put.
	assert.Equal(t, "https://example.com", rec.URL)
}

func TestMemoryGetAuditReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.CreateAudit(ctx, AuditRecord{ID: "a1", Summary: "original"}))

	rec, err := m.GetAudit(ctx, "a1")
	require.NoError(t, err)
	rec.Summary = "mutated"

	again, err := m.GetAudit(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Summary)
}

func TestMemoryNotFound(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.GetAudit(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.UpdateAudit(ctx, "nope", AuditUpdate{}), ErrNotFound)
	_, err = m.GetProfile(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.UpdateCredits(ctx, "nope", 1), ErrNotFound)
	assert.ErrorIs(t, m.IncrementAuditCount(ctx, "nope"), ErrNotFound)
}

func TestMemoryProfilesAndLedger(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.PutProfile(Profile{UserID: "u1", Credits: 5})

	require.NoError(t, m.UpdateCredits(ctx, "u1", 4))
	require.NoError(t, m.IncrementAuditCount(ctx, "u1"))
	require.NoError(t, m.RecordCreditTransaction(ctx, CreditTransaction{
		UserID: "u1", AuditID: "a1", Amount: -1, Reason: "audit_submitted",
	}))

	p, err := m.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Credits)
	assert.Equal(t, 1, p.AuditCount)

	txs := m.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "audit_submitted", txs[0].Reason)
}

func TestMemoryAuditPages(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateAuditPages(ctx, []PageRecord{
		{AuditID: "a1", URL: "https://example.com"},
		{AuditID: "a1", URL: "https://example.com/about"},
		{AuditID: "a2", URL: "https://other.test"},
	}))

	assert.Len(t, m.AuditPages("a1"), 2)
	assert.Len(t, m.AuditPages("a2"), 1)
	assert.Empty(t, m.AuditPages("a3"))
}
