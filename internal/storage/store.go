// Package storage is the persistence capability consumed by the pipeline:
// audit records, per-page records, user profiles, and credit bookkeeping.
// Two implementations exist: Postgres for real deployments and an in-memory
// store for development and tests.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type AuditStatus string

const (
	AuditPending    AuditStatus = "pending"
	AuditProcessing AuditStatus = "processing"
	AuditCompleted  AuditStatus = "completed"
	AuditFailed     AuditStatus = "failed"
)

// AuditRecord is the external audit row the pipeline accumulates into.
type AuditRecord struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	URL          string          `json:"url"`
	Domain       string          `json:"domain"`
	Status       AuditStatus     `json:"status"`
	PagesCrawled int             `json:"pages_crawled"`
	IssueCount   int             `json:"issue_count"`
	MetaScore    int             `json:"meta_score"`
	ContentScore int             `json:"content_score"`
	PerformScore int             `json:"performance_score"`
	TechScore    int             `json:"technical_score"`
	OverallScore int             `json:"overall_score"`
	Summary      string          `json:"summary"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Results      json.RawMessage `json:"results,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// AuditUpdate is a partial update; nil fields are left untouched.
type AuditUpdate struct {
	Status       *AuditStatus
	PagesCrawled *int
	IssueCount   *int
	MetaScore    *int
	ContentScore *int
	PerformScore *int
	TechScore    *int
	OverallScore *int
	Summary      *string
	ErrorMessage *string
	Results      json.RawMessage
	CompletedAt  *time.Time
}

// PageRecord is one persisted row per crawled page.
type PageRecord struct {
	AuditID          string   `json:"audit_id"`
	URL              string   `json:"url"`
	Title            string   `json:"title"`
	MetaDescription  string   `json:"meta_description"`
	H1Count          int      `json:"h1_count"`
	WordCount        int      `json:"word_count"`
	InternalLinks    int      `json:"internal_links"`
	ExternalLinks    int      `json:"external_links"`
	ImageCount       int      `json:"image_count"`
	ImagesMissingAlt int      `json:"images_missing_alt"`
	SchemaTypes      []string `json:"schema_types"`
	Issues           []string `json:"issues"`
}

// Profile is the slice of the user row the pipeline touches.
type Profile struct {
	UserID     string `json:"user_id"`
	Credits    int    `json:"credits"`
	AuditCount int    `json:"audit_count"`
}

// CreditTransaction is the ledger entry recorded for debits and refunds.
type CreditTransaction struct {
	UserID    string    `json:"user_id"`
	AuditID   string    `json:"audit_id"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Store must support concurrent writes keyed by audit id; each audit id is
// owned by exactly one worker for its lifetime, so no cross-row locking is
// expected of implementations.
type Store interface {
	CreateAudit(ctx context.Context, rec AuditRecord) error
	GetAudit(ctx context.Context, id string) (*AuditRecord, error)
	UpdateAudit(ctx context.Context, id string, fields AuditUpdate) error
	CreateAuditPages(ctx context.Context, records []PageRecord) error
	IncrementAuditCount(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateCredits(ctx context.Context, userID string, credits int) error
	RecordCreditTransaction(ctx context.Context, tx CreditTransaction) error
}
