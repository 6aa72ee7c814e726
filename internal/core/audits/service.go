// Package audits exposes audit submission and lookup to the HTTP layer. It
// owns the credit debit that must happen before a job may be enqueued.
package audits

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"seoauditor/internal/core/audit"
	"seoauditor/internal/core/queue"
	"seoauditor/internal/logger"
	"seoauditor/internal/storage"
)

var (
	ErrInvalidURL          = errors.New("invalid url")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

type Service struct {
	log   *logger.Logger
	store storage.Store
	queue *queue.Queue
}

func NewService(store storage.Store, q *queue.Queue) *Service {
	return &Service{log: logger.New("Audits"), store: store, queue: q}
}

// Submit validates the URL, debits one credit, creates the pending audit
// record and enqueues the job. The debit happens before enqueue so a queued
// job always has a paid-for record behind it.
func (s *Service) Submit(ctx context.Context, userID, rawURL string) (*storage.AuditRecord, error) {
	target, err := parseTargetURL(rawURL)
	if err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile.Credits < 1 {
		return nil, ErrInsufficientCredits
	}

	rec := storage.AuditRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		URL:       target.String(),
		Domain:    target.Hostname(),
		Status:    storage.AuditPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateAudit(ctx, rec); err != nil {
		return nil, fmt.Errorf("create audit: %w", err)
	}

	if err := s.store.UpdateCredits(ctx, userID, profile.Credits-1); err != nil {
		return nil, fmt.Errorf("debit credit: %w", err)
	}
	if err := s.store.RecordCreditTransaction(ctx, storage.CreditTransaction{
		UserID:    userID,
		AuditID:   rec.ID,
		Amount:    -1,
		Reason:    "audit_submitted",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		s.log.LogWarnf("debit ledger write failed user=%s: %v", userID, err)
	}

	job := audit.Job{AuditID: rec.ID, UserID: userID, URL: rec.URL, Domain: rec.Domain}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		// The job never made it into the queue, so hand the credit back.
		if rerr := s.store.UpdateCredits(ctx, userID, profile.Credits); rerr != nil {
			s.log.LogErrorf("credit reversal failed user=%s: %v", userID, rerr)
		}
		return nil, fmt.Errorf("enqueue: %w", err)
	}

	s.log.LogInfof("audit submitted id=%s user=%s url=%s", rec.ID, userID, rec.URL)
	return &rec, nil
}

func (s *Service) Get(ctx context.Context, id string) (*storage.AuditRecord, error) {
	return s.store.GetAudit(ctx, id)
}

// Progress prefers the live queue entry; once that is purged it derives a
// terminal entry from the persisted record.
func (s *Service) Progress(ctx context.Context, id string) (audit.Progress, error) {
	if p, ok := s.queue.Progress(id); ok {
		return p, nil
	}

	rec, err := s.store.GetAudit(ctx, id)
	if err != nil {
		return audit.Progress{}, err
	}
	switch rec.Status {
	case storage.AuditCompleted:
		return audit.Progress{Stage: audit.StageDone, Message: "Audit complete", Percent: 100}, nil
	case storage.AuditFailed:
		msg := rec.ErrorMessage
		if msg == "" {
			msg = "Audit failed"
		}
		return audit.Progress{Stage: audit.StageError, Message: msg, Percent: 100}, nil
	case storage.AuditProcessing:
		return audit.Progress{Stage: audit.StageCrawling, Message: "Audit in progress", Percent: 10}, nil
	default:
		return audit.Progress{Stage: audit.StageQueued, Message: "Audit queued", Percent: 0}, nil
	}
}

func parseTargetURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}
