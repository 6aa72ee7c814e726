package storage

import (
	"context"
	"sync"
)

// Memory is the in-process Store used when no DATABASE_URL is configured and
// by the test suite. All maps are guarded by a single mutex; contention is
// negligible at pipeline concurrency.
type Memory struct {
	mu       sync.Mutex
	audits   map[string]*AuditRecord
	pages    map[string][]PageRecord
	profiles map[string]*Profile
	ledger   []CreditTransaction
}

func NewMemory() *Memory {
	return &Memory{
		audits:   make(map[string]*AuditRecord),
		pages:    make(map[string][]PageRecord),
		profiles: make(map[string]*Profile),
	}
}

// PutProfile seeds or replaces a profile.
func (m *Memory) PutProfile(p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.profiles[p.UserID] = &cp
}

func (m *Memory) CreateAudit(_ context.Context, rec AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := rec
	m.audits[rec.ID] = &cp
	return nil
}

func (m *Memory) GetAudit(_ context.Context, id string) (*AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.audits[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) UpdateAudit(_ context.Context, id string, fields AuditUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.audits[id]
	if !ok {
		return ErrNotFound
	}
	if fields.Status != nil {
		rec.Status = *fields.Status
	}
	if fields.PagesCrawled != nil {
		rec.PagesCrawled = *fields.PagesCrawled
	}
	if fields.IssueCount != nil {
		rec.IssueCount = *fields.IssueCount
	}
	if fields.MetaScore != nil {
		rec.MetaScore = *fields.MetaScore
	}
	if fields.ContentScore != nil {
		rec.ContentScore = *fields.ContentScore
	}
	if fields.PerformScore != nil {
		rec.PerformScore = *fields.PerformScore
	}
	if fields.TechScore != nil {
		rec.TechScore = *fields.TechScore
	}
	if fields.OverallScore != nil {
		rec.OverallScore = *fields.OverallScore
	}
	if fields.Summary != nil {
		rec.Summary = *fields.Summary
	}
	if fields.ErrorMessage != nil {
		rec.ErrorMessage = *fields.ErrorMessage
	}
	if fields.Results != nil {
		rec.Results = fields.Results
	}
	if fields.CompletedAt != nil {
		rec.CompletedAt = fields.CompletedAt
	}
	return nil
}

func (m *Memory) CreateAuditPages(_ context.Context, records []PageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.pages[r.AuditID] = append(m.pages[r.AuditID], r)
	}
	return nil
}

// AuditPages returns the persisted page rows for an audit.
func (m *Memory) AuditPages(auditID string) []PageRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PageRecord(nil), m.pages[auditID]...)
}

func (m *Memory) IncrementAuditCount(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	p.AuditCount++
	return nil
}

func (m *Memory) GetProfile(_ context.Context, userID string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) UpdateCredits(_ context.Context, userID string, credits int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	p.Credits = credits
	return nil
}

func (m *Memory) RecordCreditTransaction(_ context.Context, tx CreditTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger = append(m.ledger, tx)
	return nil
}

// Transactions returns a copy of the credit ledger.
func (m *Memory) Transactions() []CreditTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CreditTransaction(nil), m.ledger...)
}
