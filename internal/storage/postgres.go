package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Postgres backs the Store with a plain database/sql connection.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	p := &Postgres{db: db}
	if err := p.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return p, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) HealthCheck(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS audits (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			url TEXT NOT NULL,
			domain TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			pages_crawled INTEGER DEFAULT 0,
			issue_count INTEGER DEFAULT 0,
			meta_score INTEGER DEFAULT 0,
			content_score INTEGER DEFAULT 0,
			performance_score INTEGER DEFAULT 0,
			technical_score INTEGER DEFAULT 0,
			overall_score INTEGER DEFAULT 0,
			summary TEXT,
			error_message TEXT,
			results JSONB,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS audit_pages (
			id SERIAL PRIMARY KEY,
			audit_id TEXT REFERENCES audits(id),
			url TEXT NOT NULL,
			title TEXT,
			meta_description TEXT,
			h1_count INTEGER DEFAULT 0,
			word_count INTEGER DEFAULT 0,
			internal_links INTEGER DEFAULT 0,
			external_links INTEGER DEFAULT 0,
			image_count INTEGER DEFAULT 0,
			images_missing_alt INTEGER DEFAULT 0,
			schema_types TEXT[],
			issues TEXT[]
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			credits INTEGER DEFAULT 0,
			audit_count INTEGER DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS credit_transactions (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			audit_id TEXT,
			amount INTEGER NOT NULL,
			reason TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audits_user ON audits(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_pages_audit ON audit_pages(audit_id)`,
	}
	for _, q := range queries {
		if _, err := p.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateAudit(ctx context.Context, rec AuditRecord) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO audits (id, user_id, url, domain, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())`,
		rec.ID, rec.UserID, rec.URL, rec.Domain, string(rec.Status))
	return err
}

func (p *Postgres) GetAudit(ctx context.Context, id string) (*AuditRecord, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, user_id, url, domain, status, pages_crawled, issue_count,
		        meta_score, content_score, performance_score, technical_score, overall_score,
		        COALESCE(summary, ''), COALESCE(error_message, ''), results, created_at, completed_at
		 FROM audits WHERE id = $1`, id)

	var rec AuditRecord
	var status string
	var results sql.NullString
	var completed sql.NullTime
	err := row.Scan(&rec.ID, &rec.UserID, &rec.URL, &rec.Domain, &status,
		&rec.PagesCrawled, &rec.IssueCount,
		&rec.MetaScore, &rec.ContentScore, &rec.PerformScore, &rec.TechScore, &rec.OverallScore,
		&rec.Summary, &rec.ErrorMessage, &results, &rec.CreatedAt, &completed)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Status = AuditStatus(status)
	if results.Valid {
		rec.Results = []byte(results.String)
	}
	if completed.Valid {
		t := completed.Time
		rec.CompletedAt = &t
	}
	return &rec, nil
}

func (p *Postgres) UpdateAudit(ctx context.Context, id string, fields AuditUpdate) error {
	set := []string{}
	args := []interface{}{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if fields.Status != nil {
		add("status", string(*fields.Status))
	}
	if fields.PagesCrawled != nil {
		add("pages_crawled", *fields.PagesCrawled)
	}
	if fields.IssueCount != nil {
		add("issue_count", *fields.IssueCount)
	}
	if fields.MetaScore != nil {
		add("meta_score", *fields.MetaScore)
	}
	if fields.ContentScore != nil {
		add("content_score", *fields.ContentScore)
	}
	if fields.PerformScore != nil {
		add("performance_score", *fields.PerformScore)
	}
	if fields.TechScore != nil {
		add("technical_score", *fields.TechScore)
	}
	if fields.OverallScore != nil {
		add("overall_score", *fields.OverallScore)
	}
	if fields.Summary != nil {
		add("summary", *fields.Summary)
	}
	if fields.ErrorMessage != nil {
		add("error_message", *fields.ErrorMessage)
	}
	if fields.Results != nil {
		add("results", string(fields.Results))
	}
	if fields.CompletedAt != nil {
		add("completed_at", *fields.CompletedAt)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE audits SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateAuditPages(ctx context.Context, records []PageRecord) error {
	for _, r := range records {
		_, err := p.db.ExecContext(ctx,
			`INSERT INTO audit_pages
			 (audit_id, url, title, meta_description, h1_count, word_count,
			  internal_links, external_links, image_count, images_missing_alt, schema_types, issues)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			r.AuditID, r.URL, r.Title, r.MetaDescription, r.H1Count, r.WordCount,
			r.InternalLinks, r.ExternalLinks, r.ImageCount, r.ImagesMissingAlt,
			pq.Array(r.SchemaTypes), pq.Array(r.Issues))
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) IncrementAuditCount(ctx context.Context, userID string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE profiles SET audit_count = audit_count + 1 WHERE user_id = $1`, userID)
	return err
}

func (p *Postgres) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT user_id, credits, audit_count FROM profiles WHERE user_id = $1`, userID)
	var prof Profile
	err := row.Scan(&prof.UserID, &prof.Credits, &prof.AuditCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

func (p *Postgres) UpdateCredits(ctx context.Context, userID string, credits int) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE profiles SET credits = $1 WHERE user_id = $2`, credits, userID)
	return err
}

func (p *Postgres) RecordCreditTransaction(ctx context.Context, tx CreditTransaction) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO credit_transactions (user_id, audit_id, amount, reason) VALUES ($1, $2, $3, $4)`,
		tx.UserID, tx.AuditID, tx.Amount, tx.Reason)
	return err
}
