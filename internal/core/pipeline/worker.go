// Package pipeline runs queued audit jobs through crawl, analysis, fix
// generation, scoring and persistence with a fixed-size worker pool.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"seoauditor/internal/core/analyzer"
	"seoauditor/internal/core/audit"
	"seoauditor/internal/core/queue"
	"seoauditor/internal/logger"
	"seoauditor/internal/storage"
)

const defaultConcurrency = 2

// Crawler is the page-rendering traversal the worker invokes per job.
type Crawler interface {
	Crawl(ctx context.Context, startURL string) *audit.CrawlResult
}

// FixGenerator produces exactly one fix per page.
type FixGenerator interface {
	GenerateFixes(ctx context.Context, pages []audit.Page, issues []audit.Issue) []audit.Fix
}

// ReportUploader archives the finished results payload. Implementations must
// tolerate being nil-valued receivers.
type ReportUploader interface {
	UploadReport(ctx context.Context, auditID string, payload []byte) (string, error)
}

type Worker struct {
	log         *logger.Logger
	queue       *queue.Queue
	store       storage.Store
	crawler     Crawler
	fixer       FixGenerator
	artifacts   ReportUploader // nil disables report archiving
	concurrency int

	startOnce sync.Once
	slots     chan struct{}
}

func NewWorker(q *queue.Queue, store storage.Store, crawler Crawler, fixer FixGenerator, artifacts ReportUploader, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Worker{
		log:         logger.New("Worker"),
		queue:       q,
		store:       store,
		crawler:     crawler,
		fixer:       fixer,
		artifacts:   artifacts,
		concurrency: concurrency,
	}
}

// Start is idempotent. It spawns the dispatcher goroutine that pulls jobs
// whenever the queue signals readiness, keeping at most the configured
// number of jobs in flight.
func (w *Worker) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		w.slots = make(chan struct{}, w.concurrency)
		go w.dispatch(ctx)
		w.log.LogInfof("worker pool started concurrency=%d", w.concurrency)
	})
}

func (w *Worker) dispatch(ctx context.Context) {
	for {
		job, ok := w.queue.Dequeue()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-w.queue.Ready():
				continue
			}
		}

		select {
		case w.slots <- struct{}{}:
		case <-ctx.Done():
			return
		}

		go func(job audit.Job) {
			defer func() { <-w.slots }()
			w.run(ctx, job)
		}(job)
	}
}

// run executes one job to a terminal stage. Single-page failures inside
// crawl or fix generation never surface here; only the pipeline's own
// control flow can fail the job.
func (w *Worker) run(ctx context.Context, job audit.Job) {
	w.log.LogInfof("job start audit=%s url=%s", job.AuditID, job.URL)

	processing := storage.AuditProcessing
	if err := w.store.UpdateAudit(ctx, job.AuditID, storage.AuditUpdate{Status: &processing}); err != nil {
		w.fail(ctx, job, fmt.Errorf("mark processing: %w", err))
		return
	}
	w.setStage(job.AuditID, audit.StageCrawling, "Crawling site", 10)

	result := w.crawler.Crawl(ctx, job.URL)
	w.setStage(job.AuditID, audit.StageAnalyzing, fmt.Sprintf("Analyzing %d pages", len(result.Pages)), 40)

	issues, meta := analyzer.Analyze(result)
	w.setStage(job.AuditID, audit.StageFixing, fmt.Sprintf("Generating fixes for %d issues", len(issues)), 60)

	fixes := w.fixer.GenerateFixes(ctx, result.Pages, issues)
	w.setStage(job.AuditID, audit.StageSaving, "Saving results", 85)

	if len(result.Pages) > 0 {
		if err := w.store.CreateAuditPages(ctx, pageRecords(job.AuditID, result.Pages, issues)); err != nil {
			w.fail(ctx, job, fmt.Errorf("persist pages: %w", err))
			return
		}
	}

	scores := ComputeScores(issues)
	payload := buildResults(result, issues, meta, fixes, scores)
	raw, err := json.Marshal(payload)
	if err != nil {
		w.fail(ctx, job, fmt.Errorf("encode results: %w", err))
		return
	}

	completed := storage.AuditCompleted
	now := time.Now().UTC()
	summary := summarize(result, meta)
	update := storage.AuditUpdate{
		Status:       &completed,
		PagesCrawled: &result.PagesCrawled,
		IssueCount:   &meta.TotalIssues,
		MetaScore:    &scores.Meta,
		ContentScore: &scores.Content,
		PerformScore: &scores.Performance,
		TechScore:    &scores.Technical,
		OverallScore: &scores.Overall,
		Summary:      &summary,
		Results:      raw,
		CompletedAt:  &now,
	}
	if err := w.store.UpdateAudit(ctx, job.AuditID, update); err != nil {
		w.fail(ctx, job, fmt.Errorf("persist audit: %w", err))
		return
	}

	if err := w.store.IncrementAuditCount(ctx, job.UserID); err != nil {
		w.log.LogWarnf("audit counter increment failed user=%s: %v", job.UserID, err)
	}
	if w.artifacts != nil {
		if _, err := w.artifacts.UploadReport(ctx, job.AuditID, raw); err != nil {
			w.log.LogWarnf("report upload failed audit=%s: %v", job.AuditID, err)
		}
	}

	w.setStage(job.AuditID, audit.StageDone, "Audit complete", 100)
	w.log.LogInfof("job done audit=%s pages=%d issues=%d overall=%d", job.AuditID, result.PagesCrawled, meta.TotalIssues, scores.Overall)
}

// fail marks the job terminal and refunds the credit best-effort. The job is
// already lost; refund problems are logged, never re-raised.
func (w *Worker) fail(ctx context.Context, job audit.Job, cause error) {
	w.log.LogError(fmt.Sprintf("job failed audit=%s", job.AuditID), cause)

	failed := storage.AuditFailed
	msg := cause.Error()
	if err := w.store.UpdateAudit(ctx, job.AuditID, storage.AuditUpdate{Status: &failed, ErrorMessage: &msg}); err != nil {
		w.log.LogWarnf("mark failed audit=%s: %v", job.AuditID, err)
	}
	w.setStage(job.AuditID, audit.StageError, msg, 100)

	profile, err := w.store.GetProfile(ctx, job.UserID)
	if err != nil {
		w.log.LogWarnf("refund lookup failed user=%s: %v", job.UserID, err)
		return
	}
	if err := w.store.UpdateCredits(ctx, job.UserID, profile.Credits+1); err != nil {
		w.log.LogWarnf("refund failed user=%s: %v", job.UserID, err)
		return
	}
	if err := w.store.RecordCreditTransaction(ctx, storage.CreditTransaction{
		UserID:    job.UserID,
		AuditID:   job.AuditID,
		Amount:    1,
		Reason:    "audit_failed_refund",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		w.log.LogWarnf("refund ledger write failed user=%s: %v", job.UserID, err)
	}
}

func (w *Worker) setStage(auditID string, stage audit.Stage, message string, percent int) {
	w.queue.SetProgress(auditID, audit.Progress{Stage: stage, Message: message, Percent: percent})
}

func pageRecords(auditID string, pages []audit.Page, issues []audit.Issue) []storage.PageRecord {
	issuesByPage := map[string][]string{}
	for _, issue := range issues {
		issuesByPage[issue.PageURL] = append(issuesByPage[issue.PageURL], issue.Type)
	}

	records := make([]storage.PageRecord, 0, len(pages))
	for _, page := range pages {
		missingAlt := 0
		for _, img := range page.Images {
			if strings.TrimSpace(img.Alt) == "" {
				missingAlt++
			}
		}
		records = append(records, storage.PageRecord{
			AuditID:          auditID,
			URL:              page.URL,
			Title:            page.Title,
			MetaDescription:  page.MetaDescription,
			H1Count:          len(page.H1s()),
			WordCount:        page.WordCount,
			InternalLinks:    page.InternalLinks,
			ExternalLinks:    page.ExternalLinks,
			ImageCount:       len(page.Images),
			ImagesMissingAlt: missingAlt,
			SchemaTypes:      schemaTypeNames(page),
			Issues:           issuesByPage[page.URL],
		})
	}
	return records
}

func summarize(result *audit.CrawlResult, meta analyzer.Meta) string {
	return fmt.Sprintf("Audited %d pages on %s: %d issues found (%d critical, %d warnings, %d informational).",
		result.PagesCrawled, result.Domain, meta.TotalIssues, meta.Critical, meta.Warnings, meta.Info)
}
