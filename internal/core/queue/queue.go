// Package queue implements the process-local FIFO job queue feeding the
// audit worker pool, plus the per-audit progress table consumers poll.
package queue

import (
	"context"
	"sync"
	"time"

	"seoauditor/internal/core/audit"
	"seoauditor/internal/logger"
	"seoauditor/internal/storage"
)

const defaultTerminalGrace = 60 * time.Second

// Queue is pure bookkeeping plus notification: it never executes stages
// itself. A buffered ready channel wakes an idle worker pool on enqueue
// without the pool having to poll.
type Queue struct {
	log   *logger.Logger
	store storage.Store

	mu       sync.Mutex
	jobs     []audit.Job
	progress map[string]audit.Progress

	ready chan struct{}
	grace time.Duration
}

func New(store storage.Store, terminalGrace time.Duration) *Queue {
	if terminalGrace <= 0 {
		terminalGrace = defaultTerminalGrace
	}
	return &Queue{
		log:      logger.New("Queue"),
		store:    store,
		progress: map[string]audit.Progress{},
		ready:    make(chan struct{}, 1),
		grace:    terminalGrace,
	}
}

// Ready signals once per batch of pushes. Receivers drain the queue fully
// after each signal.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Enqueue marks the audit pending, records the queued progress entry,
// appends the job and wakes a waiting worker.
func (q *Queue) Enqueue(ctx context.Context, job audit.Job) error {
	pending := storage.AuditPending
	if err := q.store.UpdateAudit(ctx, job.AuditID, storage.AuditUpdate{Status: &pending}); err != nil {
		return err
	}

	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.progress[job.AuditID] = audit.Progress{
		Stage:   audit.StageQueued,
		Message: "Audit queued",
		Percent: 0,
	}
	depth := len(q.jobs)
	q.mu.Unlock()

	q.log.LogInfof("enqueued audit=%s url=%s depth=%d", job.AuditID, job.URL, depth)

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue pops the oldest job. The second return is false when the queue is
// empty.
func (q *Queue) Dequeue() (audit.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return audit.Job{}, false
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, true
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Progress returns the progress entry for an audit, if one is still held.
func (q *Queue) Progress(auditID string) (audit.Progress, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.progress[auditID]
	return p, ok
}

// SetProgress records a progress entry. Terminal entries stay readable for a
// grace window and are then purged so the table cannot grow without bound.
func (q *Queue) SetProgress(auditID string, p audit.Progress) {
	q.mu.Lock()
	q.progress[auditID] = p
	q.mu.Unlock()

	if p.Stage.Terminal() {
		time.AfterFunc(q.grace, func() {
			q.mu.Lock()
			defer q.mu.Unlock()
			// Only purge if the entry is still terminal; a re-run
			// audit may have fresh progress under the same id.
			if cur, ok := q.progress[auditID]; ok && cur.Stage.Terminal() {
				delete(q.progress, auditID)
			}
		})
	}
}
