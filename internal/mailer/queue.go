package mailer

import (
	"log/slog"
	"sync"

	"inkwell/internal/observability"
)

// Job is one pending welcome e-mail.
type Job struct {
	Email    string
	Username string
}

// Queue fans Jobs out to a fixed pool of workers over a bounded channel.
// Enqueue never blocks the caller: when the buffer is full the job is dropped
// and counted, not queued. There is no retry and no way to wait on a result;
// outcomes surface only as logs, metrics, and the worker result markers.
type Queue struct {
	jobs    chan Job
	sender  Sender
	logger  *slog.Logger
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// NewQueue starts workers goroutines draining a buffer of size capacity.
func NewQueue(sender Sender, workers, capacity int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		jobs:   make(chan Job, capacity),
		sender: sender,
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue submits a welcome e-mail job. It returns false when the job was
// dropped because the queue is full or already closed.
func (q *Queue) Enqueue(email, username string) bool {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		q.logger.Warn("mail queue closed, dropping job", "email", email)
		observability.MailJobsDropped.Inc()
		return false
	}

	select {
	case q.jobs <- Job{Email: email, Username: username}:
		observability.MailJobsEnqueued.Inc()
		return true
	default:
		q.logger.Warn("mail queue full, dropping job", "email", email)
		observability.MailJobsDropped.Inc()
		return false
	}
}

// Close stops intake, drains the buffer, and waits for workers to finish.
func (q *Queue) Close() {
	q.closeMu.Lock()
	if q.closed {
		q.closeMu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.closeMu.Unlock()

	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.process(job)
	}
}

// process sends one welcome mail. Failures are terminal for the job: the
// outcome is the "sent" or "failed" marker, never an error to the caller.
func (q *Queue) process(job Job) string {
	err := q.sender.Send(job.Email, welcomeSubject, welcomeBody(job.Username))
	if err != nil {
		q.logger.Error("welcome email failed",
			"email", job.Email,
			"error", err,
		)
		observability.MailSendResults.WithLabelValues("failed").Inc()
		return "failed"
	}

	q.logger.Info("welcome email sent", "email", job.Email)
	observability.MailSendResults.WithLabelValues("sent").Inc()
	return "sent"
}
