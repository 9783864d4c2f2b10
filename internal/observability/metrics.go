// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// MailJobsEnqueued counts welcome-mail jobs accepted by the queue.
	MailJobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_mail_jobs_enqueued_total",
		Help: "Total number of mail jobs accepted by the queue",
	})

	// MailJobsDropped counts welcome-mail jobs rejected because the queue was full.
	MailJobsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_mail_jobs_dropped_total",
		Help: "Total number of mail jobs dropped due to a full queue",
	})

	// MailSendResults counts completed mail jobs by result ("sent" or "failed").
	MailSendResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_mail_send_results_total",
		Help: "Total number of completed mail jobs by result",
	}, []string{"result"})

	// BotUpdates counts processed Telegram updates by handler.
	BotUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_bot_updates_total",
		Help: "Total number of Telegram updates processed by handler",
	}, []string{"handler"})
)
