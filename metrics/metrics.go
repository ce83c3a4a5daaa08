package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesProcessed The total number of processed messages (counter)
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processed_total",
			Help:      "The total number of processed messages",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingFailed total number of message processing failures (counter)
	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processing_failed_total",
			Help:      "The total number of message processing failures",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingDuration The total time spent processing messages (summary with quantiles 0.5, 0.9, and 0.99)
	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "messages",
			Name:       "processing_duration_seconds",
			Help:       "The total time spent processing messages",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"topic", "handler"},
	)
)

var (
	// BookingsCreated counts committed bookings by path (direct or gateway)
	BookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookings",
			Name:      "created_total",
			Help:      "The total number of created bookings",
		},
		[]string{"path"},
	)

	// BookingsRejected counts booking attempts refused by a booking rule
	BookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookings",
			Name:      "rejected_total",
			Help:      "The total number of rejected booking attempts",
		},
		[]string{"reason"},
	)

	PaymentsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "payments",
			Name:      "confirmed_total",
			Help:      "The total number of confirmed gateway payments",
		},
	)

	PaymentsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "payments",
			Name:      "failed_total",
			Help:      "The total number of failed gateway payments",
		},
	)

	TicketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tickets",
			Name:      "issued_total",
			Help:      "The total number of issued ticket documents",
		},
	)

	EventsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "events",
			Name:      "swept_total",
			Help:      "The total number of expired events removed by the sweeper",
		},
	)

	RemindersScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reminders",
			Name:      "scheduled_total",
			Help:      "The total number of event reminders handed to the outbox",
		},
	)
)
