package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Channel label values.
const (
	ChannelQueue = "queue"
	ChannelAudit = "audit"
)

var (
	// EventsPublished counts events successfully written to a channel.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hie_events_published_total",
		Help: "Number of events successfully published, by channel and event type.",
	}, []string{"channel", "event_type"})

	// PublishFailures counts failed channel writes, including suppressed
	// best-effort failures.
	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hie_events_publish_failures_total",
		Help: "Number of failed event publications, by channel and event type.",
	}, []string{"channel", "event_type"})

	// EventsConsumed counts events acknowledged by a consumer.
	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hie_events_consumed_total",
		Help: "Number of events successfully consumed and acknowledged, by channel and event type.",
	}, []string{"channel", "event_type"})

	// ConsumeFailures counts handler failures that withheld acknowledgment.
	ConsumeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hie_events_consume_failures_total",
		Help: "Number of handler failures that withheld acknowledgment, by channel and event type.",
	}, []string{"channel", "event_type"})
)
