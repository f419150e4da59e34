package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statusdeck",
		Subsystem: "chat",
		Name:      "messages_total",
		Help:      "Messages sent to the chat platform by kind and result.",
	}, []string{"kind", "result"})

	refreshSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "statusdeck",
		Subsystem: "chat",
		Name:      "refresh_skipped_total",
		Help:      "Live status refreshes skipped by the cooperative rate limit.",
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statusdeck",
		Subsystem: "chat",
		Name:      "commands_total",
		Help:      "Chat command requests by action.",
	}, []string{"action"})
)
