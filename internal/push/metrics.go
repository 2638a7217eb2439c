package push

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pushReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessionview_push_received_total",
			Help: "Push messages accepted into a user inbox",
		},
		[]string{"driver", "kind"},
	)

	pushDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessionview_push_dropped_total",
			Help: "Push messages dropped before reaching a view",
		},
		[]string{"reason"},
	)
)
