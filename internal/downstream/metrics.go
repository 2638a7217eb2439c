package downstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var backendRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sessionview_backend_requests_total",
		Help: "Backend calls by method and outcome",
	},
	[]string{"method", "outcome"},
)
