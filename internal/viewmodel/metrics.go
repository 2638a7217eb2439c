package viewmodel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	viewsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sessionview_views_active",
		Help: "Users with live view state",
	})

	viewsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessionview_views_evicted_total",
		Help: "User views torn down after idling",
	})
)
