package mapper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var mappingDropped = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sessionview_mapping_dropped_total",
		Help: "Backend records dropped because they could not be normalized",
	},
	[]string{"kind"},
)
