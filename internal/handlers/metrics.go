package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prometheusNamespace = "weiboauth"

const (
	flowStateAwaitingCallback = "awaiting_callback"
	flowStateTokenExchanged   = "token_exchanged"
	flowStateFailed           = "failed"
)

var (
	flowTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: prometheusNamespace,
		Name:      "flow_total",
		Help:      "Total amount of authentication flows by provider and resulting state",
	}, []string{"provider", "state"})
)
