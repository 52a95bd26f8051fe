package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatrelay_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Relay metrics
	ConnectionsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelay_connections_opened_total",
			Help: "Total websocket connections accepted",
		},
	)

	OnlineUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatrelay_online_users",
			Help: "Users currently registered in the presence table",
		},
	)

	MessagesStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelay_messages_stored_total",
			Help: "Total messages persisted to the local log",
		},
	)

	MessagesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_messages_delivered_total",
			Help: "Total new_message deliveries",
		},
		[]string{"result"}, // "online" or "offline"
	)

	MessagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_messages_rejected_total",
			Help: "Total send_message events rejected",
		},
		[]string{"reason"}, // "invalid_payload" or "store_error"
	)

	SignalsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_signals_relayed_total",
			Help: "Total call-signaling events relayed",
		},
		[]string{"event"},
	)

	IndicatorsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_indicators_relayed_total",
			Help: "Total typing/recording indicators relayed",
		},
		[]string{"event"},
	)

	// Backup metrics
	BackupPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_backup_pushes_total",
			Help: "Total backup push attempts",
		},
		[]string{"result"}, // "ok", "empty", "error"
	)

	BackupRowsPushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelay_backup_rows_pushed_total",
			Help: "Total rows pushed to the remote backup store",
		},
	)

	RestoreRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_restore_rows_total",
			Help: "Rows handled by the startup restore pass",
		},
		[]string{"result"}, // "restored", "present", "failed"
	)
)
