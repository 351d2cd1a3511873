package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionState - текущее состояние соединения с чатом.
	ConnectionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bot_connection_state",
		Help: "Chat connection state (0 disconnected, 1 handshaking, 2 connected, 3 reconnecting)",
	})

	// Reconnects - количество переподключений по результату.
	Reconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_reconnects_total",
			Help: "Total number of reconnect attempts by result",
		},
		[]string{"result"},
	)

	// LinesReceived - количество принятых строк протокола.
	LinesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_lines_received_total",
		Help: "Total number of protocol lines read from the server",
	})

	// KeepAlives - количество отвеченных PING.
	KeepAlives = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_keepalives_total",
		Help: "Total number of keep-alive pings answered",
	})

	// MalformedLines - строки, которые не удалось разобрать как сообщение.
	MalformedLines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_malformed_lines_total",
		Help: "Total number of lines dropped because they are not chat messages",
	})

	// MessagesReceived - количество сообщений чата.
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_messages_total",
		Help: "Total number of chat messages decoded",
	})

	// UserCommands - количество вызовов команд.
	UserCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_user_commands_total",
			Help: "Total number of command invocations per trigger",
		},
		[]string{"command"},
	)

	// ModerationActions - количество банов.
	ModerationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_moderation_actions_total",
			Help: "Number of moderation actions",
		},
		[]string{"action"},
	)

	// TimerFirings - количество срабатываний таймеров.
	TimerFirings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_timer_firings_total",
			Help: "Total number of timer firings per timer",
		},
		[]string{"timer"},
	)

	// HandlerFailures - ошибки, паники и таймауты обработчиков.
	HandlerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_handler_failures_total",
			Help: "Handler failures by unit kind and reason",
		},
		[]string{"kind", "reason"},
	)

	// DroppedUnits - задачи, отброшенные из-за переполненной очереди.
	DroppedUnits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_dropped_units_total",
			Help: "Units of work rejected by the worker pool",
		},
		[]string{"kind"},
	)

	// HandlerDuration - время выполнения обработчиков.
	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_handler_duration_seconds",
			Help:    "Time spent in command, moderation and timer handlers",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 20),
		},
		[]string{"kind"},
	)

	// CPUUsage - загрузка CPU хоста.
	CPUUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bot_cpu_usage_percent",
		Help: "Host CPU usage sampled by the status collector",
	})
)
