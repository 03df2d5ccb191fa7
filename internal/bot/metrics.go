package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "behalf_commands_handled_total",
		Help: "Number of handled commands by command name.",
	}, []string{"command"})

	unknownCommands = promauto.NewCounter(prometheus.CounterOpts{
		Name: "behalf_unknown_commands_total",
		Help: "Number of messages with an unrecognized command keyword.",
	})

	sendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "behalf_send_failures_total",
		Help: "Number of outbound messages that failed to deliver.",
	})
)
