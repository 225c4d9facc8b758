package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type PollMetrics struct {
	PollsCreatedTotal  metrics.Counter
	PollsClosedTotal   metrics.Counter
	VotesAcceptedTotal metrics.Counter
	VotesRejectedTotal metrics.Counter
	BroadcastsTotal    metrics.Counter
	Subscribers        metrics.Gauge
}

func PromPollMetrics() *PollMetrics {
	return &PollMetrics{
		PollsCreatedTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PollSubsystem,
			Name:      "polls_created_total",
			Help:      "Total number of created polls.",
		}, []string{}),
		PollsClosedTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PollSubsystem,
			Name:      "polls_closed_total",
			Help:      "Total number of closed polls.",
		}, []string{}),
		VotesAcceptedTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PollSubsystem,
			Name:      "votes_accepted_total",
			Help:      "Total number of accepted votes.",
		}, []string{}),
		VotesRejectedTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PollSubsystem,
			Name:      "votes_rejected_total",
			Help:      "Total number of rejected votes.",
		}, []string{"reason"}),
		BroadcastsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PollSubsystem,
			Name:      "broadcasts_total",
			Help:      "Total number of published poll updates.",
		}, []string{}),
		Subscribers: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: PollSubsystem,
			Name:      "subscribers",
			Help:      "Number of live poll subscribers.",
		}, []string{}),
	}
}

func NopPollMetrics() *PollMetrics {
	return &PollMetrics{
		PollsCreatedTotal:  discard.NewCounter(),
		PollsClosedTotal:   discard.NewCounter(),
		VotesAcceptedTotal: discard.NewCounter(),
		VotesRejectedTotal: discard.NewCounter(),
		BroadcastsTotal:    discard.NewCounter(),
		Subscribers:        discard.NewGauge(),
	}
}
