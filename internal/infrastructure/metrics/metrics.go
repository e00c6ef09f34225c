// Package metrics exposes lending counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pocketcredit"

type Metrics struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	eligibility *prometheus.CounterVec
	repayments  *prometheus.CounterVec
	lockBusy    prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loan_transitions_total",
			Help:      "Loan lifecycle transitions by source and target status.",
		}, []string{"from", "to"}),
		eligibility: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_decisions_total",
			Help:      "Eligibility evaluations by outcome.",
		}, []string{"eligible"}),
		repayments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repayments_total",
			Help:      "Repayment attempts by outcome.",
		}, []string{"status"}),
		lockBusy: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_lock_contention_total",
			Help:      "Requests rejected because the user's lock was held.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transitions, m.eligibility, m.repayments, m.lockBusy,
	)
	return m
}

func (m *Metrics) Transition(from, to string) {
	if from == "" {
		from = "none"
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Eligibility(eligible bool) {
	m.eligibility.WithLabelValues(strconv.FormatBool(eligible)).Inc()
}

func (m *Metrics) Repayment(status string) { m.repayments.WithLabelValues(status).Inc() }

func (m *Metrics) LockContention() { m.lockBusy.Inc() }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
