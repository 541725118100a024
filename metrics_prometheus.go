package packsched

import "github.com/prometheus/client_golang/prometheus"

const (
	MetricPacksReceived     = "packs_received_total"
	MetricPacksReturned     = "packs_returned_total"
	MetricSolversCreated    = "solvers_created_total"
	MetricSolves            = "solves_total"
	MetricProblemsSubmitted = "problems_submitted_total"
)

// PromMetrics exports scheduler activity as Prometheus counters.
type PromMetrics struct {
	received  prometheus.Counter
	returned  prometheus.Counter
	solvers   prometheus.Counter
	solves    prometheus.Counter
	submitted prometheus.Counter
}

// NewPromMetrics creates the counters under the given namespace and
// registers them with reg. A nil reg means prometheus.DefaultRegisterer.
func NewPromMetrics(namespace string, reg prometheus.Registerer) (*PromMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      name,
			Help:      help,
		})
	}
	m := &PromMetrics{
		received:  counter(MetricPacksReceived, "Packs taken from producers."),
		returned:  counter(MetricPacksReturned, "Packs handed back to producers in order."),
		solvers:   counter(MetricSolversCreated, "Usable solver instances acquired from the factory."),
		solves:    counter(MetricSolves, "Solve invocations."),
		submitted: counter(MetricProblemsSubmitted, "Problems passed to solver instances."),
	}
	for _, c := range []prometheus.Collector{m.received, m.returned, m.solvers, m.solves, m.submitted} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PromMetrics) IncPacksReceived()            { m.received.Inc() }
func (m *PromMetrics) IncPacksReturned()            { m.returned.Inc() }
func (m *PromMetrics) IncSolversCreated()           { m.solvers.Inc() }
func (m *PromMetrics) IncSolves()                   { m.solves.Inc() }
func (m *PromMetrics) AddProblemsSubmitted(n int64) { m.submitted.Add(float64(n)) }
