package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

const namespace = "console"

// Recorder implements ports.MetricsRecorder on a private Prometheus registry.
type Recorder struct {
	registry    *prometheus.Registry
	logins      *prometheus.CounterVec
	logouts     prometheus.Counter
	transitions *prometheus.CounterVec
	denials     *prometheus.CounterVec
}

var _ ports.MetricsRecorder = (*Recorder)(nil)

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Sessions cleared by logout.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Status transitions by machine and outcome.",
		}, []string{"machine", "outcome"}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_denials_total",
			Help:      "Denied authorization checks by predicate.",
		}, []string{"predicate"}),
	}
	r.registry.MustRegister(
		r.logins,
		r.logouts,
		r.transitions,
		r.denials,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) LoginAttempt(result string) { r.logins.WithLabelValues(result).Inc() }

func (r *Recorder) Logout() { r.logouts.Inc() }

func (r *Recorder) Transition(machine, outcome string) {
	r.transitions.WithLabelValues(machine, outcome).Inc()
}

func (r *Recorder) AuthorizationDenied(predicate string) {
	r.denials.WithLabelValues(predicate).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }
