package diag

import (
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Prom records diagnostics as Prometheus metrics: a ticks-started counter,
// a phase-duration histogram, a per-system duration histogram and error
// counter, an event-emission counter, and a background-harvest-duration
// histogram.
type Prom struct {
	ticksStarted       prometheus.Counter
	phaseDuration      *prometheus.HistogramVec
	systemDuration     *prometheus.HistogramVec
	systemErrors       *prometheus.CounterVec
	eventsEmitted      *prometheus.CounterVec
	backgroundHarvests *prometheus.HistogramVec
}

// NewProm creates a Prom diagnostics handler and registers its collectors
// against reg. Pass prometheus.DefaultRegisterer for the global registry.
func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		ticksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "scheduler",
			Name:      "ticks_started_total",
			Help:      "Number of ticks started.",
		}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pulse",
			Subsystem: "scheduler",
			Name:      "phase_duration_seconds",
			Help:      "Time spent executing each scheduler phase.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		systemDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pulse",
			Subsystem: "scheduler",
			Name:      "system_duration_seconds",
			Help:      "Time spent executing each system.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"system", "phase"}),
		systemErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "scheduler",
			Name:      "system_errors_total",
			Help:      "Number of system executions that returned a non-nil error.",
		}, []string{"system", "phase"}),
		eventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "scheduler",
			Name:      "events_emitted_total",
			Help:      "Number of events emitted (bubble events and typed bus payloads), by name.",
		}, []string{"event"}),
		backgroundHarvests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pulse",
			Subsystem: "scheduler",
			Name:      "background_harvest_duration_seconds",
			Help:      "Wall-clock lifetime of a background system from launch to harvest.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"system"}),
	}
	reg.MustRegister(p.ticksStarted, p.phaseDuration, p.systemDuration, p.systemErrors, p.eventsEmitted, p.backgroundHarvests)
	return p
}

// BeginTick increments the tick counter and returns a fresh correlation id.
// Prom does not attach it to any label — high-cardinality per-tick labels
// would defeat Prometheus's storage model — but a caller may still log or
// propagate it alongside metrics.
func (p *Prom) BeginTick() string {
	p.ticksStarted.Inc()
	return uuid.NewString()
}

func (p *Prom) PhaseStart(Phase) {}

func (p *Prom) PhaseEnd(phase Phase, duration time.Duration) {
	p.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

func (p *Prom) SystemStart(string, Phase) {}

func (p *Prom) SystemEnd(name string, phase Phase, err error, duration time.Duration) {
	p.systemDuration.WithLabelValues(name, phase).Observe(duration.Seconds())
	if err != nil {
		p.systemErrors.WithLabelValues(name, phase).Inc()
	}
}

func (p *Prom) EventEmit(name string, count int) {
	p.eventsEmitted.WithLabelValues(name).Add(float64(count))
}

func (p *Prom) BackgroundHarvest(name string, duration time.Duration) {
	p.backgroundHarvests.WithLabelValues(name).Observe(duration.Seconds())
}

var _ Diagnostics = (*Prom)(nil)
