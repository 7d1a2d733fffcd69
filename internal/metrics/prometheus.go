package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"horizonx-machine/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

const namespace = "horizonx_machine"

type Exporter struct {
	registry *prometheus.Registry

	systemCPU    prometheus.Gauge
	systemMemory prometheus.Gauge
	processCPU   *prometheus.GaugeVec
	processRSS   *prometheus.GaugeVec
	tracked      prometheus.Gauge
	reports      prometheus.Counter

	mu       sync.Mutex
	lastPIDs []string
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		systemCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_cpu_percent",
			Help:      "Busy CPU time of the whole machine over the last interval, in percent of one core.",
		}),
		systemMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_memory_used_bytes",
			Help:      "Memory in use at the last poll.",
		}),
		processCPU: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "CPU usage of a tracked process over the last interval, in percent of one core.",
		}, []string{"pid"}),
		processRSS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_memory_bytes",
			Help:      "Resident memory of a tracked process at the last poll.",
		}, []string{"pid"}),
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_processes",
			Help:      "Tracked processes present in the last poll.",
		}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usage_reports_total",
			Help:      "Usage reports observed.",
		}),
	}

	e.registry.MustRegister(
		e.systemCPU,
		e.systemMemory,
		e.processCPU,
		e.processRSS,
		e.tracked,
		e.reports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return e
}

// Observe updates the gauges from report and drops series of pids that are
// no longer reported.
func (e *Exporter) Observe(report domain.UsageReport) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reports.Inc()

	if report.System != nil {
		e.systemCPU.Set(report.System.CPU)
		e.systemMemory.Set(float64(report.System.Memory))
	}

	pids := lo.Map(report.Processes, func(p domain.ProcessUsage, _ int) string {
		return strconv.FormatInt(int64(p.PID), 10)
	})

	for _, stale := range lo.Without(e.lastPIDs, pids...) {
		e.processCPU.DeleteLabelValues(stale)
		e.processRSS.DeleteLabelValues(stale)
	}

	for i, p := range report.Processes {
		e.processCPU.WithLabelValues(pids[i]).Set(p.CPU)
		e.processRSS.WithLabelValues(pids[i]).Set(float64(p.Memory))
	}

	e.tracked.Set(float64(len(report.Processes)))
	e.lastPIDs = pids
}

// Handle is an event bus handler for usage reports.
func (e *Exporter) Handle(event any) {
	if report, ok := event.(domain.UsageReport); ok {
		e.Observe(report)
	}
}

func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
