package cluster

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/observatory-sim/observatory-sim/sim/trace"
)

const metricsPrefix = "observatory_"

var latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

// PrometheusObserver exports service and round records as Prometheus metrics.
type PrometheusObserver struct {
	packetsServed  *prometheus.CounterVec
	workloadServed *prometheus.CounterVec
	serviceTime    *prometheus.HistogramVec
	roundsDone     *prometheus.CounterVec
	roundLatency   *prometheus.HistogramVec
}

// NewPrometheusObserver registers the simulation metrics on reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	factory := promauto.With(reg)
	return &PrometheusObserver{
		packetsServed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "packets_served_total",
			Help: "Number of work packets processed and acknowledged by each server",
		}, []string{"server"}),
		workloadServed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "workload_served_total",
			Help: "Work units processed by each server",
		}, []string{"server"}),
		serviceTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricsPrefix + "service_time_ms",
			Help:    "Scaled simulated processing time per packet in milliseconds",
			Buckets: latencyBuckets,
		}, []string{"server"}),
		roundsDone: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "rounds_completed_total",
			Help: "Number of rounds each client completed",
		}, []string{"client"}),
		roundLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricsPrefix + "round_latency_ms",
			Help:    "Wall time from a round's first send to its last acknowledgment in milliseconds",
			Buckets: latencyBuckets,
		}, []string{"client"}),
	}
}

func (p *PrometheusObserver) ObserveService(record trace.ServiceRecord) {
	server := strconv.Itoa(record.ServerID)
	p.packetsServed.WithLabelValues(server).Inc()
	p.workloadServed.WithLabelValues(server).Add(float64(record.Workload))
	p.serviceTime.WithLabelValues(server).Observe(float64(record.ScaledMs))
}

func (p *PrometheusObserver) ObserveRound(record trace.RoundRecord) {
	client := strconv.Itoa(record.ClientID)
	p.roundsDone.WithLabelValues(client).Inc()
	p.roundLatency.WithLabelValues(client).Observe(float64(record.Latency.Microseconds()) / 1000)
}
