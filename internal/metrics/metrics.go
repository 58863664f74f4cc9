package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "uniattend", Name: "sessions_saved_total", Help: "Session records written",
	})
	ReportsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "uniattend", Name: "reports_generated_total", Help: "Attendance reports rendered",
	})
	AuthFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "uniattend", Name: "auth_failures_total", Help: "Rejected sign-in attempts",
	})
	Subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "uniattend", Name: "realtime_subscribers", Help: "Open realtime subscriptions",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "uniattend", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(SessionsSaved, ReportsGenerated, AuthFailures, Subscribers, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
