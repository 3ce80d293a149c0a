package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	ginprometheus "github.com/zsais/go-gin-prometheus"
)

var (
	PDFRenders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elca",
		Subsystem: "pdf",
		Name:      "renders_total",
		Help:      "Number of PDF reports rendered, by result",
	}, []string{"result"})

	PDFDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "elca",
		Subsystem: "pdf",
		Name:      "render_seconds",
		Help:      "Time spent in the external PDF renderer",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
	})

	Exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elca",
		Subsystem: "export",
		Name:      "downloads_total",
		Help:      "Number of data exports, by export set",
	}, []string{"set"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elca",
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts, by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(PDFRenders, PDFDuration, Exports, Logins)
}

var (
	ginOnce sync.Once
	ginProm *ginprometheus.Prometheus
)

// Use adds the request metrics middleware and the /metrics endpoint to r.
// The request collectors are registered only once per process.
func Use(r *gin.Engine) {
	ginOnce.Do(func() {
		ginProm = ginprometheus.NewPrometheus("elca")
		// label by route template instead of the raw URL to keep cardinality low
		ginProm.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			if p := c.FullPath(); p != "" {
				return p
			}
			return "unmatched"
		}
	})
	ginProm.Use(r)
}
