package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SessionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placement_sessions_created_total",
			Help: "Placement sessions created, labeled by how the level was chosen",
		},
		[]string{"placement"}, // rule | fallback | override | adjustment
	)

	AnswersGraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placement_answers_graded_total",
			Help: "Answers graded, labeled by question type",
		},
		[]string{"question_type"},
	)

	HeuristicReviews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "placement_heuristic_reviews_total",
			Help: "Sessions flagged for manual review by the short-answer delimiter heuristic",
		},
	)

	DifficultyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placement_difficulty_requests_total",
			Help: "Difficulty change requests, labeled by decision point and outcome",
		},
		[]string{"decision_point", "outcome"}, // outcome: resolved | unavailable
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SessionsCreated)
	prometheus.MustRegister(AnswersGraded)
	prometheus.MustRegister(HeuristicReviews)
	prometheus.MustRegister(DifficultyRequests)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
