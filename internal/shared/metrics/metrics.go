package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "media"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total object uploads",
		},
		[]string{"visibility", "status"},
	)

	uploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Total bytes written by successful uploads",
		},
		[]string{"visibility"},
	)

	aclAttachFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acl_attach_failures_total",
			Help:      "ACL policies that could not be attached after a successful write",
		},
	)

	objectReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "object_reads_total",
			Help:      "Objects served, by response status",
		},
		[]string{"status"},
	)

	locateProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locate_probes_total",
			Help:      "Candidate directory probes made while locating objects",
		},
		[]string{"method", "result"},
	)

	bucketListingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bucket_listings_total",
			Help:      "Bucket listing calls made while resolving the active bucket",
		},
	)

	cleanupJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_jobs_total",
			Help:      "Orphaned object cleanup jobs, by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, route string, status int, durationSec float64) {
	requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method, route).Observe(durationSec)
}

// RecordUpload records an upload attempt.
func RecordUpload(visibility, status string, bytes int64) {
	uploadsTotal.WithLabelValues(visibility, status).Inc()
	if status == "success" {
		uploadBytesTotal.WithLabelValues(visibility).Add(float64(bytes))
	}
}

// IncACLAttachFailure counts a swallowed ACL attach failure.
func IncACLAttachFailure() {
	aclAttachFailuresTotal.Inc()
}

// RecordObjectRead records a served object by status code.
func RecordObjectRead(status int) {
	objectReadsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordLocateProbe records one candidate probe. method is "stat" or "fetch".
func RecordLocateProbe(method, result string) {
	locateProbesTotal.WithLabelValues(method, result).Inc()
}

// IncBucketListing counts a bucket listing call.
func IncBucketListing() {
	bucketListingsTotal.Inc()
}

// RecordCleanupJob records a cleanup job outcome.
func RecordCleanupJob(outcome string) {
	cleanupJobsTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
