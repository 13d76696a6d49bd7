package prometheus

import (
	"strconv"
	"sync"
	"time"

	"catalog-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   *prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Product metrics
	ProductOperationsCounter *prometheus.CounterVec

	// Category metrics
	CategoryOperationsCounter *prometheus.CounterVec

	// Hierarchy writes rejected by uniqueness or shape rules
	HierarchyConflictsCounter *prometheus.CounterVec

	// Inventory metrics
	SkuInventoryGauge *prometheus.GaugeVec

	// Product popularity metrics
	ProductViewsCounter *prometheus.CounterVec

	initOnce sync.Once
)

// InitMetrics registers the service metrics with the default registry.
// Only the first call has an effect.
func InitMetrics(cfg *config.Config) {
	initOnce.Do(func() {
		register(cfg.Metrics.Prefix)
	})
}

func register(prefix string) {
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of rejected requests by reason",
		},
		[]string{"reason"},
	)

	// Database operation metrics
	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	ProductOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_operations_total",
			Help: "Total number of product and sku operations",
		},
		[]string{"operation"},
	)

	CategoryOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_category_operations_total",
			Help: "Total number of category operations",
		},
		[]string{"operation"},
	)

	HierarchyConflictsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_hierarchy_conflicts_total",
			Help: "Total number of rejected hierarchy writes",
		},
		[]string{"reason"},
	)

	SkuInventoryGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_sku_inventory",
			Help: "Current quantity available per sku",
		},
		[]string{"product_id", "sku_id"},
	)

	ProductViewsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_views_total",
			Help: "Total number of product views",
		},
		[]string{"product_id"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	code := strconv.Itoa(status)
	HttpRequestsTotal.WithLabelValues(method, path, code).Inc()
	HttpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// RecordAuthAttempt counts a request that presented credentials
func RecordAuthAttempt(success bool) {
	if AuthAttemptsCounter == nil {
		return
	}
	AuthAttemptsCounter.Inc()
	if success {
		AuthSuccessCounter.Inc()
	}
}

// RecordAuthError counts a request rejected by the auth middleware
func RecordAuthError(reason string) {
	if AuthErrorsCounter == nil {
		return
	}
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// RecordProductOperation increments the counter for product operations
func RecordProductOperation(operation string) {
	if ProductOperationsCounter == nil {
		return
	}
	ProductOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordCategoryOperation increments the counter for category operations
func RecordCategoryOperation(operation string) {
	if CategoryOperationsCounter == nil {
		return
	}
	CategoryOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordHierarchyConflict increments the counter for rejected hierarchy writes
func RecordHierarchyConflict(reason string) {
	if HierarchyConflictsCounter == nil {
		return
	}
	HierarchyConflictsCounter.WithLabelValues(reason).Inc()
}

// UpdateSkuInventory updates the gauge for sku inventory
func UpdateSkuInventory(productID, skuID int64, quantity int) {
	if SkuInventoryGauge == nil {
		return
	}
	SkuInventoryGauge.WithLabelValues(
		strconv.FormatInt(productID, 10),
		strconv.FormatInt(skuID, 10),
	).Set(float64(quantity))
}

// RecordProductView increments the counter for product views
func RecordProductView(productID int64) {
	if ProductViewsCounter == nil {
		return
	}
	ProductViewsCounter.WithLabelValues(strconv.FormatInt(productID, 10)).Inc()
}
