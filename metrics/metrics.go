package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var HttpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "wayverify_http_requests_total",
}, []string{"host", "action", "method"})
var HttpResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "wayverify_http_responses_total",
}, []string{"host", "action", "method", "statusCode"})
var HttpResponseTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name: "wayverify_http_response_time_seconds",
}, []string{"host", "action", "method"})
var CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "wayverify_cache_hits_total",
}, []string{"cache"})
var CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "wayverify_cache_misses_total",
}, []string{"cache"})
var CacheEvictions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "wayverify_cache_evictions_total",
}, []string{"cache", "reason"})
var CacheNumItems = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "wayverify_cache_num_items",
}, []string{"cache"})
var CacheNumBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "wayverify_cache_num_bytes_used",
}, []string{"cache"})
var ResolutionsPerformed = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "wayverify_resolutions_total",
}, []string{"outcome"})
var GatewaysProbed = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "wayverify_gateway_probes_total",
}, []string{"outcome"})
var GatewaysBlacklisted = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "wayverify_gateways_blacklisted",
})
var ResourcesVerified = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "wayverify_resources_verified_total",
}, []string{"outcome"})
var VerificationsCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "wayverify_verifications_total",
}, []string{"status"})
var VerificationTime = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name: "wayverify_verification_time_seconds",
})

func init() {
	prometheus.MustRegister(HttpRequests)
	prometheus.MustRegister(HttpResponses)
	prometheus.MustRegister(HttpResponseTime)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(CacheEvictions)
	prometheus.MustRegister(CacheNumItems)
	prometheus.MustRegister(CacheNumBytes)
	prometheus.MustRegister(ResolutionsPerformed)
	prometheus.MustRegister(GatewaysProbed)
	prometheus.MustRegister(GatewaysBlacklisted)
	prometheus.MustRegister(ResourcesVerified)
	prometheus.MustRegister(VerificationsCompleted)
	prometheus.MustRegister(VerificationTime)
}
