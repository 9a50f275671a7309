package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for bid and close counters
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// AuctionMetrics records bidding, closing and sweep activity.
type AuctionMetrics struct {
	bids        *prometheus.CounterVec
	closes      *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	jobSuccess  *prometheus.CounterVec
	jobFailure  *prometheus.CounterVec
	requests    *prometheus.HistogramVec
}

// New registers the auction metrics on the provided registerer. A nil registerer yields a no-op recorder.
func New(reg prometheus.Registerer) *AuctionMetrics {
	if reg == nil {
		return &AuctionMetrics{}
	}
	bids := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_bids_total",
		Help: "Bid placement attempts by outcome.",
	}, []string{"outcome"})
	closes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_closes_total",
		Help: "Auction close attempts by trigger and outcome.",
	}, []string{"trigger", "outcome"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auction_job_duration_seconds",
		Help:    "Duration of background jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	jobSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_job_success_total",
		Help: "Successful background job executions.",
	}, []string{"job"})
	jobFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_job_failure_total",
		Help: "Failed background job executions.",
	}, []string{"job"})
	requests := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
	reg.MustRegister(bids, closes, jobDuration, jobSuccess, jobFailure, requests)
	return &AuctionMetrics{
		bids:        bids,
		closes:      closes,
		jobDuration: jobDuration,
		jobSuccess:  jobSuccess,
		jobFailure:  jobFailure,
		requests:    requests,
	}
}

// ObserveBid counts a bid attempt
func (m *AuctionMetrics) ObserveBid(outcome string) {
	if m == nil || m.bids == nil {
		return
	}
	m.bids.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveClose counts a close attempt
func (m *AuctionMetrics) ObserveClose(trigger, outcome string) {
	if m == nil || m.closes == nil {
		return
	}
	m.closes.WithLabelValues(normalizeLabel(trigger), normalizeLabel(outcome)).Inc()
}

// ObserveJob records duration and result of a background job run
func (m *AuctionMetrics) ObserveJob(job string, duration time.Duration, err error) {
	if m == nil || m.jobDuration == nil {
		return
	}
	job = normalizeLabel(job)
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		m.jobFailure.WithLabelValues(job).Inc()
		return
	}
	m.jobSuccess.WithLabelValues(job).Inc()
}

// ObserveRequest records one served HTTP request. route is the matched pattern, not the raw path.
func (m *AuctionMetrics) ObserveRequest(method, route string, code int, duration time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(code)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
