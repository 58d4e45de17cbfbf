/*
Copyright 2026 The llm-d Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// labels definition
const (
	// result labels
	ResultSuccess = "success"
	ResultFailed  = "failed"

	// reason labels
	ReasonNone         = "none"
	ReasonUnknown      = "unknown"
	ReasonClientError  = "client_error"  // request rejected: bad params, auth.. etc.,
	ReasonServerError  = "server_error"  // 5xx, rate limit, network, timeout.. etc.,
	ReasonEmptyChoices = "empty_choices" // service answered without any choice

	// parse mode labels
	ParseModeStrict   = "strict"
	ParseModeFallback = "fallback"
)

var (
	// number of completion requests sent so far
	completionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_requests_total",
			Help: "Total number of chat completion requests",
		}, []string{"model", "result", "reason"},
	)

	// duration of completion requests
	completionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "completion_request_duration_seconds",
			Help: "Duration of chat completion requests in seconds",
			// Buckets -
			// Bucket 1: ~ 0.1s
			// Bucket 2: ~ 0.2s
			// ...
			// Bucket 12: ~ 204.8s (approx. 3.4m)
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"model"},
	)

	// response parses by the path that produced the result
	responseParses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_parse_total",
			Help: "Total number of parsed model responses by parse mode",
		}, []string{"mode"},
	)

	// empty completions seen by the end-to-end generator
	emptyResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "empty_responses_total",
			Help: "Total number of empty model responses",
		},
	)
)

func init() {
	prometheus.MustRegister(completionRequests)
	prometheus.MustRegister(completionDuration)
	prometheus.MustRegister(responseParses)
	prometheus.MustRegister(emptyResponses)
}

// Recorder funcs

// RecordCompletion increments the completion request count and observes its duration.
func RecordCompletion(model string, result string, reason string, duration time.Duration) {
	completionRequests.WithLabelValues(model, result, reason).Inc()
	completionDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordParse increments the parse count for the given mode.
func RecordParse(mode string) {
	responseParses.WithLabelValues(mode).Inc()
}

// RecordEmptyResponse increments the empty response count.
func RecordEmptyResponse() {
	emptyResponses.Inc()
}
