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

// The file contains unit tests for the metric recorders and handler.
package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCompletion(t *testing.T) {
	success := completionRequests.WithLabelValues("test-model", ResultSuccess, ReasonNone)
	failed := completionRequests.WithLabelValues("test-model", ResultFailed, ReasonServerError)
	beforeSuccess := testutil.ToFloat64(success)
	beforeFailed := testutil.ToFloat64(failed)

	RecordCompletion("test-model", ResultSuccess, ReasonNone, 250*time.Millisecond)
	RecordCompletion("test-model", ResultSuccess, ReasonNone, 2*time.Second)
	RecordCompletion("test-model", ResultFailed, ReasonServerError, time.Second)

	assert.Equal(t, beforeSuccess+2, testutil.ToFloat64(success))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(completionDuration, "completion_request_duration_seconds"), 1)
}

func TestRecordParse(t *testing.T) {
	strict := responseParses.WithLabelValues(ParseModeStrict)
	fallback := responseParses.WithLabelValues(ParseModeFallback)
	beforeStrict := testutil.ToFloat64(strict)
	beforeFallback := testutil.ToFloat64(fallback)

	RecordParse(ParseModeStrict)
	RecordParse(ParseModeFallback)
	RecordParse(ParseModeFallback)

	assert.Equal(t, beforeStrict+1, testutil.ToFloat64(strict))
	assert.Equal(t, beforeFallback+2, testutil.ToFloat64(fallback))
}

func TestRecordEmptyResponse(t *testing.T) {
	before := testutil.ToFloat64(emptyResponses)
	RecordEmptyResponse()
	assert.Equal(t, before+1, testutil.ToFloat64(emptyResponses))
}

func TestMetricsHandler(t *testing.T) {
	RecordCompletion("handler-model", ResultSuccess, ReasonNone, time.Second)
	RecordParse(ParseModeStrict)
	RecordEmptyResponse()

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, NewMetricsHandler())

	req := httptest.NewRequest(http.MethodGet, MetricsPath, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	assert.Nil(t, err)
	for _, name := range []string{
		"completion_requests_total",
		"completion_request_duration_seconds",
		"response_parse_total",
		"empty_responses_total",
	} {
		assert.Contains(t, string(body), name)
	}
	assert.Contains(t, string(body), `model="handler-model"`)
}
