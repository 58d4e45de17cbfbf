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

// Package parser recovers named fields from JSON-shaped model output.
//
// ParseJSON first decodes the outermost {...} span strictly. When that fails it falls back
// to a regex scan that pulls out whatever "key": value pairs it can recognize. The fallback
// is best-effort: values containing an escaped boundary sequence, objects nested more than
// one level deep and commas inside unquoted values may be cut short or dropped. It never
// reports an error.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"

	"k8s.io/klog/v2"

	"github.com/llm-d-incubation/modgen/internal/metrics"
	"github.com/llm-d-incubation/modgen/internal/util/logging"
)

var errTrailingData = errors.New("invalid character after top-level value")

var (
	keyPattern    = regexp.MustCompile(`"([\p{L}\p{N}_]+)":\s*`)
	quotedPattern = regexp.MustCompile(`"(.*?)"(?:,|\s*})`)
	nestedPattern = regexp.MustCompile(`(?s)(\{.*?\})(?:,|\s*})`)
	barePattern   = regexp.MustCompile(`([^,}]+)(?:,|\s*})`)
)

// ParseJSON returns the fields found in response. When targetKeys is non-empty the result
// holds exactly those keys, with "" for every key that could not be recovered.
func ParseJSON(ctx context.Context, response string, targetKeys []string) map[string]any {
	logger := klog.FromContext(ctx)
	candidate := ExtractCandidate(response)

	parsed, err := parseStrict(candidate)
	if err == nil {
		metrics.RecordParse(metrics.ParseModeStrict)
		return project(parsed, targetKeys)
	}

	logger.V(logging.WARNING).Info("Tried to parse json, but it failed. Switching to regex fallback", "error", err.Error())
	logger.V(logging.DEBUG).Info("Fallback parse input", "response", candidate)
	metrics.RecordParse(metrics.ParseModeFallback)

	return project(parseFallback(candidate, targetKeys), targetKeys)
}

// ExtractCandidate returns the text from the first '{' through the last '}' with escaped
// quotes (\") turned into plain quotes. It returns "" when there is no such span.
func ExtractCandidate(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end < start {
		return ""
	}
	return strings.ReplaceAll(response[start:end+1], `\"`, `"`)
}

// parseStrict decodes candidate as a single JSON object. Integers come back as int64, or as
// json.Number when they do not fit; other numbers as float64.
func parseStrict(candidate string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var parsed map[string]any
	if err := dec.Decode(&parsed); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return normalizeNumbers(parsed).(map[string]any), nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if strings.ContainsAny(string(t), ".eE") {
			if f, err := t.Float64(); err == nil {
				return f
			}
		}
		return t
	}
	return v
}

// parseFallback scans candidate for "key": value pairs from left to right. A key seen
// twice keeps its last value.
func parseFallback(candidate string, targetKeys []string) map[string]any {
	var wanted map[string]bool
	if len(targetKeys) > 0 {
		wanted = make(map[string]bool, len(targetKeys))
		for _, k := range targetKeys {
			wanted[k] = true
		}
	}

	parsed := make(map[string]any)
	for _, m := range keyPattern.FindAllStringSubmatchIndex(candidate, -1) {
		key := candidate[m[2]:m[3]]
		if wanted != nil && !wanted[key] {
			continue
		}
		valueStart := m[1]
		if valueStart >= len(candidate) {
			continue
		}
		if value, ok := extractValue(candidate[valueStart:]); ok {
			parsed[key] = value
		}
	}
	return parsed
}

// extractValue captures the value at the start of rest. ok is false when nothing matched.
func extractValue(rest string) (any, bool) {
	switch rest[0] {
	case '"':
		sm := quotedPattern.FindStringSubmatch(rest)
		if sm == nil {
			return nil, false
		}
		return sm[1], true
	case '{':
		sm := nestedPattern.FindStringSubmatch(rest)
		if sm == nil {
			return nil, false
		}
		nested, err := parseStrict(sm[1])
		if err != nil {
			return map[string]any{}, true
		}
		return nested, true
	default:
		sm := barePattern.FindStringSubmatch(rest)
		if sm == nil {
			return nil, false
		}
		return strings.TrimSpace(sm[1]), true
	}
}

// project keeps exactly targetKeys, defaulting absent ones to "". Without target keys the
// parsed map is returned as is.
func project(parsed map[string]any, targetKeys []string) map[string]any {
	if len(targetKeys) == 0 {
		return parsed
	}
	out := make(map[string]any, len(targetKeys))
	for _, k := range targetKeys {
		if v, ok := parsed[k]; ok {
			out[k] = v
		} else {
			out[k] = ""
		}
	}
	return out
}
