package analyzer

import (
	"bytes"
	"encoding/json"
	"math"
)

// MetricResult is a single named metric outcome: a finite numeric value or an
// error tag, never both.
type MetricResult struct {
	value float64
	err   string
}

// Metric wraps a numeric value. Non-finite values are rejected here so no
// NaN/Inf can reach aggregation or serialization.
func Metric(value float64) MetricResult {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MetricResult{err: "non-finite metric value"}
	}
	return MetricResult{value: value}
}

// ErrorMetric wraps an error tag.
func ErrorMetric(msg string) MetricResult {
	if msg == "" {
		msg = "unknown metric error"
	}
	return MetricResult{err: msg}
}

// Value returns the numeric value and whether the result is numeric.
func (r MetricResult) Value() (float64, bool) {
	return r.value, r.err == ""
}

// Err returns the error tag, empty for numeric results.
func (r MetricResult) Err() string {
	return r.err
}

// IsError reports whether the result carries an error tag.
func (r MetricResult) IsError() bool {
	return r.err != ""
}

// MetricBundle is an insertion-ordered mapping from metric name to result,
// with a bundle-level error field that is empty on success. Partial failure
// is per-entry, not all-or-nothing.
type MetricBundle struct {
	names   []string
	entries map[string]MetricResult
	err     string
}

// NewMetricBundle creates an empty bundle.
func NewMetricBundle() *MetricBundle {
	return &MetricBundle{entries: make(map[string]MetricResult)}
}

// Set records a numeric metric under the given name.
func (b *MetricBundle) Set(name string, value float64) {
	b.SetResult(name, Metric(value))
}

// SetResult records a metric result, preserving first-insertion order.
func (b *MetricBundle) SetResult(name string, result MetricResult) {
	if _, exists := b.entries[name]; !exists {
		b.names = append(b.names, name)
	}
	b.entries[name] = result
}

// SetError sets the bundle-level error.
func (b *MetricBundle) SetError(msg string) {
	b.err = msg
}

// Error returns the bundle-level error, empty on success.
func (b *MetricBundle) Error() string {
	return b.err
}

// Get returns the result for a name.
func (b *MetricBundle) Get(name string) (MetricResult, bool) {
	result, ok := b.entries[name]
	return result, ok
}

// Float returns the numeric value for a name, false when the entry is
// missing or errored.
func (b *MetricBundle) Float(name string) (float64, bool) {
	result, ok := b.entries[name]
	if !ok {
		return 0, false
	}
	return result.Value()
}

// Names returns metric names in insertion order.
func (b *MetricBundle) Names() []string {
	return append([]string(nil), b.names...)
}

// Len returns the number of entries.
func (b *MetricBundle) Len() int {
	return len(b.names)
}

// MarshalJSON serializes entries in insertion order. Numeric entries become
// numbers, errored entries become their tag string, and the bundle error is
// emitted as "error" (null on success), matching the persisted contract.
func (b *MetricBundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, name := range b.names {
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		result := b.entries[name]
		if value, ok := result.Value(); ok {
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, err
			}
			buf.Write(encoded)
		} else {
			encoded, err := json.Marshal(result.Err())
			if err != nil {
				return nil, err
			}
			buf.Write(encoded)
		}
		buf.WriteByte(',')
	}

	buf.WriteString(`"error":`)
	if b.err == "" {
		buf.WriteString("null")
	} else {
		encoded, err := json.Marshal(b.err)
		if err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
