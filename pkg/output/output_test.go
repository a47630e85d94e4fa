package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superlinear-space/jsnonet-transformer/pkg/transform"
)

const sampleDashboard = `{
	"title": "Service Overview",
	"uid": "svc-1",
	"panels": [
		{"id": 1, "type": "stat", "datasource": "prometheus",
		 "targets": [{"expr": "up"}],
		 "fieldConfig": {"defaults": {"unit": "a", "thresholds": {"mode": "absolute", "steps": []}}}},
		{"id": 2, "type": "gauge", "datasource": "prometheus",
		 "fieldConfig": {"defaults": {"unit": "b", "thresholds": {"mode": "absolute", "steps": []}}}}
	]
}`

func successResult(t *testing.T) *transform.Result {
	t.Helper()
	result := transform.Transform(context.Background(), []byte(sampleDashboard), transform.DefaultOptions())
	require.True(t, result.Success, "errors: %v", result.Errors)
	return result
}

func TestTextFormatterSuccess(t *testing.T) {
	var buf bytes.Buffer
	f := &TextFormatter{}
	require.NoError(t, f.Format(&buf, successResult(t)))
	text := buf.String()

	assert.Contains(t, text, "Dashboard: Service Overview (svc-1)")
	assert.Contains(t, text, "Panels:    2")
	assert.Contains(t, text, "stat ×1")
	assert.Contains(t, text, "Sources:   prometheus")
	assert.Contains(t, text, "const")
	assert.Contains(t, text, "thresholds")
}

func TestTextFormatterFailure(t *testing.T) {
	result := transform.Transform(context.Background(), []byte(`{"foo": 1}`), transform.DefaultOptions())
	require.False(t, result.Success)

	var buf bytes.Buffer
	f := &TextFormatter{}
	require.NoError(t, f.Format(&buf, result))

	assert.Contains(t, buf.String(), "Transformation failed.")
	assert.Contains(t, buf.String(), "error: validation failed")
}

func TestTextFormatterNoPatterns(t *testing.T) {
	result := transform.Transform(context.Background(),
		[]byte(`{"title": "T", "panels": []}`), transform.DefaultOptions())
	require.True(t, result.Success)

	var buf bytes.Buffer
	f := &TextFormatter{}
	require.NoError(t, f.Format(&buf, result))
	assert.Contains(t, buf.String(), "No repeated patterns extracted.")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{Indent: true}
	require.NoError(t, f.Format(&buf, successResult(t)))

	assert.True(t, strings.HasPrefix(buf.String(), "{\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.NotEmpty(t, decoded["jsonnet"])
	assert.Contains(t, decoded, "stats")

	// Intermediate pipeline products stay out of the serialized form.
	assert.NotContains(t, decoded, "Record")
	assert.NotContains(t, decoded, "Plan")
}

func TestJSONFormatterCompact(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	require.NoError(t, f.Format(&buf, successResult(t)))
	assert.False(t, strings.HasPrefix(buf.String(), "{\n"))
}
