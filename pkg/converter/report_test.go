package converter_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derhami/Converterz/pkg/converter"
)

func TestResultJSON_Success(t *testing.T) {
	res := converter.Result{
		SchemaVersion: converter.ReportSchemaVersion,
		ID:            "1234",
		Request: converter.ConversionRequest{
			SourcePath: "/in/a.png", Format: converter.FormatWebP, ResizePercent: 50, Quality: 80, Naming: converter.NamingHashOnly,
		},
		Status:     converter.StatusSuccess,
		Output:     &converter.OutputFile{Path: "/out/abc.webp", Name: "abc.webp", Format: converter.FormatWebP, Width: 10, Height: 5, SizeBytes: 42},
		StartedAt:  time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		DurationMs: 12,
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "success", decoded["status"])
	assert.Equal(t, "1.0", decoded["schemaVersion"])
	assert.NotContains(t, decoded, "error", "error must be omitted on success")
	output, ok := decoded["output"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "abc.webp", output["name"])
	request, ok := decoded["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hash_only", request["naming"])
	assert.EqualValues(t, 50, request["resizePercent"])
	assert.True(t, res.Succeeded())
}

func TestResultJSON_FailureOmitsOutput(t *testing.T) {
	res := converter.Result{Status: converter.StatusFailed, Error: "boom"}
	data, err := json.Marshal(res)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"error":"boom"`)
	assert.NotContains(t, string(data), `"output"`)
	assert.False(t, res.Succeeded())
}
