package converter

import (
	"time"
)

// OutputFile describes the artifact written by a successful conversion.
type OutputFile struct {
	Path      string `json:"path" yaml:"path" toml:"path"`
	Name      string `json:"name" yaml:"name" toml:"name"`
	Format    Format `json:"format" yaml:"format" toml:"format"`
	Width     int    `json:"width" yaml:"width" toml:"width"`
	Height    int    `json:"height" yaml:"height" toml:"height"`
	SizeBytes int64  `json:"sizeBytes" yaml:"sizeBytes" toml:"sizeBytes"`
}

// Result summarizes one conversion attempt, successful or not.
type Result struct {
	SchemaVersion string            `json:"schemaVersion" yaml:"schemaVersion" toml:"schemaVersion"`
	ID            string            `json:"id" yaml:"id" toml:"id"`
	Request       ConversionRequest `json:"request" yaml:"request" toml:"request"`
	Status        Status            `json:"status" yaml:"status" toml:"status"`
	Output        *OutputFile       `json:"output,omitempty" yaml:"output,omitempty" toml:"output,omitempty"`
	Error         string            `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	StartedAt     time.Time         `json:"startedAt" yaml:"startedAt" toml:"startedAt"`
	DurationMs    int64             `json:"durationMs" yaml:"durationMs" toml:"durationMs"`
}

// Succeeded reports whether the conversion wrote its output.
func (r Result) Succeeded() bool { return r.Status == StatusSuccess }

func newResult(id string, req ConversionRequest, started time.Time, out OutputFile, err error) Result {
	res := Result{
		SchemaVersion: ReportSchemaVersion,
		ID:            id,
		Request:       req,
		StartedAt:     started.UTC(),
		DurationMs:    time.Since(started).Milliseconds(),
	}
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		return res
	}
	res.Status = StatusSuccess
	res.Output = &out
	return res
}
