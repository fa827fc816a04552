package converter

import (
	"fmt"
	"strings"
)

// Format is the output image format. Its string value doubles as the file extension.
type Format string

// Supported output formats.
const (
	FormatWebP Format = "webp"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// SupportedFormats lists the output formats in the order the shells present them.
var SupportedFormats = []Format{FormatWebP, FormatJPEG, FormatPNG}

// Extension returns the extension appended to generated filenames (without the dot).
func (f Format) Extension() string { return string(f) }

// ParseFormat resolves a user-supplied format name. Matching is case-insensitive and
// "jpg" is accepted as an alias for jpeg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "webp":
		return FormatWebP, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: unsupported output format %q (allowed: %v)", ErrInvalidConfiguration, s, SupportedFormats)
}

// NamingMethod selects how the output filename is derived.
type NamingMethod string

// Supported naming methods.
const (
	NamingHashOnly         NamingMethod = "hash_only"
	NamingHashTimestamp    NamingMethod = "hash_timestamp"
	NamingOriginalFilename NamingMethod = "original_filename"
)

// SupportedNamingMethods lists the naming methods in the order the shells present them.
var SupportedNamingMethods = []NamingMethod{NamingHashOnly, NamingHashTimestamp, NamingOriginalFilename}

// Label returns the human readable name shown by the shells.
func (n NamingMethod) Label() string {
	switch n {
	case NamingHashOnly:
		return "Hash Only"
	case NamingHashTimestamp:
		return "Hash + Timestamp"
	case NamingOriginalFilename:
		return "Original Filename"
	}
	return string(n)
}

// ParseNamingMethod resolves a naming method. Both the underscore spelling
// ("hash_timestamp") and the dashed spelling ("hash+timestamp", "hash-only",
// "original-filename") are accepted.
func ParseNamingMethod(s string) (NamingMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hash_only", "hash-only", "hash":
		return NamingHashOnly, nil
	case "hash_timestamp", "hash+timestamp", "hash-timestamp":
		return NamingHashTimestamp, nil
	case "original_filename", "original-filename", "original":
		return NamingOriginalFilename, nil
	}
	return "", fmt.Errorf("%w: unrecognized naming method %q (allowed: %v)", ErrInvalidConfiguration, s, SupportedNamingMethods)
}

// Status describes where a conversion currently is.
type Status string

// Conversion lifecycle states, in the order a successful run passes through them.
const (
	StatusPending  Status = "pending"
	StatusLoading  Status = "loading"
	StatusResizing Status = "resizing"
	StatusEncoding Status = "encoding"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
)

// IsFinal reports whether s is a terminal state.
func (s Status) IsFinal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// ReportFormat defines how the shell prints a conversion result when the TUI is not used.
type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
	ReportFormatYAML ReportFormat = "yaml"
	ReportFormatTOML ReportFormat = "toml"
)

// SupportedReportFormats lists the accepted report formats.
var SupportedReportFormats = []ReportFormat{ReportFormatText, ReportFormatJSON, ReportFormatYAML, ReportFormatTOML}
