package converter

import "errors"

// Errors returned by the conversion core. They are always wrapped with detail, so
// callers should match them with errors.Is.
var (
	// ErrInvalidConfiguration indicates an unparseable resize/quality percentage, an unknown
	// output format or an unrecognized naming method. Raised before any file is touched.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrSourceUnreadable indicates that no source was selected, or that the source file is
	// missing, unreadable or not a decodable image.
	ErrSourceUnreadable = errors.New("source image unreadable")

	// ErrEncodeOrWrite indicates a codec or filesystem failure while saving the output,
	// including a quality value the chosen format does not support.
	ErrEncodeOrWrite = errors.New("failed to encode or write output")

	// ErrBusy is returned by Submit while another conversion is still in flight.
	ErrBusy = errors.New("a conversion is already in progress")
)
