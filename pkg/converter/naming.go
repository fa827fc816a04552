package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/djherbis/times"
)

// SourceInfo holds the naming inputs derived from a source file.
type SourceInfo struct {
	Path      string `json:"path" yaml:"path" toml:"path"`
	BaseName  string `json:"baseName" yaml:"baseName" toml:"baseName"`
	Hash      string `json:"hash" yaml:"hash" toml:"hash"`
	Timestamp string `json:"timestamp" yaml:"timestamp" toml:"timestamp"`
	SizeBytes int64  `json:"sizeBytes" yaml:"sizeBytes" toml:"sizeBytes"`
}

// GenerateFilename derives the output filename for a conversion:
//
//	hash_only          <hash>.<ext>
//	hash_timestamp     <hash>_<timestamp>.<ext>
//	original_filename  <original-basename>.<ext>
//
// The original basename keeps its own extension, so photo.png becomes photo.png.webp.
func GenerateFilename(hash, timestamp, originalBase string, method NamingMethod, ext string) (string, error) {
	switch method {
	case NamingHashOnly:
		return fmt.Sprintf("%s.%s", hash, ext), nil
	case NamingHashTimestamp:
		return fmt.Sprintf("%s_%s.%s", hash, timestamp, ext), nil
	case NamingOriginalFilename:
		return fmt.Sprintf("%s.%s", originalBase, ext), nil
	}
	return "", fmt.Errorf("%w: unrecognized naming method %q", ErrInvalidConfiguration, method)
}

// HashContent returns the hex digest used for content-addressed names. xxhash64 is not
// collision resistant against an adversary; it only has to deduplicate identical files.
func HashContent(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// CreationTimestamp formats the creation date of path as YYYYMMDD. The birth time is used
// where the filesystem records one, otherwise the inode change time, otherwise mtime.
func CreationTimestamp(path string) (string, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return "", err
	}
	return creationTime(ts).Format(TimestampLayout), nil
}

func creationTime(ts times.Timespec) time.Time {
	switch {
	case ts.HasBirthTime():
		return ts.BirthTime()
	case ts.HasChangeTime():
		return ts.ChangeTime()
	}
	return ts.ModTime()
}

// InspectSource reads path and returns its naming inputs together with the raw bytes,
// so the caller can decode without reading the file twice.
func InspectSource(path string) (SourceInfo, []byte, error) {
	if path == "" {
		return SourceInfo{}, nil, fmt.Errorf("%w: no image selected", ErrSourceUnreadable)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SourceInfo{}, nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	stamp, err := CreationTimestamp(path)
	if err != nil {
		return SourceInfo{}, nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	return SourceInfo{
		Path:      path,
		BaseName:  filepath.Base(path),
		Hash:      HashContent(data),
		Timestamp: stamp,
		SizeBytes: int64(len(data)),
	}, data, nil
}

// OutputName is a convenience that applies GenerateFilename to an inspected source.
func (s SourceInfo) OutputName(method NamingMethod, format Format) (string, error) {
	return GenerateFilename(s.Hash, s.Timestamp, s.BaseName, method, format.Extension())
}
