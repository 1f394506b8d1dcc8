package bundle

import (
	"errors"
	"strings"
)

// Format identifies a supported archive container format.
type Format string

// Supported archive formats.
const (
	FormatZip     Format = "zip"
	FormatTar     Format = "tar"
	FormatTarGzip Format = "tar.gz"
)

// ErrUnsupportedFormat is returned for archives in any other container
// format. Detection happens before any extraction work, so an unsupported
// archive costs nothing.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// DetectFormat determines the archive format from the filename suffix.
func DetectFormat(name string) (Format, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGzip, nil
	case strings.HasSuffix(lower, ".tar"):
		return FormatTar, nil
	default:
		return "", ErrUnsupportedFormat
	}
}
