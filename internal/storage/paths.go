package storage

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// unsafeFilenameChars matches every character outside the storage-safe set.
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9.-]+`)

// fallbackFilename is used when sanitization strips a name to nothing.
const fallbackFilename = "file"

// SanitizeFilename strips any character outside [A-Za-z0-9.-] from name so
// the result is safe as an object key segment.
func SanitizeFilename(name string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(name, "")
	if strings.Trim(sanitized, ".") == "" {
		return fallbackFilename
	}
	return sanitized
}

// ObjectPath builds a collision-resistant object path of the form
// {folder}/{unixMillis}_{sanitizedName}. The millisecond timestamp makes
// every generated path unique by construction, so no overwrite-resolution
// logic is needed anywhere downstream.
func ObjectPath(folder, name string, now time.Time) string {
	return fmt.Sprintf("%s/%d_%s", folder, now.UnixMilli(), SanitizeFilename(name))
}
