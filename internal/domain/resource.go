// Package domain defines the shared types for content-library ingestion.
package domain

// AcquisitionState identifies the terminal state of a single-resource
// acquisition.
type AcquisitionState string

// Acquisition terminal states.
const (
	// AcquisitionStored means the remote bytes were materialized directly.
	AcquisitionStored AcquisitionState = "stored"
	// AcquisitionScraped means the page text was extracted via the scrape
	// gateway and materialized as markdown.
	AcquisitionScraped AcquisitionState = "scraped"
	// AcquisitionBlocked means the origin denies automated access and the
	// scrape fallback also failed.
	AcquisitionBlocked AcquisitionState = "blocked"
	// AcquisitionRejected means the request failed for any other reason.
	AcquisitionRejected AcquisitionState = "rejected"
)

// ContentSourceScraped marks content that came from the scrape fallback
// rather than a direct download.
const ContentSourceScraped = "scraped"

// AcquisitionRequest describes one URL to ingest.
type AcquisitionRequest struct {
	// URL is the remote resource to acquire.
	URL string `json:"url"`
	// Title optionally overrides the derived filename/title.
	Title string `json:"title,omitempty"`
}

// AcquisitionOutcome is the discriminated result of acquiring one URL.
// Exactly one terminal State is set; the populated fields depend on it.
type AcquisitionOutcome struct {
	State AcquisitionState `json:"state"`

	// Stored / Scraped
	Locator     string `json:"locator,omitempty"`
	Path        string `json:"path,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Folder      string `json:"folder,omitempty"`

	// Scraped only
	Title         string `json:"title,omitempty"`
	Content       string `json:"content,omitempty"`
	ContentSource string `json:"content_source,omitempty"`

	// Blocked / Rejected
	Reason string `json:"reason,omitempty"`
}

// ArchiveEntry is one supported file record inside an archive.
type ArchiveEntry struct {
	// Name is the base filename.
	Name string `json:"name"`
	// Path is the full path inside the archive.
	Path string `json:"path"`
	// SizeBytes is the uncompressed size when the container reports one.
	SizeBytes int64 `json:"size_bytes"`
	// Extension is the lowercase extension without the leading dot.
	Extension string `json:"extension"`
	// Category is the logical content category (document/video/audio/ebook).
	Category string `json:"category"`
}

// ArchivePreview is the result of enumerating an archive.
// It is never persisted server-side: extraction re-derives everything from
// the resent archive bytes plus the previously returned entry paths.
type ArchivePreview struct {
	ArchiveName  string         `json:"archive_name"`
	Format       string         `json:"format"`
	Entries      []ArchiveEntry `json:"entries"`
	SkippedPaths []string       `json:"skipped_paths"`
}

// ExtractedFile pairs an archive entry with its raw bytes.
type ExtractedFile struct {
	Entry ArchiveEntry
	Data  []byte
}

// Provenance records where a batch-uploaded resource came from.
type Provenance struct {
	ArchiveName  string `json:"archive_name"`
	OriginalPath string `json:"original_path"`
	Format       string `json:"format"`
}

// ResourceDescriptor is handed to the persistence layer after a successful
// materialization.
type ResourceDescriptor struct {
	Title      string      `json:"title"`
	Locator    string      `json:"locator"`
	SizeBytes  int64       `json:"size_bytes"`
	Category   string      `json:"category"`
	Provenance *Provenance `json:"provenance,omitempty"`
}
