// Package classify maps filenames and transfer content types to logical
// content categories and storage folders.
//
// Both the single-resource acquirer and the archive extraction engine use
// this one table, so a given extension always lands in the same folder no
// matter which route ingested it.
package classify

import (
	"path"
	"strings"
)

// Logical content categories.
const (
	CategoryDocument = "document"
	CategoryVideo    = "video"
	CategoryAudio    = "audio"
	CategoryEbook    = "ebook"
)

// Storage folders, one per category.
const (
	FolderDocuments = "documents"
	FolderVideos    = "videos"
	FolderAudio     = "audio"
	FolderEbooks    = "ebooks"
	// FolderScraped holds markdown objects produced by the scrape fallback.
	FolderScraped = "scraped"
)

// DefaultContentType is used when neither the transfer content type nor the
// extension identifies the payload.
const DefaultContentType = "application/octet-stream"

// Classification is the result of classifying one name/content-type pair.
type Classification struct {
	Category    string
	Folder      string
	ContentType string
}

// entry is one row of the extension table.
type entry struct {
	category    string
	folder      string
	contentType string
}

// extensionTable maps lowercase extensions (no dot) to their classification.
var extensionTable = map[string]entry{
	"pdf":  {CategoryDocument, FolderDocuments, "application/pdf"},
	"doc":  {CategoryDocument, FolderDocuments, "application/msword"},
	"docx": {CategoryDocument, FolderDocuments, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	"xls":  {CategoryDocument, FolderDocuments, "application/vnd.ms-excel"},
	"xlsx": {CategoryDocument, FolderDocuments, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	"ppt":  {CategoryDocument, FolderDocuments, "application/vnd.ms-powerpoint"},
	"pptx": {CategoryDocument, FolderDocuments, "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
	"txt":  {CategoryDocument, FolderDocuments, "text/plain"},
	"md":   {CategoryDocument, FolderDocuments, "text/markdown"},
	"json": {CategoryDocument, FolderDocuments, "application/json"},
	"mp4":  {CategoryVideo, FolderVideos, "video/mp4"},
	"webm": {CategoryVideo, FolderVideos, "video/webm"},
	"mov":  {CategoryVideo, FolderVideos, "video/quicktime"},
	"avi":  {CategoryVideo, FolderVideos, "video/x-msvideo"},
	"mp3":  {CategoryAudio, FolderAudio, "audio/mpeg"},
	"wav":  {CategoryAudio, FolderAudio, "audio/wav"},
	"ogg":  {CategoryAudio, FolderAudio, "audio/ogg"},
	"epub": {CategoryEbook, FolderEbooks, "application/epub+zip"},
	"mobi": {CategoryEbook, FolderEbooks, "application/x-mobipocket-ebook"},
}

// Classify maps a filename (or URL) and an optional observed transfer
// content type to a category, a storage folder, and the content type to
// store the object under.
//
// The transfer content type wins when it carries an unambiguous marker
// (video, audio, pdf, epub); otherwise the extension table decides. Unknown
// extensions default to document/documents/application-octet-stream.
func Classify(nameOrURL, transferContentType string) Classification {
	ct := strings.ToLower(transferContentType)

	switch {
	case strings.Contains(ct, "video"):
		return Classification{CategoryVideo, FolderVideos, transferContentType}
	case strings.Contains(ct, "audio"):
		return Classification{CategoryAudio, FolderAudio, transferContentType}
	case strings.Contains(ct, "pdf"):
		return Classification{CategoryDocument, FolderDocuments, transferContentType}
	case strings.Contains(ct, "epub"):
		return Classification{CategoryEbook, FolderEbooks, transferContentType}
	}

	if e, ok := extensionTable[Extension(nameOrURL)]; ok {
		return Classification{e.category, e.folder, e.contentType}
	}

	return Classification{CategoryDocument, FolderDocuments, DefaultContentType}
}

// Extension returns the lowercase extension of a filename or URL without the
// leading dot. Query strings and fragments are stripped first.
func Extension(nameOrURL string) string {
	name := nameOrURL
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}

// IsSupported reports whether an extension is in the archive-extraction
// allow-list. The allow-list and the classification table are the same
// table: an extension we can classify is an extension we extract.
func IsSupported(ext string) bool {
	_, ok := extensionTable[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// SupportedExtensions returns the archive-extraction allow-list.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionTable))
	for ext := range extensionTable {
		exts = append(exts, ext)
	}
	return exts
}
