// Package filestore keeps the set of open documents.
//
// Documents are keyed by absolute path and listed in the order they were
// opened. One document may be active; its path components drive the
// breadcrumb bar.
package filestore

import (
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Document is an open file. Documents returned by the store are snapshots;
// use FileStore.Update to change content.
type Document struct {
	// Path is the absolute path to the file.
	Path string

	// Name is the base name of Path.
	Name string

	// Content is the current text. Invalid UTF-8 read from disk is
	// replaced with U+FFFD.
	Content string

	// Language is the highlight language for the file.
	Language string

	// Version is incremented on each update.
	Version int64

	// ModifiedAt is when the content last changed in the store.
	ModifiedAt time.Time

	// Repaired is set when the file on disk was not valid UTF-8 and
	// Content holds the lossy decoding.
	Repaired bool

	// saved is the content last read from or written to disk.
	saved string
}

// IsDirty reports whether Content differs from the file on disk.
func (d *Document) IsDirty() bool {
	return d.Content != d.saved
}

// LineCount returns the number of lines in Content.
func (d *Document) LineCount() int {
	if d.Content == "" {
		return 1
	}
	return strings.Count(d.Content, "\n") + 1
}

// lossyString decodes bytes as UTF-8, replacing invalid sequences.
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, _, err := transform.Bytes(runes.ReplaceIllFormed(), b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}

// Component is one breadcrumb: a display name and the path up to it.
type Component struct {
	Name string
	Path string
}

// Components splits path into breadcrumbs from the root down.
func Components(path string) []Component {
	clean := filepath.Clean(path)
	vol := filepath.VolumeName(clean)
	rest := strings.TrimPrefix(clean[len(vol):], string(filepath.Separator))

	var out []Component
	prefix := vol
	if filepath.IsAbs(clean) {
		prefix += string(filepath.Separator)
		out = append(out, Component{Name: prefix, Path: prefix})
	}
	if rest == "" || rest == "." {
		return out
	}
	for _, part := range strings.Split(rest, string(filepath.Separator)) {
		prefix = filepath.Join(prefix, part)
		out = append(out, Component{Name: part, Path: prefix})
	}
	return out
}
