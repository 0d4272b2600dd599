package multitext

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Section is a single named sub-document: a key and its verbatim body.
type Section struct {
	// Key is the text after the marker on the marker line, trimmed of
	// surrounding whitespace. Keys may be empty.
	Key string

	// Body is the verbatim text between the section's marker line and the
	// next marker line (or end of input). Every line is terminated with a
	// newline, so non-empty bodies end in "\n".
	Body string
}

// Document is an ordered mapping from section key to section body, as
// produced by Parse. Insertion order reflects the order of first appearance
// in the input; the header section is always first.
//
// A Document is immutable once returned and safe for concurrent reads.
type Document struct {
	marker   string
	sections []Section
	index    map[string]int
}

// Marker returns the marker string discovered on the header line.
func (d *Document) Marker() string {
	return d.marker
}

// Len returns the number of sections.
func (d *Document) Len() int {
	return len(d.sections)
}

// Has reports whether a section with the given key exists.
func (d *Document) Has(key string) bool {
	_, ok := d.index[key]
	return ok
}

// Get returns the body of the section with the given key.
// Returns the body and true if found, or "" and false if not found.
//
// Example:
//
//	frag, ok := doc.Get("fragment shader")
func (d *Document) Get(key string) (string, bool) {
	i, ok := d.index[key]
	if !ok {
		return "", false
	}
	return d.sections[i].Body, true
}

// Body returns the body of the section with the given key, or "" if the
// key does not exist. Use Get to distinguish a missing section from a
// section with an empty body.
func (d *Document) Body(key string) string {
	body, _ := d.Get(key)
	return body
}

// Keys returns the section keys in insertion order.
// The returned slice is a copy.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.sections))
	for i, sec := range d.sections {
		keys[i] = sec.Key
	}
	return keys
}

// Sections returns the sections in insertion order.
// The returned slice is a copy.
func (d *Document) Sections() []Section {
	sections := make([]Section, len(d.sections))
	copy(sections, d.sections)
	return sections
}

// Equal reports whether two documents have the same marker and the same
// sections in the same order.
func (d *Document) Equal(other *Document) bool {
	if other == nil || d.marker != other.marker || len(d.sections) != len(other.sections) {
		return false
	}
	for i, sec := range d.sections {
		if other.sections[i] != sec {
			return false
		}
	}
	return true
}

// Marshal renders the document back to multitext form: for each section in
// order, the marker line "<marker> <key>" followed by the verbatim body.
// Re-parsing the output yields an equal document (text before the original
// header line is not reconstructed, since it is never stored).
func (d *Document) Marshal() ([]byte, error) {
	var b strings.Builder
	for _, sec := range d.sections {
		b.WriteString(d.marker)
		b.WriteByte(' ')
		b.WriteString(sec.Key)
		b.WriteByte('\n')
		b.WriteString(sec.Body)
	}
	return []byte(b.String()), nil
}

// jsonSection is the JSON shape of a section.
type jsonSection struct {
	Key  string `json:"key"`
	Body string `json:"body"`
}

// MarshalJSON encodes the document as a JSON array of {"key", "body"}
// objects, preserving section order. An object keyed by section name would
// lose ordering and could not represent all documents, since JSON object
// key order is not significant.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make([]jsonSection, len(d.sections))
	for i, sec := range d.sections {
		out[i] = jsonSection{Key: sec.Key, Body: sec.Body}
	}
	return json.Marshal(out)
}
