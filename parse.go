package multitext

import (
	"strings"
	"unicode"
)

// HeaderLiteral is the substring that identifies the header line.
// The first line containing it determines the marker for the whole document.
const HeaderLiteral = "multitext header"

// DuplicatePolicy controls how duplicate section keys are handled.
type DuplicatePolicy string

// Available duplicate-key policies.
const (
	// DuplicateLastWins keeps the last body seen for a key. The key keeps
	// the position of its first appearance. This is the default.
	DuplicateLastWins DuplicatePolicy = "last-wins"

	// DuplicateFirstWins keeps the first body seen for a key and silently
	// ignores later sections with the same key.
	DuplicateFirstWins DuplicatePolicy = "first-wins"

	// DuplicateReject aborts the parse with a DuplicateKeyError.
	DuplicateReject DuplicatePolicy = "reject"
)

// parseConfig holds per-parse settings.
type parseConfig struct {
	filename   string
	duplicates DuplicatePolicy
}

// ParseOption is a functional option for Parse.
type ParseOption func(*parseConfig)

// WithFilename attaches a source location to parse errors.
// It does not affect parsing itself.
//
// Example:
//
//	doc, err := multitext.Parse(data, multitext.WithFilename("shaders.mt"))
func WithFilename(name string) ParseOption {
	return func(c *parseConfig) {
		c.filename = name
	}
}

// WithDuplicatePolicy sets the duplicate-key policy.
// Default is DuplicateLastWins.
func WithDuplicatePolicy(p DuplicatePolicy) ParseOption {
	return func(c *parseConfig) {
		c.duplicates = p
	}
}

// Parse parses a multitext document.
//
// The first line containing HeaderLiteral is the header line; everything
// before it is discarded. The text on the header line before the literal,
// right-trimmed, is the marker. From the header line on, every line starting
// with the marker opens a new section: the key is the rest of the marker
// line trimmed of surrounding whitespace, the body is every following line
// up to the next marker line or end of input. The header line itself opens
// the first section.
//
// Parse is a pure function; it is safe to call concurrently.
//
// Example:
//
//	doc, err := multitext.Parse(data)
//	if err != nil {
//	  return err
//	}
//	vert, _ := doc.Get("vertex shader")
func Parse(data []byte, opts ...ParseOption) (*Document, error) {
	cfg := parseConfig{
		duplicates: DuplicateLastWins,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	lines := splitLines(string(data))

	marker, headerIndex, err := locateHeader(lines, cfg)
	if err != nil {
		return nil, err
	}

	return segment(lines, marker, headerIndex, cfg)
}

// ParseString parses a multitext document from a string.
func ParseString(text string, opts ...ParseOption) (*Document, error) {
	return Parse([]byte(text), opts...)
}

// splitLines normalizes line endings (CRLF to LF) and splits the text into
// lines. A trailing newline does not produce a final empty line, so
// "a\nb\n" and "a\nb" both yield two lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// locateHeader finds the header line and extracts the marker.
// The marker is the text before the first occurrence of HeaderLiteral on
// the header line, right-trimmed only: leading whitespace is significant,
// enabling indented markers.
func locateHeader(lines []string, cfg parseConfig) (marker string, headerIndex int, err error) {
	for i, line := range lines {
		idx := strings.Index(line, HeaderLiteral)
		if idx < 0 {
			continue
		}
		m := strings.TrimRightFunc(line[:idx], unicode.IsSpace)
		if m == "" {
			// An empty marker would match every line.
			return "", 0, &EmptyMarkerError{Filename: cfg.filename, Line: i + 1}
		}
		return m, i, nil
	}
	return "", 0, &NoHeaderError{Filename: cfg.filename}
}

// segment splits the lines from the header line on into sections.
// A line is a marker line iff it starts with the marker as an exact literal
// prefix; marker text anywhere else in a line is ordinary content. The
// header line is the first marker line by construction.
func segment(lines []string, marker string, headerIndex int, cfg parseConfig) (*Document, error) {
	doc := &Document{
		marker: marker,
		index:  make(map[string]int),
	}

	key := sectionKey(lines[headerIndex], marker)
	keyLine := headerIndex + 1
	var body strings.Builder

	for i := headerIndex + 1; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, marker) {
			if err := insert(doc, key, body.String(), keyLine, cfg); err != nil {
				return nil, err
			}
			key = sectionKey(line, marker)
			keyLine = i + 1
			body.Reset()
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}

	if err := insert(doc, key, body.String(), keyLine, cfg); err != nil {
		return nil, err
	}

	return doc, nil
}

// sectionKey extracts the key from a marker line: the text after the marker
// prefix, trimmed of leading and trailing whitespace. Empty keys are valid.
func sectionKey(line, marker string) string {
	return strings.TrimSpace(line[len(marker):])
}

// insert adds a section to the document, applying the duplicate policy.
func insert(doc *Document, key, body string, line int, cfg parseConfig) error {
	if i, ok := doc.index[key]; ok {
		switch cfg.duplicates {
		case DuplicateFirstWins:
			return nil
		case DuplicateReject:
			return &DuplicateKeyError{Filename: cfg.filename, Line: line, Key: key}
		default:
			doc.sections[i].Body = body
			return nil
		}
	}
	doc.index[key] = len(doc.sections)
	doc.sections = append(doc.sections, Section{Key: key, Body: body})
	return nil
}
