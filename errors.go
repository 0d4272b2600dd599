package multitext

import "fmt"

// NoHeaderError is returned when no line of the input contains the
// header literal. No partial result is produced.
type NoHeaderError struct {
	// Filename is the source location, if one was provided via WithFilename.
	Filename string
}

func (e *NoHeaderError) Error() string {
	if e.Filename == "" {
		return "multitext: missing header line"
	}
	return fmt.Sprintf("multitext: missing header line: %s", e.Filename)
}

// EmptyMarkerError is returned when the text before the header literal on
// the header line is empty after right-trimming. An empty marker would make
// every line a marker line, so segmentation is undefined.
type EmptyMarkerError struct {
	// Filename is the source location, if one was provided via WithFilename.
	Filename string

	// Line is the 1-based line number of the header line.
	Line int
}

func (e *EmptyMarkerError) Error() string {
	return fmt.Sprintf("multitext: empty marker on header line: %s", position(e.Filename, e.Line))
}

// DuplicateKeyError is returned when a section key appears more than once
// and the parse was configured with DuplicateReject.
type DuplicateKeyError struct {
	// Filename is the source location, if one was provided via WithFilename.
	Filename string

	// Line is the 1-based line number of the offending marker line.
	Line int

	// Key is the duplicated section key.
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("multitext: duplicate section key %q: %s", e.Key, position(e.Filename, e.Line))
}

// position formats a file position as "filename(line)", or "line N" when
// no filename is known.
func position(filename string, line int) string {
	if filename == "" {
		return fmt.Sprintf("line %d", line)
	}
	return fmt.Sprintf("%s(%d)", filename, line)
}
