// Package mttest provides testing utilities for multitext sources and
// documents. It is used by this module's own tests and can be used by
// custom source implementations to verify compliance.
package mttest

import (
	"strings"

	"github.com/yacchi/multitext"
)

// testT is the minimal testing interface used by mttest utilities.
type testT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
}

// require fails the test immediately if the condition is false.
func require(t testT, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

// requireNoError fails the test immediately if err is not nil.
func requireNoError(t testT, err error, format string, args ...any) {
	t.Helper()
	if err != nil {
		t.Fatalf(format, args...)
	}
}

// check reports an error if the condition is false, but continues the test.
func check(t testT, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Errorf(format, args...)
	}
}

// Render builds a syntactically valid multitext document for tests.
// The header line is marker + HeaderLiteral, followed by headerBody, then
// one marker line and body per section.
//
// Example:
//
//	data := mttest.Render("@@@", "pack description\n",
//	  multitext.Section{Key: "vertex shader", Body: "void main() {}\n"},
//	)
func Render(marker, headerBody string, sections ...multitext.Section) []byte {
	var b strings.Builder
	b.WriteString(marker)
	b.WriteString(multitext.HeaderLiteral)
	b.WriteByte('\n')
	b.WriteString(headerBody)
	for _, sec := range sections {
		b.WriteString(marker)
		b.WriteByte(' ')
		b.WriteString(sec.Key)
		b.WriteByte('\n')
		b.WriteString(sec.Body)
	}
	return []byte(b.String())
}

// RequireDocument fails the test unless doc has exactly the given marker
// and sections, in order. The header section must be included in want.
func RequireDocument(t testT, doc *multitext.Document, marker string, want ...multitext.Section) {
	t.Helper()

	require(t, doc != nil, "document is nil")
	require(t, doc.Marker() == marker, "Marker() = %q, want %q", doc.Marker(), marker)
	require(t, doc.Len() == len(want), "Len() = %d, want %d (keys: %q)", doc.Len(), len(want), doc.Keys())

	got := doc.Sections()
	for i, sec := range want {
		check(t, got[i].Key == sec.Key, "section %d key = %q, want %q", i, got[i].Key, sec.Key)
		check(t, got[i].Body == sec.Body, "section %d (%q) body = %q, want %q", i, sec.Key, got[i].Body, sec.Body)
	}
}
