// Package multitext parses the multitext container format: a single text
// file holding multiple named sub-documents, demarcated by a marker string
// chosen per file.
//
// The format is self-describing. The first line containing the literal
// "multitext header" declares the marker: everything on that line before
// the literal. Every later line starting with the marker opens a new
// section, named by the rest of that line. For example, with marker "@@@":
//
//	@@@multitext header
//	shader pack for the water surface
//	@@@ vertex shader
//	void main() { ... }
//	@@@ fragment shader
//	void main() { ... }
//
// parses to three sections: "multitext header", "vertex shader" and
// "fragment shader".
//
// Parse works on raw bytes; the source and watcher packages supply the
// surrounding I/O (files, byte slices, change notification) for callers
// that want it.
package multitext

import (
	"context"
	"fmt"

	"github.com/yacchi/multitext/source"
)

// Load reads raw text from src and parses it.
// For path-backed sources (source.Pathed) the path is attached to parse
// errors, as if passed via WithFilename.
//
// Example:
//
//	doc, err := multitext.Load(ctx, fs.New("shaders.mt"))
func Load(ctx context.Context, src source.Source, opts ...ParseOption) (*Document, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("multitext: failed to load source: %w", err)
	}
	if p, ok := src.(source.Pathed); ok {
		opts = append([]ParseOption{WithFilename(p.Path())}, opts...)
	}
	return Parse(data, opts...)
}
