package multitext

import (
	"context"
	"errors"
	"testing"

	"github.com/yacchi/multitext/source"
)

// stubSource is a minimal in-memory source for root package tests.
// The real byte slice source lives in source/bytes; it is not used here to
// avoid an import cycle with its own tests.
type stubSource struct {
	data []byte
	err  error
	path string
}

func (s *stubSource) Type() source.SourceType { return "stub" }

func (s *stubSource) Load(ctx context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func (s *stubSource) Save(ctx context.Context, updateFunc source.UpdateFunc) error {
	return source.ErrSaveNotSupported
}

func (s *stubSource) CanSave() bool { return false }

func (s *stubSource) Path() string { return s.path }

func TestLoad(t *testing.T) {
	src := &stubSource{data: []byte(shaderDoc)}

	doc, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Len() != 3 {
		t.Errorf("Len() = %d, want 3", doc.Len())
	}
}

func TestLoad_SourceError(t *testing.T) {
	sentinel := errors.New("boom")
	src := &stubSource{err: sentinel}

	_, err := Load(context.Background(), src)
	if !errors.Is(err, sentinel) {
		t.Fatalf("Load() error = %v, want wrapped %v", err, sentinel)
	}
}

func TestLoad_AttachesSourcePathToErrors(t *testing.T) {
	src := &stubSource{data: []byte("no header\n"), path: "assets/shaders.mt"}

	_, err := Load(context.Background(), src)
	var noHeader *NoHeaderError
	if !errors.As(err, &noHeader) {
		t.Fatalf("Load() error = %v, want NoHeaderError", err)
	}
	if noHeader.Filename != "assets/shaders.mt" {
		t.Errorf("Filename = %q, want %q", noHeader.Filename, "assets/shaders.mt")
	}
}

func TestLoad_ExplicitFilenameWins(t *testing.T) {
	src := &stubSource{data: []byte("no header\n"), path: "from-source.mt"}

	_, err := Load(context.Background(), src, WithFilename("explicit.mt"))
	var noHeader *NoHeaderError
	if !errors.As(err, &noHeader) {
		t.Fatalf("Load() error = %v, want NoHeaderError", err)
	}
	if noHeader.Filename != "explicit.mt" {
		t.Errorf("Filename = %q, want %q", noHeader.Filename, "explicit.mt")
	}
}
