package storage

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

// smallest valid PNG header plus IHDR chunk start, enough for sniffing
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}

func TestPutGetSniffsContentType(t *testing.T) {
	s := NewImageStoreFs(afero.NewMemMapFs(), 1024)
	ct, err := s.Put("form/1", pngBytes, "")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	data, gotCT, err := s.Get("form/1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(data, pngBytes) || gotCT != "image/png" {
		t.Errorf("Get returned %d bytes of %q", len(data), gotCT)
	}
}

func TestPutKeepsDeclaredContentType(t *testing.T) {
	s := NewImageStoreFs(afero.NewMemMapFs(), 0)
	if _, err := s.Put("option/3", []byte("opaque"), "image/webp"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_, ct, err := s.Get("option/3")
	if err != nil || ct != "image/webp" {
		t.Fatalf("Get: %q %v", ct, err)
	}
}

func TestPutRejects(t *testing.T) {
	s := NewImageStoreFs(afero.NewMemMapFs(), 8)
	if _, err := s.Put("form/1", pngBytes, ""); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if _, err := s.Put("form/1", []byte("hello"), ""); !errors.Is(err, ErrNotImage) {
		t.Errorf("expected ErrNotImage for sniffed text, got %v", err)
	}
	if _, err := s.Put("form/1", []byte("hello"), "text/plain"); !errors.Is(err, ErrNotImage) {
		t.Errorf("expected ErrNotImage for declared text, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewImageStoreFs(fs, 0)
	if _, err := s.Put("section/2", pngBytes, ""); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s.DeleteAll([]string{"section/2", "section/99"})
	if _, _, err := s.Get("section/2"); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound after delete, got %v", err)
	}
	if ok, _ := afero.Exists(fs, "section/2.type"); ok {
		t.Error("content type sidecar was not removed")
	}
}

func TestCleanKeyStaysInsideRoot(t *testing.T) {
	if got := cleanKey("../../etc/passwd"); got != "etc/passwd" {
		t.Errorf("cleanKey escaped root: %q", got)
	}
}
