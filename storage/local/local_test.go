package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return s
}

func TestUploadDownload(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.Upload(ctx, "run/voice.ogg", strings.NewReader("one")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := s.Upload(ctx, "run/voice.ogg", strings.NewReader("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	rc, err := s.Download(ctx, "run/voice.ogg")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "two" {
		t.Errorf("expected overwritten content, got %q", data)
	}

	entries, _ := os.ReadDir(filepath.Join(s.BasePath(), "run"))
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestDownload_NotFound(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.Download(context.Background(), "missing"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExists(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	s.Upload(ctx, "run/a.wav", strings.NewReader("x"))

	if ok, err := s.Exists(ctx, "run/a.wav"); err != nil || !ok {
		t.Fatalf("expected file to exist: %v %v", ok, err)
	}
	if err := s.DeletePrefix(ctx, "run/a.wav"); err != nil {
		t.Fatalf("delete single key: %v", err)
	}
	if ok, _ := s.Exists(ctx, "run/a.wav"); ok {
		t.Error("expected file to be gone")
	}
}

func TestDeletePrefix(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	s.Upload(ctx, "run-a/voice.ogg", strings.NewReader("x"))
	s.Upload(ctx, "run-a/voice.wav", strings.NewReader("x"))
	s.Upload(ctx, "run-b/voice.ogg", strings.NewReader("x"))

	if err := s.DeletePrefix(ctx, "run-a"); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}
	files, _ := s.List(ctx, "")
	if len(files) != 1 || files[0].Key != "run-b/voice.ogg" {
		t.Errorf("unexpected files after delete: %+v", files)
	}

	if err := s.DeletePrefix(ctx, ""); err == nil {
		t.Error("expected refusal to delete the base directory")
	}
	if err := s.DeletePrefix(ctx, "../.."); err == nil {
		t.Error("expected escaping prefix to resolve to the base directory and be refused")
	}
}

func TestResolveStaysInsideBase(t *testing.T) {
	s := newTestStorage(t)
	p, _ := s.LocalPath("../../etc/passwd")
	if !strings.HasPrefix(p, s.BasePath()) {
		t.Errorf("path %q escapes base %q", p, s.BasePath())
	}
}

func TestList(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	s.Upload(ctx, "b/voice.wav", strings.NewReader("xx"))
	s.Upload(ctx, "a/voice.ogg", strings.NewReader("x"))

	files, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || files[0].Key != "a/voice.ogg" || files[1].Key != "b/voice.wav" {
		t.Fatalf("unexpected listing %+v", files)
	}
	if files[1].Size != 2 {
		t.Errorf("expected size 2, got %d", files[1].Size)
	}

	only, _ := s.List(ctx, "b/")
	if len(only) != 1 {
		t.Errorf("expected prefix filter, got %+v", only)
	}
	if none, err := s.List(ctx, "zzz"); err != nil || none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil listing, got %v %v", none, err)
	}
}
