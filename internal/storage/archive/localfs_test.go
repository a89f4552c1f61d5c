package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFS_ImplementsStore(t *testing.T) {
	var _ Store = (*LocalFS)(nil)
}

func TestLocalFS_WriteRead(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewLocalFS(dir)
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	ctx := context.Background()
	data := []byte(`[{"key_ticker":"AAPL"}]`)

	if err := fs.Write(ctx, "directory/tickers.json", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := fs.Read(ctx, "directory/tickers.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}

	if _, err := os.Stat(filepath.Join(dir, "directory", "tickers.json.tmp")); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after write")
	}
}

func TestLocalFS_ReadMissing(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())

	_, err := fs.Read(context.Background(), "missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalFS_Exists(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	exists, _ := fs.Exists(ctx, "nonexistent.txt")
	if exists {
		t.Error("expected false for nonexistent file")
	}

	fs.Write(ctx, "exists.txt", []byte("data"))
	exists, _ = fs.Exists(ctx, "exists.txt")
	if !exists {
		t.Error("expected true for existing file")
	}
}

func TestLocalFS_StaysUnderBase(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(filepath.Join(dir, "base"))
	ctx := context.Background()

	if err := fs.Write(ctx, "../escape.json", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.json")); !os.IsNotExist(err) {
		t.Error("write escaped the base directory")
	}
	if ok, _ := fs.Exists(ctx, "escape.json"); !ok {
		t.Error("expected the object to land inside the base directory")
	}
}

func TestNewLocalFS_EmptyPath(t *testing.T) {
	if _, err := NewLocalFS(""); err == nil {
		t.Error("expected error for empty path")
	}
}
