package history

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// BlobStore is the opaque persistence surface the history log writes
// through. Whole-blob overwrite on every change, last write wins.
type BlobStore interface {
	// Get returns the stored blob, or ok=false when none exists yet.
	Get() (data []byte, ok bool, err error)

	// Set replaces the stored blob.
	Set(data []byte) error
}

// FileBlobStore persists the blob as a zstd-compressed file. Writes go
// through a temp file and rename so a crash never leaves a torn blob.
type FileBlobStore struct {
	path string
}

// NewFileBlobStore creates a file-backed blob store at path. Parent
// directories are created on first write.
func NewFileBlobStore(path string) *FileBlobStore {
	return &FileBlobStore{path: path}
}

func (s *FileBlobStore) Get() ([]byte, bool, error) {
	compressed, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read history blob: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decompress history blob: %w", err)
	}
	return data, true, nil
}

func (s *FileBlobStore) Set(data []byte) error {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	compressed := enc.EncodeAll(data, nil)
	enc.Close()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*")
	if err != nil {
		return fmt.Errorf("failed to create temp blob: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write history blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close history blob: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace history blob: %w", err)
	}
	return nil
}

// MemoryBlobStore keeps the blob in memory; used by tests and as a fallback
// when no history path is configured.
type MemoryBlobStore struct {
	data []byte
	set  bool
}

func (s *MemoryBlobStore) Get() ([]byte, bool, error) {
	if !s.set {
		return nil, false, nil
	}
	return s.data, true, nil
}

func (s *MemoryBlobStore) Set(data []byte) error {
	s.data = append([]byte(nil), data...)
	s.set = true
	return nil
}
