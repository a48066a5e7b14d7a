package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Source is the file the user picked. Read may block; Reset clears the
// selection so the same file can be chosen again.
type Source interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Reset()
}

// BytesSource is an in-memory Source, such as an uploaded multipart file.
type BytesSource struct {
	name    string
	onReset func()

	mu   sync.Mutex
	data []byte
}

// NewBytesSource wraps data under the given file name. onReset, if set, runs
// on every Reset.
func NewBytesSource(name string, data []byte, onReset func()) *BytesSource {
	return &BytesSource{name: name, data: data, onReset: onReset}
}

func (s *BytesSource) Name() string { return s.name }

func (s *BytesSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, fmt.Errorf("source %q has been reset", s.name)
	}
	return s.data, nil
}

func (s *BytesSource) Reset() {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	if s.onReset != nil {
		s.onReset()
	}
}

// FileSource reads a file from disk, refusing files over MaxBytes.
type FileSource struct {
	Path     string
	MaxBytes int64
}

func (s FileSource) Name() string { return filepath.Base(s.Path) }

func (s FileSource) Read(ctx context.Context) ([]byte, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLimited(ctx, f, s.MaxBytes)
}

// Reset is a no-op; a file on disk has no selection to clear.
func (FileSource) Reset() {}
