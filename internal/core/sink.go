package core

import (
	"context"
	"sync"
)

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, c Commit) error

func (f SinkFunc) BulkImport(ctx context.Context, c Commit) error { return f(ctx, c) }

// MemorySink keeps commits in memory. Used by the CLI dry run and tests.
type MemorySink struct {
	mu      sync.Mutex
	commits []Commit
}

func (m *MemorySink) BulkImport(_ context.Context, c Commit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.Records = append([]QuestionRecord(nil), c.Records...)
	m.commits = append(m.commits, c)
	return nil
}

// Commits returns a copy of every commit received so far.
func (m *MemorySink) Commits() []Commit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Commit(nil), m.commits...)
}
