package telegram

import (
	"context"
	"sync"
)

// OffsetStore checkpoints the last acknowledged update ID so a restart
// does not replay updates that were already handled.
type OffsetStore interface {
	GetOffset(ctx context.Context) (int64, error)
	SetOffset(ctx context.Context, offset int64) error
}

// MemoryOffsetStore keeps the offset in-process. Good enough when no
// redis is configured; Telegram also drops acknowledged updates once the
// next getUpdates advances past them.
type MemoryOffsetStore struct {
	mu     sync.Mutex
	offset int64
}

func (m *MemoryOffsetStore) GetOffset(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offset, nil
}

func (m *MemoryOffsetStore) SetOffset(ctx context.Context, offset int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offset = offset
	return nil
}
