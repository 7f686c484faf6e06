package recordstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/shadowcast/internal/domain/record"
	apperrors "github.com/yanqian/shadowcast/pkg/errors"
)

// MemoryBackend is the shared in-process table behind MemoryStore handles. Used
// for tests and local development only.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[uuid.UUID]record.Record
}

// NewMemoryBackend constructs an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[uuid.UUID]record.Record)}
}

// Opener hands out a new unconnected handle per call.
func (b *MemoryBackend) Opener() record.Opener {
	return record.WithIDValidation(record.OpenerFunc(func() record.Store {
		return &MemoryStore{backend: b}
	}), validateUUID)
}

// Len reports how many records are stored.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// MemoryStore is a per-request handle on a MemoryBackend. It enforces the same
// connect/close lifecycle as the network backends.
type MemoryStore struct {
	backend   *MemoryBackend
	connected bool
}

// Connect implements record.Store.
func (s *MemoryStore) Connect(context.Context) error {
	s.connected = true
	return nil
}

// Insert implements record.Store.
func (s *MemoryStore) Insert(_ context.Context, rec record.Record) (string, error) {
	if !s.connected {
		return "", errNotConnected
	}
	id := uuid.New()
	rec.ID = id.String()
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.records[id] = rec
	return rec.ID, nil
}

// Get implements record.Store.
func (s *MemoryStore) Get(_ context.Context, id string) (record.Record, error) {
	key, err := parseUUID(id)
	if err != nil {
		return record.Record{}, err
	}
	if !s.connected {
		return record.Record{}, errNotConnected
	}
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	rec, ok := s.backend.records[key]
	if !ok {
		return record.Record{}, apperrors.Wrap(apperrors.CodeNotFound, "record not found", nil)
	}
	return rec, nil
}

// Close implements record.Store.
func (s *MemoryStore) Close(context.Context) error {
	s.connected = false
	return nil
}

var _ record.Store = (*MemoryStore)(nil)
