package storage

import (
	"context"
	"sync"
	"sync/atomic"

	apperrors "influencer-platform/backend/pkg/errors"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore is an in-process BlobStore for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject

	uploads   atomic.Int64
	downloads atomic.Int64
	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func key(bucket, path string) string {
	return bucket + "/" + path
}

func (s *MemoryStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	s.uploads.Add(1)
	if s.Err != nil {
		return s.Err
	}
	if err := ctx.Err(); err != nil {
		return apperrors.NewBackendUnavailableError("STORAGE_UNAVAILABLE", "storage upload cancelled", err)
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key(bucket, path)] = memoryObject{data: buf, contentType: contentType}
	return nil
}

func (s *MemoryStore) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	s.downloads.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewBackendUnavailableError("STORAGE_UNAVAILABLE", "storage download cancelled", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key(bucket, path)]
	if !ok {
		return nil, apperrors.NewNotFoundError("ASSET_NOT_FOUND", "asset not found in storage")
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return s.Err
}

// ContentType returns the stored content type of an object.
func (s *MemoryStore) ContentType(bucket, path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key(bucket, path)]
	return obj.contentType, ok
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Uploads returns how many uploads were attempted.
func (s *MemoryStore) Uploads() int64 { return s.uploads.Load() }

// Downloads returns how many downloads were attempted.
func (s *MemoryStore) Downloads() int64 { return s.downloads.Load() }
