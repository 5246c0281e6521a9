package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "influencer-platform/backend/pkg/errors"
	"influencer-platform/backend/pkg/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage mimics the object endpoints of the storage API.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	fail    atomic.Bool
	calls   atomic.Int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStorage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if f.fail.Load() {
		http.Error(w, `{"statusCode":"500","error":"internal","message":"boom"}`, http.StatusInternalServerError)
		return
	}
	if r.Header.Get("Authorization") != "Bearer test-key" || r.Header.Get("apikey") != "test-key" {
		http.Error(w, `{"statusCode":"403","error":"Unauthorized","message":"invalid key"}`, http.StatusForbidden)
		return
	}
	if r.URL.Path == "/storage/v1/bucket" {
		_, _ = w.Write([]byte(`[]`))
		return
	}

	objectPath := strings.TrimPrefix(r.URL.Path, "/storage/v1/object/")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		if _, exists := f.objects[objectPath]; exists && r.Header.Get("x-upsert") != "true" {
			http.Error(w, `{"statusCode":"409","error":"Duplicate","message":"exists"}`, http.StatusConflict)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.objects[objectPath] = body
		f.types[objectPath] = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"Key":"` + objectPath + `"}`))
	case http.MethodGet:
		body, ok := f.objects[objectPath]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"statusCode":"404","error":"not_found","message":"Object not found"}`))
			return
		}
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStore(t *testing.T, handler http.Handler, breaker resilience.Config) *SupabaseStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewSupabaseStore(SupabaseConfig{
		BaseURL:    srv.URL + "/",
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		MaxRetries: 0,
		Breaker:    breaker,
	}, nil)
	require.NoError(t, err)
	return store
}

func TestSupabaseUploadDownloadOverwrite(t *testing.T) {
	fake := newFakeStorage()
	store := newTestStore(t, fake, resilience.DefaultConfig("storage"))
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "influencer-assets", "original_avatars/inf-1/avatar.png", []byte("abc"), ""))
	got, err := store.Download(ctx, "influencer-assets", "original_avatars/inf-1/avatar.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	require.NoError(t, store.Upload(ctx, "influencer-assets", "original_avatars/inf-1/avatar.png", []byte("xyz"), ""))
	got, err = store.Download(ctx, "influencer-assets", "original_avatars/inf-1/avatar.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("xyz"), got)

	assert.Equal(t, "text/plain; charset=utf-8", fake.types["influencer-assets/original_avatars/inf-1/avatar.png"])
}

func TestSupabaseEscapesObjectPath(t *testing.T) {
	fake := newFakeStorage()
	store := newTestStore(t, fake, resilience.DefaultConfig("storage"))

	require.NoError(t, store.Upload(context.Background(), "influencer-assets", "original_avatars/inf-1/my photo.png", []byte{0x89, 'P', 'N', 'G'}, "image/png"))

	_, ok := fake.objects["influencer-assets/original_avatars/inf-1/my photo.png"]
	assert.True(t, ok)
}

func TestSupabaseDownloadMissingIsNotFound(t *testing.T) {
	store := newTestStore(t, newFakeStorage(), resilience.DefaultConfig("storage"))

	_, err := store.Download(context.Background(), "influencer-assets", "original_avatars/none/a.png")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, resilience.StateClosed, store.Breaker().State())
}

func TestSupabaseRejectedKey(t *testing.T) {
	fake := newFakeStorage()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	store, err := NewSupabaseStore(SupabaseConfig{BaseURL: srv.URL, APIKey: "wrong"}, nil)
	require.NoError(t, err)

	err = store.Ping(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
	assert.Equal(t, codeStorageRejected, apperrors.GetErrorCode(err))
}

func TestSupabaseCircuitOpensOnServerErrors(t *testing.T) {
	fake := newFakeStorage()
	fake.fail.Store(true)
	store := newTestStore(t, fake, resilience.Config{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := store.Upload(ctx, "influencer-assets", "a/b.png", []byte("x"), "")
		assert.Equal(t, codeStorageUnavailable, apperrors.GetErrorCode(err))
	}
	callsBefore := fake.calls.Load()

	err := store.Upload(ctx, "influencer-assets", "a/b.png", []byte("x"), "")

	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
	assert.Equal(t, codeCircuitOpen, apperrors.GetErrorCode(err))
	assert.Equal(t, callsBefore, fake.calls.Load())
}

func TestSupabasePing(t *testing.T) {
	store := newTestStore(t, newFakeStorage(), resilience.DefaultConfig("storage"))
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewSupabaseStoreRequiresURL(t *testing.T) {
	_, err := NewSupabaseStore(SupabaseConfig{}, nil)
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Download(ctx, "b", "p")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, store.Upload(ctx, "b", "p", []byte("one"), "text/plain"))
	require.NoError(t, store.Upload(ctx, "b", "p", []byte("two"), "text/plain"))
	got, err := store.Download(ctx, "b", "p")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, int64(2), store.Uploads())
	assert.Equal(t, int64(2), store.Downloads())
}
