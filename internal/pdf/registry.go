package pdf

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"
)

var ErrNotFound = errors.New("pdf: file not found")

// File describes a generated PDF waiting to be downloaded.
type File struct {
	Key       string    `json:"key"`
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	ProjectID uint      `json:"project_id"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Registry interface {
	Put(ctx context.Context, f File) error
	Get(ctx context.Context, key string) (File, error)
	Delete(ctx context.Context, key string) error
}

// MemoryRegistry keeps files in process memory and forgets them after ttl.
// Expired files are removed from disk on the next Put.
type MemoryRegistry struct {
	mu    sync.Mutex
	ttl   time.Duration
	files map[string]File
	now   func() time.Time
}

func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	return &MemoryRegistry{ttl: ttl, files: make(map[string]File), now: time.Now}
}

func (r *MemoryRegistry) Put(_ context.Context, f File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep()
	r.files[f.Key] = f
	return nil
}

func (r *MemoryRegistry) Get(_ context.Context, key string) (File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[key]
	if !ok || r.expired(f) {
		return File{}, ErrNotFound
	}
	return f, nil
}

func (r *MemoryRegistry) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.files[key]; ok {
		delete(r.files, key)
		_ = os.Remove(f.Path)
	}
	return nil
}

func (r *MemoryRegistry) expired(f File) bool {
	return r.ttl > 0 && r.now().Sub(f.CreatedAt) > r.ttl
}

func (r *MemoryRegistry) sweep() {
	for k, f := range r.files {
		if r.expired(f) {
			delete(r.files, k)
			_ = os.Remove(f.Path)
		}
	}
}
