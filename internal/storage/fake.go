package storage

import (
	"context"
	"fmt"
	"os"
	"sync"

	"clipd/internal/services"
)

// FakeStore is an in-memory Store used by worker and controller tests. It
// records the objects it holds and the calls made against it.
type FakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	DownloadErr error
	UploadErr   error

	Downloads []string
	Uploads   []string
}

// NewFakeStore returns an empty fake object store.
func NewFakeStore() *FakeStore {
	return &FakeStore{objects: make(map[string][]byte)}
}

// Put seeds an object directly.
func (f *FakeStore) Put(objectPath string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectPath] = append([]byte(nil), data...)
}

// Object returns the stored bytes for an object path.
func (f *FakeStore) Object(objectPath string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objectPath]
	return data, ok
}

// Download copies a seeded object to the local path.
func (f *FakeStore) Download(ctx context.Context, objectPath, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.Downloads = append(f.Downloads, objectPath)
	data, ok := f.objects[objectPath]
	downloadErr := f.DownloadErr
	f.mu.Unlock()

	if downloadErr != nil {
		return downloadErr
	}
	if !ok {
		return services.Wrap(services.ErrSourceNotFound, "storage", "download",
			fmt.Sprintf("object %s not found", objectPath), nil)
	}
	return os.WriteFile(localPath, data, 0o644)
}

// Upload reads the local file into the fake's object map.
func (f *FakeStore) Upload(ctx context.Context, localPath, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.Uploads = append(f.Uploads, objectPath)
	uploadErr := f.UploadErr
	f.mu.Unlock()

	if uploadErr != nil {
		return uploadErr
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return services.Wrap(services.ErrUpload, "storage", "upload",
			fmt.Sprintf("read local file %s", localPath), err)
	}
	f.Put(objectPath, data)
	return nil
}

// Exists reports whether the object was seeded or uploaded.
func (f *FakeStore) Exists(ctx context.Context, objectPath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := f.Object(objectPath)
	return ok, nil
}
