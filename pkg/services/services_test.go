package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skydrive/skydrive/internal/cache"
	"github.com/skydrive/skydrive/pkg/models"
)

const (
	testUserA = "11111111-1111-1111-1111-111111111111"
	testUserB = "22222222-2222-2222-2222-222222222222"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "skydrive.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.File{}, &models.Folder{}, &models.FileShare{}))
	return db
}

func newTestCache() cache.Cacher {
	return cache.NewMemoryCache(1024 * 1024)
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// fakeBlob is an in-memory blob.Store with per-call failure injection.
type fakeBlob struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removed   []string
	putErr    error
	removeErr error
	signErr   error
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{objects: make(map[string][]byte)}
}

func (f *fakeBlob) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(body); err != nil {
		return err
	}
	f.objects[key] = buf.Bytes()
	return nil
}

func (f *fakeBlob) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeBlob) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signErr != nil {
		return "", f.signErr
	}
	return fmt.Sprintf("https://blobs.test/%s?signed=1", key), nil
}

func (f *fakeBlob) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeBlob) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
