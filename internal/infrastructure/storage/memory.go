package storage

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/webdevsha/permitak/internal/domain/payment"
)

var _ payment.ReceiptStorage = (*MemoryReceiptStorage)(nil)

// MemoryReceiptStorage keeps uploads in memory. It backs local development
// when no storage endpoint is configured.
type MemoryReceiptStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

// Object is a stored upload
type Object struct {
	Data        []byte
	ContentType string
}

// NewMemoryReceiptStorage creates an empty store whose public URLs start with baseURL
func NewMemoryReceiptStorage(baseURL string) *MemoryReceiptStorage {
	if baseURL == "" {
		baseURL = "http://localhost/storage/receipts"
	}
	return &MemoryReceiptStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

// Upload stores a copy of data under key
func (m *MemoryReceiptStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[key] = Object{Data: buf, ContentType: contentType}
	m.mu.Unlock()
	return nil
}

// PublicURL returns the URL under which key would be served
func (m *MemoryReceiptStorage) PublicURL(key string) string {
	return m.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Get returns the object stored under key
func (m *MemoryReceiptStorage) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}
