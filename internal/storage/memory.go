package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
}

type memoryGrant struct {
	key      string
	filename string
	expires  time.Time
}

// MemoryStore keeps objects in process memory. It also serves the download
// URLs it presigns, so it must be mounted at BlobPathPrefix on baseURL.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject
	grants  map[string]memoryGrant
	now     func() time.Time
}

// BlobPathPrefix is the route under which MemoryStore serves downloads
const BlobPathPrefix = "/blobs/"

// NewMemoryStore creates an empty store whose URLs point at baseURL
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]memoryObject),
		grants:  make(map[string]memoryGrant),
		now:     time.Now,
	}
}

// Put implements ObjectStore
func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("read object %s: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	return nil
}

// Delete implements ObjectStore
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	for token, g := range m.grants {
		if g.key == key {
			delete(m.grants, token)
		}
	}
	return nil
}

// PresignGet implements ObjectStore
func (m *MemoryStore) PresignGet(ctx context.Context, key, filename string, ttl time.Duration) (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate download token: %w", err)
	}
	token := hex.EncodeToString(raw)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("object %s does not exist", key)
	}

	now := m.now()
	for t, g := range m.grants {
		if now.After(g.expires) {
			delete(m.grants, t)
		}
	}
	m.grants[token] = memoryGrant{key: key, filename: filename, expires: now.Add(ttl)}

	return m.baseURL + BlobPathPrefix + url.PathEscape(token), nil
}

// Has reports whether key is stored
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored objects
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// ServeHTTP serves GET BlobPathPrefix{token} for unexpired grants
func (m *MemoryStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token := strings.TrimPrefix(r.URL.Path, BlobPathPrefix)

	m.mu.RLock()
	grant, ok := m.grants[token]
	obj, exists := m.objects[grant.key]
	m.mu.RUnlock()

	if !ok || !exists || m.now().After(grant.expires) {
		http.NotFound(w, r)
		return
	}

	if obj.contentType != "" {
		w.Header().Set("Content-Type", obj.contentType)
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": grant.filename}))
	http.ServeContent(w, r, grant.filename, time.Time{}, bytes.NewReader(obj.data))
}
