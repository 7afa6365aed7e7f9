package testutil

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/utils"
)

// MemStore is an in-memory object store.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	Uploads int
	// FailUpload, when set, is returned by every Upload.
	FailUpload error
}

func NewMemStore() *MemStore {
	return &MemStore{objects: map[string][]byte{}}
}

func (m *MemStore) Upload(_ context.Context, key string, body io.Reader, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploads++
	if m.FailUpload != nil {
		return "", m.FailUpload
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[key] = b
	return m.PublicURL(key), nil
}

func (m *MemStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemStore) List(_ context.Context, prefix string) ([]utils.StoredObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []utils.StoredObject
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, utils.StoredObject{Key: k, URL: m.PublicURL(k), Size: int64(len(v)), LastModified: time.Now()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (m *MemStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
