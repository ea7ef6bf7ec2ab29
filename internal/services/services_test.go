package services

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/mockinterview/internal/generator"
	pgrepo "github.com/yoockh/mockinterview/internal/repositories/postgres"
	"github.com/yoockh/mockinterview/internal/testutil"
)

var defaultIdentity = Identity{Email: "test@example.com", Name: "Test User"}

// memCache is a map-backed cache.Cache that counts hits.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int

	// beforeSet, when set, runs ahead of every SetJSON.
	beforeSet func(key string)
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	m.hits++
	return true, json.Unmarshal(b, dst)
}

func (m *memCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	if m.beforeSet != nil {
		m.beforeSet(key)
	}
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if b, ok := m.data[key]; ok {
		if err := json.Unmarshal(b, &n); err != nil {
			return 0, err
		}
	}
	n++
	m.data[key], _ = json.Marshal(n)
	return n, nil
}

// historyCached reports whether the current history generation has a stored list.
func (m *memCache) historyCached() bool {
	m.mu.Lock()
	var gen int64
	if b, ok := m.data[historyGenKey]; ok {
		_ = json.Unmarshal(b, &gen)
	}
	m.mu.Unlock()
	return m.has(historyCacheKey(gen))
}

func (m *memCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	store *pgrepo.Store
	users UserService
	svc   InterviewService
	cache *memCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := pgrepo.NewStore(testutil.OpenDB(t))
	users := NewUserService(store.Users, defaultIdentity, nil)
	c := newMemCache()
	return &fixture{
		store: store,
		users: users,
		cache: c,
		svc:   NewInterviewService(store, users, generator.NewFallback(), c, quietLogger()),
	}
}
