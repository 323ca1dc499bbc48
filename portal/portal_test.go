package portal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{"success":true,"message":"ok","data":[
 {"receiptNumber":"NAPPS-0001","reference":"PSK-7f3a9c21","memberName":"Aisha Bello",
  "schoolName":"Bright Future Academy","wards":["Lafia East"],"amount":2500000,
  "paidAt":"2024-03-05T10:15:00Z","paymentMethod":"card"},
 {"receiptNumber":"NAPPS-0002","reference":"PSK-00000002","memberName":"Musa Ibrahim",
  "schoolName":"Crescent Model School","wards":[],"amount":1000000,
  "paidAt":"2024-03-06"}]}`

func newPortal(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestSearch(t *testing.T) {
	var gotPath, gotQuery string
	srv, _ := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchBody))
	})

	c, err := NewClient(srv.URL + "/")
	require.NoError(t, err)

	records, err := c.Search(context.Background(), " aisha@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "/api/payments/search", gotPath)
	assert.Equal(t, "aisha@example.com", gotQuery)
	require.Len(t, records, 2)
	assert.Equal(t, "NAPPS-0001", records[0].ReceiptNumber)
	assert.Equal(t, int64(2500000), records[0].Amount)
	assert.Equal(t, []string{"Lafia East"}, records[0].Wards)
}

func TestSearchRejected(t *testing.T) {
	srv, _ := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"query too short","data":null}`))
	})
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "a")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "query too short")
}

func TestSearchNonJSONError(t *testing.T) {
	srv, _ := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "NAPPS-0001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSearchEmptyQuery(t *testing.T) {
	c, err := NewClient("https://portal.example")
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestNewClientBadURL(t *testing.T) {
	_, err := NewClient("portal.example")
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	srv, _ := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchBody))
	})
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	rec, err := c.Find(context.Background(), "psk-00000002")
	require.NoError(t, err)
	assert.Equal(t, "NAPPS-0002", rec.ReceiptNumber)

	_, err = c.Find(context.Background(), "Bright")
	assert.ErrorIs(t, err, ErrAmbiguous)
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  time.Duration
	err  error
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttl = ttl
	return nil
}

func TestSearchCached(t *testing.T) {
	srv, hits := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchBody))
	})
	cache := &memCache{data: map[string][]byte{}}
	c, err := NewClient(srv.URL, WithCache(cache, time.Minute))
	require.NoError(t, err)

	first, err := c.Search(context.Background(), "NAPPS-0001")
	require.NoError(t, err)
	second, err := c.Search(context.Background(), "napps-0001")
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, first, second)
	assert.Equal(t, time.Minute, cache.ttl)
}

func TestSearchCacheFailureFallsThrough(t *testing.T) {
	srv, hits := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchBody))
	})
	cache := &memCache{data: map[string][]byte{}, err: errors.New("cache down")}
	c, err := NewClient(srv.URL, WithCache(cache, time.Minute))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		records, err := c.Search(context.Background(), "NAPPS-0001")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestRedisCacheUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	cache := NewRedisCacheWithClient(client, "")
	t.Cleanup(func() { cache.Close() })

	_, ok, err := cache.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.Error(t, err)

	srv, hits := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchBody))
	})
	c, err := NewClient(srv.URL, WithCache(cache, time.Minute))
	require.NoError(t, err)
	records, err := c.Search(context.Background(), "NAPPS-0001")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCacheKeyCaseInsensitive(t *testing.T) {
	assert.Equal(t, cacheKey("NAPPS-0001"), cacheKey("napps-0001"))
	assert.NotEqual(t, cacheKey("NAPPS-0001"), cacheKey("NAPPS-0002"))
}

func TestFindNoMatch(t *testing.T) {
	srv, _ := newPortal(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	})
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Find(context.Background(), "NAPPS-9999")
	assert.ErrorIs(t, err, ErrNotFound)
}
