package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
	"unsafe"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)
	s := NewBadgerStoreFromDB(db, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func backends(t *testing.T) map[string]DocumentStore {
	stores := map[string]DocumentStore{
		"memory": NewMemoryStore(),
		"badger": newTestBadgerStore(t),
	}
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		m, err := NewMongoStore(ctx, uri, "storefront_test_"+uuid.NewString()[:8], zaptest.NewLogger(t))
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = m.db.Drop(context.Background())
			_ = m.Close()
		})
		stores["mongo"] = m
	}
	return stores
}

func TestDocumentStore_CRUD(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "things", "a")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, "things", "a", []byte(`{"n":1}`)))
			doc, err := s.Get(ctx, "things", "a")
			require.NoError(t, err)
			assert.JSONEq(t, `{"n":1}`, stripID(t, doc))

			require.NoError(t, s.Put(ctx, "things", "a", []byte(`{"n":2}`)))
			doc, err = s.Get(ctx, "things", "a")
			require.NoError(t, err)
			assert.JSONEq(t, `{"n":2}`, stripID(t, doc))

			require.NoError(t, s.Delete(ctx, "things", "a"))
			assert.ErrorIs(t, s.Delete(ctx, "things", "a"), ErrNotFound)
			_, err = s.Get(ctx, "things", "a")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDocumentStore_KeysOutliveCallerBuffers(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			buf := []byte("prod-aaaa")
			id := unsafe.String(&buf[0], len(buf))
			require.NoError(t, s.Put(ctx, "things", id, []byte(`{"n":1}`)))
			require.NoError(t, s.Update(ctx, "things", id, func([]byte) ([]byte, error) {
				return []byte(`{"n":2}`), nil
			}))

			// The buffer is reused by the next request.
			copy(buf, "zzzz-zzzz")

			doc, err := s.Get(ctx, "things", "prod-aaaa")
			require.NoError(t, err)
			assert.JSONEq(t, `{"n":2}`, stripID(t, doc))
			_, err = s.Get(ctx, "things", "zzzz-zzzz")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDocumentStore_ScanIsScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "left", "b", []byte(`{"v":"b"}`)))
			require.NoError(t, s.Put(ctx, "left", "a", []byte(`{"v":"a"}`)))
			require.NoError(t, s.Put(ctx, "leftover", "c", []byte(`{"v":"c"}`)))

			var ids []string
			err := s.Scan(ctx, "left", func(id string, _ []byte) error {
				ids = append(ids, id)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, ids)
		})
	}
}

func TestDocumentStore_Update(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Update(ctx, "counters", "x", func(current []byte) ([]byte, error) {
				assert.Nil(t, current)
				return []byte(`{"n":1}`), nil
			})
			require.NoError(t, err)

			err = s.Update(ctx, "counters", "x", func(current []byte) ([]byte, error) {
				assert.JSONEq(t, `{"n":1}`, stripID(t, current))
				return []byte(`{"n":2}`), nil
			})
			require.NoError(t, err)

			boom := errors.New("boom")
			err = s.Update(ctx, "counters", "x", func([]byte) ([]byte, error) {
				return nil, boom
			})
			assert.ErrorIs(t, err, boom)

			doc, err := s.Get(ctx, "counters", "x")
			require.NoError(t, err)
			assert.JSONEq(t, `{"n":2}`, stripID(t, doc))
		})
	}
}

func TestDocumentStore_Maintain(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, s.Maintain(context.Background()))
		})
	}
}

type counter struct {
	ID string `json:"id"`
	N  int    `json:"n"`
}

func TestCollection_TypedAccess(t *testing.T) {
	ctx := context.Background()
	col := NewCollection[counter](NewMemoryStore(), "counters")

	out, err := col.Update(ctx, "a", func(c *counter, exists bool) error {
		assert.False(t, exists)
		c.ID = "a"
		c.N++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.N)

	out, err = col.Update(ctx, "a", func(c *counter, exists bool) error {
		assert.True(t, exists)
		c.N++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.N)

	require.NoError(t, col.Put(ctx, "b", &counter{ID: "b", N: 10}))
	all, err := col.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []counter{{ID: "a", N: 2}, {ID: "b", N: 10}}, all)

	big, err := col.List(ctx, func(c *counter) bool { return c.N > 5 })
	require.NoError(t, err)
	assert.Equal(t, []counter{{ID: "b", N: 10}}, big)
}
