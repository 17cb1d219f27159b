package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	Store
	gets   int
	setErr error
}

func (c *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets++
	return c.Store.Get(ctx, key)
}

func (c *countingStore) Set(ctx context.Context, key string, value []byte) error {
	if c.setErr != nil {
		return c.setErr
	}
	return c.Store.Set(ctx, key, value)
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "k", []byte("v1")))
	v, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))

	// returned slice is a copy
	v[0] = 'x'
	v2, _ := m.Get(ctx, "k")
	assert.Equal(t, "v1", string(v2))
	assert.Equal(t, 1, m.Len())
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var out []int
	found, err := GetJSON(ctx, m, "nums", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, out)

	require.NoError(t, SetJSON(ctx, m, "nums", []int{1, 2, 3}))
	found, err = GetJSON(ctx, m, "nums", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int{1, 2, 3}, out)

	require.NoError(t, m.Set(ctx, "broken", []byte("{")))
	_, err = GetJSON(ctx, m, "broken", &out)
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	r := NewRedis(db, "trainr:")
	defer r.Close()

	mock.ExpectGet("trainr:missing").RedisNil()
	_, err := r.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectSet("trainr:k", "hello", 0).SetVal("OK")
	require.NoError(t, r.Set(ctx, "k", []byte("hello")))

	mock.ExpectGet("trainr:k").SetVal("hello")
	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(v))

	mock.ExpectSet("trainr:k", "boom", 0).SetErr(errors.New("connection refused"))
	err = r.Set(ctx, "k", []byte("boom"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedReadThrough(t *testing.T) {
	ctx := context.Background()
	backend := &countingStore{Store: NewMemory()}
	require.NoError(t, backend.Store.Set(ctx, "k", []byte("v")))

	c := NewCached(backend, 1)
	for i := 0; i < 3; i++ {
		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", string(v))
	}
	assert.Equal(t, 1, backend.gets)

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedWriteThrough(t *testing.T) {
	ctx := context.Background()
	backend := &countingStore{Store: NewMemory()}
	c := NewCached(backend, 1)

	require.NoError(t, c.Set(ctx, "k", []byte("v1")))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))
	assert.Equal(t, 0, backend.gets)

	backend.setErr = errors.New("disk full")
	assert.Error(t, c.Set(ctx, "k", []byte("v2")))

	// failed write invalidates the cached copy; the backend still has v1
	v, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v))
	assert.Equal(t, 1, backend.gets)
}

func TestSettings(t *testing.T) {
	m := NewMemory()
	s := NewSettings(m)

	_, err := s.GetSetting("program_start")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetSetting("program_start", "2026-10-17"))
	v, err := s.GetSetting("program_start")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", v)

	raw, err := m.Get(context.Background(), "setting:program_start")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", string(raw))
}
