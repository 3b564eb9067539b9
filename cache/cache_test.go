package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "lending:schedule:50000:15", Key("schedule", "50000", "15"))
}

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	val, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))

	now = now.Add(59 * time.Second)
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_SetSweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	// GIVEN: Many entries that are never read again
	for i := 0; i < 1000; i++ {
		require.NoError(t, m.Set(ctx, Key("schedule", strconv.Itoa(i)), "v", time.Minute))
	}
	require.NoError(t, m.Set(ctx, "forever", "v", 0))
	assert.Equal(t, 1001, m.Len())

	// WHEN: They expire and another entry is written
	now = now.Add(time.Hour)
	require.NoError(t, m.Set(ctx, "fresh", "v", time.Minute))

	// THEN: Only live entries remain
	assert.Equal(t, 2, m.Len())
	_, ok, _ := m.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestRedis_Get(t *testing.T) {
	t.Run("Hit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := NewRedisFromClient(db)

		mock.ExpectGet("k").SetVal("v")

		val, ok, err := c.Get(context.Background(), "k")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := NewRedisFromClient(db)

		mock.ExpectGet("k").RedisNil()

		_, ok, err := c.Get(context.Background(), "k")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := NewRedisFromClient(db)

		mock.ExpectGet("k").SetErr(errors.New("connection refused"))

		_, ok, err := c.Get(context.Background(), "k")
		assert.Error(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedis_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisFromClient(db)

	mock.ExpectSet("k", "v", 5*time.Minute).SetVal("OK")

	assert.NoError(t, c.Set(context.Background(), "k", "v", 5*time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

var _ Cache = (*Redis)(nil)
var _ Cache = (*Memory)(nil)
