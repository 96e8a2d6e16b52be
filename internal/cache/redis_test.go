package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreIncrementSetsWindowOnFirstHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)
	ctx := context.Background()

	mock.ExpectIncr("lynkskill:ratelimit:user-1").SetVal(1)
	mock.ExpectPExpire("lynkskill:ratelimit:user-1", time.Minute).SetVal(true)
	mock.ExpectPTTL("lynkskill:ratelimit:user-1").SetVal(time.Minute)

	count, ttl, err := store.IncrementWithTTL(ctx, "ratelimit:user-1", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Equal(t, time.Minute, ttl)

	mock.ExpectIncr("lynkskill:ratelimit:user-1").SetVal(2)
	mock.ExpectPTTL("lynkskill:ratelimit:user-1").SetVal(30 * time.Second)

	count, ttl, err = store.IncrementWithTTL(ctx, "ratelimit:user-1", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.Equal(t, 30*time.Second, ttl)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreGetSetDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)
	ctx := context.Background()

	mock.ExpectGet("lynkskill:permissions:user:u1").RedisNil()
	_, ok, err := store.Get(ctx, "permissions:user:u1")
	require.NoError(t, err)
	require.False(t, ok)

	payload := []byte(`{"member_id":"m1"}`)
	mock.ExpectSet("lynkskill:permissions:user:u1", payload, 5*time.Minute).SetVal("OK")
	require.NoError(t, store.Set(ctx, "permissions:user:u1", payload, 5*time.Minute))

	mock.ExpectGet("lynkskill:permissions:user:u1").SetVal(string(payload))
	value, ok, err := store.Get(ctx, "permissions:user:u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload, value)

	mock.ExpectDel("lynkskill:permissions:user:u1", "lynkskill:permissions:user:u2").SetVal(1)
	require.NoError(t, store.Delete(ctx, "permissions:user:u1", "permissions:user:u2"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreSurfacesErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)

	mock.ExpectGet("lynkskill:k").SetErr(errors.New("connection refused"))
	_, _, err := store.Get(context.Background(), "k")
	require.ErrorContains(t, err, "connection refused")
}

func TestPrefixedKeys(t *testing.T) {
	require.Equal(t, "lynkskill:a:b", prefixed(" a::b "))
	require.Equal(t, "lynkskill:a", prefixed("lynkskill:a"))
	require.Equal(t, "lynkskill:a", prefixed(":a"))
}

func TestNewRedisClientRequiresAddress(t *testing.T) {
	_, err := NewRedisClient(context.Background(), RedisConfig{})
	require.Error(t, err)
}
