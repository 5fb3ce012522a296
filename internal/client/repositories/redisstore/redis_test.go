package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failErr != nil {
		return redis.NewStringResult("", f.failErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failErr != nil {
		return redis.NewStatusResult("", f.failErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.failErr != nil {
		return redis.NewIntResult(0, f.failErr)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRepository_RoundTripAndNamespacing(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	r := NewRepository(fake, "alice", time.Hour)

	require.NoError(t, r.Set(ctx, "recentlyViewedJobs", []byte(`[]`)))
	assert.Contains(t, fake.data, "jobmarket:alice:recentlyViewedJobs")
	assert.Equal(t, time.Hour, fake.ttls["jobmarket:alice:recentlyViewedJobs"])

	v, err := r.Get(ctx, "recentlyViewedJobs")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v)

	other := NewRepository(fake, "bob", 0)
	v, err = other.Get(ctx, "recentlyViewedJobs")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "recentlyViewedJobs"))
	v, err = r.Get(ctx, "recentlyViewedJobs")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRepository_ErrorsWrapped(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	fake := newFakeRedis()
	fake.failErr = boom
	r := NewRepository(fake, "alice", 0)

	_, err := r.Get(ctx, "k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, r.Set(ctx, "k", []byte("v")), boom)
	assert.ErrorIs(t, r.Delete(ctx, "k"), boom)
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "http://not-redis")
	assert.ErrorContains(t, err, "redis url")
}
