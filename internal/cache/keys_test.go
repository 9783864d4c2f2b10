package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type totals struct {
	Users int64 `json:"users"`
	Posts int64 `json:"posts"`
}

func withTestRedis(t *testing.T) *miniredis.Miniredis {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		SetClient(nil)
		mr.Close()
	})
	return mr
}

func TestAsideLoadsAndCaches(t *testing.T) {
	withTestRedis(t)
	ctx := context.Background()

	loads := 0
	load := func(dest *totals) func() error {
		return func() error {
			loads++
			dest.Users = 3
			dest.Posts = 7
			return nil
		}
	}

	var first totals
	err := Aside(ctx, StatsKey, &first, StatsTTL, load(&first))
	assert.NoError(t, err)
	assert.Equal(t, totals{Users: 3, Posts: 7}, first)
	assert.Equal(t, 1, loads)

	// Second read is served from the cache.
	var second totals
	err = Aside(ctx, StatsKey, &second, StatsTTL, load(&second))
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)
}

func TestAsidePropagatesLoadError(t *testing.T) {
	withTestRedis(t)

	var dest totals
	sentinel := errors.New("db down")
	err := Aside(context.Background(), StatsKey, &dest, StatsTTL, func() error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestAsideWithoutClient(t *testing.T) {
	SetClient(nil)

	var dest totals
	err := Aside(context.Background(), StatsKey, &dest, StatsTTL, func() error {
		dest.Users = 1
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), dest.Users)
}

func TestInvalidate(t *testing.T) {
	mr := withTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(UserKey(9), "x"))
	require.NoError(t, mr.Set(ProfileKey(9), "y"))
	InvalidateUser(ctx, 9)
	assert.False(t, mr.Exists(UserKey(9)))
	assert.False(t, mr.Exists(ProfileKey(9)))

	require.NoError(t, mr.Set(StatsKey, "z"))
	InvalidateStats(ctx)
	assert.False(t, mr.Exists(StatsKey))
}
