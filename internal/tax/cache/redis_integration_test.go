//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"taxcalc/internal/tax/cache"
	"taxcalc/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *cache.Redis
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = cache.NewRedis(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()

	_, err := s.store.Get(ctx, "/tax/pit/calculate-{}")
	s.ErrorIs(err, cache.ErrNotFound)

	s.Require().NoError(s.store.Set(ctx, "/tax/pit/calculate-{}", []byte(`{"total_pit_due":67400}`), 0))
	got, err := s.store.Get(ctx, "/tax/pit/calculate-{}")
	s.Require().NoError(err)
	s.JSONEq(`{"total_pit_due":67400}`, string(got))
}

func (s *RedisCacheSuite) TestNativeExpiry() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "k", []byte("v"), 200*time.Millisecond))

	s.Eventually(func() bool {
		_, err := s.store.Get(ctx, "k")
		return err == cache.ErrNotFound
	}, 3*time.Second, 50*time.Millisecond)
}

func (s *RedisCacheSuite) TestDeleteAndClear() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "a", []byte("1"), 0))
	s.Require().NoError(s.store.Set(ctx, "b", []byte("2"), 0))
	s.Require().NoError(s.redis.Client.Set(ctx, "unrelated", "x", 0).Err())

	s.Require().NoError(s.store.Delete(ctx, "a"))
	_, err := s.store.Get(ctx, "a")
	s.ErrorIs(err, cache.ErrNotFound)

	s.Require().NoError(s.store.Clear(ctx))
	_, err = s.store.Get(ctx, "b")
	s.ErrorIs(err, cache.ErrNotFound)

	val, err := s.redis.Client.Get(ctx, "unrelated").Result()
	s.Require().NoError(err)
	s.Equal("x", val)
}
