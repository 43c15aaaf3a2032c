//go:build integration

package window_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/teddybearwork/pickme/internal/ratelimit/store/window"
	id "github.com/teddybearwork/pickme/pkg/domain"
	"github.com/teddybearwork/pickme/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *window.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = window.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestIncrementReturnsRunningCount() {
	ctx := context.Background()
	officerID := id.NewOfficerID()
	bucket := time.Now().UTC().Truncate(time.Hour)

	for want := 1; want <= 3; want++ {
		got, err := s.store.Increment(ctx, officerID, bucket)
		s.Require().NoError(err)
		s.Equal(want, got)
	}

	count, err := s.store.Count(ctx, officerID, bucket)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *RedisStoreSuite) TestCountMissingBucketIsZero() {
	count, err := s.store.Count(context.Background(), id.NewOfficerID(), time.Now().UTC().Truncate(time.Hour))
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *RedisStoreSuite) TestDecrementRollsBackAnIncrement() {
	ctx := context.Background()
	officerID := id.NewOfficerID()
	bucket := time.Now().UTC().Truncate(time.Hour)

	_, err := s.store.Increment(ctx, officerID, bucket)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Decrement(ctx, officerID, bucket))

	count, err := s.store.Count(ctx, officerID, bucket)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *RedisStoreSuite) TestResetClearsBucket() {
	ctx := context.Background()
	officerID := id.NewOfficerID()
	bucket := time.Now().UTC().Truncate(time.Hour)

	_, err := s.store.Increment(ctx, officerID, bucket)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, officerID, bucket))

	count, err := s.store.Count(ctx, officerID, bucket)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *RedisStoreSuite) TestCountersExpireOnTheirOwn() {
	ctx := context.Background()
	officerID := id.NewOfficerID()
	bucket := time.Now().UTC().Truncate(time.Hour)

	_, err := s.store.Increment(ctx, officerID, bucket)
	s.Require().NoError(err)

	keys, err := s.redis.Client.Keys(ctx, "rl:officer:*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)

	ttl, err := s.redis.Client.TTL(ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Hour)
}
