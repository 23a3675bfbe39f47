package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingChecker struct {
	calls  int
	member bool
	err    error
}

func (c *countingChecker) IsChatMember(ctx context.Context, chatID, userID int64) (bool, error) {
	c.calls++
	return c.member, c.err
}

func newLookupCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_membership_lookups_total"}, []string{"result"})
}

func TestMembershipCache_CachesGrants(t *testing.T) {
	next := &countingChecker{member: true}
	lookups := newLookupCounter()
	cache := NewMembershipCache(next, 10, time.Minute, lookups)

	for i := 0; i < 3; i++ {
		member, err := cache.IsChatMember(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.True(t, member)
	}

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, float64(2), testutil.ToFloat64(lookups.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(lookups.WithLabelValues("miss")))
}

func TestMembershipCache_DoesNotCacheDenials(t *testing.T) {
	next := &countingChecker{member: false}
	cache := NewMembershipCache(next, 10, time.Minute, nil)

	for i := 0; i < 3; i++ {
		member, err := cache.IsChatMember(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.False(t, member)
	}
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, 0, cache.Len())

	next.member = true
	member, err := cache.IsChatMember(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestMembershipCache_DoesNotCacheErrors(t *testing.T) {
	next := &countingChecker{member: true, err: errors.New("db down")}
	cache := NewMembershipCache(next, 10, time.Minute, nil)

	member, err := cache.IsChatMember(context.Background(), 1, 2)
	assert.Error(t, err)
	assert.False(t, member)
	assert.Equal(t, 0, cache.Len())
}

func TestMembershipCache_KeysAreDistinct(t *testing.T) {
	next := &countingChecker{member: true}
	cache := NewMembershipCache(next, 10, time.Minute, nil)

	_, _ = cache.IsChatMember(context.Background(), 1, 2)
	_, _ = cache.IsChatMember(context.Background(), 2, 1)
	assert.Equal(t, 2, next.calls)
}

func TestMembershipCache_Expires(t *testing.T) {
	next := &countingChecker{member: true}
	cache := NewMembershipCache(next, 10, 20*time.Millisecond, nil)

	_, _ = cache.IsChatMember(context.Background(), 1, 2)
	time.Sleep(60 * time.Millisecond)
	_, _ = cache.IsChatMember(context.Background(), 1, 2)
	assert.Equal(t, 2, next.calls)
}
