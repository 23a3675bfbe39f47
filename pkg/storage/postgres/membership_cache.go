package postgres

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultMembershipCacheSize = 10000
	DefaultMembershipCacheTTL  = 30 * time.Second
)

// MembershipChecker answers chat membership questions.
type MembershipChecker interface {
	IsChatMember(ctx context.Context, chatID, userID int64) (bool, error)
}

type membershipKey struct {
	chatID int64
	userID int64
}

// MembershipCache caches positive membership answers for a TTL.
// Negative answers and errors are never cached, so a removed grant can linger
// for at most one TTL and a new grant is visible immediately.
type MembershipCache struct {
	next    MembershipChecker
	cache   *expirable.LRU[membershipKey, struct{}]
	lookups *prometheus.CounterVec
}

// NewMembershipCache wraps next. lookups may be nil; it is labelled result=hit|miss.
func NewMembershipCache(next MembershipChecker, size int, ttl time.Duration, lookups *prometheus.CounterVec) *MembershipCache {
	if size <= 0 {
		size = DefaultMembershipCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultMembershipCacheTTL
	}
	return &MembershipCache{
		next:    next,
		cache:   expirable.NewLRU[membershipKey, struct{}](size, nil, ttl),
		lookups: lookups,
	}
}

// IsChatMember implements MembershipChecker.
func (c *MembershipCache) IsChatMember(ctx context.Context, chatID, userID int64) (bool, error) {
	key := membershipKey{chatID: chatID, userID: userID}
	if _, ok := c.cache.Get(key); ok {
		c.count("hit")
		return true, nil
	}
	c.count("miss")

	member, err := c.next.IsChatMember(ctx, chatID, userID)
	if err != nil {
		return false, err
	}
	if member {
		c.cache.Add(key, struct{}{})
	}
	return member, nil
}

// Len returns the number of cached grants.
func (c *MembershipCache) Len() int {
	return c.cache.Len()
}

func (c *MembershipCache) count(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}
