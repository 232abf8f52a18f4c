//go:build integration

package cache

import (
	"context"
	"testing"

	"github.com/docvault/docvault/internal/testutil"
)

// ============================================================================
// Rate Limiter Integration Tests
// ============================================================================

func TestIntegrationCheckAccountRateLimit_AllowsWithinBurst(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	accountID := testutil.UniqueID("acct")

	for i := 0; i < 5; i++ {
		result, err := c.CheckAccountRateLimit(ctx, accountID, 60, 5)
		if err != nil {
			t.Fatalf("CheckAccountRateLimit (%d) failed: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("Request %d should be allowed within burst", i)
		}
	}
}

func TestIntegrationCheckAccountRateLimit_BlocksPastBurst(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	accountID := testutil.UniqueID("acct")

	// Drain the bucket: 1 req/min with burst 2 leaves no room for a third.
	for i := 0; i < 2; i++ {
		result, err := c.CheckAccountRateLimit(ctx, accountID, 1, 2)
		if err != nil {
			t.Fatalf("CheckAccountRateLimit (%d) failed: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("Request %d should be allowed within burst", i)
		}
	}

	result, err := c.CheckAccountRateLimit(ctx, accountID, 1, 2)
	if err != nil {
		t.Fatalf("CheckAccountRateLimit (blocked) failed: %v", err)
	}
	if result.Allowed {
		t.Error("Request past burst should be blocked")
	}
	if result.RetryAfter <= 0 {
		t.Errorf("RetryAfter should be positive when blocked, got %v", result.RetryAfter)
	}
}

func TestIntegrationCheckAccountRateLimit_ZeroRateIsUnlimited(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	accountID := testutil.UniqueID("acct")

	for i := 0; i < 10; i++ {
		result, err := c.CheckAccountRateLimit(ctx, accountID, 0, 1)
		if err != nil {
			t.Fatalf("CheckAccountRateLimit (%d) failed: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("Request %d should always be allowed at rate 0", i)
		}
	}
}

func TestIntegrationCheckAccountRateLimit_IsolatedPerAccount(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	first := testutil.UniqueID("acct")
	second := testutil.UniqueID("acct")

	// Exhaust the first account's bucket.
	for i := 0; i < 3; i++ {
		if _, err := c.CheckAccountRateLimit(ctx, first, 1, 2); err != nil {
			t.Fatalf("CheckAccountRateLimit (first, %d) failed: %v", i, err)
		}
	}

	result, err := c.CheckAccountRateLimit(ctx, second, 1, 2)
	if err != nil {
		t.Fatalf("CheckAccountRateLimit (second) failed: %v", err)
	}
	if !result.Allowed {
		t.Error("Second account should not be affected by the first account's usage")
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}
