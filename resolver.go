package quark

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/quarkpay/quark-go/gateway"
	"github.com/quarkpay/quark-go/retry"
	"github.com/quarkpay/quark-go/types"
)

const (
	defaultResolveCacheSize = 500
	defaultResolveCacheTTL  = 5 * time.Minute
)

// errNoAccountsYet drives the zero-result retry inside Resolve; it never
// escapes the resolver.
var errNoAccountsYet = fmt.Errorf("no token accounts yet")

// accountResolver maps an owner identity to its resolved token accounts
// through a bounded, time-expiring cache. Entries are only invalidated by
// TTL or capacity eviction; creating a new token account does not evict
// the owner's entry, so callers may observe a stale set for up to one
// TTL.
type accountResolver struct {
	gw    gateway.Client
	cache *expirable.LRU[string, []types.PublicKey]

	// zero-result retry budget; the client aligns these with its
	// RetryConfig.
	attempts uint
	delay    time.Duration
	maxDelay time.Duration
}

func newAccountResolver(gw gateway.Client, size int, ttl time.Duration) *accountResolver {
	return &accountResolver{
		gw:       gw,
		cache:    expirable.NewLRU[string, []types.PublicKey](size, nil, ttl),
		attempts: DefaultRetryConfig.MaxAttempts,
		delay:    DefaultRetryConfig.MinDelay,
		maxDelay: DefaultRetryConfig.MaxDelay,
	}
}

// Resolve returns the owner's token accounts in gateway order. A cache
// hit answers without a network call. On a miss, an empty resolver
// response is re-attempted under a fixed budget and, if still empty,
// returned as an empty list rather than an error: absence of token
// accounts is a valid outcome.
func (r *accountResolver) Resolve(ctx context.Context, owner types.PublicKey) ([]types.PublicKey, error) {
	key := owner.Base58()
	if accounts, ok := r.cache.Get(key); ok {
		return accounts, nil
	}

	var accounts []types.PublicKey
	err := retry.Retry(
		func() error {
			var err error
			accounts, err = r.gw.ResolveTokenAccounts(ctx, owner)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				return errNoAccountsYet
			}
			return nil
		},
		retry.Limit(r.attempts),
		retry.RetriableErrors(errNoAccountsYet),
		retry.Backoff(retry.BinaryExponential(r.delay), r.maxDelay),
	)
	if err != nil {
		if err == errNoAccountsYet {
			return []types.PublicKey{}, nil
		}
		return nil, fmt.Errorf("failed to resolve token accounts: %w", err)
	}

	// A fresh resolution always overwrites; there are no merge semantics.
	r.cache.Add(key, accounts)
	return accounts, nil
}
