package quark

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarkpay/quark-go/types"
)

func testResolver(gw *fakeGateway, ttl time.Duration) *accountResolver {
	r := newAccountResolver(gw, 10, ttl)
	r.attempts = 3
	r.delay = time.Millisecond
	r.maxDelay = time.Millisecond
	return r
}

func TestResolver_CachesResults(t *testing.T) {
	gw := newFakeGateway(t)
	r := testResolver(gw, time.Minute)
	ctx := context.Background()

	owner, err := types.NewPrivateKey()
	require.NoError(t, err)
	tokenAccount, err := types.NewPrivateKey()
	require.NoError(t, err)
	gw.resolveAccounts[owner.Public().Base58()] = []types.PublicKey{tokenAccount.Public()}

	first, err := r.Resolve(ctx, owner.Public())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, first[0].Equals(tokenAccount.Public()))
	assert.Equal(t, 1, gw.resolveCalls)

	// A second call within the TTL is answered from cache.
	second, err := r.Resolve(ctx, owner.Public())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gw.resolveCalls)
}

func TestResolver_TTLExpiry(t *testing.T) {
	gw := newFakeGateway(t)
	r := testResolver(gw, 10*time.Millisecond)
	ctx := context.Background()

	owner, err := types.NewPrivateKey()
	require.NoError(t, err)
	tokenAccount, err := types.NewPrivateKey()
	require.NoError(t, err)
	gw.resolveAccounts[owner.Public().Base58()] = []types.PublicKey{tokenAccount.Public()}

	_, err = r.Resolve(ctx, owner.Public())
	require.NoError(t, err)
	assert.Equal(t, 1, gw.resolveCalls)

	time.Sleep(30 * time.Millisecond)

	_, err = r.Resolve(ctx, owner.Public())
	require.NoError(t, err)
	assert.Equal(t, 2, gw.resolveCalls)
}

func TestResolver_ZeroAccountsIsNotAnError(t *testing.T) {
	gw := newFakeGateway(t)
	r := testResolver(gw, time.Minute)

	owner, err := types.NewPrivateKey()
	require.NoError(t, err)

	// The gateway keeps answering with no accounts; the budget is spent
	// and the empty result is returned as a valid outcome.
	accounts, err := r.Resolve(context.Background(), owner.Public())
	require.NoError(t, err)
	assert.Empty(t, accounts)
	assert.Equal(t, 3, gw.resolveCalls)
}

func TestResolver_EmptyResultNotCached(t *testing.T) {
	gw := newFakeGateway(t)
	r := testResolver(gw, time.Minute)
	ctx := context.Background()

	owner, err := types.NewPrivateKey()
	require.NoError(t, err)

	_, err = r.Resolve(ctx, owner.Public())
	require.NoError(t, err)
	calls := gw.resolveCalls

	// Once accounts exist a later call sees them: the empty answer did
	// not poison the cache.
	tokenAccount, err := types.NewPrivateKey()
	require.NoError(t, err)
	gw.resolveAccounts[owner.Public().Base58()] = []types.PublicKey{tokenAccount.Public()}

	accounts, err := r.Resolve(ctx, owner.Public())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Greater(t, gw.resolveCalls, calls)
}
