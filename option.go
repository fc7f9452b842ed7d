package quark

import (
	"time"

	"github.com/quarkpay/quark-go/logger"
	"github.com/quarkpay/quark-go/metrics"
	"github.com/quarkpay/quark-go/types"
)

// RetryConfig bounds the engine's resubmission behavior. It is a value
// object: every client owns its own copy.
type RetryConfig struct {
	// MaxAttempts caps the generic transport retry budget.
	MaxAttempts uint
	// MinDelay and MaxDelay bound the backoff between attempts.
	MinDelay time.Duration
	MaxDelay time.Duration
	// MaxNonceRefreshes caps how many times a bad-nonce failure triggers
	// a refresh-and-rebuild before the last result is handed back.
	MaxNonceRefreshes int
}

// DefaultRetryConfig is used when no override is given.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:       10,
	MinDelay:          500 * time.Millisecond,
	MaxDelay:          10 * time.Second,
	MaxNonceRefreshes: 3,
}

type Option func(*Client)

// WithLogger replaces the no-op default logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithMetrics replaces the no-op default recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// WithLedger selects the ledger protocol. The default is the nonce
// ledger.
func WithLedger(l Ledger) Option {
	return func(c *Client) {
		c.ledger = l
	}
}

// WithAppIndex identifies the calling app inside structured memos. An
// app index is required to attach invoices.
func WithAppIndex(index uint16) Option {
	return func(c *Client) {
		c.appIndex = index
	}
}

// WithRetryConfig overrides the retry budget.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(c *Client) {
		c.retryCfg = cfg
	}
}

// WithDefaultCommitment sets the commitment used when a call does not
// specify one.
func WithDefaultCommitment(commitment types.Commitment) Option {
	return func(c *Client) {
		c.defaultCommitment = commitment
	}
}

// WithResolutionCache sizes the token-account resolution cache.
func WithResolutionCache(size int, ttl time.Duration) Option {
	return func(c *Client) {
		c.resolveCacheSize = size
		c.resolveCacheTTL = ttl
	}
}

// SubmitOption adjusts a single submission call.
type SubmitOption func(*submitOpts)

type submitOpts struct {
	commitment     types.Commitment
	senderRes      types.AccountResolution
	destinationRes types.AccountResolution
	subsidizer     types.PublicKey
}

// WithCommitment overrides the commitment for this call.
func WithCommitment(commitment types.Commitment) SubmitOption {
	return func(o *submitOpts) {
		o.commitment = commitment
	}
}

// WithSenderResolution controls account-resolution fallback for the
// sender side. The default is preferred.
func WithSenderResolution(r types.AccountResolution) SubmitOption {
	return func(o *submitOpts) {
		o.senderRes = r
	}
}

// WithDestinationResolution controls account-resolution fallback for the
// destination side. The default is preferred.
func WithDestinationResolution(r types.AccountResolution) SubmitOption {
	return func(o *submitOpts) {
		o.destinationRes = r
	}
}

// WithSubsidizer overrides the service subsidizer for an
// account-creation call.
func WithSubsidizer(subsidizer types.PublicKey) SubmitOption {
	return func(o *submitOpts) {
		o.subsidizer = subsidizer
	}
}
