package quark

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/quarkpay/quark-go/gateway"
	"github.com/quarkpay/quark-go/logger"
	"github.com/quarkpay/quark-go/metrics"
	"github.com/quarkpay/quark-go/retry"
	"github.com/quarkpay/quark-go/types"
)

const transportJitter = 0.1

// submitState is the explicit state machine driving one logical
// submission. Resubmission decisions (nonce refresh, account-resolution
// fallback) are state transitions, never hidden side effects of error
// handling.
type submitState int

const (
	stateBuild submitState = iota
	stateSubmit
	stateResolve
	stateDone
	stateFailed
)

// Client builds, signs, submits and tracks value-transfer transactions
// against the gateway, hiding which ledger protocol backs them.
//
// A single client may be shared across goroutines; the resolution cache
// and the one-entry service-configuration cache are internally
// synchronized. Attempts within one submission always run sequentially.
type Client struct {
	env               Environment
	appIndex          uint16
	defaultCommitment types.Commitment
	retryCfg          RetryConfig

	gw       gateway.Client
	resolver *accountResolver
	stellar  *stellarAssembler

	log      logger.Logger
	metrics  metrics.Recorder
	validate *validator.Validate

	resolveCacheSize int
	resolveCacheTTL  time.Duration

	mu sync.Mutex
	// ledger is guarded by mu: MigrateLedger flips it one-way.
	ledger Ledger
	// serviceConfig is fetched once and treated as session-stable.
	serviceConfig *gateway.ServiceConfig
}

// New constructs a client against the given gateway.
func New(env Environment, gw gateway.Client, opts ...Option) (*Client, error) {
	if gw == nil {
		return nil, errors.New("a gateway client is required")
	}

	c := &Client{
		env:               env,
		ledger:            LedgerNonce,
		defaultCommitment: types.CommitmentConfirmed,
		retryCfg:          DefaultRetryConfig,
		gw:                gw,
		log:               logger.NoopLogger{},
		metrics:           metrics.NoopRecorder{},
		validate:          validator.New(),
		resolveCacheSize:  defaultResolveCacheSize,
		resolveCacheTTL:   defaultResolveCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.retryCfg.MaxAttempts == 0 {
		return nil, errors.New("retry config requires at least one attempt")
	}
	if c.retryCfg.MinDelay > c.retryCfg.MaxDelay {
		return nil, errors.New("retry config min delay exceeds max delay")
	}
	if c.retryCfg.MaxNonceRefreshes < 0 {
		return nil, errors.New("retry config max nonce refreshes must not be negative")
	}
	if c.resolveCacheSize <= 0 || c.resolveCacheTTL <= 0 {
		return nil, errors.New("resolution cache requires a positive size and ttl")
	}

	c.resolver = newAccountResolver(gw, c.resolveCacheSize, c.resolveCacheTTL)
	// The zero-result resolution retry runs under the same budget as
	// every other gateway call.
	c.resolver.attempts = c.retryCfg.MaxAttempts
	c.resolver.delay = c.retryCfg.MinDelay
	c.resolver.maxDelay = c.retryCfg.MaxDelay

	c.stellar = newStellarAssembler(env)
	return c, nil
}

// MigrateLedger moves the client from the sequence ledger to the nonce
// ledger. The transition is one-way and explicit; it is never triggered
// implicitly by a transport error.
func (c *Client) MigrateLedger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ledger == LedgerSequence {
		c.ledger = LedgerNonce
		c.log.Info("migrated to nonce ledger", nil)
	}
}

func (c *Client) currentLedger() Ledger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger
}

// CreateAccount creates an on-ledger account for the given key,
// subsidized by the service unless WithSubsidizer names another payer.
// Bad-nonce rejections are re-attempted under the nonce-refresh budget.
func (c *Client) CreateAccount(ctx context.Context, key types.PrivateKey, opts ...SubmitOption) error {
	o := c.submitOpts(opts)

	for refreshes := 0; ; refreshes++ {
		var result gateway.CreateAccountResult
		err := retry.Retry(func() error {
			var err error
			result, err = c.gw.CreateAccount(ctx, key.Public(), o.commitment, o.subsidizer)
			return err
		}, c.transportStrategies()...)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		switch result {
		case gateway.CreateAccountOK:
			return nil
		case gateway.CreateAccountExists:
			return types.ErrAccountExists
		case gateway.CreateAccountPayerRequired:
			return types.ErrPayerRequired
		case gateway.CreateAccountBadNonce:
			if refreshes < c.retryCfg.MaxNonceRefreshes {
				c.log.Debug("create account hit a bad nonce, retrying", map[string]any{"refreshes": refreshes})
				continue
			}
			return types.ErrBadNonce
		default:
			return fmt.Errorf("unexpected create account result %d: %w", result, types.ErrTransactionFailed)
		}
	}
}

// GetBalance returns the account's balance in quarks. When the account
// is not found as addressed, its owner's resolved token accounts are
// consulted before giving up.
func (c *Client) GetBalance(ctx context.Context, account types.PublicKey, opts ...SubmitOption) (int64, error) {
	o := c.submitOpts(opts)

	info, err := c.accountInfo(ctx, account, o.commitment)
	if err == nil {
		return info.Balance, nil
	}
	if !errors.Is(err, gateway.ErrNotFound) {
		return 0, err
	}
	if o.senderRes == types.AccountResolutionExact || c.currentLedger() == LedgerSequence {
		return 0, types.ErrAccountDoesNotExist
	}

	accounts, err := c.resolver.Resolve(ctx, account)
	if err != nil {
		return 0, err
	}
	if len(accounts) == 0 {
		return 0, types.ErrAccountDoesNotExist
	}

	info, err = c.accountInfo(ctx, accounts[0], o.commitment)
	if errors.Is(err, gateway.ErrNotFound) {
		return 0, types.ErrAccountDoesNotExist
	}
	if err != nil {
		return 0, err
	}
	return info.Balance, nil
}

// GetTransaction reads back a submitted transaction. An absent
// transaction is reported with TransactionStateUnknown rather than an
// error.
func (c *Client) GetTransaction(ctx context.Context, id types.TransactionID, opts ...SubmitOption) (gateway.TransactionData, error) {
	o := c.submitOpts(opts)

	var data gateway.TransactionData
	err := retry.Retry(func() error {
		var err error
		data, err = c.gw.GetTransaction(ctx, id, o.commitment)
		return err
	}, c.transportStrategies()...)
	if errors.Is(err, gateway.ErrNotFound) {
		return gateway.TransactionData{ID: id, State: gateway.TransactionStateUnknown}, nil
	}
	if err != nil {
		return gateway.TransactionData{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	return data, nil
}

// ResolveTokenAccounts returns the owner's token accounts, served from
// the resolution cache when fresh.
func (c *Client) ResolveTokenAccounts(ctx context.Context, owner types.PublicKey) ([]types.PublicKey, error) {
	return c.resolver.Resolve(ctx, owner)
}

// RequestAirdrop funds an account with quarks. Test environment only.
func (c *Client) RequestAirdrop(ctx context.Context, account types.PublicKey, quarks uint64, opts ...SubmitOption) (types.TransactionID, error) {
	if c.env != EnvironmentTest {
		return nil, errors.New("airdrops are only available on the test environment")
	}
	o := c.submitOpts(opts)

	var id types.TransactionID
	err := retry.Retry(func() error {
		var err error
		id, err = c.gw.RequestAirdrop(ctx, account, quarks, o.commitment)
		return err
	}, c.transportStrategies()...)
	if err != nil {
		return nil, fmt.Errorf("failed to request airdrop: %w", err)
	}
	return id, nil
}

// SubmitPayment submits a single payment. Ledger-level failures are
// reported inside the result; the error return is reserved for
// validation and transport breakdowns.
func (c *Client) SubmitPayment(ctx context.Context, payment *types.Payment, opts ...SubmitOption) (types.SubmissionResult, error) {
	start := time.Now()
	ledger := c.currentLedger()

	var result types.SubmissionResult
	if payment == nil {
		return result, errors.New("payment is nil")
	}
	if err := c.validate.Struct(payment); err != nil {
		return result, fmt.Errorf("invalid payment: %w", err)
	}
	if payment.Invoice != nil {
		if c.appIndex == 0 {
			return result, errors.New("an app index is required to attach invoices")
		}
		if payment.Memo != "" {
			return result, errors.New("a payment cannot carry both a memo and an invoice")
		}
	}

	o := c.submitOpts(opts)
	var err error
	switch ledger {
	case LedgerNonce:
		result, err = c.submitPaymentNonce(ctx, payment, o)
	default:
		result, err = c.submitPaymentSequence(ctx, payment, o)
	}

	c.recordSubmission("submit_payment", ledger, result, err, start)
	return result, err
}

func (c *Client) submitPaymentNonce(ctx context.Context, payment *types.Payment, o submitOpts) (types.SubmissionResult, error) {
	cfg, err := c.getServiceConfig(ctx)
	if err != nil {
		return types.SubmissionResult{}, err
	}
	asm := &solanaAssembler{cfg: cfg, appIndex: c.appIndex}

	var (
		result    types.SubmissionResult
		atx       assembledTx
		source    = payment.Sender.Public()
		refreshes = 0
		resolved  = false
	)

	for state := stateBuild; ; {
		switch state {
		case stateBuild:
			blockhash, err := c.recentBlockhash(ctx)
			if err != nil {
				return result, err
			}
			atx, err = asm.buildPayment(payment, source, payment.Destination, blockhash)
			if err != nil {
				return result, err
			}
			state = stateSubmit

		case stateSubmit:
			resp, err := c.submitWithRetry(ctx, atx, o.commitment, payment.DedupeID)
			if err != nil {
				return result, err
			}
			result = c.resultFromResponse(resp, atx)

			switch {
			case errors.Is(result.Errors.TxError, types.ErrBadNonce):
				if refreshes < c.retryCfg.MaxNonceRefreshes {
					refreshes++
					c.log.Debug("refreshing blockhash after bad nonce", map[string]any{"refreshes": refreshes})
					state = stateBuild
				} else {
					// The budget is spent. Hand back whatever the final
					// attempt produced: an earlier attempt may have
					// landed, and the id lets the caller find out.
					c.log.Warn("nonce refresh budget exhausted", map[string]any{"id": result.ID.String()})
					state = stateFailed
				}
			case errors.Is(result.Errors.TxError, types.ErrAccountDoesNotExist) && !resolved &&
				(o.senderRes == types.AccountResolutionPreferred || o.destinationRes == types.AccountResolutionPreferred):
				state = stateResolve
			case result.Errors.Any():
				state = stateFailed
			default:
				state = stateDone
			}

		case stateResolve:
			substituted := false
			if o.senderRes == types.AccountResolutionPreferred {
				accounts, err := c.resolver.Resolve(ctx, payment.Sender.Public())
				if err != nil {
					return result, err
				}
				if len(accounts) > 0 && !accounts[0].Equals(source) {
					source = accounts[0]
					substituted = true
				}
			}
			if o.destinationRes == types.AccountResolutionPreferred {
				accounts, err := c.resolver.Resolve(ctx, payment.Destination)
				if err != nil {
					return result, err
				}
				if len(accounts) > 0 && !accounts[0].Equals(payment.Destination) {
					payment.Destination = accounts[0]
					substituted = true
				}
			}

			// Exactly one resolution pass per submission.
			resolved = true
			if substituted {
				c.log.Debug("resubmitting with resolved token accounts", nil)
				state = stateBuild
			} else {
				state = stateFailed
			}

		case stateDone, stateFailed:
			// Ledger-level failures live in the result; the error return
			// is reserved for transport and validation breakdowns.
			return result, nil
		}
	}
}

func (c *Client) submitPaymentSequence(ctx context.Context, payment *types.Payment, o submitOpts) (types.SubmissionResult, error) {
	sourceKey := payment.Sender
	if len(payment.Channel) > 0 {
		sourceKey = payment.Channel
	}

	var (
		result    types.SubmissionResult
		atx       assembledTx
		refreshes = 0
	)

	for state := stateBuild; ; {
		switch state {
		case stateBuild:
			info, err := c.accountInfo(ctx, sourceKey.Public(), o.commitment)
			if errors.Is(err, gateway.ErrNotFound) {
				result.Errors = types.TransactionErrors{TxError: types.ErrSenderDoesNotExist}
				return result, nil
			}
			if err != nil {
				return result, err
			}
			atx, err = c.stellar.buildPayment(payment, info.SequenceNumber)
			if err != nil {
				return result, err
			}
			state = stateSubmit

		case stateSubmit:
			resp, err := c.submitWithRetry(ctx, atx, o.commitment, payment.DedupeID)
			if err != nil {
				return result, err
			}
			result = c.resultFromResponse(resp, atx)

			switch {
			case errors.Is(result.Errors.TxError, types.ErrBadNonce) && refreshes < c.retryCfg.MaxNonceRefreshes:
				refreshes++
				c.log.Debug("refreshing sequence number after bad nonce", map[string]any{"refreshes": refreshes})
				state = stateBuild
			case result.Errors.Any():
				state = stateFailed
			default:
				state = stateDone
			}

		case stateDone, stateFailed:
			return result, nil
		}
	}
}

// SubmitEarnBatch submits a multi-recipient disbursement. Sub-batches
// are submitted strictly sequentially; the first failing sub-batch stops
// the run, and every earn in later sub-batches is reported failed with
// no error attached.
func (c *Client) SubmitEarnBatch(ctx context.Context, batch *types.EarnBatch, opts ...SubmitOption) (types.EarnBatchResult, error) {
	start := time.Now()
	ledger := c.currentLedger()

	var result types.EarnBatchResult
	if batch == nil {
		return result, errors.New("batch is nil")
	}
	if err := c.validate.Struct(batch); err != nil {
		return result, fmt.Errorf("invalid batch: %w", err)
	}

	invoiced := 0
	for _, e := range batch.Earns {
		if e.Invoice != nil {
			invoiced++
		}
	}
	if invoiced > 0 {
		if invoiced != len(batch.Earns) {
			return result, errors.New("either all or none of the earns must carry an invoice")
		}
		if c.appIndex == 0 {
			return result, errors.New("an app index is required to attach invoices")
		}
		if batch.Memo != "" {
			return result, errors.New("a batch cannot carry both a memo and invoices")
		}
	}

	o := c.submitOpts(opts)
	var err error
	switch ledger {
	case LedgerNonce:
		result, err = c.submitEarnBatchNonce(ctx, batch, o, invoiced > 0)
	default:
		result, err = c.submitEarnBatchSequence(ctx, batch, o)
	}

	c.recordBatch(ledger, result, err, start)
	return result, err
}

func (c *Client) submitEarnBatchNonce(ctx context.Context, batch *types.EarnBatch, o submitOpts, invoiced bool) (types.EarnBatchResult, error) {
	cfg, err := c.getServiceConfig(ctx)
	if err != nil {
		return types.EarnBatchResult{}, err
	}
	asm := &solanaAssembler{cfg: cfg, appIndex: c.appIndex}

	source := batch.Sender.Public()
	separateSource := false
	if o.senderRes == types.AccountResolutionPreferred {
		accounts, err := c.resolver.Resolve(ctx, source)
		if err != nil {
			return types.EarnBatchResult{}, err
		}
		if len(accounts) > 0 && !accounts[0].Equals(source) {
			source = accounts[0]
			separateSource = true
		}
	}

	shape := batchShape{
		separateSource: separateSource,
		structuredMemo: invoiced || c.appIndex > 0,
		signatures:     2,
	}
	if !shape.structuredMemo {
		shape.textMemo = batch.Memo
	}
	subBatches := partitionEarns(batch.Earns, shape)

	return c.submitSubBatches(ctx, batch, subBatches, o, func(ctx context.Context, earns []types.Earn) (types.SubmissionResult, []error, error) {
		return c.submitSubBatchNonce(ctx, asm, batch, earns, source, o)
	})
}

func (c *Client) submitEarnBatchSequence(ctx context.Context, batch *types.EarnBatch, o submitOpts) (types.EarnBatchResult, error) {
	subBatches := chunkEarns(batch.Earns, maxSequenceBatchSize)

	return c.submitSubBatches(ctx, batch, subBatches, o, func(ctx context.Context, earns []types.Earn) (types.SubmissionResult, []error, error) {
		return c.submitSubBatchSequence(ctx, batch, earns, o)
	})
}

type subBatchSubmit func(ctx context.Context, earns []types.Earn) (types.SubmissionResult, []error, error)

func (c *Client) submitSubBatches(ctx context.Context, batch *types.EarnBatch, subBatches [][]types.Earn, o submitOpts, submit subBatchSubmit) (types.EarnBatchResult, error) {
	var result types.EarnBatchResult

	failedAt := -1
	for i, sb := range subBatches {
		sbResult, perEarn, err := submit(ctx, sb)
		if err != nil {
			for _, e := range sb {
				result.Failed = append(result.Failed, types.EarnResult{Earn: e, Error: err})
			}
			failedAt = i
			break
		}

		if sbResult.Errors.Any() {
			for j, e := range sb {
				er := types.EarnResult{TxID: sbResult.ID, Earn: e, Error: sbResult.Errors.TxError}
				if perEarn != nil && j < len(perEarn) {
					// The earn's own slot, nil when this earn was not the
					// one that failed.
					er.Error = perEarn[j]
				}
				result.Failed = append(result.Failed, er)
			}
			failedAt = i
			break
		}

		for _, e := range sb {
			result.Succeeded = append(result.Succeeded, types.EarnResult{TxID: sbResult.ID, Earn: e})
		}
	}

	if failedAt >= 0 {
		c.log.Debug("stopping batch after sub-batch failure", map[string]any{"sub_batch": failedAt})
		for _, sb := range subBatches[failedAt+1:] {
			for _, e := range sb {
				result.Failed = append(result.Failed, types.EarnResult{Earn: e})
			}
		}
	}
	return result, nil
}

func (c *Client) submitSubBatchNonce(ctx context.Context, asm *solanaAssembler, batch *types.EarnBatch, earns []types.Earn, source types.PublicKey, o submitOpts) (types.SubmissionResult, []error, error) {
	var (
		result    types.SubmissionResult
		atx       assembledTx
		refreshes = 0
	)

	for state := stateBuild; ; {
		switch state {
		case stateBuild:
			blockhash, err := c.recentBlockhash(ctx)
			if err != nil {
				return result, nil, err
			}
			atx, err = asm.buildEarnBatch(batch, source, earns, blockhash)
			if err != nil {
				return result, nil, err
			}
			state = stateSubmit

		case stateSubmit:
			resp, err := c.submitWithRetry(ctx, atx, o.commitment, c.subBatchDedupeID(batch, earns))
			if err != nil {
				return result, nil, err
			}
			result = c.resultFromResponse(resp, atx)

			switch {
			case errors.Is(result.Errors.TxError, types.ErrBadNonce) && refreshes < c.retryCfg.MaxNonceRefreshes:
				refreshes++
				c.log.Debug("refreshing blockhash after bad nonce", map[string]any{"refreshes": refreshes})
				state = stateBuild
			case result.Errors.Any():
				state = stateFailed
			default:
				state = stateDone
			}

		case stateDone, stateFailed:
			return result, perEarnErrors(result.Errors, atx.ops), nil
		}
	}
}

func (c *Client) submitSubBatchSequence(ctx context.Context, batch *types.EarnBatch, earns []types.Earn, o submitOpts) (types.SubmissionResult, []error, error) {
	sourceKey := batch.Sender
	if len(batch.Channel) > 0 {
		sourceKey = batch.Channel
	}

	var (
		result    types.SubmissionResult
		atx       assembledTx
		refreshes = 0
	)

	for state := stateBuild; ; {
		switch state {
		case stateBuild:
			info, err := c.accountInfo(ctx, sourceKey.Public(), o.commitment)
			if errors.Is(err, gateway.ErrNotFound) {
				result.Errors = types.TransactionErrors{TxError: types.ErrSenderDoesNotExist}
				return result, nil, nil
			}
			if err != nil {
				return result, nil, err
			}
			atx, err = c.stellar.buildEarnBatch(batch, earns, info.SequenceNumber)
			if err != nil {
				return result, nil, err
			}
			state = stateSubmit

		case stateSubmit:
			resp, err := c.submitWithRetry(ctx, atx, o.commitment, c.subBatchDedupeID(batch, earns))
			if err != nil {
				return result, nil, err
			}
			result = c.resultFromResponse(resp, atx)

			switch {
			case errors.Is(result.Errors.TxError, types.ErrBadNonce) && refreshes < c.retryCfg.MaxNonceRefreshes:
				refreshes++
				state = stateBuild
			case result.Errors.Any():
				state = stateFailed
			default:
				state = stateDone
			}

		case stateDone, stateFailed:
			return result, perEarnErrors(result.Errors, atx.ops), nil
		}
	}
}

// subBatchDedupeID forwards the caller's idempotency token only when the
// batch fits a single transaction; reusing one token across distinct
// sub-batch transactions would make the gateway deduplicate them against
// each other.
func (c *Client) subBatchDedupeID(batch *types.EarnBatch, earns []types.Earn) []byte {
	if len(earns) == len(batch.Earns) {
		return batch.DedupeID
	}
	return nil
}

// perEarnErrors projects a classified failure into payment space, one
// slot per transfer instruction. When the failure sits on a non-transfer
// instruction (the memo) there is no payment-space view; returning nil
// lets the caller fall back to the transaction-level error so every earn
// in an attempted sub-batch still carries a reason.
func perEarnErrors(errs types.TransactionErrors, ops []opKind) []error {
	if errs.PaymentErrors != nil {
		return errs.PaymentErrors
	}
	if errs.OpErrors == nil {
		return nil
	}

	populated := false
	out := make([]error, 0, len(ops))
	for i, k := range ops {
		if k != opKindTransfer || i >= len(errs.OpErrors) {
			continue
		}
		if errs.OpErrors[i] != nil {
			populated = true
		}
		out = append(out, errs.OpErrors[i])
	}
	if !populated {
		return nil
	}
	return out
}

func (c *Client) resultFromResponse(resp gateway.SubmitResponse, atx assembledTx) types.SubmissionResult {
	result := types.SubmissionResult{
		ID:            resp.ID,
		InvoiceErrors: invoiceErrors(resp.InvoiceErrors),
	}

	if len(resp.ResultXDR) > 0 {
		errs, err := errorsFromXDR(resp.ResultXDR)
		if err != nil {
			c.log.Warn("failed to decode ledger result", map[string]any{"error": err.Error()})
			errs = errorsFromReason(resp.Reason, resp.OpIndex, atx.ops)
		}
		result.Errors = errs
	} else {
		result.Errors = errorsFromReason(resp.Reason, resp.OpIndex, atx.ops)
	}

	if resp.AlreadySubmitted {
		result.Errors.TxError = types.ErrAlreadySubmitted
	}
	if result.Errors.TxError == nil && len(result.InvoiceErrors) > 0 {
		result.Errors.TxError = types.ErrTransactionRejected
	}
	return result
}

// getServiceConfig returns the session-stable gateway configuration,
// fetching it at most once per client.
func (c *Client) getServiceConfig(ctx context.Context) (gateway.ServiceConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.serviceConfig != nil {
		return *c.serviceConfig, nil
	}

	var cfg gateway.ServiceConfig
	err := retry.Retry(func() error {
		var err error
		cfg, err = c.gw.GetServiceConfig(ctx)
		return err
	}, c.transportStrategies()...)
	if err != nil {
		return cfg, fmt.Errorf("failed to get service config: %w", err)
	}

	c.serviceConfig = &cfg
	return cfg, nil
}

func (c *Client) recentBlockhash(ctx context.Context) (types.Blockhash, error) {
	start := time.Now()
	defer c.observe("get_recent_blockhash", start)

	var blockhash types.Blockhash
	err := retry.Retry(func() error {
		var err error
		blockhash, err = c.gw.GetRecentBlockhash(ctx)
		return err
	}, c.transportStrategies()...)
	if err != nil {
		return blockhash, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	return blockhash, nil
}

func (c *Client) accountInfo(ctx context.Context, account types.PublicKey, commitment types.Commitment) (gateway.AccountInfo, error) {
	var info gateway.AccountInfo
	err := retry.Retry(func() error {
		var err error
		info, err = c.gw.GetAccountInfo(ctx, account, commitment)
		return err
	}, c.transportStrategies()...)
	if err != nil && !errors.Is(err, gateway.ErrNotFound) {
		return info, fmt.Errorf("failed to get account info: %w", err)
	}
	return info, err
}

func (c *Client) submitWithRetry(ctx context.Context, atx assembledTx, commitment types.Commitment, dedupeID []byte) (gateway.SubmitResponse, error) {
	start := time.Now()
	defer c.observe("submit_transaction", start)

	var resp gateway.SubmitResponse
	err := retry.Retry(func() error {
		var err error
		resp, err = c.gw.SubmitTransaction(ctx, atx.raw, atx.invoices, commitment, dedupeID)
		return err
	}, c.transportStrategies()...)
	if err != nil {
		return resp, fmt.Errorf("failed to submit transaction: %w", err)
	}
	return resp, nil
}

// transportStrategies is the generic retry budget applied to every
// gateway call: bounded attempts, no re-attempts for conditions a blind
// retry cannot fix, transient transport failures only, jittered
// exponential backoff.
func (c *Client) transportStrategies() []retry.Strategy {
	transient := func(_ uint, err error) bool {
		return gateway.Transient(err)
	}

	backoff, err := retry.BackoffWithJitter(
		retry.BinaryExponential(c.retryCfg.MinDelay), c.retryCfg.MaxDelay, transportJitter)
	if err != nil {
		backoff = retry.Backoff(retry.BinaryExponential(c.retryCfg.MinDelay), c.retryCfg.MaxDelay)
	}

	return []retry.Strategy{
		retry.Limit(c.retryCfg.MaxAttempts),
		retry.NonRetriableErrors(types.NonRetriableErrors...),
		retry.Strategy(transient),
		backoff,
	}
}

func (c *Client) submitOpts(opts []SubmitOption) submitOpts {
	o := submitOpts{
		commitment:     c.defaultCommitment,
		senderRes:      types.AccountResolutionPreferred,
		destinationRes: types.AccountResolutionPreferred,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (c *Client) observe(op string, start time.Time) {
	c.metrics.ObserveLatency(op, time.Since(start), map[string]string{
		"ledger": c.currentLedger().String(),
	})
}

func (c *Client) recordSubmission(op string, ledger Ledger, result types.SubmissionResult, err error, start time.Time) {
	label := "ok"
	switch {
	case err != nil:
		label = "error"
	case result.Errors.Any():
		label = "failed"
	}
	c.metrics.IncCounter(op, map[string]string{"result": label, "ledger": ledger.String()})
	c.metrics.ObserveLatency(op, time.Since(start), map[string]string{"ledger": ledger.String()})
}

func (c *Client) recordBatch(ledger Ledger, result types.EarnBatchResult, err error, start time.Time) {
	label := "ok"
	switch {
	case err != nil:
		label = "error"
	case len(result.Failed) > 0:
		label = "failed"
	}
	c.metrics.IncCounter("submit_earn_batch", map[string]string{"result": label, "ledger": ledger.String()})
	c.metrics.ObserveLatency("submit_earn_batch", time.Since(start), map[string]string{"ledger": ledger.String()})
}
