// Package gateway defines the contract of the remote transaction
// gateway consumed by the submission engine. The concrete transport (the
// generated service stubs and their connection setup) lives behind this
// interface; the engine only depends on the wire-level result shapes
// declared here.
package gateway

import (
	"context"
	"errors"

	"github.com/quarkpay/quark-go/types"
)

// ErrNotFound is returned by read calls when the requested entity does
// not exist at the requested commitment.
var ErrNotFound = errors.New("gateway: not found")

// CreateAccountResult is the outcome of an account-creation call.
type CreateAccountResult int

const (
	CreateAccountOK CreateAccountResult = iota
	CreateAccountExists
	CreateAccountPayerRequired
	CreateAccountBadNonce
)

// Reason is the gateway's submit-time failure code. It is one of the two
// wire formats classified into the shared error taxonomy; the other is
// the sequence ledger's binary result structure.
type Reason int32

const (
	ReasonNone Reason = iota
	ReasonUnauthorized
	ReasonBadNonce
	ReasonInsufficientFunds
	ReasonInvalidAccount
)

// InvoiceReason is the gateway's per-invoice rejection code.
type InvoiceReason int32

const (
	InvoiceReasonUnknown InvoiceReason = iota
	InvoiceReasonAlreadyPaid
	InvoiceReasonWrongDestination
	InvoiceReasonSkuNotFound
)

// InvoiceError pairs a rejected invoice with the operation it belongs to.
type InvoiceError struct {
	OpIndex uint32
	Invoice *types.Invoice
	Reason  InvoiceReason
}

// SubmitResponse is the raw result of a transaction submission.
type SubmitResponse struct {
	ID types.TransactionID

	// AlreadySubmitted is set when the gateway deduplicated the
	// submission; ID still references the original transaction.
	AlreadySubmitted bool

	// Reason is the failure code, ReasonNone on success. OpIndex is the
	// index of the failing instruction when the gateway reports one, -1
	// otherwise.
	Reason  Reason
	OpIndex int32

	// ResultXDR carries the sequence ledger's native binary result for
	// legacy submissions.
	ResultXDR []byte

	InvoiceErrors []InvoiceError
}

// ServiceConfig is the session-stable configuration advertised by the
// gateway.
type ServiceConfig struct {
	// Subsidizer pays network fees when the caller does not.
	Subsidizer types.PublicKey
	// Token is the mint/asset identity.
	Token types.PublicKey
	// TokenProgram is the on-ledger program owning token accounts.
	TokenProgram types.PublicKey
}

// AccountInfo is the state of an on-ledger account.
type AccountInfo struct {
	Balance int64
	// SequenceNumber is only meaningful on the sequence ledger.
	SequenceNumber int64
}

// TransactionState is the lifecycle state of a submitted transaction.
type TransactionState int

const (
	TransactionStateUnknown TransactionState = iota
	TransactionStateSuccess
	TransactionStateFailed
	TransactionStatePending
)

// TransactionData is a read-back record of a submitted transaction.
type TransactionData struct {
	ID     types.TransactionID
	State  TransactionState
	Reason Reason
}

// Client is the full collaborator surface the engine consumes.
type Client interface {
	CreateAccount(ctx context.Context, account types.PublicKey, commitment types.Commitment, subsidizer types.PublicKey) (CreateAccountResult, error)
	GetAccountInfo(ctx context.Context, account types.PublicKey, commitment types.Commitment) (AccountInfo, error)
	ResolveTokenAccounts(ctx context.Context, owner types.PublicKey) ([]types.PublicKey, error)
	GetServiceConfig(ctx context.Context) (ServiceConfig, error)
	GetRecentBlockhash(ctx context.Context) (types.Blockhash, error)
	SubmitTransaction(ctx context.Context, tx []byte, invoices []*types.Invoice, commitment types.Commitment, dedupeID []byte) (SubmitResponse, error)
	GetTransaction(ctx context.Context, id types.TransactionID, commitment types.Commitment) (TransactionData, error)

	// RequestAirdrop funds an account on test networks only.
	RequestAirdrop(ctx context.Context, account types.PublicKey, quarks uint64, commitment types.Commitment) (types.TransactionID, error)
}
