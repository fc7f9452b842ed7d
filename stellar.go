package quark

import (
	"encoding/base64"
	"fmt"

	"github.com/stellar/go/amount"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"github.com/quarkpay/quark-go/types"
)

// stellarAssembler composes sequence-ledger transactions. The sequence
// ledger has no separate token accounts and no structured memo
// instruction; only free-text memos are supported on this path.
type stellarAssembler struct {
	passphrase string
}

func newStellarAssembler(env Environment) *stellarAssembler {
	passphrase := network.PublicNetworkPassphrase
	if env == EnvironmentTest {
		passphrase = network.TestNetworkPassphrase
	}
	return &stellarAssembler{passphrase: passphrase}
}

func (a *stellarAssembler) buildPayment(p *types.Payment, sequence int64) (assembledTx, error) {
	if p.Invoice != nil {
		return assembledTx{}, fmt.Errorf("invoices require the nonce ledger")
	}

	op := &txnbuild.Payment{
		Destination: p.Destination.StellarAddress(),
		Amount:      amount.StringFromInt64(p.Quarks),
		Asset:       txnbuild.NativeAsset{},
	}

	source := p.Sender
	if len(p.Channel) > 0 {
		source = p.Channel
		op.SourceAccount = p.Sender.Public().StellarAddress()
	}

	raw, err := a.signAndMarshal([]txnbuild.Operation{op}, source, p.Sender, p.Channel, sequence, p.Memo)
	if err != nil {
		return assembledTx{}, err
	}
	return assembledTx{raw: raw, ops: []opKind{opKindTransfer}}, nil
}

func (a *stellarAssembler) buildEarnBatch(b *types.EarnBatch, earns []types.Earn, sequence int64) (assembledTx, error) {
	ops := make([]txnbuild.Operation, len(earns))
	kinds := make([]opKind, len(earns))

	source := b.Sender
	var opSource string
	if len(b.Channel) > 0 {
		source = b.Channel
		opSource = b.Sender.Public().StellarAddress()
	}

	for i, e := range earns {
		if e.Invoice != nil {
			return assembledTx{}, fmt.Errorf("invoices require the nonce ledger")
		}
		ops[i] = &txnbuild.Payment{
			Destination:   e.Destination.StellarAddress(),
			Amount:        amount.StringFromInt64(e.Quarks),
			Asset:         txnbuild.NativeAsset{},
			SourceAccount: opSource,
		}
		kinds[i] = opKindTransfer
	}

	raw, err := a.signAndMarshal(ops, source, b.Sender, b.Channel, sequence, b.Memo)
	if err != nil {
		return assembledTx{}, err
	}
	return assembledTx{raw: raw, ops: kinds}, nil
}

func (a *stellarAssembler) signAndMarshal(ops []txnbuild.Operation, source, sender, channel types.PrivateKey, sequence int64, memoText string) ([]byte, error) {
	params := txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: source.Public().StellarAddress(),
			Sequence:  sequence,
		},
		IncrementSequenceNum: true,
		Operations:           ops,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewInfiniteTimeout(),
		},
	}
	if memoText != "" {
		params.Memo = txnbuild.MemoText(memoText)
	}

	tx, err := txnbuild.NewTransaction(params)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble transaction: %w", err)
	}

	signers := []types.PrivateKey{sender}
	if len(channel) > 0 {
		signers = append(signers, channel)
	}
	for _, key := range signers {
		kp, err := key.StellarKeypair()
		if err != nil {
			return nil, fmt.Errorf("invalid signer: %w", err)
		}
		tx, err = tx.Sign(a.passphrase, kp)
		if err != nil {
			return nil, fmt.Errorf("failed to sign transaction: %w", err)
		}
	}

	b64, err := tx.Base64()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}
	return base64.StdEncoding.DecodeString(b64)
}

// errorsFromXDR decodes the sequence ledger's native binary result into
// the shared taxonomy: the transaction-level code first, then any
// per-operation codes. All operations on this path are payments, so the
// instruction-space and payment-space arrays coincide.
func errorsFromXDR(resultXDR []byte) (types.TransactionErrors, error) {
	var result xdr.TransactionResult
	if err := xdr.SafeUnmarshal(resultXDR, &result); err != nil {
		return types.TransactionErrors{}, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	switch result.Result.Code {
	case xdr.TransactionResultCodeTxSuccess:
		return types.TransactionErrors{}, nil
	case xdr.TransactionResultCodeTxBadSeq:
		return types.TransactionErrors{TxError: types.ErrBadNonce}, nil
	case xdr.TransactionResultCodeTxBadAuth, xdr.TransactionResultCodeTxBadAuthExtra:
		return types.TransactionErrors{TxError: types.ErrInvalidSignature}, nil
	case xdr.TransactionResultCodeTxInsufficientBalance:
		return types.TransactionErrors{TxError: types.ErrInsufficientBalance}, nil
	case xdr.TransactionResultCodeTxInsufficientFee:
		return types.TransactionErrors{TxError: types.ErrInsufficientFee}, nil
	case xdr.TransactionResultCodeTxNoAccount:
		return types.TransactionErrors{TxError: types.ErrSenderDoesNotExist}, nil
	case xdr.TransactionResultCodeTxMissingOperation, xdr.TransactionResultCodeTxTooEarly, xdr.TransactionResultCodeTxTooLate:
		return types.TransactionErrors{TxError: types.ErrMalformed}, nil
	case xdr.TransactionResultCodeTxFailed:
		// fall through to per-operation decoding below
	default:
		return types.TransactionErrors{
			TxError: fmt.Errorf("transaction failed with result code %d: %w", result.Result.Code, types.ErrTransactionFailed),
		}, nil
	}

	txErrors := types.TransactionErrors{TxError: types.ErrTransactionFailed}
	if result.Result.Results == nil {
		return txErrors, nil
	}

	opResults := *result.Result.Results
	txErrors.OpErrors = make([]error, len(opResults))
	for i, opResult := range opResults {
		txErrors.OpErrors[i] = errorFromOperationResult(opResult)
	}
	txErrors.PaymentErrors = make([]error, len(opResults))
	copy(txErrors.PaymentErrors, txErrors.OpErrors)
	return txErrors, nil
}

func errorFromOperationResult(opResult xdr.OperationResult) error {
	switch opResult.Code {
	case xdr.OperationResultCodeOpInner:
		// handled below
	case xdr.OperationResultCodeOpBadAuth:
		return types.ErrInvalidSignature
	case xdr.OperationResultCodeOpNoAccount:
		return types.ErrSenderDoesNotExist
	default:
		return types.ErrTransactionFailed
	}

	tr := opResult.MustTr()
	switch tr.Type {
	case xdr.OperationTypePayment:
		return errorFromPaymentResult(tr.MustPaymentResult())
	case xdr.OperationTypeCreateAccount:
		return errorFromCreateAccountResult(tr.MustCreateAccountResult())
	default:
		return types.ErrTransactionFailed
	}
}

func errorFromPaymentResult(result xdr.PaymentResult) error {
	switch result.Code {
	case xdr.PaymentResultCodePaymentSuccess:
		return nil
	case xdr.PaymentResultCodePaymentMalformed:
		return types.ErrMalformed
	case xdr.PaymentResultCodePaymentUnderfunded:
		return types.ErrInsufficientBalance
	case xdr.PaymentResultCodePaymentNoDestination, xdr.PaymentResultCodePaymentNoTrust:
		return types.ErrDestinationDoesNotExist
	case xdr.PaymentResultCodePaymentSrcNoTrust:
		return types.ErrSenderDoesNotExist
	case xdr.PaymentResultCodePaymentSrcNotAuthorized, xdr.PaymentResultCodePaymentNotAuthorized:
		return types.ErrTransactionRejected
	default:
		return types.ErrTransactionFailed
	}
}

func errorFromCreateAccountResult(result xdr.CreateAccountResult) error {
	switch result.Code {
	case xdr.CreateAccountResultCodeCreateAccountSuccess:
		return nil
	case xdr.CreateAccountResultCodeCreateAccountAlreadyExist:
		return types.ErrAccountExists
	case xdr.CreateAccountResultCodeCreateAccountUnderfunded:
		return types.ErrInsufficientBalance
	case xdr.CreateAccountResultCodeCreateAccountMalformed:
		return types.ErrMalformed
	default:
		return types.ErrTransactionFailed
	}
}
