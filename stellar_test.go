package quark

import (
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarkpay/quark-go/gateway"
	"github.com/quarkpay/quark-go/memo"
	"github.com/quarkpay/quark-go/types"
)

func marshalResult(t *testing.T, result xdr.TransactionResult) []byte {
	t.Helper()
	raw, err := result.MarshalBinary()
	require.NoError(t, err)
	return raw
}

func TestErrorsFromXDR_TransactionCodes(t *testing.T) {
	tests := []struct {
		code xdr.TransactionResultCode
		want error
	}{
		{xdr.TransactionResultCodeTxBadSeq, types.ErrBadNonce},
		{xdr.TransactionResultCodeTxBadAuth, types.ErrInvalidSignature},
		{xdr.TransactionResultCodeTxBadAuthExtra, types.ErrInvalidSignature},
		{xdr.TransactionResultCodeTxInsufficientBalance, types.ErrInsufficientBalance},
		{xdr.TransactionResultCodeTxInsufficientFee, types.ErrInsufficientFee},
		{xdr.TransactionResultCodeTxNoAccount, types.ErrSenderDoesNotExist},
		{xdr.TransactionResultCodeTxMissingOperation, types.ErrMalformed},
		{xdr.TransactionResultCodeTxTooEarly, types.ErrMalformed},
		{xdr.TransactionResultCodeTxTooLate, types.ErrMalformed},
	}
	for _, tc := range tests {
		raw := marshalResult(t, xdr.TransactionResult{
			Result: xdr.TransactionResultResult{Code: tc.code},
		})

		errs, err := errorsFromXDR(raw)
		require.NoError(t, err, tc.code)
		assert.ErrorIs(t, errs.TxError, tc.want, tc.code)
		assert.Nil(t, errs.OpErrors)
	}
}

func TestErrorsFromXDR_Success(t *testing.T) {
	results := []xdr.OperationResult{}
	raw := marshalResult(t, xdr.TransactionResult{
		Result: xdr.TransactionResultResult{
			Code:    xdr.TransactionResultCodeTxSuccess,
			Results: &results,
		},
	})

	errs, err := errorsFromXDR(raw)
	require.NoError(t, err)
	assert.False(t, errs.Any())
}

func TestErrorsFromXDR_OperationResults(t *testing.T) {
	paymentResult := func(code xdr.PaymentResultCode) xdr.OperationResult {
		return xdr.OperationResult{
			Code: xdr.OperationResultCodeOpInner,
			Tr: &xdr.OperationResultTr{
				Type:          xdr.OperationTypePayment,
				PaymentResult: &xdr.PaymentResult{Code: code},
			},
		}
	}

	results := []xdr.OperationResult{
		paymentResult(xdr.PaymentResultCodePaymentSuccess),
		paymentResult(xdr.PaymentResultCodePaymentUnderfunded),
		paymentResult(xdr.PaymentResultCodePaymentNoDestination),
		paymentResult(xdr.PaymentResultCodePaymentSrcNoTrust),
		paymentResult(xdr.PaymentResultCodePaymentNotAuthorized),
		paymentResult(xdr.PaymentResultCodePaymentMalformed),
	}
	raw := marshalResult(t, xdr.TransactionResult{
		Result: xdr.TransactionResultResult{
			Code:    xdr.TransactionResultCodeTxFailed,
			Results: &results,
		},
	})

	errs, err := errorsFromXDR(raw)
	require.NoError(t, err)
	assert.ErrorIs(t, errs.TxError, types.ErrTransactionFailed)

	require.Len(t, errs.OpErrors, 6)
	assert.NoError(t, errs.OpErrors[0])
	assert.ErrorIs(t, errs.OpErrors[1], types.ErrInsufficientBalance)
	assert.ErrorIs(t, errs.OpErrors[2], types.ErrDestinationDoesNotExist)
	assert.ErrorIs(t, errs.OpErrors[3], types.ErrSenderDoesNotExist)
	assert.ErrorIs(t, errs.OpErrors[4], types.ErrTransactionRejected)
	assert.ErrorIs(t, errs.OpErrors[5], types.ErrMalformed)

	// All operations on this path are payments, so the payment-space
	// array mirrors the instruction-space one.
	assert.Equal(t, errs.OpErrors, errs.PaymentErrors)
}

func TestErrorsFromXDR_CreateAccountResults(t *testing.T) {
	results := []xdr.OperationResult{
		{
			Code: xdr.OperationResultCodeOpInner,
			Tr: &xdr.OperationResultTr{
				Type:                xdr.OperationTypeCreateAccount,
				CreateAccountResult: &xdr.CreateAccountResult{Code: xdr.CreateAccountResultCodeCreateAccountAlreadyExist},
			},
		},
	}
	raw := marshalResult(t, xdr.TransactionResult{
		Result: xdr.TransactionResultResult{
			Code:    xdr.TransactionResultCodeTxFailed,
			Results: &results,
		},
	})

	errs, err := errorsFromXDR(raw)
	require.NoError(t, err)
	require.Len(t, errs.OpErrors, 1)
	assert.ErrorIs(t, errs.OpErrors[0], types.ErrAccountExists)
}

func TestErrorsFromXDR_Garbage(t *testing.T) {
	_, err := errorsFromXDR([]byte{0x01, 0x02})
	assert.Error(t, err)
}

// Both wire formats must classify equivalent failures to the same error
// kind.
func TestClassifierParity(t *testing.T) {
	tests := []struct {
		reason gateway.Reason
		code   xdr.TransactionResultCode
	}{
		{gateway.ReasonBadNonce, xdr.TransactionResultCodeTxBadSeq},
		{gateway.ReasonUnauthorized, xdr.TransactionResultCodeTxBadAuth},
		{gateway.ReasonInsufficientFunds, xdr.TransactionResultCodeTxInsufficientBalance},
	}
	for _, tc := range tests {
		fromReason := errorFromReason(tc.reason)

		raw := marshalResult(t, xdr.TransactionResult{
			Result: xdr.TransactionResultResult{Code: tc.code},
		})
		errs, err := errorsFromXDR(raw)
		require.NoError(t, err)

		assert.ErrorIs(t, errs.TxError, fromReason)
	}
}

func TestStellarAssembler_BuildPayment(t *testing.T) {
	sender, err := types.NewPrivateKey()
	require.NoError(t, err)
	dest, err := types.NewPrivateKey()
	require.NoError(t, err)

	asm := newStellarAssembler(EnvironmentTest)
	atx, err := asm.buildPayment(&types.Payment{
		Sender:      sender,
		Destination: dest.Public(),
		Type:        memo.TransactionTypeSpend,
		Quarks:      150_000,
		Memo:        "1-test",
	}, 41)
	require.NoError(t, err)
	require.NotEmpty(t, atx.raw)
	require.Equal(t, []opKind{opKindTransfer}, atx.ops)

	// The raw bytes must decode back to a signed envelope carrying the
	// incremented sequence number and the text memo.
	var envelope xdr.TransactionEnvelope
	require.NoError(t, xdr.SafeUnmarshal(atx.raw, &envelope))
	assert.EqualValues(t, 42, envelope.SeqNum())
	assert.Equal(t, "1-test", envelope.Memo().MustText())
	assert.Len(t, envelope.Operations(), 1)
	assert.Len(t, envelope.Signatures(), 1)
}

func TestStellarAssembler_BuildEarnBatch(t *testing.T) {
	sender, err := types.NewPrivateKey()
	require.NoError(t, err)
	channel, err := types.NewPrivateKey()
	require.NoError(t, err)

	earns := make([]types.Earn, 3)
	for i := range earns {
		dest, err := types.NewPrivateKey()
		require.NoError(t, err)
		earns[i] = types.Earn{Destination: dest.Public(), Quarks: int64(i+1) * 10_000}
	}

	asm := newStellarAssembler(EnvironmentTest)
	atx, err := asm.buildEarnBatch(&types.EarnBatch{
		Sender:  sender,
		Channel: channel,
		Earns:   earns,
	}, earns, 7)
	require.NoError(t, err)
	require.Equal(t, []opKind{opKindTransfer, opKindTransfer, opKindTransfer}, atx.ops)

	var envelope xdr.TransactionEnvelope
	require.NoError(t, xdr.SafeUnmarshal(atx.raw, &envelope))
	assert.Len(t, envelope.Operations(), 3)
	// Channel signs as the transaction source; the sender co-signs for
	// the operations.
	assert.Equal(t, channel.Public().StellarAddress(), envelope.SourceAccount().ToAccountId().Address())
	assert.Len(t, envelope.Signatures(), 2)
}

func TestStellarAssembler_RejectsInvoices(t *testing.T) {
	sender, err := types.NewPrivateKey()
	require.NoError(t, err)
	dest, err := types.NewPrivateKey()
	require.NoError(t, err)

	asm := newStellarAssembler(EnvironmentTest)
	_, err = asm.buildPayment(&types.Payment{
		Sender:      sender,
		Destination: dest.Public(),
		Quarks:      1,
		Invoice:     &types.Invoice{Items: []types.LineItem{{Title: "Coffee", Amount: 1}}},
	}, 1)
	assert.Error(t, err)
}
