package quark

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/quarkpay/quark-go/gateway"
	"github.com/quarkpay/quark-go/memo"
	"github.com/quarkpay/quark-go/types"
)

// tokenTransferInstruction is the token program's transfer opcode. The
// instruction data is the opcode followed by the amount as a
// little-endian 8-byte integer; the accounts are source, destination and
// authority.
const tokenTransferInstruction = 3

// assembledTx is a candidate transaction ready for submission.
type assembledTx struct {
	raw      []byte
	ops      []opKind
	invoices []*types.Invoice
}

// solanaAssembler composes nonce-ledger transactions. Byte encoding and
// signing are delegated to the ledger library; this type only decides
// fee payer, memo shape and instruction order.
type solanaAssembler struct {
	cfg      gateway.ServiceConfig
	appIndex uint16
}

func (a *solanaAssembler) buildPayment(p *types.Payment, source, dest types.PublicKey, blockhash types.Blockhash) (assembledTx, error) {
	memoInstr, invoices, err := a.memoInstruction(p.Type, p.Memo, invoiceSlice(p.Invoice))
	if err != nil {
		return assembledTx{}, err
	}

	var instructions []solana.Instruction
	var ops []opKind
	if memoInstr != nil {
		instructions = append(instructions, memoInstr)
		ops = append(ops, opKindOther)
	}

	instructions = append(instructions, a.transferInstruction(
		source.SolanaKey(),
		dest.SolanaKey(),
		p.Sender.Public().SolanaKey(),
		uint64(p.Quarks),
	))
	ops = append(ops, opKindTransfer)

	raw, err := a.signAndMarshal(instructions, blockhash, p.Subsidizer, p.Sender)
	if err != nil {
		return assembledTx{}, err
	}
	return assembledTx{raw: raw, ops: ops, invoices: invoices}, nil
}

func (a *solanaAssembler) buildEarnBatch(b *types.EarnBatch, source types.PublicKey, earns []types.Earn, blockhash types.Blockhash) (assembledTx, error) {
	batchInvoices := make([]*types.Invoice, 0, len(earns))
	for _, e := range earns {
		if e.Invoice != nil {
			batchInvoices = append(batchInvoices, e.Invoice)
		}
	}
	if len(batchInvoices) > 0 && len(batchInvoices) != len(earns) {
		return assembledTx{}, fmt.Errorf("either all or none of the earns must carry an invoice")
	}

	memoInstr, invoices, err := a.memoInstruction(memo.TransactionTypeEarn, b.Memo, batchInvoices)
	if err != nil {
		return assembledTx{}, err
	}

	var instructions []solana.Instruction
	var ops []opKind
	if memoInstr != nil {
		instructions = append(instructions, memoInstr)
		ops = append(ops, opKindOther)
	}

	owner := b.Sender.Public().SolanaKey()
	for _, e := range earns {
		instructions = append(instructions, a.transferInstruction(
			source.SolanaKey(),
			e.Destination.SolanaKey(),
			owner,
			uint64(e.Quarks),
		))
		ops = append(ops, opKindTransfer)
	}

	raw, err := a.signAndMarshal(instructions, blockhash, b.Subsidizer, b.Sender)
	if err != nil {
		return assembledTx{}, err
	}
	return assembledTx{raw: raw, ops: ops, invoices: invoices}, nil
}

// memoInstruction selects the memo shape: an invoice list or a non-zero
// app index produce the structured 33-byte payload, otherwise a bare
// text memo is used when one was requested. The returned invoice list is
// what must accompany the submission.
func (a *solanaAssembler) memoInstruction(txType memo.TransactionType, text string, invoices []*types.Invoice) (solana.Instruction, []*types.Invoice, error) {
	if len(invoices) > 0 || a.appIndex > 0 {
		var fk [memo.ForeignKeySize]byte
		if len(invoices) > 0 {
			var err error
			fk, err = types.InvoiceListForeignKey(invoices)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to hash invoice list: %w", err)
			}
		}

		if txType == memo.TransactionTypeUnknown {
			txType = memo.TransactionTypeNone
		}
		m, err := memo.New(txType, a.appIndex, fk[:])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build memo: %w", err)
		}
		return rawMemoInstruction(m.Base64()), invoices, nil
	}

	if text != "" {
		return rawMemoInstruction(text), nil, nil
	}
	return nil, nil, nil
}

func rawMemoInstruction(data string) solana.Instruction {
	return solana.NewInstruction(solana.MemoProgramID, solana.AccountMetaSlice{}, []byte(data))
}

func (a *solanaAssembler) transferInstruction(source, dest, authority solana.PublicKey, quarks uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = tokenTransferInstruction
	binary.LittleEndian.PutUint64(data[1:], quarks)

	return solana.NewInstruction(
		a.cfg.TokenProgram.SolanaKey(),
		solana.AccountMetaSlice{
			solana.Meta(source).WRITE(),
			solana.Meta(dest).WRITE(),
			solana.Meta(authority).SIGNER(),
		},
		data,
	)
}

// signAndMarshal assembles the final transaction and signs it with every
// locally held key. When the service subsidizer is the fee payer its
// signature slot is left empty for the gateway to fill.
func (a *solanaAssembler) signAndMarshal(instructions []solana.Instruction, blockhash types.Blockhash, subsidizer, sender types.PrivateKey) ([]byte, error) {
	feePayer := a.cfg.Subsidizer
	if len(subsidizer) > 0 {
		feePayer = subsidizer.Public()
	}
	if len(feePayer) == 0 {
		return nil, types.ErrNoSubsidizer
	}

	tx, err := solana.NewTransaction(
		instructions,
		solana.Hash(blockhash),
		solana.TransactionPayer(feePayer.SolanaKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble transaction: %w", err)
	}

	signers := map[solana.PublicKey]solana.PrivateKey{
		sender.Public().SolanaKey(): sender.SolanaKey(),
	}
	if len(subsidizer) > 0 {
		signers[subsidizer.Public().SolanaKey()] = subsidizer.SolanaKey()
	}

	if _, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if k, ok := signers[key]; ok {
			return &k
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}
	return raw, nil
}

func invoiceSlice(inv *types.Invoice) []*types.Invoice {
	if inv == nil {
		return nil
	}
	return []*types.Invoice{inv}
}
