// Package txeval sequences a transaction's operations through the
// balance package against a pending chainstate.View, then settles the
// per-transaction accumulator. It is the sole entry point for operation
// evaluation: nothing outside this package calls balance.* directly.
package txeval

import (
	"github.com/tolelom/ledgercore/balance"
	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/events"
)

// OperationKind tags which balance evaluator a Transaction's Operation
// dispatches to. OpOther covers registration/market operations that are
// out of scope for this core but must still be accepted verbatim (a
// no-op here) rather than rejected, per the evaluator's operation set.
type OperationKind string

const (
	OpDeposit             OperationKind = "deposit"
	OpWithdraw            OperationKind = "withdraw"
	OpBurn                OperationKind = "burn"
	OpReleaseEscrow       OperationKind = "release_escrow"
	OpUpdateBalanceVote   OperationKind = "update_balance_vote"
	OpDefineDelegateSlate OperationKind = "define_delegate_slate"
	OpPayFee              OperationKind = "pay_fee"
	OpOther               OperationKind = "other"
)

// Operation is a tagged union over the seven evaluated operation kinds
// plus the accepted-but-ignored "other" catch-all. Exactly one of the
// typed fields matching Kind should be set.
type Operation struct {
	Kind OperationKind

	Deposit             *balance.DepositOp
	Withdraw            *balance.WithdrawOp
	Burn                *balance.BurnOp
	ReleaseEscrow       *balance.ReleaseEscrowOp
	UpdateBalanceVote   *balance.UpdateBalanceVoteOp
	DefineDelegateSlate *balance.DefineDelegateSlateOp
	PayFee              *balance.PayFeeOp
}

// Transaction is the evaluator's unit of work: an already-decoded
// operation list plus the externally-verified signer set that backs
// CheckSignature/VerifyAuthority for every operation in it. Emitter is
// optional; when set, one event per evaluated operation other than
// pay_fee is published
// after the transaction's overlay commits, never before, so a
// subscriber (an indexer, a wallet notifier) only ever observes
// committed state.
type Transaction struct {
	ID         core.TransactionID
	Signers    []core.Address
	Operations []Operation
	Emitter    *events.Emitter
}

// eventKind maps an evaluated OperationKind to the event it publishes on
// commit. OpOther has no event: it was never evaluated. OpPayFee has no
// event either.
var eventKind = map[OperationKind]events.EventType{
	OpDeposit:             events.EventDeposit,
	OpWithdraw:            events.EventWithdraw,
	OpBurn:                events.EventBurn,
	OpReleaseEscrow:       events.EventEscrowReleased,
	OpUpdateBalanceVote:   events.EventVoteUpdated,
	OpDefineDelegateSlate: events.EventSlateDefined,
}

// Result is what a successfully evaluated transaction yields: the
// realised fee per asset, handed to the block producer.
type Result struct {
	Fees map[core.AssetID]core.ShareAmount
}
