// Package txstate holds the per-transaction evaluation accumulator: the
// funds-in/funds-out/max-fee/yield buckets, the verified-signature set,
// and vote adjustment. Every balance operation reads and writes through a
// *State rather than mutating chain state directly for these concerns.
package txstate

import (
	"github.com/tolelom/ledgercore/chainstate"
	"github.com/tolelom/ledgercore/core"
)

// State is the mutable per-transaction evaluation state. Signatures are
// supplied already-verified by an external collaborator (signature
// production and cryptographic verification are out of scope for this
// core); State only consumes the resulting set.
type State struct {
	TxID core.TransactionID

	FundsIn  map[core.AssetID]core.ShareAmount
	FundsOut map[core.AssetID]core.ShareAmount
	MaxFee   map[core.AssetID]core.ShareAmount
	Yield    map[core.AssetID]core.ShareAmount

	signed map[core.Address]bool
}

// New creates an empty State for evaluating txID, with signers as the
// externally-verified signature set.
func New(txID core.TransactionID, signers []core.Address) *State {
	s := &State{
		TxID:     txID,
		FundsIn:  make(map[core.AssetID]core.ShareAmount),
		FundsOut: make(map[core.AssetID]core.ShareAmount),
		MaxFee:   make(map[core.AssetID]core.ShareAmount),
		Yield:    make(map[core.AssetID]core.ShareAmount),
		signed:   make(map[core.Address]bool, len(signers)),
	}
	for _, a := range signers {
		s.signed[a] = true
	}
	return s
}

// CheckSignature reports whether owner is among the verified signers.
func (s *State) CheckSignature(owner core.Address) bool {
	return s.signed[owner]
}

// VerifyAuthority reports whether at least one key in authority has
// signed — the override check for retractable-asset actions.
func (s *State) VerifyAuthority(authority []core.Address) bool {
	for _, owner := range authority {
		if s.signed[owner] {
			return true
		}
	}
	return false
}

// SubBalance records amount of assetID moving into a balance record (a
// deposit): it accumulates into funds_in, the side Settle requires the
// transaction's withdrawals to cover. Named after the original's
// eval_state.sub_balance, called by deposit_operation::evaluate.
func (s *State) SubBalance(assetID core.AssetID, amount core.ShareAmount) {
	s.FundsIn[assetID] += amount
}

// AddBalance records amount of assetID moving out of a balance record (a
// withdrawal, or the update-vote fee): it accumulates into funds_out, matched
// against funds_in plus yield at Settle.
func (s *State) AddBalance(assetID core.AssetID, amount core.ShareAmount) {
	s.FundsOut[assetID] += amount
}

// AdjustVote adds delta to slateID's accumulated vote weight, writing
// through view. Called whenever a base-coin balance carrying a slate is
// deposited into, withdrawn from, or re-voted.
func (s *State) AdjustVote(view *chainstate.View, slateID core.SlateID, delta core.ShareAmount) error {
	current, err := view.GetSlateVote(slateID)
	if err != nil {
		return err
	}
	return view.SetSlateVote(slateID, current+delta)
}

// Settle checks that funds_out - funds_in - yield is non-negative and at
// most max_fee, per asset; the remainder (if any) is the realised fee
// paid to the block producer. Returns the per-asset realised fee map.
func (s *State) Settle() (map[core.AssetID]core.ShareAmount, error) {
	assets := make(map[core.AssetID]bool)
	for id := range s.FundsIn {
		assets[id] = true
	}
	for id := range s.FundsOut {
		assets[id] = true
	}
	for id := range s.MaxFee {
		assets[id] = true
	}
	for id := range s.Yield {
		assets[id] = true
	}

	fees := make(map[core.AssetID]core.ShareAmount, len(assets))
	for id := range assets {
		net := s.FundsOut[id] - s.FundsIn[id] - s.Yield[id]
		if net < 0 {
			return nil, core.NewError(core.KindInsufficientFunds, "asset_id", id, "net", net)
		}
		if net > s.MaxFee[id] {
			return nil, core.NewError(core.KindInsufficientFunds, "asset_id", id, "net", net, "max_fee", s.MaxFee[id])
		}
		if net > 0 {
			fees[id] = net
		}
	}
	return fees, nil
}
