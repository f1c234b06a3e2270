// Package chainstate is the chain-state view: get/store access to every
// entity kind (balances, assets, slates, orders, collateral, burns,
// market history) keyed by id, layered so a pending view overlays a
// committed view. All evaluator and matching-engine code works
// exclusively against a View so a failed operation can be discarded by
// dropping the overlay instead of undoing individual writes.
package chainstate

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tolelom/ledgercore/core"
)

const (
	prefixBalance = "bal:"
	prefixAsset   = "asset:"
	prefixSlate   = "slate:"
	prefixVote    = "vote:"
	prefixAccount = "acct:"
	prefixAuth    = "auth:"
	prefixBurn    = "burn:"
	prefixOrder   = "order:"
	prefixCollat  = "collat:"
	prefixHist    = "hist:"
)

// View is the chain-state view contract of the external-interfaces
// section: getters and setters for every entity kind, plus Now().
type View struct {
	store DB
	now   int64
}

// NewView wraps store (a committed DB or a *PendingOverlay) as a typed
// chain-state view evaluated at block timestamp now.
func NewView(store DB, now int64) *View {
	return &View{store: store, now: now}
}

// Now returns the block timestamp this view is evaluated at.
func (v *View) Now() int64 { return v.now }

// Overlay layers a fresh pending overlay over this view's store and
// returns a new View sharing the same Now(), the "scoped acquisition"
// every operation and matching round works against.
func (v *View) Overlay() (*View, *PendingOverlay) {
	ov := NewOverlay(v.store)
	return NewView(ov, v.now), ov
}

func get(store DB, key string, out any) (bool, error) {
	data, err := store.Get([]byte(key))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func put(store DB, key string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return store.Set([]byte(key), data)
}

// ---- Balance ----

// GetBalance returns the record for id, or (nil, false, nil) if none
// exists yet — the explicit "optional record" the original's
// obalance_record stands in for.
func (v *View) GetBalance(id core.BalanceID) (*core.BalanceRecord, bool, error) {
	var rec core.BalanceRecord
	ok, err := get(v.store, prefixBalance+string(id), &rec)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &rec, true, nil
}

func (v *View) SetBalance(rec *core.BalanceRecord) error {
	return put(v.store, prefixBalance+string(rec.ID()), rec)
}

// ---- Asset ----

func (v *View) GetAsset(id core.AssetID) (*core.AssetRecord, bool, error) {
	var rec core.AssetRecord
	ok, err := get(v.store, fmt.Sprintf("%s%020d", prefixAsset, id), &rec)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &rec, true, nil
}

func (v *View) SetAsset(rec *core.AssetRecord) error {
	return put(v.store, fmt.Sprintf("%s%020d", prefixAsset, rec.ID), rec)
}

// ---- Slate ----

func (v *View) GetDelegateSlate(id core.SlateID) (*core.Slate, bool, error) {
	var s core.Slate
	ok, err := get(v.store, prefixSlate+string(id), &s)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &s, true, nil
}

func (v *View) StoreDelegateSlate(id core.SlateID, s *core.Slate) error {
	return put(v.store, prefixSlate+string(id), s)
}

// GetSlateVote returns the accumulated vote weight for a slate (the sum
// of every AdjustVote call applied to it so far).
func (v *View) GetSlateVote(id core.SlateID) (core.ShareAmount, error) {
	var amt core.ShareAmount
	ok, err := get(v.store, prefixVote+string(id), &amt)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return amt, nil
}

func (v *View) SetSlateVote(id core.SlateID, amt core.ShareAmount) error {
	return put(v.store, prefixVote+string(id), amt)
}

// ---- Accounts (existence only; registration is out of scope) ----

func (v *View) AccountExists(id core.AccountID) (bool, error) {
	var flag bool
	ok, err := get(v.store, fmt.Sprintf("%s%020d", prefixAccount, id), &flag)
	if err != nil {
		return false, err
	}
	return ok && flag, nil
}

// SetAccountExists registers id as a known account. Real account
// registration is an external collaborator's concern; this exists so
// tests and a genesis-style bootstrap can seed accounts burn can
// reference.
func (v *View) SetAccountExists(id core.AccountID) error {
	return put(v.store, fmt.Sprintf("%s%020d", prefixAccount, id), true)
}

// ---- Authorization (restricted-asset allow-list) ----

func (v *View) GetAuthorization(asset core.AssetID, addr core.Address) (bool, error) {
	var flag bool
	ok, err := get(v.store, fmt.Sprintf("%s%020d:%s", prefixAuth, asset, addr), &flag)
	if err != nil {
		return false, err
	}
	return ok && flag, nil
}

func (v *View) SetAuthorization(asset core.AssetID, addr core.Address, allowed bool) error {
	return put(v.store, fmt.Sprintf("%s%020d:%s", prefixAuth, asset, addr), allowed)
}

// ---- Burn records ----

func (v *View) GetBurn(key core.BurnRecordKey) (*core.BurnRecord, bool, error) {
	var rec core.BurnRecord
	ok, err := get(v.store, burnKey(key), &rec)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &rec, true, nil
}

func (v *View) StoreBurn(key core.BurnRecordKey, rec *core.BurnRecord) error {
	return put(v.store, burnKey(key), rec)
}

func burnKey(key core.BurnRecordKey) string {
	return fmt.Sprintf("%s%020d:%s", prefixBurn, key.AccountID, key.TransactionID)
}

// ---- Market history ----

// AppendMarketHistory stores e, write-only from the matching engine's
// perspective and never consulted for validation.
func (v *View) AppendMarketHistory(e core.MarketHistoryEntry) error {
	key := fmt.Sprintf("%s%020d:%020d:%016x", prefixHist, e.Quote, e.Base, uint64(e.Timestamp))
	return put(v.store, key, e)
}
