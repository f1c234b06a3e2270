package core

import (
	"encoding/json"
	"sort"

	"github.com/tolelom/ledgercore/crypto"
)

// Address is an opaque owner key hash. Production of the hash from a real
// public key is the wallet's job (out of scope here); the core only ever
// compares and stores addresses.
type Address string

// ZeroAddress is the sentinel address used by release_escrow to mean
// "mutual release" (both sender and receiver must sign) instead of
// designating a specific releasing party.
const ZeroAddress Address = ""

// BalanceID is the content hash of a WithdrawCondition; it is the
// balance record's identity.
type BalanceID string

// AssetID is a small integer; 0 is the base coin.
type AssetID uint32

// BaseAsset is the reserved id of the chain's native token.
const BaseAsset AssetID = 0

// SlateID is the content hash of a sorted delegate list.
type SlateID string

// AccountID is a signed integer; its sign is used elsewhere to encode
// approval direction (out of scope for this core).
type AccountID int64

// TransactionID identifies an evaluated transaction.
type TransactionID string

// ShareAmount is a signed 64-bit quantity of an asset's smallest unit.
// A negative ShareAmount in a stored record is always a bug.
type ShareAmount int64

// canonicalHash hashes the canonical JSON encoding of v and returns it as
// a hex digest, the content-addressing idiom used throughout this module
// for anything whose identity is defined structurally rather than
// assigned.
func canonicalHash(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic("core: canonical hash of unmarshalable value: " + err.Error())
	}
	return crypto.Hash(data)
}

// SlateHash computes the content-addressed SlateID of a sorted,
// deduplicated delegate list. Callers must validate sort order and bounds
// before calling this; SlateHash does not re-validate.
func SlateHash(delegates []AccountID) SlateID {
	cp := make([]AccountID, len(delegates))
	copy(cp, delegates)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	return SlateID(canonicalHash(cp))
}
