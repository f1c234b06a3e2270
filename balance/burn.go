package balance

import (
	"github.com/tolelom/ledgercore/chainstate"
	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/txstate"
)

// BurnOp is the burn operation's input. Signature is opaque to the core
// (signing is out of scope) and is only carried through into the stored
// BurnRecord for later audit.
type BurnOp struct {
	Amount    core.ShareAmount
	AssetID   core.AssetID
	AccountID core.AccountID
	Message   string
	Signature []byte
}

// Burn permanently retires Amount of AssetID from supply. A non-empty
// Message requires the base coin. The base coin additionally requires
// Amount >= params.MinBurnFee. Market-issued assets cannot be burned.
func Burn(view *chainstate.View, eval *txstate.State, params core.Params, op BurnOp) error {
	if op.Amount < 0 {
		return core.NewError(core.KindNegativeDeposit, "amount", op.Amount)
	}

	if op.Message != "" && op.AssetID != core.BaseAsset {
		return core.NewError(core.KindInvalidWithdrawCond, "reason", "message_requires_base_coin")
	}

	if op.AssetID == core.BaseAsset && op.Amount < params.MinBurnFee {
		return core.NewError(core.KindInsufficientFunds, "amount", op.Amount, "min_burn_fee", params.MinBurnFee)
	}

	assetRec, found, err := view.GetAsset(op.AssetID)
	if err != nil {
		return err
	}
	if !found {
		return core.NewError(core.KindUnknownAssetRecord, "asset_id", op.AssetID)
	}
	if assetRec.IsMarketIssued() {
		return core.NewError(core.KindMarketIssuedRestricted, "reason", "market_issued_cannot_be_burned")
	}

	assetRec.CurrentShareSupply -= op.Amount
	eval.SubBalance(op.AssetID, op.Amount)

	if err := view.SetAsset(assetRec); err != nil {
		return err
	}

	if op.AccountID != 0 {
		// you can offer burnt offerings to no one in particular by using
		// account id 0; any other id must reference an existing account.
		exists, err := view.AccountExists(absAccountID(op.AccountID))
		if err != nil {
			return err
		}
		if !exists {
			return core.NewError(core.KindUnknownAccountRecord, "account_id", op.AccountID)
		}
	}

	key := core.BurnRecordKey{AccountID: op.AccountID, TransactionID: eval.TxID}
	rec := &core.BurnRecord{Amount: op.Amount, AssetID: op.AssetID, Message: op.Message, MessageSignature: op.Signature}
	return view.StoreBurn(key, rec)
}

func absAccountID(id core.AccountID) core.AccountID {
	if id < 0 {
		return -id
	}
	return id
}
