package core

// MetaDataKind constrains BalanceRecord.MetaData to a small enum instead
// of a free-form object, preserving forward compatibility without
// reintroducing dynamic typing. Only CreatingTransactionID is populated
// today (escrow balances record the transaction that opened them).
type MetaDataKind string

const metaCreatingTxID MetaDataKind = "creating_transaction_id"

// BalanceMetaData is the constrained replacement for the original's
// loosely-typed variant_object meta_data field.
type BalanceMetaData struct {
	CreatingTransactionID TransactionID `json:"creating_transaction_id,omitempty"`
}

// BalanceRecord is keyed by the content hash of its Condition (its
// BalanceID). Records are created on first deposit and never deleted:
// even a zero balance is preserved so it keeps pinning vote-weight
// history for any slate it carries.
type BalanceRecord struct {
	Condition       WithdrawCondition `json:"condition"`
	Balance         ShareAmount       `json:"balance"`
	DepositDate     int64             `json:"deposit_date"`
	LastUpdate      int64             `json:"last_update"`
	RestrictedOwner *Address          `json:"restricted_owner,omitempty"`
	MetaData        *BalanceMetaData  `json:"meta_data,omitempty"`
}

// ID returns this record's BalanceID, derived from its condition.
func (b *BalanceRecord) ID() BalanceID {
	return b.Condition.BalanceID()
}

// NewBalanceRecord builds an empty record for condition, ready for the
// first deposit to set its balance and deposit date.
func NewBalanceRecord(condition WithdrawCondition) *BalanceRecord {
	return &BalanceRecord{Condition: condition}
}

// GetSpendableBalance returns the portion of Balance a Withdraw may draw
// against at now. It returns the full Balance for every condition type,
// vesting included: no vesting schedule is stored, so nothing narrows
// spendability below the stored balance and now is not consulted.
func (b *BalanceRecord) GetSpendableBalance(now int64) ShareAmount {
	return b.Balance
}

// Owners delegates to the condition's signer set.
func (b *BalanceRecord) Owners() []Address {
	return b.Condition.Owners()
}
