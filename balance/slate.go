package balance

import (
	"github.com/tolelom/ledgercore/chainstate"
	"github.com/tolelom/ledgercore/core"
)

// DefineDelegateSlateOp is the define_delegate_slate operation's input.
type DefineDelegateSlateOp struct {
	SupportedDelegates []core.AccountID
}

// DefineDelegateSlate validates and stores a slate, keyed by its content
// hash. Redefining an already-stored slate is a no-op: slates are
// immutable once published.
func DefineDelegateSlate(view *chainstate.View, params core.Params, op DefineDelegateSlateOp) error {
	slate := core.Slate{SupportedDelegates: op.SupportedDelegates}
	if err := slate.Validate(params.MaxSlateSize); err != nil {
		return err
	}

	id := slate.ID()
	_, found, err := view.GetDelegateSlate(id)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return view.StoreDelegateSlate(id, &slate)
}
