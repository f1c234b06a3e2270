// Package testutil provides in-memory chain-state helpers for tests
// across the module. Never import this from production code.
package testutil

import "github.com/tolelom/ledgercore/chainstate"

// NewView returns a chainstate.View backed by a fresh in-memory store,
// evaluated at block timestamp now.
func NewView(now int64) *chainstate.View {
	return chainstate.NewView(chainstate.NewMemStore(), now)
}
