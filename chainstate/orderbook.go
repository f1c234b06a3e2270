package chainstate

import (
	"encoding/json"
	"fmt"

	"github.com/tolelom/ledgercore/core"
)

// orderKey is the (quote, base, price, owner) compound key orders and
// collateral are stored and iterated under. The price ratio is written as
// fixed-width zero-padded hex so lexicographic key order equals numeric
// price order, ascending.
func orderKey(prefix string, idx core.OrderIndexKey) string {
	return fmt.Sprintf("%s%020d:%020d:%016x:%s", prefix, idx.Quote, idx.Base, idx.Price.Ratio, idx.Owner)
}

func pairPrefix(prefix string, quote, base core.AssetID) string {
	return fmt.Sprintf("%s%020d:%020d:", prefix, quote, base)
}

// StoreOrder writes (or overwrites) a resting ask/bid/short order.
func (v *View) StoreOrder(rec *core.OrderRecord) error {
	return put(v.store, orderKey(prefixOrder, rec.Index), rec)
}

// DeleteOrder removes a fully-consumed order.
func (v *View) DeleteOrder(idx core.OrderIndexKey) error {
	return v.store.Delete([]byte(orderKey(prefixOrder, idx)))
}

func (v *View) scanOrders(quote, base core.AssetID, side core.OrderSide) ([]*core.OrderRecord, error) {
	it := v.store.NewIterator([]byte(pairPrefix(prefixOrder, quote, base)))
	defer it.Release()
	var out []*core.OrderRecord
	for it.Next() {
		var rec core.OrderRecord
		if err := json.Unmarshal(it.Value(), &rec); err != nil {
			return nil, err
		}
		if rec.Side == side {
			out = append(out, &rec)
		}
	}
	return out, it.Error()
}

// NextAsk returns the lowest-priced resting ask order for (quote, base),
// or nil if the book has none. Keys are stored in ascending-price order,
// so this is simply the first match.
func (v *View) NextAsk(quote, base core.AssetID) (*core.OrderRecord, error) {
	orders, err := v.scanOrders(quote, base, core.OrderAsk)
	if err != nil || len(orders) == 0 {
		return nil, err
	}
	return orders[0], nil
}

// NextBid returns the highest-priced resting bid order for (quote, base),
// or nil if none. Bids are stored in the same ascending-price key space
// as asks, so the best bid is the last match.
func (v *View) NextBid(quote, base core.AssetID) (*core.OrderRecord, error) {
	orders, err := v.scanOrders(quote, base, core.OrderBid)
	if err != nil || len(orders) == 0 {
		return nil, err
	}
	return orders[len(orders)-1], nil
}

// NextShort returns the short order with the lowest offered price-limit
// (the most competitive short, ordered by (price_limit, owner)).
func (v *View) NextShort(quote, base core.AssetID) (*core.OrderRecord, error) {
	orders, err := v.scanOrders(quote, base, core.OrderShort)
	if err != nil || len(orders) == 0 {
		return nil, err
	}
	return orders[0], nil
}

// ---- Collateral ----

func (v *View) StoreCollateral(rec *core.CollateralRecord) error {
	return put(v.store, orderKey(prefixCollat, rec.Index), rec)
}

func (v *View) DeleteCollateral(idx core.OrderIndexKey) error {
	return v.store.Delete([]byte(orderKey(prefixCollat, idx)))
}

// AllCollateral returns every collateral record for (quote, base),
// regardless of lifecycle state. The matching engine filters by state and
// feed price itself; scanning the full set here is what lets it rescan
// after every trade instead of trusting a stale iterator.
func (v *View) AllCollateral(quote, base core.AssetID) ([]*core.CollateralRecord, error) {
	it := v.store.NewIterator([]byte(pairPrefix(prefixCollat, quote, base)))
	defer it.Release()
	var out []*core.CollateralRecord
	for it.Next() {
		var rec core.CollateralRecord
		if err := json.Unmarshal(it.Value(), &rec); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, it.Error()
}
