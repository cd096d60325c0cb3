package cart

import (
	"context"

	applog "craftmart/internal/log"
)

// Aggregate is the ordered cart for one session plus the selection subset
// marked for checkout. One instance per session; the caller serializes
// mutations, so there is no locking inside.
//
// Store writes are best-effort: a failing store logs and the in-memory
// state keeps going. No cart operation ever errors because persistence is
// down.
type Aggregate struct {
	sessionID string
	store     Store
	items     []LineItem
	selected  []string
}

// NewAggregate loads any persisted cart for the session and selects all of
// it, matching the implicit select-on-add behavior for restored items.
func NewAggregate(ctx context.Context, sessionID string, store Store) *Aggregate {
	a := &Aggregate{sessionID: sessionID, store: store}
	items, err := store.Fetch(ctx, sessionID)
	if err != nil {
		applog.Error(nil, "cart.load", err, map[string]any{"sid": sessionID})
		return a
	}
	a.items = items
	for _, it := range items {
		a.selected = append(a.selected, it.ID)
	}
	return a
}

func (a *Aggregate) SessionID() string { return a.sessionID }

// Mode reports the persistence mode backing this cart.
func (a *Aggregate) Mode() Mode {
	if fs, ok := a.store.(*FallbackStore); ok {
		return fs.Mode()
	}
	return ModeLocal
}

// Items returns the cart in first-add insertion order.
func (a *Aggregate) Items() []LineItem {
	out := make([]LineItem, len(a.items))
	copy(out, a.items)
	return out
}

// Selected returns the checkout selection, re-intersected with the current
// cart so it can never reference a removed item.
func (a *Aggregate) Selected() []string {
	a.reconcile()
	out := make([]string, len(a.selected))
	copy(out, a.selected)
	return out
}

// Add normalizes and merges a raw item. A matching identity accumulates
// quantity; the incoming price wins and the total is recomputed unless the
// caller sent an explicit totalPrice. New items are appended and
// implicitly selected.
func (a *Aggregate) Add(ctx context.Context, raw map[string]any) (*LineItem, error) {
	it, err := Normalize(raw, NamespaceCart)
	if err != nil {
		return nil, err
	}

	if i := a.index(it.ID); i >= 0 {
		ex := &a.items[i]
		ex.Quantity += it.Quantity
		ex.Price = it.Price
		if HasTotalOverride(raw) {
			ex.TotalPrice = it.TotalPrice
		} else {
			ex.TotalPrice = ex.Price * float64(ex.Quantity)
		}
		a.persist(ctx, "update", func() error { return a.store.Update(ctx, a.sessionID, *ex) })
		a.reconcile()
		merged := *ex
		return &merged, nil
	}

	a.items = append(a.items, *it)
	a.selected = append(a.selected, it.ID)
	a.persist(ctx, "add", func() error { return a.store.Add(ctx, a.sessionID, *it) })
	a.reconcile()
	added := *it
	return &added, nil
}

// UpdateQuantity sets a new quantity. Zero or negative is a removal
// signal, not a clamp. A quantity update always resets the derived total,
// discarding any earlier override.
func (a *Aggregate) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity <= 0 {
		a.Remove(ctx, id)
		return
	}
	i := a.index(id)
	if i < 0 {
		return
	}
	it := &a.items[i]
	it.Quantity = quantity
	it.TotalPrice = it.Price * float64(quantity)
	a.persist(ctx, "update", func() error { return a.store.Update(ctx, a.sessionID, *it) })
	a.reconcile()
}

// Remove drops the item if present. Idempotent.
func (a *Aggregate) Remove(ctx context.Context, id string) {
	i := a.index(id)
	if i < 0 {
		return
	}
	a.items = append(a.items[:i], a.items[i+1:]...)
	a.persist(ctx, "remove", func() error { return a.store.Remove(ctx, a.sessionID, id) })
	a.reconcile()
}

// Toggle flips an item in or out of the checkout selection. Unknown ids
// are ignored.
func (a *Aggregate) Toggle(id string) {
	if a.index(id) < 0 {
		return
	}
	for i, sel := range a.selected {
		if sel == id {
			a.selected = append(a.selected[:i], a.selected[i+1:]...)
			return
		}
	}
	a.selected = append(a.selected, id)
}

// Refresh re-reads the cart from the store and intersects the selection
// with the new contents.
func (a *Aggregate) Refresh(ctx context.Context) {
	items, err := a.store.Fetch(ctx, a.sessionID)
	if err != nil {
		applog.Error(nil, "cart.refresh", err, map[string]any{"sid": a.sessionID})
		return
	}
	a.items = items
	a.reconcile()
}

func (a *Aggregate) index(id string) int {
	for i, it := range a.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// reconcile keeps the selection a subset of current cart ids.
func (a *Aggregate) reconcile() {
	present := make(map[string]struct{}, len(a.items))
	for _, it := range a.items {
		present[it.ID] = struct{}{}
	}
	kept := a.selected[:0]
	for _, id := range a.selected {
		if _, ok := present[id]; ok {
			kept = append(kept, id)
		}
	}
	a.selected = kept
}

func (a *Aggregate) persist(ctx context.Context, op string, write func() error) {
	if err := write(); err != nil {
		applog.Error(nil, "cart.persist", err, map[string]any{"sid": a.sessionID, "op": op})
	}
}
