package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"craftmart/internal/cart"
	applog "craftmart/internal/log"
	"craftmart/internal/money"
	"craftmart/internal/pricing"
	"craftmart/internal/repos"
	"craftmart/internal/validate"
)

var (
	// ErrEmptySelection blocks submission when nothing resolvable is
	// selected. Submission never proceeds partially.
	ErrEmptySelection = errors.New("checkout: no resolvable items selected")
	// ErrRejected wraps a non-ok response from the order store; the
	// message travels verbatim and the cart stays untouched.
	ErrRejected = errors.New("checkout: order rejected")
)

// Options are the checkout-level fields accompanying every submission.
type Options struct {
	AddressID  string `json:"addressId"`
	GSTInvoice bool   `json:"gstInvoice"`
	Notes      string `json:"notes"`
	CouponCode string `json:"couponCode,omitempty"`
}

// OrderItem is one payload entry per selected line item. Exactly one of
// ProductID (24-hex store id) or ProductSlug is set.
type OrderItem struct {
	ProductID   string  `json:"productId,omitempty"`
	ProductSlug string  `json:"productSlug,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Currency    string  `json:"currency"`
	Seller      string  `json:"seller,omitempty"`
	Variation   string  `json:"variation,omitempty"`
}

type placeRequest struct {
	Items          []OrderItem `json:"items"`
	Checkout       Options     `json:"checkout"`
	CartItemIDs    []string    `json:"cartItemIds"`
	RemoveFromCart bool        `json:"removeFromCart"`
}

type placeResponse struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message,omitempty"`
	Order   json.RawMessage `json:"order,omitempty"`
}

// Receipt is what a successful submission hands back to the UI.
type Receipt struct {
	OrderID string          `json:"orderId"`
	Items   []OrderItem     `json:"items"`
	Remote  json.RawMessage `json:"order,omitempty"`
}

// BuildItems converts the selected line items into order payload entries
// and returns the cart ids they came from. Entries without any identity
// are filtered out; the unit price always derives from the line total so
// bundle overrides survive into the order.
func BuildItems(items []cart.LineItem, selected []string) ([]OrderItem, []string) {
	sel := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		sel[id] = struct{}{}
	}
	var payload []OrderItem
	var ids []string
	for _, it := range items {
		if _, ok := sel[it.ID]; !ok {
			continue
		}
		if it.ID == "" {
			continue
		}
		entry := OrderItem{
			Quantity:  it.Quantity,
			UnitPrice: unitPrice(it),
			Currency:  it.Currency,
			Seller:    it.Seller,
			Variation: it.Variation,
		}
		if validate.ObjectID(it.ID) {
			entry.ProductID = it.ID
		} else {
			entry.ProductSlug = it.ID
		}
		payload = append(payload, entry)
		ids = append(ids, it.ID)
	}
	return payload, ids
}

// unitPrice divides the possibly-overridden line total by quantity instead
// of reusing the stored unit price.
func unitPrice(it cart.LineItem) float64 {
	qty := it.Quantity
	if qty < 1 {
		qty = 1
	}
	return money.Round2(decimal.NewFromFloat(it.LineTotal()).
		Div(decimal.NewFromInt(int64(qty)))).
		InexactFloat64()
}

// Service submits orders to the remote store and logs accepted ones
// locally for session history.
type Service struct {
	base    string
	timeout time.Duration
	orders  *repos.OrderRepo
	engine  *pricing.Engine
}

func NewService(base string, timeout time.Duration, orders *repos.OrderRepo, engine *pricing.Engine) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if engine == nil {
		engine = pricing.NewEngine(nil)
	}
	return &Service{base: base, timeout: timeout, orders: orders, engine: engine}
}

// Submit places an order for the cart's current selection. On success it
// removes exactly the submitted items, leaving the rest of the cart alone;
// on any failure the cart is left completely unchanged so the caller can
// retry with the same selection.
func (s *Service) Submit(ctx context.Context, agg *cart.Aggregate, opts Options) (*Receipt, error) {
	items, selected := agg.Items(), agg.Selected()
	payload, ids := BuildItems(items, selected)
	if len(payload) == 0 {
		return nil, ErrEmptySelection
	}
	totals := s.engine.Compute(pricing.Input{
		Items:      items,
		Selected:   selected,
		CouponCode: opts.CouponCode,
		GSTInvoice: opts.GSTInvoice,
	})

	req := placeRequest{Items: payload, Checkout: opts, CartItemIDs: ids, RemoveFromCart: true}
	agent := fiber.Post(s.base + "/orders/place").JSON(req).Timeout(s.timeout)
	var resp placeResponse
	code, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return nil, fmt.Errorf("checkout: place order: %w", errs[0])
	}
	if code != fiber.StatusOK || !resp.OK {
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", code)
		}
		return nil, fmt.Errorf("%s: %w", msg, ErrRejected)
	}

	for _, id := range ids {
		agg.Remove(ctx, id)
	}

	receipt := &Receipt{OrderID: uuid.NewString(), Items: payload, Remote: resp.Order}
	s.record(agg.SessionID(), receipt, opts, totals)
	return receipt, nil
}

// record appends to the local order log. Best-effort; a logging failure
// never fails a checkout the remote store already accepted.
func (s *Service) record(sessionID string, receipt *Receipt, opts Options, totals pricing.Result) {
	if s.orders == nil {
		return
	}
	err := s.orders.Create(repos.OrderHeader{
		ID:         receipt.OrderID,
		SessionID:  sessionID,
		AddressID:  opts.AddressID,
		GSTInvoice: opts.GSTInvoice,
		Notes:      opts.Notes,
		CouponCode: opts.CouponCode,
		Subtotal:   totals.Subtotal,
		GrandTotal: totals.GrandTotal,
		Currency:   totals.Currency,
	})
	if err != nil {
		applog.Error(nil, "checkout.record", err, map[string]any{"order_id": receipt.OrderID})
		return
	}
	for _, it := range receipt.Items {
		if err := s.orders.InsertItem(receipt.OrderID, repos.OrderItemRow{
			ProductID:   it.ProductID,
			ProductSlug: it.ProductSlug,
			Qty:         it.Quantity,
			UnitPrice:   it.UnitPrice,
			Currency:    it.Currency,
			Seller:      it.Seller,
			Variation:   it.Variation,
		}); err != nil {
			applog.Error(nil, "checkout.record.item", err, map[string]any{"order_id": receipt.OrderID})
		}
	}
}

// History lists the session's locally recorded orders.
func (s *Service) History(sessionID string) ([]repos.OrderHeader, error) {
	if s.orders == nil {
		return nil, nil
	}
	return s.orders.ListBySession(sessionID)
}
