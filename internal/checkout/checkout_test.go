package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"craftmart/internal/cart"
	"craftmart/internal/checkout"
	"craftmart/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := repos.EnsureSchema(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func seededCart(t *testing.T, db *sqlx.DB) *cart.Aggregate {
	t.Helper()
	ctx := context.Background()
	agg := cart.NewAggregate(ctx, "chk-session", repos.NewCartRepo(db))
	add := func(raw map[string]any) {
		t.Helper()
		if _, err := agg.Add(ctx, raw); err != nil {
			t.Fatal(err)
		}
	}
	add(map[string]any{"id": "64f1a2b3c4d5e6f708192a3b", "title": "Plywood", "price": 325.0, "quantity": 2, "seller": "BuildMart"})
	add(map[string]any{"id": "oak-flooring-nat", "title": "Oak Flooring", "price": 540.0, "quantity": 3, "seller": "FloorHub"})
	add(map[string]any{"id": "keep-me", "title": "Hardwax Oil", "price": 1200.0, "quantity": 1, "seller": "FloorHub"})
	return agg
}

type capturedOrder struct {
	Items []checkout.OrderItem `json:"items"`
	Checkout struct {
		AddressID  string `json:"addressId"`
		GSTInvoice bool   `json:"gstInvoice"`
		Notes      string `json:"notes"`
		CouponCode string `json:"couponCode"`
	} `json:"checkout"`
	CartItemIDs    []string `json:"cartItemIds"`
	RemoveFromCart bool     `json:"removeFromCart"`
}

func orderServer(t *testing.T, status int, body string, captured *capturedOrder) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/place" {
			http.NotFound(w, r)
			return
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("bad payload: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestSubmit_PartialCheckout(t *testing.T) {
	db := memdb(t)
	agg := seededCart(t, db)
	agg.Toggle("keep-me") // deselect; 2 of 3 items go out

	var captured capturedOrder
	srv := orderServer(t, http.StatusOK, `{"ok":true,"order":{"id":"remote-1"}}`, &captured)
	defer srv.Close()

	svc := checkout.NewService(srv.URL, time.Second, repos.NewOrderRepo(db), nil)
	receipt, err := svc.Submit(context.Background(), agg, checkout.Options{AddressID: "addr-1", GSTInvoice: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(receipt.Items) != 2 {
		t.Fatalf("want 2 submitted items, got %d", len(receipt.Items))
	}

	// Exactly the unselected item survives.
	items := agg.Items()
	if len(items) != 1 || items[0].ID != "keep-me" {
		t.Fatalf("cart after checkout = %+v", items)
	}

	if !captured.RemoveFromCart || len(captured.CartItemIDs) != 2 {
		t.Fatalf("payload = %+v", captured)
	}
	if !captured.Checkout.GSTInvoice || captured.Checkout.AddressID != "addr-1" {
		t.Fatalf("checkout options lost: %+v", captured.Checkout)
	}
}

func TestSubmit_HexIDvsSlug(t *testing.T) {
	db := memdb(t)
	agg := seededCart(t, db)
	agg.Toggle("keep-me")

	var captured capturedOrder
	srv := orderServer(t, http.StatusOK, `{"ok":true}`, &captured)
	defer srv.Close()

	svc := checkout.NewService(srv.URL, time.Second, nil, nil)
	if _, err := svc.Submit(context.Background(), agg, checkout.Options{}); err != nil {
		t.Fatal(err)
	}

	byKey := map[string]checkout.OrderItem{}
	for _, it := range captured.Items {
		byKey[it.ProductID+it.ProductSlug] = it
	}
	hex, ok := byKey["64f1a2b3c4d5e6f708192a3b"]
	if !ok || hex.ProductSlug != "" {
		t.Fatalf("24-hex identity must travel as productId: %+v", captured.Items)
	}
	slug, ok := byKey["oak-flooring-nat"]
	if !ok || slug.ProductID != "" {
		t.Fatalf("non-hex identity must travel as productSlug: %+v", captured.Items)
	}
}

func TestSubmit_UnitPriceDerivesFromOverride(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	agg := cart.NewAggregate(ctx, "ovr-session", repos.NewCartRepo(db))
	if _, err := agg.Add(ctx, map[string]any{
		"id": "bundle-1", "price": 500.0, "quantity": 3, "totalPrice": 1000.0,
	}); err != nil {
		t.Fatal(err)
	}

	var captured capturedOrder
	srv := orderServer(t, http.StatusOK, `{"ok":true}`, &captured)
	defer srv.Close()

	svc := checkout.NewService(srv.URL, time.Second, nil, nil)
	if _, err := svc.Submit(ctx, agg, checkout.Options{}); err != nil {
		t.Fatal(err)
	}
	// 1000/3 rounded to 2 places, never the stored unit price of 500.
	if got := captured.Items[0].UnitPrice; got != 333.33 {
		t.Fatalf("unit price = %v, want 333.33", got)
	}
}

func TestSubmit_EmptySelection(t *testing.T) {
	db := memdb(t)
	agg := seededCart(t, db)
	for _, id := range agg.Selected() {
		agg.Toggle(id)
	}

	svc := checkout.NewService("http://127.0.0.1:0", time.Second, nil, nil)
	_, err := svc.Submit(context.Background(), agg, checkout.Options{})
	if !errors.Is(err, checkout.ErrEmptySelection) {
		t.Fatalf("want ErrEmptySelection, got %v", err)
	}
	if len(agg.Items()) != 3 {
		t.Fatal("cart must be untouched")
	}
}

func TestSubmit_RejectionLeavesCartUnchanged(t *testing.T) {
	db := memdb(t)
	agg := seededCart(t, db)

	srv := orderServer(t, http.StatusOK, `{"ok":false,"message":"address not serviceable"}`, nil)
	defer srv.Close()

	svc := checkout.NewService(srv.URL, time.Second, repos.NewOrderRepo(db), nil)
	_, err := svc.Submit(context.Background(), agg, checkout.Options{})
	if !errors.Is(err, checkout.ErrRejected) {
		t.Fatalf("want ErrRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "address not serviceable") {
		t.Fatalf("remote message must pass through verbatim, got %q", err.Error())
	}
	if len(agg.Items()) != 3 {
		t.Fatal("cart must be unchanged after rejection")
	}

	// Retry with the same selection succeeds.
	ok := orderServer(t, http.StatusOK, `{"ok":true}`, nil)
	defer ok.Close()
	retry := checkout.NewService(ok.URL, time.Second, repos.NewOrderRepo(db), nil)
	if _, err := retry.Submit(context.Background(), agg, checkout.Options{}); err != nil {
		t.Fatal(err)
	}
	if len(agg.Items()) != 0 {
		t.Fatalf("retry should submit the full selection, items = %d", len(agg.Items()))
	}
}

func TestSubmit_RecordsOrderHistory(t *testing.T) {
	db := memdb(t)
	agg := seededCart(t, db)

	srv := orderServer(t, http.StatusOK, `{"ok":true}`, nil)
	defer srv.Close()

	svc := checkout.NewService(srv.URL, time.Second, repos.NewOrderRepo(db), nil)
	receipt, err := svc.Submit(context.Background(), agg, checkout.Options{GSTInvoice: true, Notes: "lift access from rear gate"})
	if err != nil {
		t.Fatal(err)
	}

	orders, err := svc.History("chk-session")
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].ID != receipt.OrderID {
		t.Fatalf("history = %+v", orders)
	}
	if !orders[0].GSTInvoice || orders[0].GrandTotal <= orders[0].Subtotal {
		t.Fatalf("recorded totals look wrong: %+v", orders[0])
	}
}
