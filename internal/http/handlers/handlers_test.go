package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"craftmart/internal/cart"
	"craftmart/internal/catalog"
	"craftmart/internal/config"
	"craftmart/internal/http/handlers"
	"craftmart/internal/repos"
)

// Minimal app setup mirroring the main wiring, carts local-only unless a
// remote URL is passed in.
func newApp(t *testing.T, remoteURL string) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	cfg := config.Config{RemoteStoreURL: remoteURL}

	app := fiber.New()
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())

	deps := handlers.NewDeps(db, cfg, catalog.DemoSource())
	app.Get("/product/:id", deps.CatalogHandler.Detail)
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart", deps.CartHandler.Add)
	app.Post("/cart/catalog", deps.CartHandler.AddFromCatalog)
	app.Post("/cart/quantity", deps.CartHandler.UpdateQuantity)
	app.Post("/cart/select", deps.CartHandler.ToggleSelection)
	app.Post("/cart/refresh", deps.CartHandler.Refresh)
	app.Get("/cart/pricing", deps.CartHandler.Pricing)
	app.Post("/cart/coupon", deps.CouponHandler.Apply)
	app.Post("/checkout", deps.CheckoutHandler.Submit)
	app.Get("/wishlist", deps.WishlistHandler.List)
	app.Post("/wishlist", deps.WishlistHandler.Save)

	return app, db
}

func jsonReq(method, target, body, sid string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	return req
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type cartViewBody struct {
	Items     []cart.LineItem `json:"items"`
	Selection []string        `json:"selection"`
	Mode      string          `json:"mode"`
	Coupon    string          `json:"coupon"`
}

func decodeView(t *testing.T, resp *http.Response) cartViewBody {
	t.Helper()
	var v cartViewBody
	b, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("bad cart view %q: %v", b, err)
	}
	return v
}

func TestCartViewMintsSessionCookie(t *testing.T) {
	app, _ := newApp(t, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/cart", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if extractCookie(resp, "sid") == "" {
		t.Fatal("first contact must set a sid cookie")
	}
}

func TestCartAddNoIdentityIsSilentNoOp(t *testing.T) {
	app, _ := newApp(t, "")

	// No id, slug, sku, title — nothing to key the line on.
	resp, err := app.Test(jsonReq("POST", "/cart", `{"price": 100}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unresolvable identity must not error, status = %d", resp.StatusCode)
	}
	if v := decodeView(t, resp); len(v.Items) != 0 {
		t.Fatalf("nothing should be added, got %+v", v.Items)
	}
}

func TestCartAddRoundTrip(t *testing.T) {
	app, _ := newApp(t, "")

	resp, err := app.Test(jsonReq("POST", "/cart",
		`{"id":"ply","title":"Plywood","price":325,"quantity":2,"seller":"BuildMart"}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	sid := extractCookie(resp, "sid")
	if v := decodeView(t, resp); len(v.Items) != 1 || v.Items[0].Quantity != 2 {
		t.Fatalf("add view = %+v", v)
	}

	resp, err = app.Test(jsonReq("GET", "/cart", "", sid))
	if err != nil {
		t.Fatal(err)
	}
	v := decodeView(t, resp)
	if len(v.Items) != 1 || v.Items[0].ID != "ply" {
		t.Fatalf("cart did not stick to the session, view = %+v", v)
	}
	if len(v.Selection) != 1 || v.Selection[0] != "ply" {
		t.Fatalf("new item must be selected, view = %+v", v)
	}
}

func TestCartAddFromCatalogQueryQuantity(t *testing.T) {
	app, _ := newApp(t, "")

	// Older UI calls carry quantity as a query value instead of the body.
	resp, err := app.Test(jsonReq("POST", "/cart/catalog?qty=3",
		`{"productId":"ply-18mm-001"}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	v := decodeView(t, resp)
	if len(v.Items) != 1 || v.Items[0].Quantity != 3 {
		t.Fatalf("query quantity lost, view = %+v", v)
	}
	// Default variation resolves to BuildMart's 325 offer.
	if v.Items[0].Price != 325 || v.Items[0].Seller != "BuildMart" {
		t.Fatalf("offer resolution not applied, item = %+v", v.Items[0])
	}
}

func TestCartRefreshKeepsStoredItems(t *testing.T) {
	app, _ := newApp(t, "")

	resp, err := app.Test(jsonReq("POST", "/cart", `{"id":"ply","price":325,"quantity":1}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	sid := extractCookie(resp, "sid")

	resp, err = app.Test(jsonReq("POST", "/cart/refresh", "", sid))
	if err != nil {
		t.Fatal(err)
	}
	if v := decodeView(t, resp); len(v.Items) != 1 || v.Items[0].ID != "ply" {
		t.Fatalf("refresh dropped durable items, view = %+v", v)
	}
}

func TestCouponErrorMapping(t *testing.T) {
	app, _ := newApp(t, "")

	// Malformed code: rejected before any catalog lookup.
	resp, err := app.Test(jsonReq("POST", "/cart/coupon", `{"code":"!!"}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed code status = %d, want 400", resp.StatusCode)
	}

	// Well-formed but ineligible: one seller can't satisfy FREIGHT1000.
	resp, err = app.Test(jsonReq("POST", "/cart", `{"id":"a","price":100,"quantity":1,"seller":"BuildMart"}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	sid := extractCookie(resp, "sid")

	resp, err = app.Test(jsonReq("POST", "/cart/coupon", `{"code":"freight1000"}`, sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("ineligible code status = %d, want 422", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "2 different sellers") {
		t.Fatalf("rejection must carry the requirement, body = %s", b)
	}

	// A second seller makes it eligible; the lowercase code still applies.
	if _, err := app.Test(jsonReq("POST", "/cart", `{"id":"b","price":200,"quantity":1,"seller":"FloorHub"}`, sid)); err != nil {
		t.Fatal(err)
	}
	resp, err = app.Test(jsonReq("POST", "/cart/coupon", `{"code":"freight1000"}`, sid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("eligible code status = %d", resp.StatusCode)
	}
	b, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "FREIGHT1000") {
		t.Fatalf("apply response = %s", b)
	}
}

func TestCheckoutEmptySelectionMapsTo400(t *testing.T) {
	app, _ := newApp(t, "")

	resp, err := app.Test(jsonReq("POST", "/checkout", `{"addressId":"addr-1"}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty selection status = %d, want 400", resp.StatusCode)
	}
}

func TestCheckoutRejectionMapsTo502WithReason(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/cart":
			_, _ = w.Write([]byte(`{"items":[]}`))
		case "/orders/place":
			_, _ = w.Write([]byte(`{"ok":false,"message":"address not serviceable"}`))
		default:
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer remote.Close()

	app, _ := newApp(t, remote.URL)

	resp, err := app.Test(jsonReq("POST", "/cart", `{"id":"ply","price":325,"quantity":1}`, ""), 5000)
	if err != nil {
		t.Fatal(err)
	}
	sid := extractCookie(resp, "sid")

	resp, err = app.Test(jsonReq("POST", "/checkout", `{"addressId":"addr-1"}`, sid), 5000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("rejected order status = %d, want 502", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "address not serviceable") {
		t.Fatalf("remote reason must pass through, body = %s", b)
	}

	// The cart is untouched after a rejection.
	resp, err = app.Test(jsonReq("GET", "/cart", "", sid), 5000)
	if err != nil {
		t.Fatal(err)
	}
	if v := decodeView(t, resp); len(v.Items) != 1 {
		t.Fatalf("cart changed on a rejected checkout, view = %+v", v)
	}
}

func TestWishlistSaveNoIdentityKeepsListClean(t *testing.T) {
	app, _ := newApp(t, "")

	resp, err := app.Test(jsonReq("POST", "/wishlist", `{"price": 50}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	var out struct {
		Items []repos.WishlistRow `json:"items"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("bad wishlist body %q: %v", b, err)
	}
	if len(out.Items) != 0 {
		t.Fatalf("unidentifiable item must not be saved, items = %+v", out.Items)
	}
}

func TestPricingHandlerTaxGating(t *testing.T) {
	app, _ := newApp(t, "")

	resp, err := app.Test(jsonReq("POST", "/cart", `{"id":"a","price":325,"quantity":2,"seller":"BuildMart"}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	sid := extractCookie(resp, "sid")

	read := func(target string) map[string]any {
		t.Helper()
		resp, err := app.Test(jsonReq("GET", target, "", sid))
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(resp.Body)
		var out map[string]any
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("bad pricing body %q: %v", b, err)
		}
		return out
	}

	plain := read("/cart/pricing")
	if plain["tax"].(float64) != 0 {
		t.Fatalf("tax without gstInvoice = %v", plain["tax"])
	}
	invoiced := read("/cart/pricing?gstInvoice=true")
	if invoiced["tax"].(float64) != 117 { // 650 × 0.18
		t.Fatalf("tax with gstInvoice = %v, want 117", invoiced["tax"])
	}
}
