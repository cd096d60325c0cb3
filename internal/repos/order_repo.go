package repos

import "github.com/jmoiron/sqlx"

// OrderRepo records checkouts the remote store accepted, so a session can
// list its own order history without another remote round-trip.
type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type OrderHeader struct {
	ID         string  `db:"id"`
	SessionID  string  `db:"session_id"`
	AddressID  string  `db:"address_id"`
	GSTInvoice bool    `db:"gst_invoice"`
	Notes      string  `db:"notes"`
	CouponCode string  `db:"coupon_code"`
	Subtotal   float64 `db:"subtotal"`
	GrandTotal float64 `db:"grand_total"`
	Currency   string  `db:"currency"`
	CreatedAt  string  `db:"created_at"`
}

type OrderItemRow struct {
	ProductID   string  `db:"product_id"`
	ProductSlug string  `db:"product_slug"`
	Qty         int     `db:"qty"`
	UnitPrice   float64 `db:"unit_price"`
	Currency    string  `db:"currency"`
	Seller      string  `db:"seller"`
	Variation   string  `db:"variation"`
}

func (r *OrderRepo) Create(h OrderHeader) error {
	_, err := r.db.Exec(`
	  INSERT INTO orders(id, session_id, address_id, gst_invoice, notes, coupon_code,
	    subtotal, grand_total, currency, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, h.ID, h.SessionID, h.AddressID, h.GSTInvoice, h.Notes, h.CouponCode,
		h.Subtotal, h.GrandTotal, h.Currency)
	return err
}

func (r *OrderRepo) InsertItem(orderID string, item OrderItemRow) error {
	_, err := r.db.Exec(`
	  INSERT INTO order_items(order_id, product_id, product_slug, qty, unit_price, currency, seller, variation)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, orderID, item.ProductID, item.ProductSlug, item.Qty, item.UnitPrice,
		item.Currency, item.Seller, item.Variation)
	return err
}

func (r *OrderRepo) Get(orderID string) (OrderHeader, []OrderItemRow, error) {
	var h OrderHeader
	if err := r.db.Get(&h, `
	  SELECT id, session_id, COALESCE(address_id,'') AS address_id, gst_invoice,
	         COALESCE(notes,'') AS notes, COALESCE(coupon_code,'') AS coupon_code,
	         subtotal, grand_total, COALESCE(currency,'') AS currency, created_at
	  FROM orders WHERE id = ?
	`, orderID); err != nil {
		return OrderHeader{}, nil, err
	}
	var items []OrderItemRow
	if err := r.db.Select(&items, `
	  SELECT COALESCE(product_id,'') AS product_id, COALESCE(product_slug,'') AS product_slug,
	         qty, unit_price, COALESCE(currency,'') AS currency,
	         COALESCE(seller,'') AS seller, COALESCE(variation,'') AS variation
	  FROM order_items WHERE order_id = ?
	`, orderID); err != nil {
		return OrderHeader{}, nil, err
	}
	return h, items, nil
}

func (r *OrderRepo) ListBySession(sessionID string) ([]OrderHeader, error) {
	var out []OrderHeader
	err := r.db.Select(&out, `
	  SELECT id, session_id, COALESCE(address_id,'') AS address_id, gst_invoice,
	         COALESCE(notes,'') AS notes, COALESCE(coupon_code,'') AS coupon_code,
	         subtotal, grand_total, COALESCE(currency,'') AS currency, created_at
	  FROM orders
	  WHERE session_id = ?
	  ORDER BY datetime(created_at) DESC
	`, sessionID)
	return out, err
}
