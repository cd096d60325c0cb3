package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// OpenDB opens the local durable cache. It backs the cart fallback store,
// the wishlist, and the order log.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the local tables. Idempotent; also used by tests
// against :memory: databases.
func EnsureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Carts (local fallback copy, one per session)
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  item_id TEXT NOT NULL,
  title TEXT,
  price NUMERIC NOT NULL DEFAULT 0,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  currency TEXT,
  seller TEXT,
  variation TEXT,
  kind TEXT,
  subscription_plan TEXT,
  schedule TEXT,
  total_price NUMERIC NOT NULL DEFAULT 0,
  addons_json TEXT,
  metadata_json TEXT,
  position INTEGER NOT NULL DEFAULT 0,
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (cart_id, item_id)
);
CREATE INDEX IF NOT EXISTS idx_cart_items_position ON cart_items(cart_id, position);

-- Wishlists
CREATE TABLE IF NOT EXISTS wishlists(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS wishlist_items(
  wishlist_id TEXT NOT NULL REFERENCES wishlists(id) ON DELETE CASCADE,
  item_id TEXT NOT NULL,
  title TEXT,
  price NUMERIC NOT NULL DEFAULT 0,
  currency TEXT,
  seller TEXT,
  kind TEXT,
  created_at TEXT,
  PRIMARY KEY (wishlist_id, item_id)
);

-- Order log (accepted checkouts, per session)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  address_id TEXT,
  gst_invoice INTEGER NOT NULL DEFAULT 0,
  notes TEXT,
  coupon_code TEXT,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  grand_total NUMERIC NOT NULL DEFAULT 0,
  currency TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_session ON orders(session_id);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT,
  product_slug TEXT,
  qty INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  currency TEXT,
  seller TEXT,
  variation TEXT
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
`
	_, err := db.Exec(schema)
	return err
}
