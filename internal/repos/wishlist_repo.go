package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"craftmart/internal/cart"
)

type WishlistRepo struct{ db *sqlx.DB }

func NewWishlistRepo(db *sqlx.DB) *WishlistRepo { return &WishlistRepo{db: db} }

func (r *WishlistRepo) Ensure(sessionID string) (string, error) {
	var id string
	if err := r.db.Get(&id, `SELECT id FROM wishlists WHERE session_id=?`, sessionID); err == nil {
		return id, nil
	}
	_, err := r.db.Exec(`INSERT INTO wishlists(id,session_id,updated_at) VALUES(?,?,?)`,
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func (r *WishlistRepo) Add(wishlistID string, item cart.LineItem) error {
	_, err := r.db.Exec(`
	  INSERT INTO wishlist_items(wishlist_id, item_id, title, price, currency, seller, kind, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(wishlist_id, item_id) DO NOTHING
	`, wishlistID, item.ID, item.Title, item.Price, item.Currency, item.Seller, item.Kind)
	return err
}

func (r *WishlistRepo) Remove(wishlistID, itemID string) error {
	_, err := r.db.Exec(`DELETE FROM wishlist_items WHERE wishlist_id=? AND item_id=?`, wishlistID, itemID)
	return err
}

type WishlistRow struct {
	ItemID   string  `db:"item_id"`
	Title    string  `db:"title"`
	Price    float64 `db:"price"`
	Currency string  `db:"currency"`
	Seller   string  `db:"seller"`
	Kind     string  `db:"kind"`
}

func (r *WishlistRepo) List(wishlistID string) ([]WishlistRow, error) {
	var out []WishlistRow
	err := r.db.Select(&out, `
	  SELECT item_id, COALESCE(title,'') AS title, price, COALESCE(currency,'') AS currency,
	         COALESCE(seller,'') AS seller, COALESCE(kind,'') AS kind
	  FROM wishlist_items
	  WHERE wishlist_id = ?
	  ORDER BY created_at ASC, item_id ASC
	`, wishlistID)
	return out, err
}
