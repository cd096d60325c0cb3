package repos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"craftmart/internal/cart"
)

// CartRepo is the local durable cart store. It implements cart.LocalStore
// and keeps insertion order through an explicit position column.
type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type cartItemRow struct {
	ItemID           string  `db:"item_id"`
	Title            string  `db:"title"`
	Price            float64 `db:"price"`
	Qty              int     `db:"qty"`
	Currency         string  `db:"currency"`
	Seller           string  `db:"seller"`
	Variation        string  `db:"variation"`
	Kind             string  `db:"kind"`
	SubscriptionPlan string  `db:"subscription_plan"`
	Schedule         string  `db:"schedule"`
	TotalPrice       float64 `db:"total_price"`
	AddonsJSON       string  `db:"addons_json"`
	MetadataJSON     string  `db:"metadata_json"`
}

func (r *CartRepo) ensureCart(sessionID string) (string, error) {
	var cartID string
	if err := r.db.Get(&cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID); err == nil {
		return cartID, nil
	}
	_, err := r.db.Exec(`INSERT INTO carts(id,session_id,updated_at) VALUES(?,?,?)`,
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func (r *CartRepo) Fetch(_ context.Context, sessionID string) ([]cart.LineItem, error) {
	cartID, err := r.ensureCart(sessionID)
	if err != nil {
		return nil, err
	}
	var rows []cartItemRow
	if err := r.db.Select(&rows, `
	  SELECT item_id, COALESCE(title,'') AS title, price, qty, COALESCE(currency,'') AS currency,
	         COALESCE(seller,'') AS seller, COALESCE(variation,'') AS variation,
	         COALESCE(kind,'') AS kind, COALESCE(subscription_plan,'') AS subscription_plan,
	         COALESCE(schedule,'') AS schedule, total_price,
	         COALESCE(addons_json,'') AS addons_json, COALESCE(metadata_json,'') AS metadata_json
	  FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY position ASC
	`, cartID); err != nil {
		return nil, err
	}
	items := make([]cart.LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toItem())
	}
	return items, nil
}

func (r *CartRepo) Add(_ context.Context, sessionID string, item cart.LineItem) error {
	cartID, err := r.ensureCart(sessionID)
	if err != nil {
		return err
	}
	addons, metadata := encodeExtras(item)
	_, err = r.db.Exec(`
	  INSERT INTO cart_items(cart_id,item_id,title,price,qty,currency,seller,variation,kind,
	    subscription_plan,schedule,total_price,addons_json,metadata_json,position,created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,
	    (SELECT COALESCE(MAX(position)+1,0) FROM cart_items WHERE cart_id=?),CURRENT_TIMESTAMP)
	  ON CONFLICT(cart_id,item_id) DO UPDATE SET
	    title=excluded.title, price=excluded.price, qty=excluded.qty,
	    currency=excluded.currency, seller=excluded.seller, variation=excluded.variation,
	    kind=excluded.kind, subscription_plan=excluded.subscription_plan,
	    schedule=excluded.schedule, total_price=excluded.total_price,
	    addons_json=excluded.addons_json, metadata_json=excluded.metadata_json,
	    updated_at=CURRENT_TIMESTAMP
	`, cartID, item.ID, item.Title, item.Price, item.Quantity, item.Currency, item.Seller,
		item.Variation, item.Kind, item.SubscriptionPlan, item.Schedule, item.TotalPrice,
		addons, metadata, cartID)
	return err
}

func (r *CartRepo) Update(ctx context.Context, sessionID string, item cart.LineItem) error {
	// Same upsert; position is preserved on conflict so order survives
	// quantity changes.
	return r.Add(ctx, sessionID, item)
}

func (r *CartRepo) Remove(_ context.Context, sessionID, itemID string) error {
	cartID, err := r.ensureCart(sessionID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`DELETE FROM cart_items WHERE cart_id=? AND item_id=?`, cartID, itemID)
	return err
}

// Replace swaps the whole cart, used to mirror a remote read.
func (r *CartRepo) Replace(ctx context.Context, sessionID string, items []cart.LineItem) error {
	cartID, err := r.ensureCart(sessionID)
	if err != nil {
		return err
	}
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id=?`, cartID); err != nil {
		return err
	}
	for pos, item := range items {
		addons, metadata := encodeExtras(item)
		if _, err := tx.Exec(`
		  INSERT INTO cart_items(cart_id,item_id,title,price,qty,currency,seller,variation,kind,
		    subscription_plan,schedule,total_price,addons_json,metadata_json,position,created_at)
		  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
		`, cartID, item.ID, item.Title, item.Price, item.Quantity, item.Currency, item.Seller,
			item.Variation, item.Kind, item.SubscriptionPlan, item.Schedule, item.TotalPrice,
			addons, metadata, pos); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (row cartItemRow) toItem() cart.LineItem {
	it := cart.LineItem{
		ID:               row.ItemID,
		Title:            row.Title,
		Price:            row.Price,
		Quantity:         row.Qty,
		Currency:         row.Currency,
		Seller:           row.Seller,
		Variation:        row.Variation,
		Kind:             row.Kind,
		SubscriptionPlan: row.SubscriptionPlan,
		Schedule:         row.Schedule,
		TotalPrice:       row.TotalPrice,
	}
	if row.AddonsJSON != "" {
		_ = json.Unmarshal([]byte(row.AddonsJSON), &it.Addons)
	}
	if row.MetadataJSON != "" {
		_ = json.Unmarshal([]byte(row.MetadataJSON), &it.Metadata)
	}
	return it
}

func encodeExtras(item cart.LineItem) (addons, metadata string) {
	if len(item.Addons) > 0 {
		b, _ := json.Marshal(item.Addons)
		addons = string(b)
	}
	if len(item.Metadata) > 0 {
		b, _ := json.Marshal(item.Metadata)
		metadata = string(b)
	}
	return addons, metadata
}
