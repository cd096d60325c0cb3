package handlers

import (
	"github.com/jmoiron/sqlx"

	"craftmart/internal/cart"
	"craftmart/internal/catalog"
	"craftmart/internal/checkout"
	"craftmart/internal/config"
	"craftmart/internal/pricing"
	"craftmart/internal/repos"
	"craftmart/internal/session"
	"craftmart/internal/wishlist"
)

type Deps struct {
	CartHandler     *CartHandler
	CouponHandler   *CouponHandler
	CheckoutHandler *CheckoutHandler
	WishlistHandler *WishlistHandler
	CatalogHandler  *CatalogHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, source catalog.Source) *Deps {
	cartRepo := repos.NewCartRepo(db)
	wishRepo := repos.NewWishlistRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	newStore := func() cart.Store {
		if cfg.RemoteStoreURL == "" {
			return cartRepo
		}
		return cart.NewFallbackStore(
			cart.NewRemoteStore(cfg.RemoteStoreURL, cfg.RemoteTimeout), cartRepo)
	}

	sessions := session.NewManager(newStore)
	engine := pricing.NewEngine(pricing.DefaultCatalog())
	currency := session.NewCurrencyContext(cfg.DisplayCurrency, nil)
	checkoutSvc := checkout.NewService(cfg.RemoteStoreURL, cfg.RemoteTimeout, orderRepo, engine)
	wishSvc := wishlist.NewService(wishRepo)

	return &Deps{
		CartHandler:     &CartHandler{Sessions: sessions, Catalog: source, Engine: engine, Currency: currency},
		CouponHandler:   &CouponHandler{Sessions: sessions, Engine: engine},
		CheckoutHandler: &CheckoutHandler{Sessions: sessions, Checkout: checkoutSvc, Orders: orderRepo},
		WishlistHandler: &WishlistHandler{Wish: wishSvc},
		CatalogHandler:  &CatalogHandler{Catalog: source},
	}
}
