package wishlist

import (
	"craftmart/internal/cart"
	"craftmart/internal/repos"
)

// Service saves items for later. It runs raw items through the same
// normalizer as the cart but under the wish namespace, so an untagged
// product saved here never shares an identity with its cart entry.
type Service struct {
	Repo *repos.WishlistRepo
}

func NewService(r *repos.WishlistRepo) *Service { return &Service{Repo: r} }

func (s *Service) Save(sessionID string, raw map[string]any) (*cart.LineItem, error) {
	it, err := cart.Normalize(raw, cart.NamespaceWish)
	if err != nil {
		return nil, err
	}
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Add(id, *it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) Unsave(sessionID, itemID string) error {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return err
	}
	return s.Repo.Remove(id, itemID)
}

func (s *Service) List(sessionID string) ([]repos.WishlistRow, error) {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Repo.List(id)
}
