package cart

import (
	"context"
	"errors"

	applog "craftmart/internal/log"
)

// ErrStoreUnavailable marks persistence failures. It never reaches the UI
// surface; the fallback store absorbs it by degrading.
var ErrStoreUnavailable = errors.New("cart: store unavailable")

// Store persists cart state. Operations mirror the remote endpoints
// (fetch, add, update, remove) so local and remote implementations stay
// interchangeable.
type Store interface {
	Fetch(ctx context.Context, sessionID string) ([]LineItem, error)
	Add(ctx context.Context, sessionID string, item LineItem) error
	Update(ctx context.Context, sessionID string, item LineItem) error
	Remove(ctx context.Context, sessionID, itemID string) error
}

// LocalStore is a Store that can additionally replace a cart wholesale,
// used to mirror remote reads while the remote side is healthy.
type LocalStore interface {
	Store
	Replace(ctx context.Context, sessionID string, items []LineItem) error
}

// Mode is the persistence state of a session's cart.
type Mode string

const (
	ModeRemote   Mode = "remote"
	ModeDegraded Mode = "degraded"
	// ModeLocal marks carts configured without a remote store at all.
	ModeLocal Mode = "local"
)

// FallbackStore runs against the remote store until the first persistence
// failure, then switches to the local store for the rest of the session.
// The transition is one-way; there is no automatic promotion back.
//
// Writes are mirrored to the local store while remote is healthy, so the
// local copy is current at the moment of degradation. One instance serves
// one session; mutations arrive serialized, so there is no locking here.
type FallbackStore struct {
	remote Store
	local  LocalStore
	mode   Mode
}

func NewFallbackStore(remote Store, local LocalStore) *FallbackStore {
	return &FallbackStore{remote: remote, local: local, mode: ModeRemote}
}

// Mode reports the current persistence state for observability.
func (s *FallbackStore) Mode() Mode { return s.mode }

func (s *FallbackStore) degrade(op string, err error) {
	s.mode = ModeDegraded
	applog.Error(nil, "cart.store.degraded", err, map[string]any{"op": op})
}

func (s *FallbackStore) Fetch(ctx context.Context, sessionID string) ([]LineItem, error) {
	if s.mode == ModeRemote {
		items, err := s.remote.Fetch(ctx, sessionID)
		if err == nil {
			if rerr := s.local.Replace(ctx, sessionID, items); rerr != nil {
				applog.Error(nil, "cart.store.mirror", rerr, nil)
			}
			return items, nil
		}
		s.degrade("fetch", err)
	}
	return s.local.Fetch(ctx, sessionID)
}

func (s *FallbackStore) Add(ctx context.Context, sessionID string, item LineItem) error {
	if s.mode == ModeRemote {
		if err := s.remote.Add(ctx, sessionID, item); err != nil {
			s.degrade("add", err)
		}
	}
	return s.local.Add(ctx, sessionID, item)
}

func (s *FallbackStore) Update(ctx context.Context, sessionID string, item LineItem) error {
	if s.mode == ModeRemote {
		if err := s.remote.Update(ctx, sessionID, item); err != nil {
			s.degrade("update", err)
		}
	}
	return s.local.Update(ctx, sessionID, item)
}

func (s *FallbackStore) Remove(ctx context.Context, sessionID, itemID string) error {
	if s.mode == ModeRemote {
		if err := s.remote.Remove(ctx, sessionID, itemID); err != nil {
			s.degrade("remove", err)
		}
	}
	return s.local.Remove(ctx, sessionID, itemID)
}
