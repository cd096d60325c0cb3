package cart

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RemoteStore talks to the remote cart persistence service. Every call
// carries an explicit timeout; a hung call degrades the session instead of
// stalling it.
type RemoteStore struct {
	base    string
	timeout time.Duration
}

func NewRemoteStore(base string, timeout time.Duration) *RemoteStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteStore{base: base, timeout: timeout}
}

type remoteAck struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func (s *RemoteStore) Fetch(ctx context.Context, sessionID string) ([]LineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	agent := fiber.Get(s.base + "/cart").
		QueryString("session=" + url.QueryEscape(sessionID)).
		Timeout(s.timeout)
	var out struct {
		Items []LineItem `json:"items"`
	}
	code, _, errs := agent.Struct(&out)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, errs[0])
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("%w: fetch status %d", ErrStoreUnavailable, code)
	}
	return out.Items, nil
}

func (s *RemoteStore) Add(ctx context.Context, sessionID string, item LineItem) error {
	return s.post(ctx, "/cart/add", map[string]any{"session": sessionID, "item": item})
}

func (s *RemoteStore) Update(ctx context.Context, sessionID string, item LineItem) error {
	return s.post(ctx, "/cart/update", map[string]any{"session": sessionID, "item": item})
}

func (s *RemoteStore) Remove(ctx context.Context, sessionID, itemID string) error {
	return s.post(ctx, "/cart/remove", map[string]any{"session": sessionID, "itemId": itemID})
}

func (s *RemoteStore) post(ctx context.Context, path string, body map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	agent := fiber.Post(s.base + path).JSON(body).Timeout(s.timeout)
	var ack remoteAck
	code, _, errs := agent.Struct(&ack)
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, errs[0])
	}
	if code != fiber.StatusOK || !ack.OK {
		return fmt.Errorf("%w: %s status %d %s", ErrStoreUnavailable, path, code, ack.Message)
	}
	return nil
}
