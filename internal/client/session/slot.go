package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/pharmcart/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pharmcart/internal/common"
)

// Slot is one storage tier holding at most one raw token under
// common.TokenStorageKey.
type Slot interface {
	Load(ctx context.Context) (token string, ok bool, err error)
	Store(ctx context.Context, token string) error
	Erase(ctx context.Context) error
}

// DurableSlot keeps the token in the local metadata database.
type DurableSlot struct {
	repo metadata.Repository
}

func NewDurableSlot(repo metadata.Repository) *DurableSlot {
	return &DurableSlot{repo: repo}
}

func (s *DurableSlot) Load(ctx context.Context) (string, bool, error) {
	rec, err := s.repo.Get(ctx, common.TokenStorageKey)
	if err != nil {
		return "", false, err
	}
	if rec == nil || rec.Value == "" {
		return "", false, nil
	}
	return rec.Value, true, nil
}

func (s *DurableSlot) Store(ctx context.Context, token string) error {
	return s.repo.Set(ctx, common.TokenStorageKey, token)
}

func (s *DurableSlot) Erase(ctx context.Context) error {
	return s.repo.Delete(ctx, common.TokenStorageKey)
}

// EphemeralSlot keeps the token in process memory. A new EphemeralSlot is
// the equivalent of a freshly opened tab.
type EphemeralSlot struct {
	mu    sync.Mutex
	items map[string]string
}

func NewEphemeralSlot() *EphemeralSlot {
	return &EphemeralSlot{items: make(map[string]string)}
}

func (s *EphemeralSlot) Load(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.items[common.TokenStorageKey]
	return tok, ok && tok != "", nil
}

func (s *EphemeralSlot) Store(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[common.TokenStorageKey] = token
	return nil
}

func (s *EphemeralSlot) Erase(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, common.TokenStorageKey)
	return nil
}
