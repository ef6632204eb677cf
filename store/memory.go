package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"skillswap-server/models"
)

// MemoryUserStore keeps users in process memory. Find returns records in
// insertion order.
type MemoryUserStore struct {
	mu    sync.RWMutex
	order []string
	users map[string]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

func (s *MemoryUserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	s.users[user.ID] = user.Clone()
	s.order = append(s.order, user.ID)
	return nil
}

func (s *MemoryUserStore) Replace(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return ErrNoRecord
	}
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNoRecord
	}
	u = u.Clone()
	return &u, nil
}

func (s *MemoryUserStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

func (s *MemoryUserStore) Find(_ context.Context, q UserQuery) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.FilterMap(s.order, func(id string, _ int) (models.User, bool) {
		u := s.users[id]
		return u.Clone(), q.Matches(u)
	}), nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	s.order = lo.Without(s.order, id)
	return nil
}

// MemorySwapStore keeps swap requests in process memory. Find returns records
// in insertion order.
type MemorySwapStore struct {
	mu    sync.RWMutex
	order []string
	swaps map[string]models.SwapRequest
}

func NewMemorySwapStore() *MemorySwapStore {
	return &MemorySwapStore{swaps: make(map[string]models.SwapRequest)}
}

func (s *MemorySwapStore) Insert(_ context.Context, swap *models.SwapRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.swaps[swap.ID]; ok {
		return fmt.Errorf("swap request %s already exists", swap.ID)
	}
	s.swaps[swap.ID] = swap.Clone()
	s.order = append(s.order, swap.ID)
	return nil
}

func (s *MemorySwapStore) FindByID(_ context.Context, id string) (*models.SwapRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sw, ok := s.swaps[id]
	if !ok {
		return nil, ErrNoRecord
	}
	sw = sw.Clone()
	return &sw, nil
}

func (s *MemorySwapStore) Find(_ context.Context, q SwapQuery) ([]models.SwapRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.FilterMap(s.order, func(id string, _ int) (models.SwapRequest, bool) {
		sw := s.swaps[id]
		return sw.Clone(), q.Matches(sw)
	}), nil
}

func (s *MemorySwapStore) UpdateIfStatus(_ context.Context, swap *models.SwapRequest, expected models.SwapStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.swaps[swap.ID]
	if !ok {
		return ErrNoRecord
	}
	if current.Status != expected {
		return ErrStatusChanged
	}
	s.swaps[swap.ID] = swap.Clone()
	return nil
}

func (s *MemorySwapStore) DeleteIfStatus(_ context.Context, id string, expected models.SwapStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.swaps[id]
	if !ok {
		return ErrNoRecord
	}
	if current.Status != expected {
		return ErrStatusChanged
	}
	delete(s.swaps, id)
	s.order = lo.Without(s.order, id)
	return nil
}
