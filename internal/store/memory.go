package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"energy-trading/internal/model"
)

// MemoryStore implements Store with in-memory maps guarded by a RWMutex.
// Reads return copies so callers never observe a bid mid-resolution.
type MemoryStore struct {
	mu     sync.RWMutex
	bids   map[string]*model.Bid
	trades map[string]*model.Trade
	// tradeOrder preserves insertion order for stable listings.
	tradeOrder []string
}

// NewMemoryStore creates a new in-memory order book.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bids:   make(map[string]*model.Bid),
		trades: make(map[string]*model.Trade),
	}
}

func (s *MemoryStore) InsertBid(_ context.Context, b *model.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bids[b.ID]; exists {
		return fmt.Errorf("bid %s: %w", b.ID, ErrDuplicateID)
	}
	// Store a copy to avoid external mutation.
	copy := *b
	s.bids[b.ID] = &copy
	return nil
}

func (s *MemoryStore) GetBid(_ context.Context, id string) (*model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bids[id]
	if !ok {
		return nil, fmt.Errorf("bid %s: %w", id, ErrNotFound)
	}
	copy := *b
	return &copy, nil
}

func (s *MemoryStore) ListBids(_ context.Context, owner string) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bids := make([]model.Bid, 0, len(s.bids))
	for _, b := range s.bids {
		if owner == "" || b.Owner == owner {
			bids = append(bids, *b)
		}
	}
	sort.Slice(bids, func(i, j int) bool {
		if bids[i].SubmittedAt.Equal(bids[j].SubmittedAt) {
			return bids[i].ID < bids[j].ID
		}
		return bids[i].SubmittedAt.Before(bids[j].SubmittedAt)
	})
	return bids, nil
}

func (s *MemoryStore) PendingBids(_ context.Context) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []model.Bid
	for _, b := range s.bids {
		if b.Status == model.BidPending {
			pending = append(pending, *b)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].SubmittedAt.Equal(pending[j].SubmittedAt) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].SubmittedAt.Before(pending[j].SubmittedAt)
	})
	return pending, nil
}

func (s *MemoryStore) ResolveBid(_ context.Context, id string, status model.BidStatus, clearingPrice float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bids[id]
	if !ok {
		return fmt.Errorf("bid %s: %w", id, ErrNotFound)
	}
	if b.Status != model.BidPending {
		return fmt.Errorf("bid %s: %w", id, ErrAlreadyResolved)
	}
	if status != model.BidExecuted && status != model.BidRejected {
		return fmt.Errorf("bid %s: invalid resolution status %q", id, status)
	}
	price := clearingPrice
	b.Status = status
	b.ClearingPrice = &price
	return nil
}

func (s *MemoryStore) InsertTrade(_ context.Context, t *model.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trades[t.ID]; exists {
		return fmt.Errorf("trade %s: %w", t.ID, ErrDuplicateID)
	}
	copy := *t
	s.trades[t.ID] = &copy
	s.tradeOrder = append(s.tradeOrder, t.ID)
	return nil
}

func (s *MemoryStore) GetTrade(_ context.Context, id string) (*model.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trades[id]
	if !ok {
		return nil, fmt.Errorf("trade %s: %w", id, ErrNotFound)
	}
	copy := *t
	return &copy, nil
}

func (s *MemoryStore) ListTradesByOwner(_ context.Context, owner string) ([]model.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var trades []model.Trade
	for _, id := range s.tradeOrder {
		t, ok := s.trades[id]
		if !ok {
			continue
		}
		if owner != "" {
			b, ok := s.bids[t.BidID]
			if !ok || b.Owner != owner {
				continue
			}
		}
		trades = append(trades, *t)
	}
	return trades, nil
}

func (s *MemoryStore) Counts(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bids), len(s.trades), nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bids = make(map[string]*model.Bid)
	s.trades = make(map[string]*model.Trade)
	s.tradeOrder = nil
	return nil
}
