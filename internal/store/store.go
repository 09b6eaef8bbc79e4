// Package store defines the order book persistence interface for the
// simulation. The in-memory implementation is the only one today; the
// interface exists so the engine never touches module-level state and a
// durable backend can be swapped in later.
package store

import (
	"context"
	"errors"

	"energy-trading/internal/model"
)

var (
	// ErrNotFound is returned when a bid or trade id is unknown.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when inserting a record whose id exists.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrAlreadyResolved is returned when resolving a bid twice. A bid's
	// status and clearing price are set exactly once.
	ErrAlreadyResolved = errors.New("bid already resolved")
)

// Store is the order book persistence interface.
type Store interface {
	// --- Bids ---

	// InsertBid persists a new PENDING bid. Fails on duplicate id.
	InsertBid(ctx context.Context, bid *model.Bid) error

	// GetBid retrieves a bid by id.
	GetBid(ctx context.Context, id string) (*model.Bid, error)

	// ListBids returns all bids for an owner, ordered by submission time.
	ListBids(ctx context.Context, owner string) ([]model.Bid, error)

	// PendingBids returns all bids still in PENDING status.
	PendingBids(ctx context.Context) ([]model.Bid, error)

	// ResolveBid sets a bid's final status and observed clearing price.
	// The transition is one-way: resolving an already-resolved bid fails.
	ResolveBid(ctx context.Context, id string, status model.BidStatus, clearingPrice float64) error

	// --- Trades ---

	// InsertTrade appends an immutable trade record. Fails on duplicate id.
	InsertTrade(ctx context.Context, trade *model.Trade) error

	// GetTrade retrieves a trade by id.
	GetTrade(ctx context.Context, id string) (*model.Trade, error)

	// ListTradesByOwner returns all trades originating from an owner's bids.
	ListTradesByOwner(ctx context.Context, owner string) ([]model.Trade, error)

	// --- Book maintenance ---

	// Counts returns the number of bids and trades in the book.
	Counts(ctx context.Context) (bids, trades int, err error)

	// Reset removes all bids and trades unconditionally.
	Reset(ctx context.Context) error
}
