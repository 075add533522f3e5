package orderbook

import (
	"fmt"
	"sync"

	orderbookv1 "github.com/lomash27/Auro/internal/domain/orderbook/v1"
	snapshotv1 "github.com/lomash27/Auro/internal/domain/snapshot/v1"
)

// Book pairs the bid and ask ladders for one instrument. A book is mutated
// by at most one goroutine at a time; the lock lets the snapshot manager
// read concurrently with the processing loop.
type Book struct {
	mu         sync.RWMutex
	instrument string
	bids       *orderbookv1.Ladder
	asks       *orderbookv1.Ladder
	orders     map[orderKey]*orderbookv1.Order
}

// Ids are unique per (book, side); the same id may rest on both sides.
type orderKey struct {
	side orderbookv1.Side
	id   string
}

// NewBook creates an empty book for the given instrument.
func NewBook(instrument string) *Book {
	return &Book{
		instrument: instrument,
		bids:       orderbookv1.NewLadder(orderbookv1.SideBuy),
		asks:       orderbookv1.NewLadder(orderbookv1.SideSell),
		orders:     make(map[orderKey]*orderbookv1.Order),
	}
}

// Instrument returns the identifier this book was created for.
func (b *Book) Instrument() string {
	return b.instrument
}

// Add rests the order on its side's ladder. It never matches; matching is a
// separate explicit event.
func (b *Book) Add(order *orderbookv1.Order) error {
	if order == nil {
		return orderbookv1.ErrNilOrder
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := orderKey{order.Side, order.ID}
	if _, exists := b.orders[key]; exists {
		return fmt.Errorf("%w: %q on side %s", orderbookv1.ErrDuplicateOrder, order.ID, order.Side)
	}

	if err := b.ladder(order.Side).Insert(order); err != nil {
		return err
	}
	b.orders[key] = order
	return nil
}

// Cancel removes the resting order with the given id. When side is empty the
// order's side is resolved from the book's index. A missing order reports
// ErrOrderNotFound; callers treat that as a late or duplicate cancel.
func (b *Book) Cancel(side orderbookv1.Side, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sides := []orderbookv1.Side{side}
	if side == "" {
		sides = []orderbookv1.Side{orderbookv1.SideBuy, orderbookv1.SideSell}
	}

	for _, s := range sides {
		order, ok := b.orders[orderKey{s, id}]
		if !ok {
			continue
		}
		if _, err := b.ladder(s).Remove(id, order.Price); err != nil {
			return err
		}
		delete(b.orders, orderKey{s, id})
		return nil
	}
	return fmt.Errorf("%w: id %q", orderbookv1.ErrOrderNotFound, id)
}

// Match fills the incoming taker against the opposite ladder under strict
// price-time priority. The unfilled remainder stays on the taker and is not
// rested here.
func (b *Book) Match(taker *orderbookv1.Order) []orderbookv1.Fill {
	if taker == nil || taker.Quantity <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fills := b.ladder(taker.Side.Opposite()).MatchIncoming(taker)

	// Fully consumed makers are gone from their ladder; drop their index
	// entries too.
	for _, fill := range fills {
		key := orderKey{taker.Side.Opposite(), fill.MakerOrderID}
		if maker, ok := b.orders[key]; ok && maker.IsFilled() {
			delete(b.orders, key)
		}
	}
	return fills
}

// Bids returns the bid levels in priority order (highest price first).
func (b *Book) Bids() []*orderbookv1.Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return collectLevels(b.bids)
}

// Asks returns the ask levels in priority order (lowest price first).
func (b *Book) Asks() []*orderbookv1.Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return collectLevels(b.asks)
}

// BidTotalVolume returns the resting quantity on the bid ladder.
func (b *Book) BidTotalVolume() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bids.TotalVolume()
}

// AskTotalVolume returns the resting quantity on the ask ladder.
func (b *Book) AskTotalVolume() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.asks.TotalVolume()
}

// Snapshot captures the book's state for the Reporter: both sides in
// priority order, orders per level in arrival order.
func (b *Book) Snapshot() snapshotv1.BookSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return snapshotv1.BookSnapshot{
		Instrument: b.instrument,
		Bids:       snapshotLevels(b.bids),
		Asks:       snapshotLevels(b.asks),
	}
}

// Restore rebuilds the book from a snapshot, replacing its current state.
func (b *Book) Restore(bs snapshotv1.BookSnapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = orderbookv1.NewLadder(orderbookv1.SideBuy)
	b.asks = orderbookv1.NewLadder(orderbookv1.SideSell)
	b.orders = make(map[orderKey]*orderbookv1.Order)

	restore := func(side orderbookv1.Side, levels []snapshotv1.LevelSnapshot) error {
		for _, level := range levels {
			for _, snap := range level.Orders {
				order := &orderbookv1.Order{
					ID:        snap.OrderID,
					Side:      side,
					Price:     level.Price,
					Quantity:  snap.Quantity,
					Timestamp: snap.Timestamp,
				}
				if err := b.ladder(side).Insert(order); err != nil {
					return fmt.Errorf("restore order %q: %w", snap.OrderID, err)
				}
				b.orders[orderKey{side, order.ID}] = order
			}
		}
		return nil
	}

	if err := restore(orderbookv1.SideBuy, bs.Bids); err != nil {
		return err
	}
	return restore(orderbookv1.SideSell, bs.Asks)
}

func (b *Book) ladder(side orderbookv1.Side) *orderbookv1.Ladder {
	if side == orderbookv1.SideBuy {
		return b.bids
	}
	return b.asks
}

func collectLevels(ladder *orderbookv1.Ladder) []*orderbookv1.Level {
	levels := make([]*orderbookv1.Level, 0, ladder.Len())
	for level := range ladder.Levels() {
		levels = append(levels, level)
	}
	return levels
}

func snapshotLevels(ladder *orderbookv1.Ladder) []snapshotv1.LevelSnapshot {
	var levels []snapshotv1.LevelSnapshot
	for level := range ladder.Levels() {
		ls := snapshotv1.LevelSnapshot{Price: level.Price}
		for _, order := range level.Orders {
			ls.Orders = append(ls.Orders, snapshotv1.OrderSnapshot{
				OrderID:   order.ID,
				Quantity:  order.Quantity,
				Timestamp: order.Timestamp,
			})
		}
		levels = append(levels, ls)
	}
	return levels
}
