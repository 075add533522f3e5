package orderbookv1

import (
	"fmt"
	"iter"
	"sort"
)

// Ladder is one side of a book: price levels kept sorted in matching
// priority order, ascending price for asks and descending for bids. The
// ladder exclusively owns its orders.
type Ladder struct {
	side   Side
	levels []*Level // best level first
}

// NewLadder creates an empty ladder holding resting orders of the given side.
func NewLadder(side Side) *Ladder {
	return &Ladder{side: side}
}

// Side returns the side of the orders resting on this ladder.
func (l *Ladder) Side() Side {
	return l.side
}

// Len returns the number of non-empty price levels.
func (l *Ladder) Len() int {
	return len(l.levels)
}

// Best returns the first level in priority order, or nil if the ladder is
// empty.
func (l *Ladder) Best() *Level {
	if len(l.levels) == 0 {
		return nil
	}
	return l.levels[0]
}

// search locates the position of price in the priority-ordered level slice.
// The boolean reports whether a level at exactly that price exists.
func (l *Ladder) search(price float64) (int, bool) {
	i := sort.Search(len(l.levels), func(i int) bool {
		return !l.side.better(l.levels[i].Price, price)
	})
	return i, i < len(l.levels) && l.levels[i].Price == price
}

// Insert appends the order to the level at its price, creating the level if
// absent. Level lookup is O(log levels), the append amortized O(1).
func (l *Ladder) Insert(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if order.Side != l.side {
		return fmt.Errorf("%w: %s order on %s ladder", ErrInvalidOrder, order.Side, l.side)
	}

	i, found := l.search(order.Price)
	if !found {
		l.levels = append(l.levels, nil)
		copy(l.levels[i+1:], l.levels[i:])
		l.levels[i] = NewLevel(order.Price)
	}
	return l.levels[i].Add(order)
}

// Remove deletes the order with the given id at the given price. A missing
// (id, price) pair reports ErrOrderNotFound so callers can tell "already
// gone" from "removed". An emptied level is dropped.
func (l *Ladder) Remove(id string, price float64) (*Order, error) {
	i, found := l.search(price)
	if !found {
		return nil, fmt.Errorf("%w: id %q at price %v", ErrOrderNotFound, id, price)
	}

	order, err := l.levels[i].Remove(id)
	if err != nil {
		return nil, err
	}
	if l.levels[i].IsEmpty() {
		l.dropLevel(i)
	}
	return order, nil
}

// Levels yields the levels in matching priority order. The sequence is lazy
// and restartable; break stops it early.
func (l *Ladder) Levels() iter.Seq[*Level] {
	return func(yield func(*Level) bool) {
		for _, level := range l.levels {
			if !yield(level) {
				return
			}
		}
	}
}

// MatchIncoming fills the taker against this ladder, best level first.
// Traversal stops at the first level whose price no longer crosses the
// taker's limit, or when the taker is fully filled. Emptied levels are
// dropped. The unfilled remainder stays on the taker; resting it is the
// caller's separate add.
func (l *Ladder) MatchIncoming(taker *Order) []Fill {
	var fills []Fill
	for taker.Quantity > 0 {
		best := l.Best()
		if best == nil || !taker.Side.Crosses(best.Price, taker.Price) {
			break
		}

		fills = append(fills, best.Fill(taker)...)
		if best.IsEmpty() {
			l.dropLevel(0)
		}
	}
	return fills
}

// TotalVolume sums the resting quantity across all levels.
func (l *Ladder) TotalVolume() float64 {
	total := 0.0
	for _, level := range l.levels {
		total += level.TotalVolume
	}
	return total
}

func (l *Ladder) dropLevel(i int) {
	l.levels = append(l.levels[:i], l.levels[i+1:]...)
}
