package orderbookv1

import (
	"fmt"
	"math"
	"time"
)

// Order is a single resting or incoming order: immutable identity plus a
// mutable remaining quantity. The ladder holding it owns it exclusively.
type Order struct {
	ID        string  `json:"id"`
	Side      Side    `json:"side"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	Timestamp int64   `json:"timestamp"`
}

// NewOrder creates a validated order. It rejects an empty id, an unknown
// side, and a negative price or quantity.
func NewOrder(id string, side Side, price, quantity float64) (*Order, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty order id", ErrInvalidOrder)
	}
	if side != SideBuy && side != SideSell {
		return nil, fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, side)
	}
	if price < 0 || !IsFinite(price) {
		return nil, fmt.Errorf("%w: bad price %v", ErrInvalidOrder, price)
	}
	if quantity < 0 || !IsFinite(quantity) {
		return nil, fmt.Errorf("%w: bad quantity %v", ErrInvalidOrder, quantity)
	}

	return &Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Timestamp: time.Now().UnixNano(),
	}, nil
}

// IsFinite rejects NaN and ±Inf. Those compare false against every price,
// so a non-finite order would rest unsorted and uncancellable.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsBid checks if the order rests on the bid ladder.
func (o *Order) IsBid() bool {
	return o.Side == SideBuy
}

// IsAsk checks if the order rests on the ask ladder.
func (o *Order) IsAsk() bool {
	return o.Side == SideSell
}

// IsFilled checks if the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.Quantity == 0
}
