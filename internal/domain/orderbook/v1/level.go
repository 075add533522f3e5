package orderbookv1

import "fmt"

// Level is one price level: the resting orders sharing one price, kept in
// arrival order.
type Level struct {
	Price       float64  `json:"price"`
	Orders      []*Order `json:"orders"`
	TotalVolume float64  `json:"totalVolume"`
}

// NewLevel creates an empty Level at the given price.
func NewLevel(price float64) *Level {
	return &Level{
		Price:  price,
		Orders: make([]*Order, 0),
	}
}

// Add appends an order to the level and updates the total volume. Arrival
// order is append order; the feed delivers one event at a time.
func (l *Level) Add(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if order.Quantity <= 0 {
		return fmt.Errorf("%w: resting quantity must be positive, got %v", ErrInvalidOrder, order.Quantity)
	}

	l.Orders = append(l.Orders, order)
	l.TotalVolume += order.Quantity
	return nil
}

// Remove deletes the order with the given id from the level. Levels are
// expected small, so this is a linear scan.
func (l *Level) Remove(id string) (*Order, error) {
	for i, o := range l.Orders {
		if o.ID == id {
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			l.TotalVolume -= o.Quantity
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: id %q at price %v", ErrOrderNotFound, id, l.Price)
}

// Fill consumes resting orders in arrival order against the taker,
// decrementing both sides by min(resting, remaining taker quantity). Fully
// filled resting orders are dropped from the level. Returns one Fill per
// resting order consumed.
func (l *Level) Fill(taker *Order) []Fill {
	var fills []Fill
	for _, resting := range l.Orders {
		if taker.Quantity <= 0 {
			break
		}

		filled := resting.Quantity
		if taker.Quantity < filled {
			filled = taker.Quantity
		}
		resting.Quantity -= filled
		taker.Quantity -= filled
		l.TotalVolume -= filled

		fills = append(fills, Fill{
			MakerOrderID: resting.ID,
			TakerOrderID: taker.ID,
			Price:        l.Price,
			Quantity:     filled,
		})
	}

	// FIFO consumption only ever empties a prefix of the level.
	drop := 0
	for drop < len(l.Orders) && l.Orders[drop].Quantity == 0 {
		drop++
	}
	if drop > 0 {
		l.Orders = append(l.Orders[:0:0], l.Orders[drop:]...)
	}

	return fills
}

// IsEmpty checks if the level has no orders.
func (l *Level) IsEmpty() bool {
	return len(l.Orders) == 0
}

// OrderCount returns the number of orders at this level.
func (l *Level) OrderCount() int {
	return len(l.Orders)
}
