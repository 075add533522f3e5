package orderbookv1

import "fmt"

// Side indicates which ladder an order rests on or matches against.
type Side string

const (
	// SideBuy marks an order resting on, or matching against, the bid ladder.
	SideBuy Side = "BUY"
	// SideSell marks an order resting on, or matching against, the ask ladder.
	SideSell Side = "SELL"
)

// ParseSide converts a feed string into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, s)
	}
}

// Opposite returns the side an incoming order matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Crosses reports whether an incoming order on side s with the given limit
// price may trade against a resting level at restingPrice. Equality always
// crosses.
func (s Side) Crosses(restingPrice, limit float64) bool {
	if s == SideBuy {
		return restingPrice <= limit
	}
	return restingPrice >= limit
}

// better reports whether price a has strictly higher matching priority than
// price b on a ladder holding side s. Best bid is the highest price, best
// ask the lowest.
func (s Side) better(a, b float64) bool {
	if s == SideBuy {
		return a > b
	}
	return a < b
}
