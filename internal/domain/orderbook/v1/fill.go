package orderbookv1

// Fill records one resting order consumed (fully or partially) by an
// incoming order during a match.
type Fill struct {
	MakerOrderID string  `json:"makerOrderID"`
	TakerOrderID string  `json:"takerOrderID"`
	Price        float64 `json:"price"`
	Quantity     float64 `json:"quantity"`
}

// FilledQuantity sums the quantity across fills.
func FilledQuantity(fills []Fill) float64 {
	total := 0.0
	for _, f := range fills {
		total += f.Quantity
	}
	return total
}
