package snapshotv1

// Snapshot is a read-only view of every book at a point in the stream,
// sufficient to print or serialize the full state.
type Snapshot struct {
	OrderOffset int64          `json:"orderOffset"`
	TakenAt     int64          `json:"takenAt"`
	Books       []BookSnapshot `json:"books"`
}

// BookSnapshot is the state of one instrument's book, both sides in matching
// priority order.
type BookSnapshot struct {
	Instrument string          `json:"instrument"`
	Bids       []LevelSnapshot `json:"bids"`
	Asks       []LevelSnapshot `json:"asks"`
}

// LevelSnapshot is one price level with its resting orders in arrival order.
type LevelSnapshot struct {
	Price  float64         `json:"price"`
	Orders []OrderSnapshot `json:"orders"`
}

// OrderSnapshot is one resting order with its remaining quantity.
type OrderSnapshot struct {
	OrderID   string  `json:"orderID"`
	Quantity  float64 `json:"quantity"`
	Timestamp int64   `json:"timestamp"`
}
