package tradev1

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	orderbookv1 "github.com/lomash27/Auro/internal/domain/orderbook/v1"
)

// TradeEvent is one executed fill published downstream.
type TradeEvent struct {
	TradeID      string           `json:"tradeID"`
	Instrument   string           `json:"instrument"`
	Price        float64          `json:"price"`
	Quantity     float64          `json:"quantity"`
	MakerOrderID string           `json:"makerOrderID"`
	TakerOrderID string           `json:"takerOrderID"`
	TakerSide    orderbookv1.Side `json:"takerSide"`
	Timestamp    int64            `json:"timestamp"`
}

// FromFill builds a trade event for one fill, minting a ULID trade id.
func FromFill(instrument string, takerSide orderbookv1.Side, fill orderbookv1.Fill) *TradeEvent {
	return &TradeEvent{
		TradeID:      ulid.Make().String(),
		Instrument:   instrument,
		Price:        fill.Price,
		Quantity:     fill.Quantity,
		MakerOrderID: fill.MakerOrderID,
		TakerOrderID: fill.TakerOrderID,
		TakerSide:    takerSide,
		Timestamp:    time.Now().UnixNano(),
	}
}

// ToBytes converts the trade event to its wire form.
func ToBytes(event *TradeEvent) []byte {
	buf, err := json.Marshal(event)
	if err != nil {
		return nil
	}
	return buf
}

// FromBytes parses a trade event from its wire form.
func FromBytes(data []byte) *TradeEvent {
	var event TradeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil
	}
	return &event
}
