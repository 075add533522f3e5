package feedv1

import (
	"errors"
	"fmt"

	orderbookv1 "github.com/lomash27/Auro/internal/domain/orderbook/v1"
)

// ErrUnknownAction reports an event action outside ADD/DELETE/MATCH. The
// event is dropped; the stream continues.
var ErrUnknownAction = errors.New("unknown action")

// Action is the kind of an order event.
type Action string

const (
	// ActionAdd rests a new order on its own ladder without matching.
	ActionAdd Action = "ADD"
	// ActionDelete cancels a resting order by id.
	ActionDelete Action = "DELETE"
	// ActionMatch matches an incoming order against the opposite ladder.
	ActionMatch Action = "MATCH"
)

// ParseAction converts a feed string into an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionAdd, ActionDelete, ActionMatch:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Event is one decoded order event. The feed's delivery order is the time
// priority axis for the whole system.
type Event struct {
	Action     Action           `json:"action"`
	Instrument string           `json:"book"`
	Side       orderbookv1.Side `json:"side,omitempty"`
	Price      float64          `json:"price,omitempty"`
	Quantity   float64          `json:"quantity"`
	OrderID    string           `json:"orderId,omitempty"`

	// Offset is the event's position in the stream, set by the reader.
	Offset int64 `json:"-"`
}

// Validate checks the event against the schema: ADD needs side and order id,
// MATCH needs side (its order id may be minted later), DELETE needs an order
// id and may omit the side. Prices and quantities must be finite and
// non-negative.
func (e *Event) Validate() error {
	if _, err := ParseAction(string(e.Action)); err != nil {
		return err
	}
	if e.Instrument == "" {
		return fmt.Errorf("%w: empty instrument", orderbookv1.ErrInvalidOrder)
	}
	if e.Price < 0 || !orderbookv1.IsFinite(e.Price) {
		return fmt.Errorf("%w: bad price %v", orderbookv1.ErrInvalidOrder, e.Price)
	}
	if e.Quantity < 0 || !orderbookv1.IsFinite(e.Quantity) {
		return fmt.Errorf("%w: bad quantity %v", orderbookv1.ErrInvalidOrder, e.Quantity)
	}

	switch e.Action {
	case ActionAdd:
		if e.OrderID == "" {
			return fmt.Errorf("%w: ADD without order id", orderbookv1.ErrInvalidOrder)
		}
		if _, err := orderbookv1.ParseSide(string(e.Side)); err != nil {
			return err
		}
	case ActionMatch:
		if _, err := orderbookv1.ParseSide(string(e.Side)); err != nil {
			return err
		}
	case ActionDelete:
		if e.OrderID == "" {
			return fmt.Errorf("%w: DELETE without order id", orderbookv1.ErrInvalidOrder)
		}
		if e.Side != "" {
			if _, err := orderbookv1.ParseSide(string(e.Side)); err != nil {
				return err
			}
		}
	}
	return nil
}
