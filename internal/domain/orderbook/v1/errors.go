package orderbookv1

import "errors"

var (
	// ErrInvalidOrder rejects orders with a negative price or quantity, an
	// empty id, or an unknown side. The offending event is dropped; the
	// stream continues.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrOrderNotFound reports a cancel referencing an absent (id, price)
	// pair. Recoverable at the caller: a late or duplicate cancel.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder reports an add reusing an id already resting on the
	// same side of the same book.
	ErrDuplicateOrder = errors.New("duplicate order id")
	// ErrNilOrder rejects a nil order pointer.
	ErrNilOrder = errors.New("order cannot be nil")
)
