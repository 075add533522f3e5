package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	feedv1 "github.com/lomash27/Auro/internal/domain/feed/v1"
	orderbookv1 "github.com/lomash27/Auro/internal/domain/orderbook/v1"
	snapshotv1 "github.com/lomash27/Auro/internal/domain/snapshot/v1"
	"github.com/lomash27/Auro/internal/usecase/orderbook"
)

// Registry maps instrument identifiers to their books, creating each book on
// first reference. Books are never removed during a run.
type Registry struct {
	mu    sync.RWMutex
	books map[string]*orderbook.Book
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		books: make(map[string]*orderbook.Book),
	}
}

// Book returns the book for the instrument, creating it if absent.
func (r *Registry) Book(instrument string) *orderbook.Book {
	r.mu.RLock()
	book, ok := r.books[instrument]
	r.mu.RUnlock()
	if ok {
		return book
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if book, ok = r.books[instrument]; ok {
		return book
	}
	book = orderbook.NewBook(instrument)
	r.books[instrument] = book
	return book
}

// Lookup returns the book for the instrument without creating one.
func (r *Registry) Lookup(instrument string) (*orderbook.Book, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book, ok := r.books[instrument]
	return book, ok
}

// Books returns every book, sorted by instrument for stable output.
func (r *Registry) Books() []*orderbook.Book {
	r.mu.RLock()
	defer r.mu.RUnlock()

	books := make([]*orderbook.Book, 0, len(r.books))
	for _, book := range r.books {
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].Instrument() < books[j].Instrument()
	})
	return books
}

// Result is the structured outcome of applying one event.
type Result struct {
	Instrument string
	Action     feedv1.Action
	OrderID    string
	Fills      []orderbookv1.Fill
	// Remaining is the incoming order's unfilled quantity after a MATCH.
	Remaining float64
}

// Apply validates the event, finds or creates its book, and dispatches by
// action. Every error is returned to the caller; none corrupts the stream.
// A DELETE or MATCH on a never-seen instrument works against a fresh empty
// book, since books are created lazily.
func (r *Registry) Apply(event *feedv1.Event) (*Result, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	book := r.Book(event.Instrument)
	result := &Result{
		Instrument: event.Instrument,
		Action:     event.Action,
		OrderID:    event.OrderID,
	}

	switch event.Action {
	case feedv1.ActionAdd:
		order, err := orderbookv1.NewOrder(event.OrderID, event.Side, event.Price, event.Quantity)
		if err != nil {
			return nil, err
		}
		if err := book.Add(order); err != nil {
			return nil, err
		}

	case feedv1.ActionDelete:
		if err := book.Cancel(event.Side, event.OrderID); err != nil {
			return nil, err
		}

	case feedv1.ActionMatch:
		// A MATCH references a new incoming order; mint an id when the feed
		// carries none.
		id := event.OrderID
		if id == "" {
			id = ulid.Make().String()
		}
		taker, err := orderbookv1.NewOrder(id, event.Side, event.Price, event.Quantity)
		if err != nil {
			return nil, err
		}
		result.OrderID = id
		result.Fills = book.Match(taker)
		result.Remaining = taker.Quantity
	}

	return result, nil
}

// Snapshot captures every book for the Reporter.
func (r *Registry) Snapshot() *snapshotv1.Snapshot {
	books := r.Books()

	snap := &snapshotv1.Snapshot{
		TakenAt: time.Now().UnixNano(),
		Books:   make([]snapshotv1.BookSnapshot, 0, len(books)),
	}
	for _, book := range books {
		snap.Books = append(snap.Books, book.Snapshot())
	}
	return snap
}

// Restore rebuilds the registry's books from a snapshot.
func (r *Registry) Restore(snap *snapshotv1.Snapshot) error {
	if snap == nil {
		return nil
	}
	for _, bs := range snap.Books {
		if err := r.Book(bs.Instrument).Restore(bs); err != nil {
			return err
		}
	}
	return nil
}
