package engine

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feedv1 "github.com/lomash27/Auro/internal/domain/feed/v1"
	orderbookv1 "github.com/lomash27/Auro/internal/domain/orderbook/v1"
	snapshotv1 "github.com/lomash27/Auro/internal/domain/snapshot/v1"
	tradev1 "github.com/lomash27/Auro/internal/domain/trade/v1"
	"github.com/lomash27/Auro/internal/usecase/registry"
	"github.com/lomash27/Auro/pkg/logger"
)

// fakeReader replays a fixed slice of events, then reports io.EOF.
type fakeReader struct {
	mu        sync.Mutex
	events    []*feedv1.Event
	pos       int
	setOffset int64
	closed    bool
}

func newFakeReader(events ...*feedv1.Event) *fakeReader {
	for i, ev := range events {
		ev.Offset = int64(i)
	}
	return &fakeReader{events: events, setOffset: -1}
}

func (r *fakeReader) ReadEvent(ctx context.Context) (*feedv1.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pos >= len(r.events) {
		return nil, io.EOF
	}
	event := r.events[r.pos]
	r.pos++
	return event, nil
}

func (r *fakeReader) SetOffset(offset int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setOffset = offset
	r.pos = int(offset)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type fakeStore struct {
	mu     sync.Mutex
	loaded *snapshotv1.Snapshot
	stored []*snapshotv1.Snapshot
}

func (s *fakeStore) Store(_ context.Context, snap *snapshotv1.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, snap)
	return nil
}

func (s *fakeStore) Load(context.Context) (*snapshotv1.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	trades []*tradev1.TradeEvent
}

func (p *fakePublisher) PublishTrade(_ context.Context, trade *tradev1.TradeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trades = append(p.trades, trade)
	return nil
}

func (p *fakePublisher) published() []*tradev1.TradeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*tradev1.TradeEvent(nil), p.trades...)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return log
}

func waitDone(t *testing.T, e *Engine) {
	t.Helper()
	select {
	case <-e.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not drain the feed in time")
	}
}

func TestEngine_ProcessesFeedToCompletion(t *testing.T) {
	reader := newFakeReader(
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideBuy, Price: 10, Quantity: 5, OrderID: "b1"},
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideSell, Price: 11, Quantity: 2, OrderID: "s1"},
		&feedv1.Event{Action: feedv1.ActionDelete, Instrument: "X", OrderID: "b1"},
	)
	reg := registry.NewRegistry()
	e := NewEngine(reg, reader, nil, nil, testLogger(t))

	require.NoError(t, e.Start(context.Background()))
	waitDone(t, e)
	require.NoError(t, e.Stop(context.Background()))

	book, ok := reg.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, 0.0, book.BidTotalVolume())
	assert.Equal(t, 2.0, book.AskTotalVolume())
	assert.True(t, reader.closed)
}

func TestEngine_PublishesTradesOnMatch(t *testing.T) {
	reader := newFakeReader(
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideSell, Price: 10, Quantity: 2, OrderID: "s1"},
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideSell, Price: 10, Quantity: 4, OrderID: "s2"},
		&feedv1.Event{Action: feedv1.ActionMatch, Instrument: "X", Side: orderbookv1.SideBuy, Price: 10, Quantity: 3, OrderID: "t1"},
	)
	publisher := &fakePublisher{}
	reg := registry.NewRegistry()
	e := NewEngine(reg, reader, nil, publisher, testLogger(t))

	require.NoError(t, e.Start(context.Background()))
	waitDone(t, e)
	require.NoError(t, e.Stop(context.Background()))

	trades := publisher.published()
	require.Len(t, trades, 2)
	assert.Equal(t, "s1", trades[0].MakerOrderID)
	assert.Equal(t, 2.0, trades[0].Quantity)
	assert.Equal(t, "s2", trades[1].MakerOrderID)
	assert.Equal(t, 1.0, trades[1].Quantity)
	for _, trade := range trades {
		assert.NotEmpty(t, trade.TradeID)
		assert.Equal(t, "X", trade.Instrument)
		assert.Equal(t, "t1", trade.TakerOrderID)
		assert.Equal(t, orderbookv1.SideBuy, trade.TakerSide)
	}
}

func TestEngine_BadEventsDoNotHaltTheStream(t *testing.T) {
	reader := newFakeReader(
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideBuy, Price: 10, Quantity: 5, OrderID: "b1"},
		// Duplicate id on the same side.
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideBuy, Price: 11, Quantity: 1, OrderID: "b1"},
		// Cancel of an unknown order.
		&feedv1.Event{Action: feedv1.ActionDelete, Instrument: "X", OrderID: "ghost"},
		// Unknown action.
		&feedv1.Event{Action: feedv1.Action("UPSERT"), Instrument: "X", OrderID: "x"},
		// Still processed after all the bad ones.
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideSell, Price: 12, Quantity: 7, OrderID: "s1"},
	)
	reg := registry.NewRegistry()
	e := NewEngine(reg, reader, nil, nil, testLogger(t))

	require.NoError(t, e.Start(context.Background()))
	waitDone(t, e)
	require.NoError(t, e.Stop(context.Background()))

	book, ok := reg.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, 5.0, book.BidTotalVolume())
	assert.Equal(t, 7.0, book.AskTotalVolume())
}

func TestEngine_RestoresSnapshotAndResumes(t *testing.T) {
	store := &fakeStore{
		loaded: &snapshotv1.Snapshot{
			OrderOffset: 1,
			Books: []snapshotv1.BookSnapshot{
				{
					Instrument: "X",
					Bids: []snapshotv1.LevelSnapshot{
						{Price: 10, Orders: []snapshotv1.OrderSnapshot{{OrderID: "b1", Quantity: 5}}},
					},
				},
			},
		},
	}
	// Offsets 0 and 1 are covered by the snapshot; the reader must be
	// fast-forwarded past them.
	reader := newFakeReader(
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideBuy, Price: 10, Quantity: 5, OrderID: "b1"},
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideSell, Price: 12, Quantity: 2, OrderID: "s1"},
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideSell, Price: 12, Quantity: 3, OrderID: "s2"},
	)
	reg := registry.NewRegistry()
	e := NewEngine(reg, reader, store, nil, testLogger(t))

	require.NoError(t, e.Start(context.Background()))
	waitDone(t, e)
	require.NoError(t, e.Stop(context.Background()))

	assert.Equal(t, int64(2), reader.setOffset)

	book, ok := reg.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, 5.0, book.BidTotalVolume())
	assert.Equal(t, 3.0, book.AskTotalVolume())
}

func TestEngine_SnapshotManagerStoresOnOffsetDelta(t *testing.T) {
	store := &fakeStore{}
	reader := newFakeReader(
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideBuy, Price: 10, Quantity: 5, OrderID: "b1"},
		&feedv1.Event{Action: feedv1.ActionAdd, Instrument: "X", Side: orderbookv1.SideBuy, Price: 10, Quantity: 3, OrderID: "b2"},
	)
	reg := registry.NewRegistry()
	e := NewEngineWithOptions(reg, reader, store, nil, testLogger(t), &Options{
		SnapshotInterval:    10 * time.Millisecond,
		SnapshotOffsetDelta: 1,
	})

	require.NoError(t, e.Start(context.Background()))
	waitDone(t, e)

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.stored) > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, e.Stop(context.Background()))

	store.mu.Lock()
	defer store.mu.Unlock()
	last := store.stored[len(store.stored)-1]
	assert.Equal(t, int64(1), last.OrderOffset)
	require.Len(t, last.Books, 1)
	assert.Equal(t, "X", last.Books[0].Instrument)
}

func TestEngine_StopWithoutFeedEnd(t *testing.T) {
	// A reader that blocks until its context is cancelled, like the kafka one.
	reader := &blockingReader{}
	reg := registry.NewRegistry()
	e := NewEngine(reg, reader, nil, nil, testLogger(t))

	require.NoError(t, e.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, e.Stop(ctx))
}

type blockingReader struct{}

func (r *blockingReader) ReadEvent(ctx context.Context) (*feedv1.Event, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (r *blockingReader) SetOffset(int64) error { return nil }
func (r *blockingReader) Close() error          { return nil }
