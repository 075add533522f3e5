package engine

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	feedv1 "github.com/lomash27/Auro/internal/domain/feed/v1"
	orderbookv1 "github.com/lomash27/Auro/internal/domain/orderbook/v1"
	snapshotv1 "github.com/lomash27/Auro/internal/domain/snapshot/v1"
	tradev1 "github.com/lomash27/Auro/internal/domain/trade/v1"
	"github.com/lomash27/Auro/internal/usecase/registry"
	"github.com/lomash27/Auro/pkg/logger"
)

// Engine applies the order event stream to the registry of books, publishes
// the resulting trades, and exports snapshots.
type Engine struct {
	registry       *registry.Registry
	reader         feedv1.Reader
	snapshotStore  snapshotv1.Store  // optional
	tradePublisher tradev1.Publisher // optional
	logger         *logger.Logger

	mu                 sync.RWMutex
	orderOffset        int64
	lastSnapshotOffset int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}

	snapshotInterval    time.Duration
	snapshotOffsetDelta int64
}

// NewEngine creates an engine with default options. snapshotStore and
// tradePublisher may be nil; the corresponding concerns are then skipped.
func NewEngine(
	reg *registry.Registry,
	reader feedv1.Reader,
	snapshotStore snapshotv1.Store,
	tradePublisher tradev1.Publisher,
	log *logger.Logger,
) *Engine {
	return NewEngineWithOptions(reg, reader, snapshotStore, tradePublisher, log, DefaultEngineOptions())
}

// NewEngineWithOptions creates an engine with custom options.
func NewEngineWithOptions(
	reg *registry.Registry,
	reader feedv1.Reader,
	snapshotStore snapshotv1.Store,
	tradePublisher tradev1.Publisher,
	log *logger.Logger,
	options *Options,
) *Engine {
	return &Engine{
		registry:            reg,
		reader:              reader,
		snapshotStore:       snapshotStore,
		tradePublisher:      tradePublisher,
		logger:              log,
		done:                make(chan struct{}),
		snapshotInterval:    options.SnapshotInterval,
		snapshotOffsetDelta: options.SnapshotOffsetDelta,
		orderOffset:         -1,
		lastSnapshotOffset:  -1,
	}
}

// Start restores the last snapshot, positions the reader, and launches the
// processing routines.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	if err := e.loadSnapshot(e.ctx); err != nil {
		return err
	}

	e.wg.Add(1)
	go e.runOrderProcessor()

	if e.snapshotStore != nil {
		e.wg.Add(1)
		go e.runSnapshotManager()
	}

	e.logger.Info("engine started")
	return nil
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("engine stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.Warn("engine stop timeout exceeded")
		return ctx.Err()
	}
}

// Done is closed when the feed is exhausted (finite feeds only).
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) runOrderProcessor() {
	defer e.wg.Done()
	defer close(e.done)

	e.logger.Info("starting order processor")

	currentOffset := e.getOrderOffset()
	if currentOffset >= 0 {
		if err := e.reader.SetOffset(currentOffset + 1); err != nil {
			e.logger.Error(err, logger.Field{
				Key:   "action",
				Value: "set_reader_offset",
			})
			return
		}
	}

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("order processor shutting down")
			e.reader.Close()
			return
		default:
			event, err := e.reader.ReadEvent(e.ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					e.logger.Info("feed exhausted", logger.Field{
						Key:   "lastOffset",
						Value: e.getOrderOffset(),
					})
					e.reader.Close()
					return
				}
				if errors.Is(err, context.Canceled) {
					continue
				}
				if errors.Is(err, orderbookv1.ErrInvalidOrder) {
					// Malformed single event; drop it, keep the stream alive.
					e.logger.WarnContext(e.ctx, "dropping malformed event", logger.Field{
						Key:   "error",
						Value: err.Error(),
					})
					continue
				}
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_event",
				})
				time.Sleep(100 * time.Millisecond)
				continue
			}

			e.processEvent(event)
			e.setOrderOffset(event.Offset)
		}
	}
}

// processEvent applies one event. Domain errors are reported and dropped;
// they never halt processing of the remaining stream.
func (e *Engine) processEvent(event *feedv1.Event) {
	result, err := e.registry.Apply(event)
	if err != nil {
		switch {
		case errors.Is(err, orderbookv1.ErrOrderNotFound):
			e.logger.Warn("cancel for unknown order", logger.Field{
				Key:   "orderId",
				Value: event.OrderID,
			}, logger.Field{
				Key:   "book",
				Value: event.Instrument,
			})
		case errors.Is(err, orderbookv1.ErrInvalidOrder),
			errors.Is(err, orderbookv1.ErrDuplicateOrder),
			errors.Is(err, feedv1.ErrUnknownAction):
			e.logger.Warn("dropping event", logger.Field{
				Key:   "error",
				Value: err.Error(),
			}, logger.Field{
				Key:   "offset",
				Value: event.Offset,
			})
		default:
			e.logger.ErrorContext(e.ctx, err, logger.Field{
				Key:   "action",
				Value: "apply_event",
			})
		}
		return
	}

	if result.Action == feedv1.ActionMatch && len(result.Fills) > 0 {
		e.publishFills(event, result.Fills)
	}
}

func (e *Engine) publishFills(event *feedv1.Event, fills []orderbookv1.Fill) {
	e.logger.Info("match executed",
		logger.Field{Key: "book", Value: event.Instrument},
		logger.Field{Key: "fills", Value: len(fills)},
		logger.Field{Key: "filledQuantity", Value: orderbookv1.FilledQuantity(fills)},
	)

	if e.tradePublisher == nil {
		return
	}
	for _, fill := range fills {
		trade := tradev1.FromFill(event.Instrument, event.Side, fill)
		if err := e.tradePublisher.PublishTrade(e.ctx, trade); err != nil {
			e.logger.ErrorContext(e.ctx, err, logger.Field{
				Key:   "action",
				Value: "publish_trade",
			})
		}
	}
}

func (e *Engine) runSnapshotManager() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.snapshotInterval)
	defer ticker.Stop()

	e.logger.Info("starting snapshot manager")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("snapshot manager shutting down")
			return
		case <-ticker.C:
			if e.shouldCreateSnapshot() {
				e.createAndStoreSnapshot()
			}
		}
	}
}

func (e *Engine) loadSnapshot(ctx context.Context) error {
	if e.snapshotStore == nil {
		return nil
	}

	snap, err := e.snapshotStore.Load(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	if err := e.registry.Restore(snap); err != nil {
		return err
	}
	e.setOrderOffset(snap.OrderOffset)
	e.setLastSnapshotOffset(snap.OrderOffset)

	e.logger.Info("snapshot restored",
		logger.Field{Key: "books", Value: len(snap.Books)},
		logger.Field{Key: "offset", Value: snap.OrderOffset},
	)
	return nil
}

func (e *Engine) shouldCreateSnapshot() bool {
	e.mu.RLock()
	currentOffset := e.orderOffset
	lastSnapshotOffset := e.lastSnapshotOffset
	e.mu.RUnlock()

	if currentOffset < 0 {
		return false
	}
	return currentOffset-lastSnapshotOffset >= e.snapshotOffsetDelta
}

func (e *Engine) createAndStoreSnapshot() {
	currentOffset := e.getOrderOffset()

	snap := e.registry.Snapshot()
	snap.OrderOffset = currentOffset

	if err := e.snapshotStore.Store(e.ctx, snap); err != nil {
		e.logger.ErrorContext(e.ctx, err, logger.Field{
			Key:   "action",
			Value: "store_snapshot",
		})
		return
	}
	e.setLastSnapshotOffset(currentOffset)
}

func (e *Engine) getOrderOffset() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orderOffset
}

func (e *Engine) setOrderOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orderOffset = offset
}

func (e *Engine) setLastSnapshotOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSnapshotOffset = offset
}
