package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/storefront/internal/adapter/notify"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// ConfirmationFacade exposes the subset of application functionality required by the worker.
type ConfirmationFacade interface {
	PendingConfirmations(ctx context.Context, limit int) ([]model.Order, error)
	SendConfirmation(ctx context.Context, order model.Order) error
	MarkConfirmation(ctx context.Context, orderID int64, status model.NotificationStatus) error
}

// ConfirmationDispatcher polls queued orders and sends their confirmations concurrently.
type ConfirmationDispatcher struct {
	facade       ConfirmationFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewConfirmationDispatcher constructs the dispatcher worker pool.
func NewConfirmationDispatcher(facade ConfirmationFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *ConfirmationDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &ConfirmationDispatcher{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background processing.
func (d *ConfirmationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}

	d.wg.Add(1)
	go d.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (d *ConfirmationDispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *ConfirmationDispatcher) dispatch(ctx context.Context) {
	defer d.wg.Done()
	defer close(d.jobs)
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.fetchAndDispatch(ctx)
		}
	}
}

func (d *ConfirmationDispatcher) fetchAndDispatch(ctx context.Context) {
	orders, err := d.facade.PendingConfirmations(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("fetch pending confirmations failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case d.jobs <- order:
		}
	}
}

func (d *ConfirmationDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-d.jobs:
			if !ok {
				return
			}
			d.handleOrder(ctx, order)
		}
	}
}

func (d *ConfirmationDispatcher) handleOrder(ctx context.Context, order model.Order) {
	status := model.NotificationSent
	if err := d.facade.SendConfirmation(ctx, order); err != nil {
		if errors.Is(err, notify.ErrNoRecipient) {
			status = model.NotificationSkipped
		} else {
			d.logger.Error("send confirmation failed", slog.Int64("order", order.ID), slog.String("error", err.Error()))
			status = model.NotificationFailed
		}
	}

	if err := d.facade.MarkConfirmation(ctx, order.ID, status); err != nil {
		d.logger.Error("update confirmation status failed", slog.Int64("order", order.ID), slog.String("error", err.Error()))
	}
}
