// Package analytics ships proxied-call events off the request path. The
// emitter never blocks a response: a full buffer drops the event and bumps
// a loss counter.
package analytics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"rpc-gateway.backend/internal/domain/entities"
	"rpc-gateway.backend/internal/metrics"
	"rpc-gateway.backend/pkg/logger"
)

// Exporter receives drained event batches. The production exporter ships
// columnar files to object storage; it is an external collaborator, so the
// gateway only depends on this contract.
type Exporter interface {
	Export(ctx context.Context, events []entities.MessageInfo) error
}

// LogExporter writes batches to the structured log. It is the default when
// no shipping backend is configured.
type LogExporter struct{}

func (LogExporter) Export(ctx context.Context, events []entities.MessageInfo) error {
	for _, e := range events {
		logger.Debug(ctx, "rpc analytics event",
			zap.String("project_id", e.ProjectID),
			zap.String("chain_id", e.ChainID),
			zap.String("method", e.Method),
			zap.String("provider", e.Provider),
			zap.String("source", e.Source),
		)
	}
	return nil
}

// Emitter buffers events on a channel and drains them to the exporter on a
// timer or when the batch fills.
type Emitter struct {
	exporter  Exporter
	events    chan entities.MessageInfo
	flushTick time.Duration
	batchMax  int

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewEmitter builds an emitter with the given buffer size and flush interval.
func NewEmitter(exporter Exporter, bufferSize int, flushInterval time.Duration) *Emitter {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Emitter{
		exporter:  exporter,
		events:    make(chan entities.MessageInfo, bufferSize),
		flushTick: flushInterval,
		batchMax:  256,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Emit enqueues an event without blocking. Dropped events must not change
// any client-visible byte, so the only side effect of a full buffer is the
// loss counter.
func (e *Emitter) Emit(event entities.MessageInfo) {
	select {
	case e.events <- event:
	default:
		metrics.AnalyticsEventsDropped.Inc()
	}
}

// Start runs the drain loop until Stop is called or ctx is cancelled.
func (e *Emitter) Start(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.flushTick)
	defer ticker.Stop()

	batch := make([]entities.MessageInfo, 0, e.batchMax)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := e.exporter.Export(ctx, batch); err != nil {
			logger.Warn(ctx, "analytics export failed", zap.Error(err), zap.Int("events", len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case ev := <-e.events:
			batch = append(batch, ev)
			if len(batch) >= e.batchMax {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		case <-e.stop:
			// Drain whatever is already queued, then leave.
			for {
				select {
				case ev := <-e.events:
					batch = append(batch, ev)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Stop flushes queued events and terminates the drain loop.
func (e *Emitter) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
	<-e.done
}
