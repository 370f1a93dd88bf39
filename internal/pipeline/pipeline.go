package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tgk/tipstream/internal/aggregate"
	"github.com/tgk/tipstream/internal/models"
	"github.com/tgk/tipstream/internal/watermark"
)

const emissionBuffer = 64

// emission is one element of the stream between the accumulator and the
// selector: either a per-driver total, or the closure marker that follows
// the last total of its window. The marker ordering is what guarantees the
// selector has grouped every total for a window before it fires.
type emission struct {
	total     models.TipTotal
	closed    bool
	windowEnd int64
}

// DataPipeline wires a fare event source through the windowed aggregation
// stages into a winner sink. Each stage runs as its own goroutine connected
// by bounded channels, so a slow sink backpressures all the way to the
// source.
type DataPipeline struct {
	// pipeline is running
	open atomic.Bool
	// A data source object
	Source DataSource
	// A data sink object
	Sink DataSink

	windowSize time.Duration
	wm         *watermark.Tracker
	metrics    *Metrics
	cancel     context.CancelFunc

	// Unique identifier for the data pipeline
	key string
}

// NewDataPipeline creates a pipeline over tumbling windows of the given
// size.
func NewDataPipeline(source DataSource, sink DataSink, windowSize time.Duration, metrics *Metrics) *DataPipeline {
	log.Trace().Msgf("Creating pipeline %s -> %s", source.Info(), sink.Info())
	key := uuid.NewString()
	if id, err := uuid.NewV7(); err == nil {
		key = id.String()
	}
	return &DataPipeline{
		Source:     source,
		Sink:       sink,
		windowSize: windowSize,
		wm:         watermark.NewTracker(),
		metrics:    metrics,
		key:        key,
	}
}

// Key returns the unique identifier of the pipeline.
func (dp *DataPipeline) Key() string {
	return dp.key
}

// Watermark returns the current event-time watermark in milliseconds.
func (dp *DataPipeline) Watermark() int64 {
	return dp.wm.Current()
}

// Stats returns a snapshot of the pipeline counters.
func (dp *DataPipeline) Stats() Stats {
	return dp.metrics.Snapshot()
}

// Run connects the source and sink, starts the stages, and blocks until the
// source is exhausted or a stage-fatal error terminates the pipeline.
// Per-event errors (malformed or late events) are counted and dropped; an
// accumulator overflow aborts the run.
func (dp *DataPipeline) Run(pctx context.Context) error {
	ctx, cancel := context.WithCancel(pctx)
	dp.cancel = cancel
	defer cancel()

	if err := dp.Source.Connect(ctx); err != nil {
		return fmt.Errorf("connecting source %s: %w", dp.Source.Name(), err)
	}
	if err := dp.Sink.Connect(ctx); err != nil {
		return fmt.Errorf("connecting sink %s: %w", dp.Sink.Name(), err)
	}

	dp.open.Store(true)
	defer dp.open.Store(false)

	var wg sync.WaitGroup

	events, err := dp.Source.Read(ctx, &wg)
	if err != nil {
		return fmt.Errorf("reading source %s: %w", dp.Source.Name(), err)
	}

	emissions := make(chan emission, emissionBuffer)
	winners := make(chan models.TipTotal, emissionBuffer)
	fatal := make(chan error, 1)

	wg.Add(1)
	go dp.accumulate(ctx, &wg, events, emissions, fatal)

	wg.Add(1)
	go dp.selectMax(&wg, emissions, winners)

	if err := dp.Sink.Write(ctx, &wg, winners); err != nil {
		cancel()
		return fmt.Errorf("writing to sink %s: %w", dp.Sink.Name(), err)
	}

	wg.Wait()

	if derr := dp.Source.Disconnect(); derr != nil {
		log.Err(derr).Msg("Error disconnecting source")
	}
	if derr := dp.Sink.Disconnect(); derr != nil {
		log.Err(derr).Msg("Error disconnecting sink")
	}

	select {
	case ferr := <-fatal:
		return ferr
	default:
		return nil
	}
}

// Stop cancels a running pipeline.
func (dp *DataPipeline) Stop() {
	if dp.cancel != nil {
		dp.cancel()
	}
}

// IsOpen reports whether the pipeline is currently running.
func (dp *DataPipeline) IsOpen() bool {
	return dp.open.Load()
}

// accumulate is the keyed aggregation stage. It validates events, advances
// the watermark, folds tips into per-(window, driver) sums, and emits each
// window's totals followed by its closure marker once the watermark passes
// the window end. When the source is exhausted the watermark jumps to the
// end of time so every remaining window drains.
func (dp *DataPipeline) accumulate(ctx context.Context, wg *sync.WaitGroup, events <-chan models.FareEvent, emissions chan<- emission, fatal chan<- error) {
	defer wg.Done()
	defer close(emissions)

	acc := aggregate.NewTipAccumulator(dp.windowSize, dp.wm)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				dp.wm.AdvanceToEnd()
				dp.flush(acc, emissions)
				return
			}
			dp.metrics.IncEventsIn()

			if verr := ev.Validate(); verr != nil {
				dp.metrics.IncEventsRejected()
				log.Debug().Err(verr).Msg("Rejecting malformed fare event")
				continue
			}

			dp.metrics.SetWatermark(dp.wm.Observe(ev.EventTimeMillis))

			if aerr := acc.Apply(ev); aerr != nil {
				if errors.Is(aerr, aggregate.ErrLateEvent) {
					dp.metrics.IncLateDropped()
					log.Debug().Err(aerr).Msg("Dropping late fare event")
					continue
				}
				log.Error().Err(aerr).Msg("Fatal accumulator error, stopping pipeline")
				fatal <- aerr
				dp.cancel()
				return
			}

			dp.flush(acc, emissions)
		}
	}
}

// flush emits every window the watermark has passed. The closure marker for
// a window is sent strictly after its totals.
func (dp *DataPipeline) flush(acc *aggregate.TipAccumulator, emissions chan<- emission) {
	for _, cw := range acc.CloseExpired() {
		for _, t := range cw.Totals {
			emissions <- emission{total: t}
		}
		emissions <- emission{closed: true, windowEnd: cw.Window.End}
		dp.metrics.IncWindowsClosed()
		log.Trace().Int64("window_end", cw.Window.End).Int("drivers", len(cw.Totals)).Msg("Window closed")
	}
}

// selectMax is the global maximum stage. Totals are re-grouped by window
// end; the winner for a window is emitted when its closure marker arrives,
// never before.
func (dp *DataPipeline) selectMax(wg *sync.WaitGroup, emissions <-chan emission, winners chan<- models.TipTotal) {
	defer wg.Done()
	defer close(winners)

	sel := aggregate.NewMaxSelector()

	for em := range emissions {
		if !em.closed {
			sel.Observe(em.total)
			continue
		}
		winner, ok := sel.Close(em.windowEnd)
		if !ok {
			continue
		}
		winners <- winner
		dp.metrics.IncWinnersEmitted()
		log.Debug().
			Int64("window_end", winner.WindowEnd).
			Int64("driver_id", winner.DriverID).
			Float64("tip_sum", winner.TipSum).
			Msg("Hourly winner")
	}
}
