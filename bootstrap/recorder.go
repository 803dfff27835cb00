package bootstrap

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/artpar/paygate/adapters/metrics"
	"github.com/artpar/paygate/domain/ledger"
	"github.com/artpar/paygate/ports"
	"github.com/rs/zerolog"
)

// archiveOp is one queued write: a new entry or a status change.
type archiveOp struct {
	entry      ledger.Entry
	transition bool
}

// LedgerRecorder buffers ledger writes and mirrors them to an archive in
// batches. Writes are applied in the order they were queued.
type LedgerRecorder struct {
	archive       ports.LedgerArchive
	logger        zerolog.Logger
	metrics       *metrics.Collector
	batchSize     int
	flushInterval time.Duration

	mu     sync.Mutex
	buffer []archiveOp
	closed bool

	writeMu   sync.Mutex
	kick      chan struct{}
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// LedgerRecorderConfig configures a LedgerRecorder.
type LedgerRecorderConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	Logger        zerolog.Logger
	Metrics       *metrics.Collector // optional
}

// NewLedgerRecorder creates a recorder and starts its flush loop.
func NewLedgerRecorder(archive ports.LedgerArchive, cfg LedgerRecorderConfig) *LedgerRecorder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}

	r := &LedgerRecorder{
		archive:       archive,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		buffer:        make([]archiveOp, 0, cfg.BatchSize),
		kick:          make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
	}

	r.wg.Add(1)
	go r.flushLoop()

	return r
}

// Record queues a new entry.
func (r *LedgerRecorder) Record(e ledger.Entry) {
	r.enqueue(archiveOp{entry: e})
}

// Transitioned queues a status change.
func (r *LedgerRecorder) Transitioned(e ledger.Entry) {
	r.enqueue(archiveOp{entry: e, transition: true})
}

func (r *LedgerRecorder) enqueue(op archiveOp) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn().Str("request_id", op.entry.ID).Bool("transition", op.transition).Msg("ledger recorder closed, op dropped")
		r.observe("dropped")
		return
	}
	r.buffer = append(r.buffer, op)
	full := len(r.buffer) >= r.batchSize
	r.mu.Unlock()

	if full {
		select {
		case r.kick <- struct{}{}:
		default:
		}
	}
}

// Flush writes everything queued so far.
func (r *LedgerRecorder) Flush(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	ops := r.buffer
	r.buffer = make([]archiveOp, 0, r.batchSize)
	r.mu.Unlock()

	return r.write(ctx, ops)
}

func (r *LedgerRecorder) write(ctx context.Context, ops []archiveOp) error {
	if len(ops) == 0 {
		return nil
	}

	var inserts []ledger.Entry
	for _, op := range ops {
		if !op.transition {
			inserts = append(inserts, op.entry)
		}
	}

	var errs []error
	if err := r.archive.WriteBatch(ctx, inserts); err != nil {
		errs = append(errs, err)
	}

	for _, op := range ops {
		if !op.transition {
			continue
		}
		e := op.entry
		err := r.archive.UpdateStatus(ctx, e.ID, e.Status, e.CompletedAt)
		if errors.Is(err, ledger.ErrNotFound) {
			// Entry predates the archive; store it in its current state.
			err = r.archive.WriteBatch(ctx, []ledger.Entry{e})
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		r.logger.Error().Err(err).Int("ops", len(ops)).Msg("ledger archive write failed")
		r.observe("error")
		return err
	}

	r.logger.Debug().Int("entries", len(inserts)).Int("ops", len(ops)).Msg("ledger archive flushed")
	r.observe("ok")
	return nil
}

func (r *LedgerRecorder) observe(result string) {
	if r.metrics != nil {
		r.metrics.ArchiveWrites.WithLabelValues(result).Inc()
	}
}

func (r *LedgerRecorder) flushLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-r.kick:
		case <-r.stopCh:
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		r.Flush(ctx)
		cancel()
	}
}

// Close stops the recorder and flushes remaining writes.
func (r *LedgerRecorder) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		close(r.stopCh)
		r.wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = r.Flush(ctx)
	})
	return err
}

// Ensure interface compliance.
var _ ports.LedgerRecorder = (*LedgerRecorder)(nil)
