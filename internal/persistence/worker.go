package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"OogaLedger/internal/observability"
)

// PersistenceWorker drains the receipt channel and batch-writes to
// Postgres. The engine's sends into that channel block, so a stalled
// worker stalls the engine instead of losing receipts.
type PersistenceWorker struct {
	db           *sql.DB
	writer       *ReceiptWriter
	inputChan    <-chan ReceiptRow
	batchSize    int
	flushTimeout time.Duration
	metrics      *observability.Metrics
	log          zerolog.Logger
}

func NewPersistenceWorker(
	db *sql.DB,
	inputChan <-chan ReceiptRow,
	batchSize int,
	flushTimeout time.Duration,
	metrics *observability.Metrics,
	log zerolog.Logger,
) *PersistenceWorker {
	return &PersistenceWorker{
		db:           db,
		writer:       NewReceiptWriter(db),
		inputChan:    inputChan,
		batchSize:    batchSize,
		flushTimeout: flushTimeout,
		metrics:      metrics,
		log:          log,
	}
}

// Run batches incoming receipts and flushes when the batch fills or
// the flush timeout expires. Blocks until ctx is cancelled or the
// channel closes; either way the remaining batch is flushed before
// returning.
func (pw *PersistenceWorker) Run(ctx context.Context) error {
	batch := make([]ReceiptRow, 0, pw.batchSize)

	timer := time.NewTimer(pw.flushTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := pw.finalFlush(batch); err != nil {
				pw.log.Error().Err(err).Int("receipts", len(batch)).Msg("final flush failed")
			}
			return ctx.Err()

		case row, ok := <-pw.inputChan:
			if !ok {
				if err := pw.finalFlush(batch); err != nil {
					pw.log.Error().Err(err).Int("receipts", len(batch)).Msg("final flush failed")
				}
				return nil
			}

			batch = append(batch, row)
			if len(batch) >= pw.batchSize {
				if err := pw.flushWithRetry(ctx, batch); err != nil {
					pw.log.Error().Err(err).Msg("batch flush failed")
				}
				batch = batch[:0]
				timer.Reset(pw.flushTimeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				if err := pw.flushWithRetry(ctx, batch); err != nil {
					pw.log.Error().Err(err).Msg("timeout flush failed")
				}
				batch = batch[:0]
			}
			timer.Reset(pw.flushTimeout)
		}
	}
}

// finalFlush makes one last attempt with a fresh context so shutdown
// does not drop buffered receipts.
func (pw *PersistenceWorker) finalFlush(batch []ReceiptRow) error {
	if len(batch) == 0 {
		return nil
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return pw.flush(flushCtx, batch)
}

// flushWithRetry retries with exponential backoff until the write
// succeeds or ctx is cancelled; cancellation falls through to one
// final attempt.
func (pw *PersistenceWorker) flushWithRetry(ctx context.Context, batch []ReceiptRow) error {
	backoff := 100 * time.Millisecond
	const maxBackoff = 30 * time.Second

	for attempt := 1; ; attempt++ {
		err := pw.flush(ctx, batch)
		if err == nil {
			if attempt > 1 {
				pw.log.Info().Int("attempts", attempt).Msg("persistence flush recovered")
			}
			return nil
		}

		if pw.metrics != nil {
			pw.metrics.PersistRetry.Inc()
		}
		pw.log.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Int("receipts", len(batch)).
			Msg("persistence flush failed, retrying")

		select {
		case <-ctx.Done():
			if err := pw.finalFlush(batch); err != nil {
				return fmt.Errorf("final flush on shutdown: %w", err)
			}
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (pw *PersistenceWorker) flush(ctx context.Context, batch []ReceiptRow) error {
	start := time.Now()

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		if pw.metrics != nil {
			pw.metrics.PersistErrors.WithLabelValues("tx_begin").Inc()
		}
		return err
	}
	defer tx.Rollback()

	if err := pw.writer.WriteBatch(ctx, tx, batch); err != nil {
		if pw.metrics != nil {
			pw.metrics.PersistErrors.WithLabelValues("write_receipts").Inc()
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if pw.metrics != nil {
			pw.metrics.PersistErrors.WithLabelValues("tx_commit").Inc()
		}
		return err
	}

	if pw.metrics != nil {
		pw.metrics.PersistBatchDur.Observe(time.Since(start).Seconds())
		pw.metrics.PersistBatchSize.Observe(float64(len(batch)))
		pw.metrics.ReceiptsWritten.Add(float64(len(batch)))
		pw.metrics.PersistLastSequence.Set(float64(batch[len(batch)-1].Sequence))
	}

	return nil
}
