// Package core runs calls against the ledger: one at a time, each one
// either fully committed or fully discarded, every one receipted into
// a hash chain.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"OogaLedger/internal/call"
	"OogaLedger/internal/observability"
	"OogaLedger/internal/storage"
)

// ErrDuplicateCall is returned for call IDs that already produced a
// committed result. Duplicates execute nothing and emit no receipt.
var ErrDuplicateCall = errors.New("duplicate call")

// DefaultRequestBuffer is the submission queue depth.
const DefaultRequestBuffer = 256

// Engine executes calls serially against the authoritative store.
// Submit is safe for concurrent use from any number of goroutines;
// Run drains submissions on a single goroutine, so callers observe a
// total order and no call ever sees another call's uncommitted
// writes.
type Engine struct {
	kv       storage.KV
	sequence int64
	hasher   *StateHasher
	dedup    *DedupChecker
	metrics  *observability.Metrics

	requests    chan engineRequest
	receiptChan chan<- call.Receipt
}

type engineRequest struct {
	c       call.Call
	respond chan engineResponse
}

type engineResponse struct {
	result call.Result
	err    error
}

// NewEngine builds an engine over kv. Receipts for every executed
// call are sent to receiptChan when it is non-nil; the send blocks,
// so the consumer must keep draining. dbChecker and metrics may be
// nil.
func NewEngine(
	kv storage.KV,
	receiptChan chan<- call.Receipt,
	dbChecker DBDedupChecker,
	metrics *observability.Metrics,
) *Engine {
	return &Engine{
		kv:          kv,
		hasher:      NewStateHasher(),
		dedup:       NewDedupChecker(DefaultDedupCapacity, dbChecker),
		metrics:     metrics,
		requests:    make(chan engineRequest, DefaultRequestBuffer),
		receiptChan: receiptChan,
	}
}

// RestoreChain resumes the receipt chain from the last persisted
// receipt: nextSequence is the sequence the next call receives, tip
// is that receipt's state hash. Call before Run.
func (e *Engine) RestoreChain(nextSequence int64, tip [32]byte) {
	e.sequence = nextSequence
	e.hasher.SetTip(tip)
}

// WarmDedup preloads the duplicate cache with persisted call IDs,
// newest first. Call before Run.
func (e *Engine) WarmDedup(callIDs []string) {
	e.dedup.Warm(callIDs)
}

// SetDedupCapacity resizes the duplicate cache, dropping anything
// already cached. Call before Run and before WarmDedup.
func (e *Engine) SetDedupCapacity(capacity int) {
	e.dedup = NewDedupChecker(capacity, e.dedup.db)
}

// Sequence returns the sequence number the next call will receive.
func (e *Engine) Sequence() int64 {
	return e.sequence
}

// Submit queues one call and waits for its result.
func (e *Engine) Submit(ctx context.Context, c call.Call) (call.Result, error) {
	respond := make(chan engineResponse, 1)

	select {
	case e.requests <- engineRequest{c: c, respond: respond}:
	case <-ctx.Done():
		return call.Result{}, ctx.Err()
	}

	select {
	case resp := <-respond:
		return resp.result, resp.err
	case <-ctx.Done():
		return call.Result{}, ctx.Err()
	}
}

// Run processes submissions until ctx is cancelled. Storage runs
// under the loop's ctx rather than the submitter's: once a call
// starts it finishes even if the submitter gave up waiting.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-e.requests:
			result, err := e.process(ctx, req.c)
			req.respond <- engineResponse{result: result, err: err}
		}
	}
}

func (e *Engine) process(ctx context.Context, c call.Call) (call.Result, error) {
	start := time.Now()

	opcodeToken := ""
	if len(c.Inputs) > 0 {
		opcodeToken = c.Inputs[0]
	}
	opLabel := "invalid"
	if op, parseErr := call.ParseOpcode(opcodeToken); parseErr == nil {
		opLabel = op.String()
	}

	// A zero ID opts the call out of deduplication.
	if c.ID != uuid.Nil {
		if dup, tier := e.dedup.IsDuplicate(c.ID.String()); dup {
			if e.metrics != nil {
				e.metrics.CallsDeduplicated.WithLabelValues(tier).Inc()
			}
			return call.Result{}, ErrDuplicateCall
		}
	}

	stage := storage.NewStage(e.kv)
	result, err := Dispatch(ctx, stage, c)

	// Capture the staged writes before Commit resets the stage; the
	// receipt digest covers exactly what was applied.
	var puts []storage.Put
	if err == nil {
		puts = stage.Puts()
		if commitErr := stage.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("commit call %s: %w", c.ID, commitErr)
			puts = nil
			result = call.Result{}
		}
	} else {
		stage.Discard()
	}

	prev := e.hasher.Tip()
	hash := e.hasher.ComputeHash(e.sequence, DigestPuts(puts))

	receipt := call.Receipt{
		CallID:    c.ID,
		Sequence:  e.sequence,
		Opcode:    opcodeToken,
		Status:    call.StatusForError(err),
		Data:      result.Data,
		StateHash: hash,
		PrevHash:  prev,
		Received:  c.Received,
		Duration:  time.Since(start),
	}
	if err != nil {
		receipt.Error = err.Error()
	}
	e.sequence++

	// Blocking send: the engine stalls rather than lose a receipt.
	if e.receiptChan != nil {
		e.receiptChan <- receipt
	}

	if err == nil && c.ID != uuid.Nil {
		e.dedup.MarkProcessed(c.ID.String())
	}

	if e.metrics != nil {
		e.metrics.CallsExecuted.WithLabelValues(opLabel, receipt.Status).Inc()
		e.metrics.CallDuration.WithLabelValues(opLabel).Observe(time.Since(start).Seconds())
		e.metrics.EngineSequence.Set(float64(e.sequence))
		e.metrics.StagedWrites.Observe(float64(len(puts)))
	}

	return result, err
}
