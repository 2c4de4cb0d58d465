package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"OogaLedger/internal/call"
	"OogaLedger/internal/observability"
)

// ReceiptPublisher publishes call receipts to NATS for downstream
// consumers. Subjects follow the pattern ooga.ledger.receipts.{status}.
type ReceiptPublisher struct {
	js        jetstream.JetStream
	inputChan <-chan PublishableReceipt
	metrics   *observability.Metrics
	log       zerolog.Logger
}

// PublishableReceipt is the outbound wire form of a receipt.
type PublishableReceipt struct {
	CallID     string    `json:"call_id,omitempty"`
	Sequence   int64     `json:"sequence"`
	Opcode     string    `json:"opcode"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Data       []byte    `json:"data,omitempty"`
	StateHash  []byte    `json:"state_hash"`
	PrevHash   []byte    `json:"prev_hash"`
	Received   time.Time `json:"received"`
	DurationUs int64     `json:"duration_us"`
}

// PublishableFromReceipt converts an engine receipt for publishing.
func PublishableFromReceipt(r call.Receipt) PublishableReceipt {
	out := PublishableReceipt{
		Sequence:   r.Sequence,
		Opcode:     r.Opcode,
		Status:     r.Status,
		Error:      r.Error,
		Data:       r.Data,
		StateHash:  append([]byte(nil), r.StateHash[:]...),
		PrevHash:   append([]byte(nil), r.PrevHash[:]...),
		Received:   r.Received,
		DurationUs: r.Duration.Microseconds(),
	}
	if r.CallID != uuid.Nil {
		out.CallID = r.CallID.String()
	}
	return out
}

func NewReceiptPublisher(
	js jetstream.JetStream,
	inputChan <-chan PublishableReceipt,
	metrics *observability.Metrics,
	log zerolog.Logger,
) *ReceiptPublisher {
	return &ReceiptPublisher{
		js:        js,
		inputChan: inputChan,
		metrics:   metrics,
		log:       log,
	}
}

// Run drains the publish channel until ctx is cancelled or the
// channel closes.
func (rp *ReceiptPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case receipt, ok := <-rp.inputChan:
			if !ok {
				return nil
			}

			if err := rp.publish(ctx, receipt); err != nil {
				// Non-fatal: the durable copy is in Postgres.
				rp.log.Warn().
					Err(err).
					Int64("sequence", receipt.Sequence).
					Msg("receipt publish failed")
				continue
			}
			if rp.metrics != nil {
				rp.metrics.ReceiptsPublished.WithLabelValues(receipt.Status).Inc()
			}
		}
	}
}

func (rp *ReceiptPublisher) publish(ctx context.Context, r PublishableReceipt) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	subject := fmt.Sprintf("ooga.ledger.receipts.%s", r.Status)
	_, err = rp.js.Publish(ctx, subject, data)
	return err
}

// EnsureReceiptStream creates the outbound receipts stream.
func EnsureReceiptStream(ctx context.Context, js jetstream.JetStream, log zerolog.Logger) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "OOGA_LEDGER_RECEIPTS",
		Subjects:  []string{"ooga.ledger.receipts.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create receipts stream: %w", err)
	}
	log.Info().Msg("ensured stream OOGA_LEDGER_RECEIPTS")
	return nil
}
