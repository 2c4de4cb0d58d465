package ingestion

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"OogaLedger/internal/call"
)

// callJSON is the inbound wire format. Field names use snake_case to
// match upstream producers; incoming_value is base64 in JSON.
type callJSON struct {
	CallID        string   `json:"call_id"`
	Inputs        []string `json:"inputs"`
	IncomingValue []byte   `json:"incoming_value,omitempty"`
	TimestampUs   int64    `json:"timestamp_us,omitempty"`
}

// ParseRawCall validates and converts one NATS message into a call.
// call_id is mandatory on this path: JetStream redelivery is routine,
// so every message must be deduplicable.
func ParseRawCall(raw RawCall) (call.Call, error) {
	var j callJSON
	if err := json.Unmarshal(raw.Data, &j); err != nil {
		return call.Call{}, fmt.Errorf("parse call: %w", err)
	}

	if j.CallID == "" {
		return call.Call{}, fmt.Errorf("call_id is required")
	}
	id, err := uuid.Parse(j.CallID)
	if err != nil {
		return call.Call{}, fmt.Errorf("parse call_id: %w", err)
	}

	received := raw.Received
	if j.TimestampUs > 0 {
		received = time.UnixMicro(j.TimestampUs)
	}

	return call.Call{
		ID:       id,
		Inputs:   j.Inputs,
		Incoming: j.IncomingValue,
		Received: received,
	}, nil
}
