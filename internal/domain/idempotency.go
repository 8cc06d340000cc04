package domain

import (
	"encoding/json"
	"time"
)

// IdempotencyRecordTTL is how long a durable idempotency record certifies
// its response.
const IdempotencyRecordTTL = 24 * time.Hour

// IdempotencyRecord is the durable half of the two-tier idempotency store.
// (Key, Endpoint) is unique.
type IdempotencyRecord struct {
	ID           int64
	Key          string
	Endpoint     string
	ResponseCode int
	ResponseBody json.RawMessage
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
