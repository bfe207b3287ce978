package event

import (
	"math/big"

	"github.com/kbukum/flowkit/errors"
)

// Channel names used by the pipeline bridge.
const (
	Notify   = "notify"
	Report   = "report"
	Progress = "progress"
)

// Event types consumed by the progress tracker.
const (
	TypeReadSize     = "readsize"
	TypeReadProgress = "readprogress"
	TypeReadComplete = "readcomplete"
)

// Payload keys.
const (
	KeySize    = "size"
	KeyPercent = "percent"
)

// Event is a named record with an arbitrary payload.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// New creates an event of type typ. kvs are alternating key/value pairs;
// non-string keys are skipped.
func New(typ string, kvs ...any) Event {
	ev := Event{Type: typ}
	for i := 0; i < len(kvs)-1; i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			continue
		}
		if ev.Payload == nil {
			ev.Payload = make(map[string]any, len(kvs)/2)
		}
		ev.Payload[key] = kvs[i+1]
	}
	return ev
}

// Get returns the payload value under key.
func (e Event) Get(key string) (any, bool) {
	if e.Payload == nil {
		return nil, false
	}
	v, ok := e.Payload[key]
	return v, ok
}

// ReadSize announces the total number of bytes a stage will read.
func ReadSize(size int64) Event {
	return New(TypeReadSize, KeySize, size)
}

// ReadProgress reports the cumulative number of bytes read so far.
func ReadProgress(size int64) Event {
	return New(TypeReadProgress, KeySize, size)
}

// ReadComplete marks the end of a stage's read telemetry.
func ReadComplete() Event {
	return Event{Type: TypeReadComplete}
}

// Size returns the "size" payload of ev as an arbitrary-precision integer.
// Any Go integer kind, *big.Int, big.Int and base-10 strings are accepted.
func Size(ev Event) (*big.Int, bool) {
	v, ok := ev.Get(KeySize)
	if !ok {
		return nil, false
	}
	return toBig(v)
}

func toBig(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case int:
		return big.NewInt(int64(n)), true
	case int8:
		return big.NewInt(int64(n)), true
	case int16:
		return big.NewInt(int64(n)), true
	case int32:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	case uint:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case *big.Int:
		if n == nil {
			return nil, false
		}
		return new(big.Int).Set(n), true
	case big.Int:
		return new(big.Int).Set(&n), true
	case string:
		return new(big.Int).SetString(n, 10)
	case float64:
		// JSON-decoded payloads carry numbers as float64
		if n != float64(int64(n)) {
			return nil, false
		}
		return big.NewInt(int64(n)), true
	default:
		return nil, false
	}
}

// RequireType returns a Guard rejecting events without a Type on channel.
func RequireType(channel string) Guard {
	return func(ev Event) error {
		if ev.Type == "" {
			return errors.ProtocolViolation(channel)
		}
		return nil
	}
}
