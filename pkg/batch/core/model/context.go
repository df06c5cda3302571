package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ExecutionContext carries arbitrary key-value state across chunk commits
// and restarts. Keys and values must be JSON serializable.
type ExecutionContext map[string]interface{}

// NewExecutionContext returns an empty ExecutionContext.
func NewExecutionContext() ExecutionContext {
	return make(ExecutionContext)
}

// Put stores a value under the given key.
func (ec ExecutionContext) Put(key string, value interface{}) {
	ec[key] = value
}

// Get retrieves a value by key. The second return value reports presence.
func (ec ExecutionContext) Get(key string) (interface{}, bool) {
	v, ok := ec[key]
	return v, ok
}

// GetString retrieves a string value by key, or the empty string.
func (ec ExecutionContext) GetString(key string) string {
	if v, ok := ec[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetInt retrieves an integer value by key. JSON round-trips land numbers
// as float64, so both forms are accepted.
func (ec ExecutionContext) GetInt(key string) (int, bool) {
	v, ok := ec[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// Copy returns a shallow copy of the context.
func (ec ExecutionContext) Copy() ExecutionContext {
	dst := make(ExecutionContext, len(ec))
	for k, v := range ec {
		dst[k] = v
	}
	return dst
}

// Merge overlays the entries of other onto this context.
func (ec ExecutionContext) Merge(other ExecutionContext) {
	for k, v := range other {
		ec[k] = v
	}
}

// Value implements driver.Valuer, serializing the context as JSON.
func (ec ExecutionContext) Value() (driver.Value, error) {
	if ec == nil {
		return "{}", nil
	}
	b, err := json.Marshal(ec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execution context: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner, deserializing the context from JSON.
func (ec *ExecutionContext) Scan(value interface{}) error {
	if value == nil {
		*ec = NewExecutionContext()
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type for execution context: %T", value)
	}
	if len(b) == 0 {
		*ec = NewExecutionContext()
		return nil
	}
	return json.Unmarshal(b, ec)
}
