package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// JobParameters is the set of key-value parameters a job is launched with.
// The identity of a JobInstance is derived from the job name plus the
// canonical hash of its parameters.
type JobParameters struct {
	Params map[string]interface{} `json:"params"`
}

// NewJobParameters returns an empty parameter set.
func NewJobParameters() JobParameters {
	return JobParameters{Params: make(map[string]interface{})}
}

// Put stores a parameter value.
func (p JobParameters) Put(key string, value interface{}) {
	p.Params[key] = value
}

// Get retrieves a parameter value by key.
func (p JobParameters) Get(key string) (interface{}, bool) {
	v, ok := p.Params[key]
	return v, ok
}

// GetString retrieves a string parameter, or the empty string.
func (p JobParameters) GetString(key string) string {
	if v, ok := p.Params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// IsEmpty reports whether the parameter set has no entries.
func (p JobParameters) IsEmpty() bool {
	return len(p.Params) == 0
}

// Copy returns a shallow copy of the parameters.
func (p JobParameters) Copy() JobParameters {
	dst := NewJobParameters()
	for k, v := range p.Params {
		dst.Params[k] = v
	}
	return dst
}

// Hash returns a stable SHA-256 hex digest of the parameters. Keys are
// serialized in sorted order so logically equal sets hash identically.
func (p JobParameters) Hash() string {
	keys := make([]string, 0, len(p.Params))
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		b, err := json.Marshal(p.Params[k])
		if err != nil {
			b = []byte(fmt.Sprintf("%v", p.Params[k]))
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.Write(b)
		sb.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Equal reports whether two parameter sets are logically equal.
func (p JobParameters) Equal(other JobParameters) bool {
	return p.Hash() == other.Hash()
}

// String renders the parameters for logging. Values of keys containing
// "password", "secret" or "token" are masked.
func (p JobParameters) String() string {
	keys := make([]string, 0, len(p.Params))
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := p.Params[k]
		lower := strings.ToLower(k)
		if strings.Contains(lower, "password") || strings.Contains(lower, "secret") || strings.Contains(lower, "token") {
			v = "******"
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
