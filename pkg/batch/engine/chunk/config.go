package chunk

import (
	"github.com/ripline/ripline/pkg/batch/engine/retry"
	"github.com/ripline/ripline/pkg/batch/engine/skip"
)

// Config tunes a chunk step.
type Config struct {
	// ChunkSize is the number of items per commit interval.
	ChunkSize int `yaml:"chunk-size"`
	// Concurrency is the number of workers writing chunks. At 1 the step
	// runs fully sequentially.
	Concurrency int `yaml:"concurrency"`
	// QueueCapacity bounds the number of chunks queued ahead of the
	// workers. Defaults to Concurrency when zero.
	QueueCapacity int `yaml:"queue-capacity"`
	// Retry governs retries of failed chunk transactions.
	Retry retry.Policy `yaml:"retry"`
	// Skip governs per-item skipping.
	Skip skip.Policy `yaml:"skip"`
}

// DefaultConfig returns a sequential step with chunk size 10 and no
// retry or skip behavior.
func DefaultConfig() Config {
	return Config{
		ChunkSize:   10,
		Concurrency: 1,
		Retry:       retry.DefaultPolicy(),
		Skip:        skip.DefaultPolicy(),
	}
}

func (c Config) normalized() Config {
	if c.ChunkSize < 1 {
		c.ChunkSize = 1
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.QueueCapacity < 1 {
		c.QueueCapacity = c.Concurrency
	}
	return c
}
