// Package parallel splits index ranges across goroutines for the CPU kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Upper bound on goroutines per call.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// Sequential returns a config that always runs on the calling goroutine.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// WithMinChunkSize returns a copy of c with a different minimum chunk size.
// Kernels whose per-item work is large (one image of a conv) use 1.
func (c Config) WithMinChunkSize(n int) Config {
	c.MinChunkSize = max(n, 1)
	return c
}

// WithWorkers returns a copy of c limited to n workers.
// n <= 1 disables parallelism.
func (c Config) WithWorkers(n int) Config {
	c.NumWorkers = max(n, 1)
	c.Enabled = n > 1
	return c
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
// Every index is visited exactly once and For returns after all calls finish.
func For(n int, f func(i int), cfg Config) {
	workers := cfg.NumWorkers
	minChunk := max(cfg.MinChunkSize, 1)
	if !cfg.Enabled || workers <= 1 || n <= minChunk {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+workers-1)/workers, minChunk)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForBatch iterates the batch*channels grid common to per-plane CNN kernels.
func ForBatch(batch, channels int, f func(b, c int), cfg Config) {
	if channels <= 0 {
		return
	}
	For(batch*channels, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}
