// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/resnet/internal/backend/cpu"
	"github.com/born-ml/resnet/internal/parallel"
	"github.com/born-ml/resnet/tensor"
)

// Backend is the pure Go CPU backend.
type Backend = internalcpu.CPUBackend

var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend that parallelizes across all cores.
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func New() *Backend {
	return internalcpu.New()
}

// NewWithWorkers creates a CPU backend limited to n goroutines for
// convolution and pooling. n <= 1 runs everything on the calling goroutine.
func NewWithWorkers(n int) *Backend {
	return internalcpu.New(internalcpu.WithParallel(parallel.DefaultConfig().WithWorkers(n)))
}
