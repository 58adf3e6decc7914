// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// Convolutions use im2col followed by a gonum GEMM and run one sample per
// goroutine; max pooling fans out over (sample, channel) planes. Element-wise
// operations broadcast NumPy-style.
//
//	backend := cpu.New()
//	net, err := resnet.New(resnet.DefaultConfig(3, 1000), backend)
//
// A Backend holds no mutable state and is safe for concurrent use.
package cpu
