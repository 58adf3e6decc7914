// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public tensor API of the residual network module.
//
// A Tensor[T, B] pairs typed element storage with the Backend that computes
// on it. Every operation allocates a new tensor; inputs are never modified.
//
//	backend := cpu.New()
//	x := tensor.Randn[float32](tensor.Shape{1, 3, 224, 224}, backend)
//	y := x.ReLU()
//
// The types here are aliases of the internal implementation, so values can
// be passed freely between this package, nn and resnet.
package tensor
