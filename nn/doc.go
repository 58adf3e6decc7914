// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers a residual image classifier is built from.
//
// # Overview
//
// This package contains:
//   - Layers: Conv2D, BatchNorm2D, MaxPool2D, GlobalAvgPool2D, Flatten, Linear
//   - Activations: ReLU
//   - Containers: Sequential
//   - Utilities: Module interface, Parameter, state dict helpers
//   - Initialization: Xavier, KaimingNormal, Zeros, Ones
//
// # Basic Usage
//
//	backend := cpu.New()
//	stem := nn.NewSequential[*cpu.Backend](
//	    nn.NewConv2D(3, 64, 7, 7, 2, 3, true, backend),
//	    nn.NewBatchNorm2D(64, 1e-5, backend),
//	    nn.NewReLU[*cpu.Backend](),
//	    nn.NewMaxPool2D(3, 2, 1, backend),
//	)
//	features := stem.Forward(images)
//
// # Training and evaluation
//
// BatchNorm2D starts in evaluation mode and normalizes with its running
// statistics. SetTraining(m, true) switches it, and any container holding
// it, to batch statistics.
//
// # Persistence
//
// Save and Load write a module's state dict to a SafeTensors file and read
// it back. Keys are dotted paths such as "0.weight" for a Sequential.
package nn
