// Package loader imports network weights written by other tools.
//
// This package wraps the internal importer and exports a small public API.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/resnet/backend/cpu"
//	    "github.com/born-ml/resnet/loader"
//	    "github.com/born-ml/resnet/resnet"
//	)
//
//	stateDict, arch, err := loader.Import("exported_from_pytorch.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Architecture: %s\n", arch)
//
//	net, err := resnet.New(resnet.DefaultConfig(1, 10), cpu.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := net.LoadStateDict(stateDict); err != nil {
//	    log.Fatal(err)
//	}
package loader

import (
	"github.com/born-ml/resnet/internal/loader"
	"github.com/born-ml/resnet/tensor"
)

// WeightMapper maps foreign weight names to native state dict names.
type WeightMapper = loader.WeightMapper

// NativeMapper keeps names unchanged.
type NativeMapper = loader.NativeMapper

// TorchSequentialMapper maps a PyTorch nn.Sequential state dict.
type TorchSequentialMapper = loader.TorchSequentialMapper

// Supported architectures.
const (
	ArchitectureNative          = loader.ArchitectureNative
	ArchitectureTorchSequential = loader.ArchitectureTorchSequential
)

// Import reads a SafeTensors file, detects its layout and returns the
// tensors under native names together with the detected architecture.
func Import(path string) (map[string]*tensor.RawTensor, string, error) {
	return loader.Import(path)
}

// ImportWithMapper reads a SafeTensors file and renames tensors with mapper.
func ImportWithMapper(path string, mapper WeightMapper) (map[string]*tensor.RawTensor, error) {
	return loader.ImportWithMapper(path, mapper)
}

// DetectArchitecture guesses the layout from weight names.
func DetectArchitecture(names []string) string {
	return loader.DetectArchitecture(names)
}

// GetMapper returns the mapper for an architecture name.
func GetMapper(architecture string) (WeightMapper, error) {
	return loader.GetMapper(architecture)
}
