package loader

import (
	"fmt"
	"strconv"
	"strings"
)

// Architecture names.
const (
	ArchitectureNative          = "native"
	ArchitectureTorchSequential = "torch-sequential"
)

// WeightMapper maps foreign weight names to native state dict names.
type WeightMapper interface {
	// MapName returns the native name for a foreign one. An empty result
	// with a nil error means the entry has no native counterpart and is
	// dropped (e.g. PyTorch's num_batches_tracked counters).
	MapName(name string) (string, error)

	// Architecture returns the layout name.
	Architecture() string
}

// NativeMapper keeps names unchanged.
type NativeMapper struct{}

// MapName returns name.
func (NativeMapper) MapName(name string) (string, error) { return name, nil }

// Architecture returns "native".
func (NativeMapper) Architecture() string { return ArchitectureNative }

// TorchSequentialMapper maps the state dict of a PyTorch nn.Sequential
// laid out as
//
//	0: Sequential(Conv2d, BatchNorm2d, ReLU, MaxPool2d)
//	1..4: ResidualBlock with layers[i].{conv1, bn1, conv2, bn2, conv3}
//	5: AdaptiveAvgPool2d, 6: Flatten, 7: Linear
//
// conv3 is the optional 1x1 projection and becomes "shortcut".
type TorchSequentialMapper struct{}

// torchLayerParts maps residual layer submodules to native names.
var torchLayerParts = map[string]string{
	"conv1": "conv1",
	"bn1":   "bn1",
	"conv2": "conv2",
	"bn2":   "bn2",
	"conv3": "shortcut",
}

// MapName converts a PyTorch Sequential key:
//   - 0.0.weight -> stem.conv.weight
//   - 0.1.running_mean -> stem.bn.running_mean
//   - 2.layers.0.conv3.weight -> blocks.1.layers.0.shortcut.weight
//   - 7.bias -> head.fc.bias
func (TorchSequentialMapper) MapName(name string) (string, error) {
	if strings.HasSuffix(name, ".num_batches_tracked") {
		return "", nil
	}

	parts := strings.Split(name, ".")
	switch {
	case len(parts) == 3 && parts[0] == "0" && parts[1] == "0":
		return "stem.conv." + parts[2], nil
	case len(parts) == 3 && parts[0] == "0" && parts[1] == "1":
		return "stem.bn." + parts[2], nil
	case len(parts) == 2 && parts[0] == "7":
		return "head.fc." + parts[1], nil
	case len(parts) == 5 && parts[1] == "layers":
		block, err := strconv.Atoi(parts[0])
		if err != nil || block < 1 || block > 4 {
			break
		}
		part, ok := torchLayerParts[parts[3]]
		if !ok {
			break
		}
		return fmt.Sprintf("blocks.%d.layers.%s.%s.%s", block-1, parts[2], part, parts[4]), nil
	}
	return "", fmt.Errorf("unrecognized %s weight %q", ArchitectureTorchSequential, name)
}

// Architecture returns "torch-sequential".
func (TorchSequentialMapper) Architecture() string { return ArchitectureTorchSequential }

// DetectArchitecture guesses the layout from weight names.
func DetectArchitecture(names []string) string {
	for _, name := range names {
		if strings.HasPrefix(name, "0.0.") || strings.HasPrefix(name, "1.layers.") {
			return ArchitectureTorchSequential
		}
	}
	return ArchitectureNative
}

// GetMapper returns the mapper for an architecture name.
func GetMapper(architecture string) (WeightMapper, error) {
	switch architecture {
	case ArchitectureNative, "":
		return NativeMapper{}, nil
	case ArchitectureTorchSequential:
		return TorchSequentialMapper{}, nil
	default:
		return nil, fmt.Errorf("unknown architecture %q", architecture)
	}
}
