package loader

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// ImportWithMapper reads every tensor of a SafeTensors file and renames it
// with mapper. Entries the mapper drops are skipped without being read.
func ImportWithMapper(path string, mapper WeightMapper) (map[string]*tensor.RawTensor, error) {
	r, err := NewSafeTensorsReader(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()
	return importTensors(r, mapper)
}

// Import detects the layout of a SafeTensors file and returns its tensors
// under native names, together with the detected architecture.
func Import(path string) (map[string]*tensor.RawTensor, string, error) {
	r, err := NewSafeTensorsReader(path)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = r.Close()
	}()

	arch := DetectArchitecture(r.TensorNames())
	mapper, err := GetMapper(arch)
	if err != nil {
		return nil, "", err
	}
	stateDict, err := importTensors(r, mapper)
	if err != nil {
		return nil, "", err
	}
	return stateDict, arch, nil
}

func importTensors(r *SafeTensorsReader, mapper WeightMapper) (map[string]*tensor.RawTensor, error) {
	stateDict := make(map[string]*tensor.RawTensor)
	from := make(map[string]string)

	for _, name := range r.TensorNames() {
		native, err := mapper.MapName(name)
		if err != nil {
			return nil, err
		}
		if native == "" {
			continue
		}
		if prev, ok := from[native]; ok {
			return nil, fmt.Errorf("%s and %s both map to %s", prev, name, native)
		}

		raw, err := r.LoadTensor(name)
		if err != nil {
			return nil, err
		}
		stateDict[native] = raw
		from[native] = name
	}
	return stateDict, nil
}
