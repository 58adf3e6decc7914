package resnet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/resnet/internal/serialization"
	"github.com/born-ml/resnet/internal/tensor"
)

// Metadata keys written by Save.
const (
	MetaFormat         = "format"
	MetaInChannels     = "in_channels"
	MetaNumClasses     = "num_classes"
	MetaLayersPerBlock = "layers_per_block"
	MetaEpsilon        = "epsilon"

	// FormatName identifies files written by Save.
	FormatName = "resnet"
)

// Metadata returns the file metadata describing cfg.
func (c Config) Metadata() map[string]string {
	layers := make([]string, len(c.LayersPerBlock))
	for i, n := range c.LayersPerBlock {
		layers[i] = strconv.Itoa(n)
	}
	return map[string]string{
		MetaFormat:         FormatName,
		MetaInChannels:     strconv.Itoa(c.InChannels),
		MetaNumClasses:     strconv.Itoa(c.NumClasses),
		MetaLayersPerBlock: strings.Join(layers, ","),
		MetaEpsilon:        strconv.FormatFloat(float64(c.Epsilon), 'g', -1, 32),
	}
}

// ConfigFromMetadata parses the metadata written by Save.
func ConfigFromMetadata(meta map[string]string) (Config, error) {
	if f := meta[MetaFormat]; f != FormatName {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "format %q is not %q", f, FormatName)
	}

	cfg := DefaultConfig(0, 0)
	var err error
	if cfg.InChannels, err = metaInt(meta, MetaInChannels); err != nil {
		return Config{}, err
	}
	if cfg.NumClasses, err = metaInt(meta, MetaNumClasses); err != nil {
		return Config{}, err
	}

	if s, ok := meta[MetaLayersPerBlock]; ok {
		parts := strings.Split(s, ",")
		if len(parts) != NumBlocks {
			return Config{}, errors.Wrapf(ErrInvalidConfig, "%s: want %d entries, got %q", MetaLayersPerBlock, NumBlocks, s)
		}
		for i, p := range parts {
			if cfg.LayersPerBlock[i], err = strconv.Atoi(strings.TrimSpace(p)); err != nil {
				return Config{}, errors.Wrapf(ErrInvalidConfig, "%s: %v", MetaLayersPerBlock, err)
			}
		}
	}

	if s, ok := meta[MetaEpsilon]; ok {
		eps, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Config{}, errors.Wrapf(ErrInvalidConfig, "%s: %v", MetaEpsilon, err)
		}
		cfg.Epsilon = float32(eps)
	}

	return cfg, cfg.Validate()
}

func metaInt(meta map[string]string, key string) (int, error) {
	s, ok := meta[key]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidConfig, "missing %s", key)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "%s: %v", key, err)
	}
	return v, nil
}

// Save writes the network's state dict and configuration to a SafeTensors
// file.
func Save[B tensor.Backend](path string, n *Network[B]) error {
	if err := serialization.WriteSafeTensors(path, n.StateDict(), n.cfg.Metadata()); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}

// Load reads a file written by Save into n. The file's configuration must
// match n's.
func Load[B tensor.Backend](path string, n *Network[B]) error {
	stateDict, meta, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	cfg, err := ConfigFromMetadata(meta)
	if err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	if cfg != n.cfg {
		return errors.Wrapf(ErrStateDict, "load %s: file holds %s, network is %s", path, describe(cfg), describe(n.cfg))
	}
	if err := n.LoadStateDict(stateDict); err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	return nil
}

// Open builds a network from a file written by Save.
func Open[B tensor.Backend](path string, backend B) (*Network[B], error) {
	stateDict, meta, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	cfg, err := ConfigFromMetadata(meta)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	n, err := New(cfg, backend)
	if err != nil {
		return nil, err
	}
	if err := n.LoadStateDict(stateDict); err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return n, nil
}

func describe(c Config) string {
	return fmt.Sprintf("in_channels=%d num_classes=%d layers=%v eps=%g", c.InChannels, c.NumClasses, c.LayersPerBlock, c.Epsilon)
}
