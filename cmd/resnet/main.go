// Package main provides the resnet command line tool.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/born-ml/resnet/backend/cpu"
	"github.com/born-ml/resnet/internal/loader"
	"github.com/born-ml/resnet/internal/serialization"
	"github.com/born-ml/resnet/resnet"
	"github.com/born-ml/resnet/tensor"
)

const version = "v0.1.0"

const usage = `Usage: resnet <command> [flags]

Commands:
  version    Show version
  summary    Print the stage table for an input size
  infer      Run a forward pass on random input
  export     Write freshly initialized weights to a SafeTensors file
  verify     Check a weights file against the network it describes
  convert    Import weights from another layout (e.g. a PyTorch nn.Sequential)
`

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("resnet: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return nil
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "version":
		fmt.Fprintf(out, "resnet %s\n", version)
		return nil
	case "summary":
		return runSummary(rest, out)
	case "infer":
		return runInfer(rest, out)
	case "export":
		return runExport(rest, out)
	case "verify":
		return runVerify(rest, out)
	case "convert":
		return runConvert(rest, out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// modelFlags are shared by every command that builds a network.
type modelFlags struct {
	in      int
	classes int
	layers  string
	workers int
}

func (m *modelFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&m.in, "in", 3, "Input channels")
	fs.IntVar(&m.classes, "classes", 1000, "Number of classes")
	fs.StringVar(&m.layers, "layers", "2,2,2,2", "Residual layers per block")
	fs.IntVar(&m.workers, "workers", 0, "Worker goroutines (0 = all cores)")
}

func (m *modelFlags) config() (resnet.Config, error) {
	cfg := resnet.DefaultConfig(m.in, m.classes)
	layers, err := parseLayers(m.layers)
	if err != nil {
		return cfg, err
	}
	cfg.LayersPerBlock = layers
	return cfg, cfg.Validate()
}

func (m *modelFlags) backend() *cpu.Backend {
	if m.workers > 0 {
		return cpu.NewWithWorkers(m.workers)
	}
	return cpu.New()
}

func (m *modelFlags) network() (*resnet.Network[*cpu.Backend], error) {
	cfg, err := m.config()
	if err != nil {
		return nil, err
	}
	return resnet.New(cfg, m.backend())
}

func parseLayers(s string) ([4]int, error) {
	var layers [4]int
	parts := strings.Split(s, ",")
	if len(parts) != len(layers) {
		return layers, fmt.Errorf("-layers needs %d comma-separated values, got %q", len(layers), s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return layers, fmt.Errorf("-layers: %w", err)
		}
		layers[i] = n
	}
	return layers, nil
}

func runSummary(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	var m modelFlags
	m.register(fs)
	batch := fs.Int("batch", 1, "Batch size")
	size := fs.Int("size", 224, "Image height and width")
	if err := fs.Parse(args); err != nil {
		return err
	}

	net, err := m.network()
	if err != nil {
		return err
	}
	table, err := net.Summary(tensor.Shape{*batch, m.in, *size, *size})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, net)
	fmt.Fprintln(out)
	fmt.Fprint(out, table)
	fmt.Fprintf(out, "\nparameters: %d trainable, %d total\n", net.NumTrainableParameters(), net.NumParameters())
	return nil
}

func runInfer(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("infer", flag.ContinueOnError)
	var m modelFlags
	m.register(fs)
	batch := fs.Int("batch", 1, "Batch size")
	size := fs.Int("size", 224, "Image height and width")
	weights := fs.String("weights", "", "Optional SafeTensors weights written by export")
	topK := fs.Int("top", 5, "Classes to report per sample")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		net *resnet.Network[*cpu.Backend]
		err error
	)
	if *weights != "" {
		net, err = resnet.Open(*weights, m.backend())
	} else {
		net, err = m.network()
	}
	if err != nil {
		return err
	}

	in := net.Config().InChannels
	x := tensor.Randn[float32](tensor.Shape{*batch, in, *size, *size}, net.Backend())

	start := time.Now()
	scores, err := net.Infer(x)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintf(out, "input:  %v\n", x.Shape())
	fmt.Fprintf(out, "output: %v\n", scores.Shape())
	classes := scores.Shape()[1]
	data := scores.Data()
	for n := 0; n < *batch; n++ {
		fmt.Fprintf(out, "sample %d top-%d: %v\n", n, *topK, topIndices(data[n*classes:(n+1)*classes], *topK))
	}
	fmt.Fprintf(out, "time:   %v\n", elapsed.Round(time.Millisecond))
	return nil
}

// topIndices returns the indices of the k largest scores, largest first.
func topIndices(scores []float32, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	return idx[:min(k, len(idx))]
}

func runExport(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var m modelFlags
	m.register(fs)
	path := fs.String("out", "resnet.safetensors", "Output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	net, err := m.network()
	if err != nil {
		return err
	}
	if err := resnet.Save(*path, net); err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %s: %d tensors, %d parameters\n", *path, len(net.StateDict()), net.NumParameters())
	return nil
}

func runVerify(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	var m modelFlags
	m.register(fs)
	path := fs.String("weights", "", "SafeTensors file to check")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("verify: -weights is required")
	}

	stateDict, meta, err := serialization.ReadSafeTensors(*path)
	if err != nil {
		return err
	}

	// Files from other tools carry no configuration; fall back to flags.
	cfg, err := resnet.ConfigFromMetadata(meta)
	if err != nil {
		if cfg, err = m.config(); err != nil {
			return err
		}
	}
	net, err := resnet.New(cfg, m.backend())
	if err != nil {
		return err
	}

	problems := net.CheckStateDict(stateDict)
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(out, p)
		}
		return fmt.Errorf("%s: %d problems", *path, len(problems))
	}

	_, checksummed := meta[serialization.MetadataChecksumKey]
	fmt.Fprintf(out, "%s: ok (%d tensors, checksum %v)\n", *path, len(stateDict), checksummed)
	return nil
}

func runConvert(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	var m modelFlags
	m.register(fs)
	src := fs.String("weights", "", "Foreign SafeTensors file")
	arch := fs.String("arch", "auto", "Source layout: auto, native or torch-sequential")
	dst := fs.String("out", "resnet.safetensors", "Output file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *src == "" {
		return fmt.Errorf("convert: -weights is required")
	}

	var (
		stateDict map[string]*tensor.RawTensor
		err       error
	)
	if *arch == "auto" {
		stateDict, *arch, err = loader.Import(*src)
	} else {
		var mapper loader.WeightMapper
		if mapper, err = loader.GetMapper(*arch); err == nil {
			stateDict, err = loader.ImportWithMapper(*src, mapper)
		}
	}
	if err != nil {
		return err
	}

	net, err := m.network()
	if err != nil {
		return err
	}
	if err := net.LoadStateDict(stateDict); err != nil {
		return err
	}
	if err := resnet.Save(*dst, net); err != nil {
		return err
	}

	fmt.Fprintf(out, "converted %s (%s) -> %s: %d tensors\n", *src, *arch, *dst, len(stateDict))
	return nil
}
