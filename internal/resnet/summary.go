package resnet

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// Summary renders a table of stages with their output shapes and
// parameter counts for the given input shape.
func (n *Network[B]) Summary(input tensor.Shape) (string, error) {
	trace, err := n.Trace(input)
	if err != nil {
		return "", err
	}

	params := map[string]int{
		"stem.conv": nn.CountParameters(n.stem.Parameters(), true), // conv + bn
		"head":      nn.CountParameters(n.head.Parameters(), true),
	}
	for i, b := range n.blocks {
		params[fmt.Sprintf("blocks.%d", i)] = nn.CountParameters(b.Parameters(), true)
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tOUTPUT\tPARAMS")
	for _, s := range trace {
		fmt.Fprintf(tw, "%s\t%v\t%d\n", s.Stage, s.Shape, params[s.Stage])
	}
	fmt.Fprintf(tw, "total\t\t%d\n", n.NumTrainableParameters())
	if err := tw.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
