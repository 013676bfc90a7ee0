package filtergraph

import (
	"errors"
	"fmt"
	"strings"
)

// Normalization targets applied to every input before concatenation.
const (
	TargetWidth  = 640
	TargetHeight = 360
	TargetFPS    = 30
)

// Output pad labels of the concat filter.
const (
	VideoOutputLabel = "outv"
	AudioOutputLabel = "outa"
)

// OutputLabels names the graph's final video and audio pads.
type OutputLabels struct {
	Video string
	Audio string
}

// GraphSpec is the normalization and concatenation graph for N inputs.
// Treat values as immutable; Build returns a fresh spec on every call.
type GraphSpec struct {
	PerInputFilters  []string
	ConcatExpression string
	OutputLabels     OutputLabels
}

// ErrNoInputs is returned by Build for n < 1.
var ErrNoInputs = errors.New("filter graph needs at least one input")

// Build returns the graph for n inputs. Input i is scaled to
// TargetWidth×TargetHeight with square pixels and resampled to TargetFPS,
// its audio passed through unchanged, and the n normalized pairs are
// concatenated in index order into one video and one audio stream.
func Build(n int) (GraphSpec, error) {
	if n < 1 {
		return GraphSpec{}, ErrNoInputs
	}

	perInput := make([]string, n)
	var pads strings.Builder
	for i := 0; i < n; i++ {
		perInput[i] = fmt.Sprintf("[%d:v]scale=%d:%d,setsar=1,fps=%d[v%d];[%d:a]anull[a%d]",
			i, TargetWidth, TargetHeight, TargetFPS, i, i, i)
		fmt.Fprintf(&pads, "[v%d][a%d]", i, i)
	}

	concat := fmt.Sprintf("%sconcat=n=%d:v=1:a=1[%s][%s]",
		pads.String(), n, VideoOutputLabel, AudioOutputLabel)

	return GraphSpec{
		PerInputFilters:  perInput,
		ConcatExpression: concat,
		OutputLabels:     OutputLabels{Video: VideoOutputLabel, Audio: AudioOutputLabel},
	}, nil
}

// Inputs is the number of inputs the graph expects.
func (g GraphSpec) Inputs() int {
	return len(g.PerInputFilters)
}

// Expression joins the per-input chains and the concat into the single
// -filter_complex argument.
func (g GraphSpec) Expression() string {
	parts := make([]string, 0, len(g.PerInputFilters)+1)
	parts = append(parts, g.PerInputFilters...)
	parts = append(parts, g.ConcatExpression)
	return strings.Join(parts, ";")
}

// MapArgs returns the -map arguments selecting the graph's output pads.
func (g GraphSpec) MapArgs() []string {
	return []string{
		"-map", "[" + g.OutputLabels.Video + "]",
		"-map", "[" + g.OutputLabels.Audio + "]",
	}
}
