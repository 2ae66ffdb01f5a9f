package topics

import (
	"fmt"
	"strconv"

	"roadmap/internal/chart"
	"roadmap/pkg/types"
)

// Chart size in pixels
const (
	chartWidth  = 480
	chartHeight = 320
)

var (
	scoreNames  = []string{"Ali", "Ayesha", "Imtiaz"}
	scoreValues = []int{90, 85, 95}
)

func (d *Dispatcher) popularLibraries(_ *types.SessionState, ev types.Event, out *types.Output) error {
	if ev.Action != "" {
		return unknownAction(ev)
	}

	table := &types.Table{Columns: []string{"Names", "Scores"}}
	values := make([]float64, len(scoreValues))
	for i, name := range scoreNames {
		table.Rows = append(table.Rows, []string{name, strconv.Itoa(scoreValues[i])})
		values[i] = float64(scoreValues[i])
	}
	out.Blocks = append(out.Blocks, types.Block{Kind: types.BlockTable, Table: table})

	svg, err := chart.RenderBar(chartWidth, chartHeight, scoreNames, values)
	if err != nil {
		return fmt.Errorf("draw score chart: %w", err)
	}
	out.Blocks = append(out.Blocks, types.Block{Kind: types.BlockChart, Chart: svg})
	return nil
}
