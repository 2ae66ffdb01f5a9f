package topics

import (
	"fmt"
	"slices"
	"strconv"

	"roadmap/pkg/types"
)

// Score widget range
const (
	ScoreMin = 0
	ScoreMax = 100
)

// DefaultStudents seeds the record store on first access.
func DefaultStudents() map[string]int {
	return map[string]int{"Ali": 90, "Ayesha": 85, "Imtiaz": 95}
}

func (d *Dispatcher) dataStructures(st *types.SessionState, ev types.Event, out *types.Output) error {
	if st.Students == nil {
		st.Students = DefaultStudents()
	}

	score, err := types.IntInRange("score", ev.Inputs.Score, ScoreMin, ScoreMin, ScoreMax)
	if err != nil {
		return err
	}

	out.Add(types.BlockText, "Student Records:")
	out.Blocks = append(out.Blocks, studentTable(st.Students))

	switch ev.Action {
	case "":
	case types.ActionAddStudent:
		name := ev.Inputs.StudentName
		st.Students[name] = score
		out.Add(types.BlockSuccess, fmt.Sprintf("Added %s with score %d", name, score))
		out.Blocks = append(out.Blocks, studentTable(st.Students))
	default:
		return unknownAction(ev)
	}
	return nil
}

// studentTable lists records sorted by name so output is stable.
func studentTable(students map[string]int) types.Block {
	names := make([]string, 0, len(students))
	for name := range students {
		names = append(names, name)
	}
	slices.Sort(names)

	table := &types.Table{Columns: []string{"Name", "Score"}}
	for _, name := range names {
		table.Rows = append(table.Rows, []string{name, strconv.Itoa(students[name])})
	}
	return types.Block{Kind: types.BlockTable, Table: table}
}
