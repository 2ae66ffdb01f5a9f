package topics

import (
	"fmt"
	"math"

	"roadmap/pkg/types"
)

// DivisionKind tells which variant a DivisionResult holds.
type DivisionKind int

const (
	DivisionOK DivisionKind = iota
	DivideByZero
	DivisionOther
)

// DivisionResult is the outcome of SafeDivide. Value is set for DivisionOK,
// Description for DivisionOther.
type DivisionResult struct {
	Kind        DivisionKind
	Value       float64
	Description string
}

// SafeDivide divides x by y, classifying failures by explicit checks.
func SafeDivide(x, y float64) DivisionResult {
	if y == 0 {
		return DivisionResult{Kind: DivideByZero}
	}
	for _, v := range []float64{x, y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return DivisionResult{Kind: DivisionOther, Description: fmt.Sprintf("operand %v is not a finite number", v)}
		}
	}

	q := x / y
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return DivisionResult{Kind: DivisionOther, Description: fmt.Sprintf("%v / %v overflows", x, y)}
	}
	return DivisionResult{Kind: DivisionOK, Value: q}
}

func (d *Dispatcher) errorHandling(_ *types.SessionState, ev types.Event, out *types.Output) error {
	switch ev.Action {
	case "":
	case types.ActionDivide:
		res := SafeDivide(types.FloatOr(ev.Inputs.X, 10), types.FloatOr(ev.Inputs.Y, 0))
		switch res.Kind {
		case DivisionOK:
			out.Add(types.BlockSuccess, "Result: "+formatNumber(res.Value))
		case DivideByZero:
			out.Add(types.BlockError, "Cannot divide by zero!")
		default:
			out.Add(types.BlockError, "Error occurred: "+res.Description)
		}
	default:
		return unknownAction(ev)
	}
	return nil
}
