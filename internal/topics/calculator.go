package topics

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"roadmap/pkg/types"
)

// Calculator operations, in selectbox order.
const (
	OpAdd      = "Add"
	OpSubtract = "Subtract"
	OpMultiply = "Multiply"
	OpDivide   = "Divide"
)

// Operations lists the selectbox choices.
var Operations = []string{OpAdd, OpSubtract, OpMultiply, OpDivide}

// DivideByZeroMessage is returned in place of a number by Calculate.
const DivideByZeroMessage = "Cannot divide by zero"

// CalcResult is either a number or the divide-by-zero sentinel message.
type CalcResult struct {
	Value   float64
	Message string
}

// IsSentinel reports whether the result is the sentinel message.
func (r CalcResult) IsSentinel() bool { return r.Message != "" }

func (r CalcResult) String() string {
	if r.IsSentinel() {
		return r.Message
	}
	return formatNumber(r.Value)
}

// Calculate applies op to x and y. Dividing by zero is not an error: it
// yields the sentinel message.
func Calculate(x, y float64, op string) (CalcResult, error) {
	switch op {
	case OpAdd:
		return CalcResult{Value: x + y}, nil
	case OpSubtract:
		return CalcResult{Value: x - y}, nil
	case OpMultiply:
		return CalcResult{Value: x * y}, nil
	case OpDivide:
		if y == 0 {
			return CalcResult{Message: DivideByZeroMessage}, nil
		}
		return CalcResult{Value: x / y}, nil
	default:
		return CalcResult{}, fmt.Errorf("%w: %q", types.ErrUnknownOperation, op)
	}
}

func (d *Dispatcher) functions(_ *types.SessionState, ev types.Event, out *types.Output) error {
	op := ev.Inputs.Operation
	if op == "" {
		op = OpAdd
	}

	if !slices.Contains(Operations, op) {
		return fmt.Errorf("%w: %q", types.ErrUnknownOperation, op)
	}

	switch ev.Action {
	case "":
	case types.ActionCalculate:
		res, err := Calculate(types.FloatOr(ev.Inputs.A, 0), types.FloatOr(ev.Inputs.B, 0), op)
		if err != nil {
			return err
		}
		out.Add(types.BlockSuccess, "Result: "+res.String())
	default:
		return unknownAction(ev)
	}
	return nil
}

// formatNumber prints whole numbers with one decimal place ("5.0") and
// everything else in the shortest form that round-trips.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}
