package classifier

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNotFitted     = errors.New("model is not fitted")
	ErrFeatureLength = errors.New("sample has the wrong number of features")
)

// LogisticRegression is a multinomial (softmax) classifier on standardized
// features, fitted with L-BFGS. The objective is the mean cross-entropy plus
// ||W||^2 / (2*C*n) over the non-bias weights, which matches an inverse
// regularization strength C applied to the summed loss.
type LogisticRegression struct {
	MaxIter int
	C       float64 // inverse regularization strength

	// GradientThreshold stops the fit once the gradient norm falls below it.
	GradientThreshold float64

	classes int
	mean    []float64
	std     []float64
	weights *mat.Dense // classes x (features+1), last column is the bias
}

// NewLogisticRegression returns a model with C=1 and the given iteration cap.
func NewLogisticRegression(maxIter int) *LogisticRegression {
	return &LogisticRegression{
		MaxIter:           maxIter,
		C:                 1.0,
		GradientThreshold: 1e-6,
	}
}

// Fit trains on X (n x features) with targets in [0, classes).
func (m *LogisticRegression) Fit(X [][]float64, y []int, classes int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("need matching non-empty X and y, got %d and %d", len(X), len(y))
	}
	if classes < 2 {
		return fmt.Errorf("need at least two classes, got %d", classes)
	}
	if m.C <= 0 {
		return fmt.Errorf("inverse regularization strength must be positive, got %g", m.C)
	}
	nf := len(X[0])
	for _, row := range X {
		if len(row) != nf {
			return ErrFeatureLength
		}
	}
	for _, t := range y {
		if t < 0 || t >= classes {
			return fmt.Errorf("target %d outside [0, %d)", t, classes)
		}
	}

	m.mean, m.std = columnStats(X, nf)
	design := mat.NewDense(len(X), nf+1, nil)
	for i, row := range X {
		design.SetRow(i, m.augment(row))
	}
	onehot := mat.NewDense(len(X), classes, nil)
	for i, t := range y {
		onehot.Set(i, t, 1)
	}

	obj := &softmaxObjective{
		design:  design,
		onehot:  onehot,
		classes: classes,
		penalty: 1 / (m.C * float64(len(X))),
	}
	problem := optimize.Problem{
		Func: func(theta []float64) float64 { return obj.eval(theta, nil) },
		Grad: func(grad, theta []float64) { obj.eval(theta, grad) },
	}
	settings := &optimize.Settings{
		MajorIterations:   m.MaxIter,
		GradientThreshold: m.GradientThreshold,
	}

	result, err := optimize.Minimize(problem, make([]float64, classes*(nf+1)), settings, &optimize.LBFGS{})
	if result == nil {
		return fmt.Errorf("minimize: %w", err)
	}
	// A line search that stalls near the optimum still leaves the best
	// location found in result.
	if err != nil && math.IsNaN(result.F) {
		return fmt.Errorf("minimize: %w", err)
	}

	m.classes = classes
	m.weights = mat.NewDense(classes, nf+1, append([]float64(nil), result.X...))
	return nil
}

// Predict returns the most probable class index for x.
func (m *LogisticRegression) Predict(x []float64) (int, error) {
	if m.weights == nil {
		return 0, ErrNotFitted
	}
	if len(x) != len(m.mean) {
		return 0, ErrFeatureLength
	}

	var logits mat.VecDense
	logits.MulVec(m.weights, mat.NewVecDense(len(x)+1, m.augment(x)))
	return floats.MaxIdx(logits.RawVector().Data), nil
}

// Score returns the fraction of samples predicted correctly, in [0, 1].
func (m *LogisticRegression) Score(X [][]float64, y []int) (float64, error) {
	if len(X) == 0 || len(X) != len(y) {
		return 0, fmt.Errorf("need matching non-empty X and y, got %d and %d", len(X), len(y))
	}
	correct := 0
	for i, x := range X {
		p, err := m.Predict(x)
		if err != nil {
			return 0, err
		}
		if p == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X)), nil
}

// augment standardizes x and appends the bias input.
func (m *LogisticRegression) augment(x []float64) []float64 {
	z := make([]float64, len(x)+1)
	for j, v := range x {
		z[j] = (v - m.mean[j]) / m.std[j]
	}
	z[len(x)] = 1
	return z
}

type softmaxObjective struct {
	design  *mat.Dense // n x (features+1)
	onehot  *mat.Dense // n x classes
	classes int
	penalty float64
}

// eval returns the objective at theta and, when grad is non-nil, writes the
// gradient into it. theta is the row-major classes x (features+1) weights.
func (o *softmaxObjective) eval(theta, grad []float64) float64 {
	n, cols := o.design.Dims()
	w := mat.NewDense(o.classes, cols, theta)

	var logits mat.Dense
	logits.Mul(o.design, w.T())

	loss := 0.0
	residual := mat.NewDense(n, o.classes, nil)
	for i := 0; i < n; i++ {
		row := logits.RawRowView(i)
		lse := floats.LogSumExp(row)
		for k, l := range row {
			p := math.Exp(l - lse)
			t := o.onehot.At(i, k)
			if t == 1 {
				loss += lse - l
			}
			residual.Set(i, k, p-t)
		}
	}
	loss /= float64(n)

	for k := 0; k < o.classes; k++ {
		for j := 0; j < cols-1; j++ {
			v := w.At(k, j)
			loss += 0.5 * o.penalty * v * v
		}
	}

	if grad != nil {
		g := mat.NewDense(o.classes, cols, grad)
		g.Mul(residual.T(), o.design)
		g.Scale(1/float64(n), g)
		for k := 0; k < o.classes; k++ {
			for j := 0; j < cols-1; j++ {
				g.Set(k, j, g.At(k, j)+o.penalty*w.At(k, j))
			}
		}
	}
	return loss
}

func columnStats(X [][]float64, nf int) (mean, std []float64) {
	mean = make([]float64, nf)
	std = make([]float64, nf)
	col := make([]float64, len(X))
	for j := 0; j < nf; j++ {
		for i, row := range X {
			col[i] = row[j]
		}
		mean[j], std[j] = stat.MeanStdDev(col, nil)
		if std[j] == 0 || math.IsNaN(std[j]) {
			std[j] = 1
		}
	}
	return mean, std
}
