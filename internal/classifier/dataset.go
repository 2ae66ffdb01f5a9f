// Package classifier trains a small multinomial logistic regression on the
// embedded iris dataset.
package classifier

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"strconv"
)

//go:embed iris.csv
var irisCSV []byte

// NumFeatures is the width of every sample: sepal length, sepal width,
// petal length, petal width (cm).
const NumFeatures = 4

// Dataset is a feature matrix with integer class targets.
type Dataset struct {
	Features    [][]float64
	Targets     []int
	TargetNames []string
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Targets) }

// LoadIris parses the embedded 150-sample iris dataset. Class indices follow
// first appearance: setosa=0, versicolor=1, virginica=2.
func LoadIris() (*Dataset, error) {
	r := csv.NewReader(bytes.NewReader(irisCSV))
	r.FieldsPerRecord = NumFeatures + 1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse iris csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("iris csv has no rows")
	}

	d := &Dataset{}
	classIndex := make(map[string]int)
	for i, rec := range records[1:] {
		row := make([]float64, NumFeatures)
		for j := 0; j < NumFeatures; j++ {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+2, j+1, err)
			}
			row[j] = v
		}

		label := rec[NumFeatures]
		idx, ok := classIndex[label]
		if !ok {
			idx = len(d.TargetNames)
			classIndex[label] = idx
			d.TargetNames = append(d.TargetNames, label)
		}

		d.Features = append(d.Features, row)
		d.Targets = append(d.Targets, idx)
	}
	return d, nil
}

// TrainTestSplit shuffles the samples with a seeded generator and holds out
// ceil(testSize*n) of them. The same seed always yields the same split.
func TrainTestSplit(d *Dataset, testSize float64, seed uint64) (train, test *Dataset, err error) {
	n := d.Len()
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size %g must be in (0, 1)", testSize)
	}
	nTest := int(testSize*float64(n) + 0.999999)
	if nTest == 0 || nTest >= n {
		return nil, nil, fmt.Errorf("test size %g leaves an empty split for %d samples", testSize, n)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)

	pick := func(idx []int) *Dataset {
		out := &Dataset{TargetNames: d.TargetNames}
		for _, i := range idx {
			out.Features = append(out.Features, d.Features[i])
			out.Targets = append(out.Targets, d.Targets[i])
		}
		return out
	}
	return pick(perm[nTest:]), pick(perm[:nTest]), nil
}
