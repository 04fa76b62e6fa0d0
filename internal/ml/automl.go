// Package ml provides the minimal automated model fit offered on uploaded
// tabular data: task detection, a seeded train/test split, a linear
// least-squares fit for regression and a nearest-centroid fit for
// classification.
package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"datasoph/internal/extract"
)

const (
	randomSeed = 42
	testShare  = 0.2

	// classificationCutoff: a numeric target with fewer distinct values than
	// this is treated as a label, not a quantity.
	classificationCutoff = 20
)

// FeatureImportance ranks one input feature's contribution to the fit.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Result reports one AutoML fit.
type Result struct {
	TaskType     string              `json:"task_type"`
	Score        float64             `json:"score"`
	Metric       string              `json:"metric"`
	TopFeatures  []FeatureImportance `json:"top_features"`
	ModelTrained bool                `json:"model_trained"`
	TrainRows    int                 `json:"train_rows"`
	TestRows     int                 `json:"test_rows"`
}

// AutoML fits a model predicting targetCol from the remaining columns.
// Categorical features are label-encoded; rows with missing cells are
// dropped. Errors are returned, never panicked, so the handler can surface a
// structured failure.
func AutoML(t *extract.Table, targetCol string) (*Result, error) {
	target := t.Column(targetCol)
	if target == nil {
		return nil, fmt.Errorf("target column %q not found", targetCol)
	}
	if len(t.Columns) < 2 {
		return nil, errors.New("need at least one feature column besides the target")
	}

	features, X, y, err := buildMatrix(t, targetCol)
	if err != nil {
		return nil, err
	}

	classification := !target.Numeric || distinctCount(target.Raw) < classificationCutoff
	if classification {
		y = encodeLabels(labelsOf(t, targetCol))
	}

	trainX, trainY, testX, testY := split(X, y)
	if len(trainX) == 0 || len(testX) == 0 {
		return nil, errors.New("not enough complete rows to split train and test sets")
	}

	res := &Result{ModelTrained: true, TrainRows: len(trainX), TestRows: len(testX)}
	if classification {
		res.TaskType = "classification"
		res.Metric = "accuracy"
		res.Score, res.TopFeatures = fitNearestCentroid(features, trainX, trainY, testX, testY)
	} else {
		res.TaskType = "regression"
		res.Metric = "r2_score"
		var err error
		res.Score, res.TopFeatures, err = fitLeastSquares(features, trainX, trainY, testX, testY)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// buildMatrix label-encodes categorical features and drops incomplete rows.
// For a numeric target, y carries its value; for a categorical target the
// caller re-derives labels from the same kept rows.
func buildMatrix(t *extract.Table, targetCol string) (features []string, X [][]float64, y []float64, err error) {
	target := t.Column(targetCol)

	encoders := make(map[string]map[string]float64)
	for _, col := range t.Columns {
		if col.Name == targetCol {
			continue
		}
		features = append(features, col.Name)
		if !col.Numeric {
			encoders[col.Name] = labelEncoder(col.Raw)
		}
	}
	if len(features) == 0 {
		return nil, nil, nil, errors.New("no feature columns")
	}

	for i := 0; i < t.Rows; i++ {
		if target.Raw[i] == "" {
			continue
		}
		row := make([]float64, 0, len(features))
		complete := true
		for _, col := range t.Columns {
			if col.Name == targetCol {
				continue
			}
			if col.Raw[i] == "" {
				complete = false
				break
			}
			if col.Numeric {
				row = append(row, col.Values[i])
			} else {
				row = append(row, encoders[col.Name][col.Raw[i]])
			}
		}
		if !complete {
			continue
		}
		X = append(X, row)
		if target.Numeric {
			y = append(y, target.Values[i])
		} else {
			y = append(y, 0) // replaced by encoded labels for classification
		}
	}
	if len(X) < 5 {
		return nil, nil, nil, fmt.Errorf("only %d complete rows; need at least 5", len(X))
	}
	return features, X, y, nil
}

// labelsOf rebuilds the raw target labels aligned with the kept feature rows.
func labelsOf(t *extract.Table, targetCol string) []string {
	target := t.Column(targetCol)
	var labels []string
	for i := 0; i < t.Rows; i++ {
		if target.Raw[i] == "" {
			continue
		}
		complete := true
		for _, col := range t.Columns {
			if col.Name == targetCol {
				continue
			}
			if col.Raw[i] == "" {
				complete = false
				break
			}
		}
		if complete {
			labels = append(labels, target.Raw[i])
		}
	}
	return labels
}

// labelEncoder assigns dense codes in first-seen order.
func labelEncoder(raw []string) map[string]float64 {
	codes := make(map[string]float64)
	next := 0.0
	for _, v := range raw {
		if v == "" {
			continue
		}
		if _, ok := codes[v]; !ok {
			codes[v] = next
			next++
		}
	}
	return codes
}

func encodeLabels(labels []string) []float64 {
	enc := labelEncoder(labels)
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = enc[l]
	}
	return out
}

func distinctCount(raw []string) int {
	seen := make(map[string]bool)
	for _, v := range raw {
		if v != "" {
			seen[v] = true
		}
	}
	return len(seen)
}

// split shuffles deterministically and holds out testShare of the rows.
func split(X [][]float64, y []float64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	n := len(X)
	perm := rand.New(rand.NewSource(randomSeed)).Perm(n)
	testN := int(math.Round(float64(n) * testShare))
	if testN < 1 {
		testN = 1
	}
	for i, idx := range perm {
		if i < testN {
			testX = append(testX, X[idx])
			testY = append(testY, y[idx])
		} else {
			trainX = append(trainX, X[idx])
			trainY = append(trainY, y[idx])
		}
	}
	return trainX, trainY, testX, testY
}

// fitLeastSquares solves an ordinary least-squares linear fit with an
// intercept term and scores r2 on the held-out rows. Importances are the
// absolute coefficients scaled by each feature's spread.
func fitLeastSquares(features []string, trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) (float64, []FeatureImportance, error) {
	rows, cols := len(trainX), len(features)
	A := mat.NewDense(rows, cols+1, nil)
	for i, row := range trainX {
		A.Set(i, 0, 1)
		for j, v := range row {
			A.Set(i, j+1, v)
		}
	}
	b := mat.NewVecDense(rows, trainY)

	var beta mat.VecDense
	if err := beta.SolveVec(A, b); err != nil {
		return 0, nil, fmt.Errorf("least squares solve: %w", err)
	}

	predict := func(row []float64) float64 {
		p := beta.AtVec(0)
		for j, v := range row {
			p += beta.AtVec(j+1) * v
		}
		return p
	}

	var preds []float64
	for _, row := range testX {
		preds = append(preds, predict(row))
	}
	score := rSquared(testY, preds)

	imp := make([]FeatureImportance, cols)
	for j := 0; j < cols; j++ {
		colVals := make([]float64, rows)
		for i := range trainX {
			colVals[i] = trainX[i][j]
		}
		spread := stat.StdDev(colVals, nil)
		if math.IsNaN(spread) {
			spread = 0
		}
		imp[j] = FeatureImportance{Feature: features[j], Importance: math.Abs(beta.AtVec(j+1)) * spread}
	}
	return score, topFive(imp), nil
}

// fitNearestCentroid classifies test rows by the nearest class centroid in
// standardized feature space. Importances reflect per-feature centroid
// separation.
func fitNearestCentroid(features []string, trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) (float64, []FeatureImportance) {
	cols := len(features)
	means, stds := standardization(trainX, cols)
	norm := func(row []float64) []float64 {
		out := make([]float64, cols)
		for j, v := range row {
			out[j] = (v - means[j]) / stds[j]
		}
		return out
	}

	sums := make(map[float64][]float64)
	counts := make(map[float64]int)
	for i, row := range trainX {
		z := norm(row)
		label := trainY[i]
		if sums[label] == nil {
			sums[label] = make([]float64, cols)
		}
		for j, v := range z {
			sums[label][j] += v
		}
		counts[label]++
	}
	centroids := make(map[float64][]float64, len(sums))
	for label, sum := range sums {
		c := make([]float64, cols)
		for j, v := range sum {
			c[j] = v / float64(counts[label])
		}
		centroids[label] = c
	}

	classify := func(row []float64) float64 {
		z := norm(row)
		best, bestDist := math.NaN(), math.Inf(1)
		for label, c := range centroids {
			d := 0.0
			for j, v := range z {
				diff := v - c[j]
				d += diff * diff
			}
			if d < bestDist {
				bestDist = d
				best = label
			}
		}
		return best
	}

	correct := 0
	for i, row := range testX {
		if classify(row) == testY[i] {
			correct++
		}
	}
	score := float64(correct) / float64(len(testX))

	imp := make([]FeatureImportance, cols)
	for j := 0; j < cols; j++ {
		var vals []float64
		for _, c := range centroids {
			vals = append(vals, c[j])
		}
		spread := 0.0
		if len(vals) >= 2 {
			spread = stat.StdDev(vals, nil)
		}
		imp[j] = FeatureImportance{Feature: features[j], Importance: spread}
	}
	return score, topFive(imp)
}

func standardization(X [][]float64, cols int) (means, stds []float64) {
	means = make([]float64, cols)
	stds = make([]float64, cols)
	for j := 0; j < cols; j++ {
		vals := make([]float64, len(X))
		for i := range X {
			vals[i] = X[i][j]
		}
		means[j] = stat.Mean(vals, nil)
		stds[j] = stat.StdDev(vals, nil)
		if stds[j] == 0 || math.IsNaN(stds[j]) {
			stds[j] = 1
		}
	}
	return means, stds
}

func rSquared(actual, predicted []float64) float64 {
	meanY := stat.Mean(actual, nil)
	var ssRes, ssTot float64
	for i, y := range actual {
		ssRes += (y - predicted[i]) * (y - predicted[i])
		ssTot += (y - meanY) * (y - meanY)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func topFive(imp []FeatureImportance) []FeatureImportance {
	sort.Slice(imp, func(i, j int) bool { return imp[i].Importance > imp[j].Importance })
	if len(imp) > 5 {
		imp = imp[:5]
	}
	return imp
}
