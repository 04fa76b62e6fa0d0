package ml

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"datasoph/internal/extract"
)

func loadCSV(t *testing.T, content string) *extract.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	table, err := extract.LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	return table
}

// linearCSV builds y = 3x1 - 2x2 + noise with enough distinct target values
// to force the regression path.
func linearCSV(n int) string {
	rng := rand.New(rand.NewSource(7))
	var b strings.Builder
	b.WriteString("x1,x2,y\n")
	for i := 0; i < n; i++ {
		x1 := rng.Float64() * 10
		x2 := rng.Float64() * 10
		y := 3*x1 - 2*x2 + rng.NormFloat64()*0.05
		fmt.Fprintf(&b, "%f,%f,%f\n", x1, x2, y)
	}
	return b.String()
}

func TestAutoMLRegression(t *testing.T) {
	table := loadCSV(t, linearCSV(100))
	res, err := AutoML(table, "y")
	if err != nil {
		t.Fatalf("AutoML: %v", err)
	}
	if res.TaskType != "regression" || res.Metric != "r2_score" {
		t.Fatalf("task = %s/%s", res.TaskType, res.Metric)
	}
	if res.Score < 0.99 {
		t.Errorf("r2 = %f, want near-perfect fit on linear data", res.Score)
	}
	if !res.ModelTrained {
		t.Error("ModelTrained = false")
	}
	if res.TrainRows+res.TestRows != 100 {
		t.Errorf("split = %d + %d, want 100", res.TrainRows, res.TestRows)
	}
	if len(res.TopFeatures) != 2 {
		t.Fatalf("top features = %d", len(res.TopFeatures))
	}
	// x1's coefficient magnitude (3) outweighs x2's (2).
	if res.TopFeatures[0].Feature != "x1" {
		t.Errorf("top feature = %s, want x1", res.TopFeatures[0].Feature)
	}
}

func TestAutoMLClassification(t *testing.T) {
	// Two well-separated clusters labeled by a categorical target.
	rng := rand.New(rand.NewSource(11))
	var b strings.Builder
	b.WriteString("f1,f2,label\n")
	for i := 0; i < 60; i++ {
		if i%2 == 0 {
			fmt.Fprintf(&b, "%f,%f,low\n", rng.Float64(), rng.Float64())
		} else {
			fmt.Fprintf(&b, "%f,%f,high\n", 10+rng.Float64(), 10+rng.Float64())
		}
	}
	table := loadCSV(t, b.String())

	res, err := AutoML(table, "label")
	if err != nil {
		t.Fatalf("AutoML: %v", err)
	}
	if res.TaskType != "classification" || res.Metric != "accuracy" {
		t.Fatalf("task = %s/%s", res.TaskType, res.Metric)
	}
	if res.Score != 1 {
		t.Errorf("accuracy = %f, want 1 on separated clusters", res.Score)
	}
}

func TestAutoMLNumericLowCardinalityIsClassification(t *testing.T) {
	var b strings.Builder
	b.WriteString("f1,target\n")
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, i%3)
	}
	table := loadCSV(t, b.String())

	res, err := AutoML(table, "target")
	if err != nil {
		t.Fatalf("AutoML: %v", err)
	}
	if res.TaskType != "classification" {
		t.Errorf("task = %s, want classification for 3-value numeric target", res.TaskType)
	}
}

func TestAutoMLMissingTarget(t *testing.T) {
	table := loadCSV(t, "a,b\n1,2\n3,4\n")
	if _, err := AutoML(table, "nope"); err == nil {
		t.Error("expected error for unknown target column")
	}
}

func TestAutoMLDropsIncompleteRows(t *testing.T) {
	table := loadCSV(t, linearCSV(30)+"5.0,,7.0\n")
	res, err := AutoML(table, "y")
	if err != nil {
		t.Fatalf("AutoML: %v", err)
	}
	if res.TrainRows+res.TestRows != 30 {
		t.Errorf("incomplete row not dropped: %d rows used", res.TrainRows+res.TestRows)
	}
}

func TestAutoMLTooFewRows(t *testing.T) {
	table := loadCSV(t, "a,y\n1,2\n3,4\n")
	if _, err := AutoML(table, "y"); err == nil {
		t.Error("expected error for too few complete rows")
	}
}
