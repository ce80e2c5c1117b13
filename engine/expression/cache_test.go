package expression

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEvaluateArithmetic(t *testing.T) {
	c := NewCache()
	got, err := c.Evaluate("(1+2)*3-4/2", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(got, 7) {
		t.Errorf("got %v want 7", got)
	}
}

func TestEvaluateWithScalarVariable(t *testing.T) {
	c := NewCache()
	vars := []Var{{Name: "sourceWidth", Kind: Scalar, ScalarVal: 1920}}
	got, err := c.Evaluate("sourceWidth/2", vars)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(got, 960) {
		t.Errorf("got %v want 960", got)
	}
}

func TestEvaluateWithVectorComponent(t *testing.T) {
	c := NewCache()
	vars := []Var{{Name: "control_color", Kind: Vector, VectorVals: []float64{0.1, 0.2, 0.3, 1.0}}}
	got, err := c.Evaluate("control_color_2", vars)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(got, 0.2) {
		t.Errorf("got %v want 0.2", got)
	}
}

func TestEvaluatePureRepeatable(t *testing.T) {
	c := NewCache()
	vars := []Var{{Name: "x", Kind: Scalar, ScalarVal: 3}}
	a, err := c.Evaluate("x*x+1", vars)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Evaluate("x*x+1", vars)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("evaluate not pure: %v vs %v", a, b)
	}
}

func TestEvaluateUpdatesBoundSlotInPlace(t *testing.T) {
	c := NewCache()
	first, err := c.Evaluate("x*2", []Var{{Name: "x", Kind: Scalar, ScalarVal: 2}})
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(first, 4) {
		t.Fatalf("got %v want 4", first)
	}
	second, err := c.Evaluate("x*2", []Var{{Name: "x", Kind: Scalar, ScalarVal: 5}})
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(second, 10) {
		t.Fatalf("got %v want 10", second)
	}
}

func TestEvaluateUnaryMinus(t *testing.T) {
	c := NewCache()
	got, err := c.Evaluate("-5+3", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(got, -2) {
		t.Errorf("got %v want -2", got)
	}
}

func TestEvaluatePower(t *testing.T) {
	c := NewCache()
	got, err := c.Evaluate("2^3", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(got, 8) {
		t.Errorf("got %v want 8", got)
	}
}
