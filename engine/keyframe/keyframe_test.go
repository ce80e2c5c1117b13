package keyframe

import (
	"math"
	"testing"
)

func TestScalarKeyframeScenarioB(t *testing.T) {
	list := []Keyframe{
		{OffsetMS: 0, Value: NumberValue(10)},
		{OffsetMS: 1000, Value: NumberValue(30)},
	}
	e := NewEngine()

	cases := []struct {
		t    float64
		want float64
	}{
		{0, 10},
		{500, 20},
		{1000, 30},
		{1500, 30},
	}
	for _, c := range cases {
		got, ok := e.ValueAt(list, c.t)
		if !ok || !got.IsNumber {
			t.Fatalf("t=%v: expected numeric value, got %+v ok=%v", c.t, got, ok)
		}
		if math.Abs(got.Number-c.want) > 1e-9 {
			t.Errorf("t=%v: got %v want %v", c.t, got.Number, c.want)
		}
	}
}

func TestHexKeyframeScenarioC(t *testing.T) {
	list := []Keyframe{
		{OffsetMS: 0, Value: StringValue("#000000ff")},
		{OffsetMS: 100, Value: StringValue("#ffffffff")},
	}
	e := NewEngine()
	got, ok := e.ValueAt(list, 50)
	if !ok || !got.IsString {
		t.Fatalf("expected string value, got %+v ok=%v", got, ok)
	}
	if got.String != "#808080ff" {
		t.Errorf("got %s want ~#808080ff", got.String)
	}
}

func TestBoundaryExactness(t *testing.T) {
	list := []Keyframe{
		{OffsetMS: 0, Value: NumberValue(1)},
		{OffsetMS: 50, Value: NumberValue(2)},
		{OffsetMS: 100, Value: NumberValue(3)},
	}
	e := NewEngine()
	for _, kf := range list {
		got, ok := e.ValueAt(list, kf.OffsetMS)
		if !ok || got.Number != kf.Value.Number {
			t.Errorf("at exact offset %v: got %v want %v", kf.OffsetMS, got.Number, kf.Value.Number)
		}
	}
}

func TestEmptyList(t *testing.T) {
	e := NewEngine()
	_, ok := e.ValueAt(nil, 10)
	if ok {
		t.Error("expected ok=false for empty list")
	}
}

func TestBeforeFirstKeyframe(t *testing.T) {
	list := []Keyframe{{OffsetMS: 100, Value: NumberValue(42)}}
	e := NewEngine()
	got, ok := e.ValueAt(list, 0)
	if !ok || got.Number != 42 {
		t.Errorf("got %+v want 42", got)
	}
}

func TestTypeMismatchFallsThroughToPrevious(t *testing.T) {
	list := []Keyframe{
		{OffsetMS: 0, Value: NumberValue(5)},
		{OffsetMS: 100, Value: StringValue("#ff0000ff")},
	}
	e := NewEngine()
	got, ok := e.ValueAt(list, 50)
	if !ok {
		t.Fatal("expected ok")
	}
	if !got.IsNumber || got.Number != 5 {
		t.Errorf("expected fallthrough to previous numeric value 5, got %+v", got)
	}
}

func TestIdenticalValuesInterpolateToThemselves(t *testing.T) {
	list := []Keyframe{
		{OffsetMS: 0, Value: NumberValue(7)},
		{OffsetMS: 1000, Value: NumberValue(7)},
	}
	e := NewEngine()
	for _, t64 := range []float64{0, 250, 500, 999, 1000} {
		got, ok := e.ValueAt(list, t64)
		if !ok || got.Number != 7 {
			t.Errorf("t=%v: got %+v want 7", t64, got)
		}
	}
}
