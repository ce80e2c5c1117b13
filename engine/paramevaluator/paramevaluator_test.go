package paramevaluator

import (
	"encoding/json"
	"testing"

	"github.com/cunzhuang123/compositor/engine/expression"
	"github.com/cunzhuang123/compositor/engine/renderer/material"
)

func TestEvaluatePluginIndexZeroUsesRootSource(t *testing.T) {
	p := material.NewPass(
		material.WithPassName("renderer_plugin_0"),
		material.WithRenderTargetInfo(material.RenderTargetInfo{Name: "rt", Width: 0, Height: 0, WidthExpr: "sourceWidth/2"}),
		material.WithUniform("u_strength", floatExprUniform("control_amount*2")),
	)

	control := map[string]json.RawMessage{
		"amount": json.RawMessage(`3`),
	}

	e := NewEvaluator()
	e.EvaluatePlugin("renderer", 0, control, SourceDimensions{Width: 640, Height: 480}, func(suffix string) []material.Pass {
		if suffix == "renderer_plugin_0" {
			return []material.Pass{p}
		}
		return nil
	})

	if got := p.RenderTargetInfo().Width; got != 320 {
		t.Errorf("width = %d, want 320", got)
	}
	u, _ := p.Uniform("u_strength")
	if u.Float != 6 {
		t.Errorf("u_strength = %v, want 6", u.Float)
	}
}

func TestEvaluatePluginIndexNonZeroUsesPreviousPassTarget(t *testing.T) {
	prev := material.NewPass(
		material.WithPassName("renderer_plugin_0"),
		material.WithRenderTargetInfo(material.RenderTargetInfo{Name: "rt0", Width: 200, Height: 100}),
	)
	curr := material.NewPass(
		material.WithPassName("renderer_plugin_1"),
		material.WithRenderTargetInfo(material.RenderTargetInfo{Name: "rt1", WidthExpr: "sourceWidth"}),
	)

	e := NewEvaluator()
	e.EvaluatePlugin("renderer", 1, nil, SourceDimensions{}, func(suffix string) []material.Pass {
		switch suffix {
		case "renderer_plugin_0":
			return []material.Pass{prev}
		case "renderer_plugin_1":
			return []material.Pass{curr}
		}
		return nil
	})

	if got := curr.RenderTargetInfo().Width; got != 200 {
		t.Errorf("width = %d, want 200 (from previous pass target)", got)
	}
}

func TestControlVariableHexColorBecomesVector(t *testing.T) {
	v, err := controlVariable("tint", json.RawMessage(`"#ff0000ff"`))
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != expression.Vector {
		t.Fatalf("expected vector kind")
	}
	if len(v.VectorVals) != 4 || v.VectorVals[0] != 1 {
		t.Errorf("unexpected vector vals: %+v", v.VectorVals)
	}
}

func floatExprUniform(expr string) material.UniformValue {
	u := material.FloatValue(0)
	u.Expression = expr
	return u
}
