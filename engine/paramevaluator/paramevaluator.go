// Package paramevaluator implements ParamEvaluator (spec §4.6): given a
// renderer, a plugin's index within its sequence, and the plugin's
// control map, it builds a variable environment and rewrites every
// expression-bound uniform (and render-target width/height) on the
// matching Pass(es).
package paramevaluator

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cunzhuang123/compositor/common"
	"github.com/cunzhuang123/compositor/engine/expression"
	"github.com/cunzhuang123/compositor/engine/renderer/material"
)

// SourceDimensions reports the intrinsic width/height to bind as
// sourceWidth/sourceHeight for plugin index 0 (spec §4.6 step 1).
type SourceDimensions struct {
	Width  int
	Height int
}

// PassLookup finds the Pass within a renderer's effect chain whose name
// ends with the given suffix (spec §4.6 step 2: "<renderer_name>_plugin_<i>").
type PassLookup func(nameSuffix string) []material.Pass

// Evaluator evaluates plugin control expressions against a compiled
// expression cache, logging (not failing) on any per-uniform error (spec
// §4.6 error policy).
type Evaluator struct {
	transformer *expression.Transformer
	cache       *expression.Cache
}

// NewEvaluator constructs an Evaluator backed by its own transform cache
// and expression cache (callers typically share one Evaluator across the
// whole Engine, since both caches are safe for repeated/concurrent use).
func NewEvaluator() *Evaluator {
	return &Evaluator{
		transformer: expression.NewTransformer(),
		cache:       expression.NewCache(),
	}
}

// EvaluatePlugin runs ParamEvaluator for one plugin: rendererName is the
// owning renderer's name, pluginIndex is the 0-based position in the
// sequence's plugin list, control is the plugin's raw JSON control map,
// rootSource supplies sourceWidth/sourceHeight for index 0, and lookup
// finds the Pass(es) whose name ends with "<rendererName>_plugin_<pluginIndex>".
func (e *Evaluator) EvaluatePlugin(rendererName string, pluginIndex int, control map[string]json.RawMessage, rootSource SourceDimensions, lookup PassLookup) {
	vars, err := buildVariables(pluginIndex, rendererName, control, rootSource, lookup)
	if err != nil {
		log.Printf("paramevaluator: renderer %q plugin %d: %v", rendererName, pluginIndex, err)
		return
	}

	suffix := fmt.Sprintf("%s_plugin_%d", rendererName, pluginIndex)
	passes := lookup(suffix)
	for _, p := range passes {
		e.evaluatePass(rendererName, pluginIndex, p, vars)
	}
}

// buildVariables constructs the full variable environment for a plugin
// index: sourceWidth/sourceHeight per the three-way branch, plus one
// control_<k> variable per control entry.
func buildVariables(pluginIndex int, rendererName string, control map[string]json.RawMessage, rootSource SourceDimensions, lookup PassLookup) ([]expression.Var, error) {
	var vars []expression.Var

	if pluginIndex == 0 {
		vars = append(vars,
			expression.Var{Name: "sourceWidth", Kind: expression.Scalar, ScalarVal: float64(rootSource.Width)},
			expression.Var{Name: "sourceHeight", Kind: expression.Scalar, ScalarVal: float64(rootSource.Height)},
		)
	} else {
		prevSuffix := fmt.Sprintf("%s_plugin_%d", rendererName, pluginIndex-1)
		prevPasses := lookup(prevSuffix)
		if len(prevPasses) == 0 {
			return nil, fmt.Errorf("no pass found for %q to source dimensions from", prevSuffix)
		}
		info := prevPasses[0].RenderTargetInfo()
		vars = append(vars,
			expression.Var{Name: "sourceWidth", Kind: expression.Scalar, ScalarVal: float64(info.Width)},
			expression.Var{Name: "sourceHeight", Kind: expression.Scalar, ScalarVal: float64(info.Height)},
		)
	}

	for name, raw := range control {
		v, err := controlVariable(name, raw)
		if err != nil {
			log.Printf("paramevaluator: control %q: %v", name, err)
			continue
		}
		vars = append(vars, v)
	}

	return vars, nil
}

// controlVariable converts one {k: v} control entry into a scalar or
// vector expression.Var, mirroring the type mirroring rule of spec §4.6
// step 1: a number -> scalar, an array of 2/3/4 numbers -> vector, a hex
// colour string -> a 4-component vector.
func controlVariable(name string, raw json.RawMessage) (expression.Var, error) {
	varName := "control_" + name

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return expression.Var{Name: varName, Kind: expression.Scalar, ScalarVal: num}, nil
	}

	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) < 2 || len(arr) > 4 {
			return expression.Var{}, fmt.Errorf("control %q: array must have 2-4 numbers", name)
		}
		return expression.Var{Name: varName, Kind: expression.Vector, VectorVals: arr}, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if rgba, ok := common.HexToRGBA(str); ok {
			return expression.Var{Name: varName, Kind: expression.Vector, VectorVals: []float64{
				float64(rgba[0]), float64(rgba[1]), float64(rgba[2]), float64(rgba[3]),
			}}, nil
		}
		return expression.Var{}, fmt.Errorf("control %q: string value is not a hex colour", name)
	}

	return expression.Var{}, fmt.Errorf("control %q: unrecognised JSON value", name)
}

// evaluatePass rewrites p's render-target width/height expressions and
// every expression-bound uniform against vars (spec §4.6 step 3).
func (e *Evaluator) evaluatePass(rendererName string, pluginIndex int, p material.Pass, vars []expression.Var) {
	info := p.RenderTargetInfo()
	if info.WidthExpr != "" {
		if v, err := e.evalScalar(info.WidthExpr, vars); err != nil {
			log.Printf("paramevaluator: renderer %q plugin %d pass %q width_expr: %v", rendererName, pluginIndex, p.Name(), err)
		} else {
			info.Width = int(v)
		}
	}
	if info.HeightExpr != "" {
		if v, err := e.evalScalar(info.HeightExpr, vars); err != nil {
			log.Printf("paramevaluator: renderer %q plugin %d pass %q height_expr: %v", rendererName, pluginIndex, p.Name(), err)
		} else {
			info.Height = int(v)
		}
	}
	p.SetRenderTargetSize(info.Width, info.Height)

	for name, u := range p.Uniforms() {
		if u.Expression == "" {
			continue
		}
		updated, err := e.evalUniform(u, vars)
		if err != nil {
			log.Printf("paramevaluator: renderer %q plugin %d pass %q uniform %q: %v", rendererName, pluginIndex, p.Name(), name, err)
			continue
		}
		p.SetUniform(name, updated)
	}
}

func (e *Evaluator) evalScalar(expr string, vars []expression.Var) (float64, error) {
	closed := e.transformer.Transform(expr)
	return e.cache.Evaluate(closed, vars)
}

// evalUniform rebuilds u's typed value from u.Expression: scalar kinds
// evaluate the expression once, vector kinds require a bracketed
// comma-separated list whose components are each an independent scalar
// expression (spec §4.6 step 3).
func (e *Evaluator) evalUniform(u material.UniformValue, vars []expression.Var) (material.UniformValue, error) {
	switch u.Kind {
	case material.UniformInt:
		v, err := e.evalScalar(u.Expression, vars)
		if err != nil {
			return u, err
		}
		u.Int = int32(v)
		return u, nil
	case material.UniformFloat:
		v, err := e.evalScalar(u.Expression, vars)
		if err != nil {
			return u, err
		}
		u.Float = float32(v)
		return u, nil
	case material.UniformVec2f:
		comps, err := e.evalVectorComponents(u.Expression, vars, 2)
		if err != nil {
			return u, err
		}
		u.Vec2f = [2]float32{float32(comps[0]), float32(comps[1])}
		return u, nil
	case material.UniformVec3f:
		comps, err := e.evalVectorComponents(u.Expression, vars, 3)
		if err != nil {
			return u, err
		}
		u.Vec3f = [3]float32{float32(comps[0]), float32(comps[1]), float32(comps[2])}
		return u, nil
	case material.UniformVec4f:
		comps, err := e.evalVectorComponents(u.Expression, vars, 4)
		if err != nil {
			return u, err
		}
		u.Vec4f = [4]float32{float32(comps[0]), float32(comps[1]), float32(comps[2]), float32(comps[3])}
		return u, nil
	case material.UniformVec2i:
		comps, err := e.evalVectorComponents(u.Expression, vars, 2)
		if err != nil {
			return u, err
		}
		u.Vec2i = [2]int32{int32(comps[0]), int32(comps[1])}
		return u, nil
	case material.UniformVec3i:
		comps, err := e.evalVectorComponents(u.Expression, vars, 3)
		if err != nil {
			return u, err
		}
		u.Vec3i = [3]int32{int32(comps[0]), int32(comps[1]), int32(comps[2])}
		return u, nil
	default:
		return u, fmt.Errorf("uniform kind %v is not expression-drivable", u.Kind)
	}
}

// evalVectorComponents splits a bracketed "[a, b, c]" expression into n
// independent scalar expressions and evaluates each.
func (e *Evaluator) evalVectorComponents(expr string, vars []expression.Var, n int) ([]float64, error) {
	trimmed := strings.TrimSpace(expr)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	parts := strings.Split(trimmed, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated components, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, part := range parts {
		v, err := e.evalScalar(strings.TrimSpace(part), vars)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
