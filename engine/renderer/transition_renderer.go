package renderer

import "github.com/cunzhuang123/compositor/engine/renderer/material"

// transitionRenderer is the implementation of TransitionRenderer.
type transitionRenderer struct {
	id             string
	materialPass   material.Pass
	firstRenderer  Renderer
	secondRenderer Renderer
}

// TransitionRenderer owns a cross-fade (or other two-input effect)
// spanning the boundary between two sequences on the same track (spec
// §4.9, §4.11 step 5-6b; grounded on
// `original_source/cpp/src/TransitionRenderer.h`). When active, its Pass
// samples both upstream renderers' effect chains and a normalised time
// parameter.
type TransitionRenderer interface {
	// ID retrieves this transition's identity, matching the sequence timer it attaches to.
	ID() string

	// MaterialPass retrieves the transition's final Pass.
	MaterialPass() material.Pass

	// SetMaterialPass attaches (or replaces) the transition's final Pass.
	SetMaterialPass(pass material.Pass)

	// FirstRenderer retrieves the outgoing sequence's renderer.
	FirstRenderer() Renderer

	// SecondRenderer retrieves the incoming sequence's renderer.
	SecondRenderer() Renderer

	// UpdateTime rewrites u_time to parameter, the transition's
	// normalised progress in [0,1) (spec §4.8 TransitionParameter).
	UpdateTime(parameter float32)

	// UpdateRenderTargetInfo wires firstUniform/secondUniform on the
	// transition's Pass to the first/second renderer's effect-chain
	// output (as a MaterialPtr dependency RenderPassExecutor will render
	// first), or to an explicit RenderTargetInfo when firstTarget/
	// secondTarget is non-nil — the "externally supplied target" case
	// (spec §4.9).
	//
	// Parameters:
	//   - firstUniform, secondUniform: the Pass uniform names to assign; empty skips that slot
	//   - firstTarget, secondTarget: an explicit target to bind instead of the corresponding renderer's Pass; nil defers to the renderer
	UpdateRenderTargetInfo(firstUniform, secondUniform string, firstTarget, secondTarget *material.RenderTargetInfo)
}

var _ TransitionRenderer = &transitionRenderer{}

// NewTransitionRenderer constructs a TransitionRenderer configured by options.
func NewTransitionRenderer(options ...TransitionRendererBuilderOption) TransitionRenderer {
	t := &transitionRenderer{}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *transitionRenderer) ID() string                       { return t.id }
func (t *transitionRenderer) MaterialPass() material.Pass      { return t.materialPass }
func (t *transitionRenderer) SetMaterialPass(pass material.Pass) { t.materialPass = pass }
func (t *transitionRenderer) FirstRenderer() Renderer           { return t.firstRenderer }
func (t *transitionRenderer) SecondRenderer() Renderer          { return t.secondRenderer }

func (t *transitionRenderer) UpdateTime(parameter float32) {
	if t.materialPass == nil {
		return
	}
	t.materialPass.SetUniform("u_time", material.FloatValue(parameter))
}

func (t *transitionRenderer) UpdateRenderTargetInfo(firstUniform, secondUniform string, firstTarget, secondTarget *material.RenderTargetInfo) {
	if t.materialPass == nil {
		return
	}
	t.assignInput(firstUniform, firstTarget, t.firstRenderer)
	t.assignInput(secondUniform, secondTarget, t.secondRenderer)
}

func (t *transitionRenderer) assignInput(uniformName string, target *material.RenderTargetInfo, upstream Renderer) {
	if uniformName == "" {
		return
	}
	if target != nil {
		t.materialPass.SetUniform(uniformName, material.RenderTargetValue(*target))
		return
	}
	if upstream == nil || upstream.MaterialPass() == nil {
		return
	}
	t.materialPass.SetUniform(uniformName, material.MaterialPtrValue(upstream.MaterialPass().Name()))
}
