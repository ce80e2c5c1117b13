package renderer

import (
	"github.com/cunzhuang123/compositor/engine/gpu"
	"github.com/cunzhuang123/compositor/engine/renderer/material"
)

// pluginRenderer is the implementation of PluginRenderer.
type pluginRenderer struct {
	name         string
	materialPass material.Pass
	visible      bool
}

// PluginRenderer owns one effect stage's final Pass within a sequence's
// plugin chain (spec §4.9, §4.11 step 3-4; grounded on
// `original_source/cpp/src/PluginRenderer.h`). Its control/expression
// uniforms are rewritten by paramevaluator.Evaluator directly against
// MaterialPass; PluginRenderer itself tracks visibility, the shared
// u_time uniform, and the chain head's output-vs-input quad resize.
type PluginRenderer interface {
	// Name retrieves this plugin's identity ("<rendererName>_plugin_<i>"-rooted).
	Name() string

	// MaterialPass retrieves this plugin stage's final Pass.
	MaterialPass() material.Pass

	// SetMaterialPass attaches (or replaces) this plugin stage's final Pass.
	SetMaterialPass(pass material.Pass)

	// Visible reports whether this plugin stage is currently included in
	// the frame's draw set (spec §4.11 step 2a: owning sequence visibility).
	Visible() bool

	// SetVisible updates this plugin stage's visibility for the current frame.
	SetVisible(visible bool)

	// UpdateTime rewrites the u_time uniform to timeSeconds, only if
	// MaterialPass already declares one (mirrors the original's
	// hasUniform guard rather than unconditionally injecting a uniform
	// a plugin's shader never reads).
	UpdateTime(timeSeconds float32)

	// UpdateVerticeBuffer resizes the plugin chain's head quad when its
	// output size (headWidth, headHeight) differs from its input size
	// (inputWidth, inputHeight), preserving aspect ratio by scaling
	// uniformly by whichever dimension's ratio is smaller (spec §4.9:
	// "retaining quad shape in the smaller dimension").
	UpdateVerticeBuffer(device gpu.Device, headWidth, headHeight, inputWidth, inputHeight int)
}

var _ PluginRenderer = &pluginRenderer{}

// NewPluginRenderer constructs a PluginRenderer configured by options.
func NewPluginRenderer(options ...PluginRendererBuilderOption) PluginRenderer {
	p := &pluginRenderer{}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pluginRenderer) Name() string                    { return p.name }
func (p *pluginRenderer) MaterialPass() material.Pass     { return p.materialPass }
func (p *pluginRenderer) SetMaterialPass(pass material.Pass) { p.materialPass = pass }
func (p *pluginRenderer) Visible() bool                   { return p.visible }
func (p *pluginRenderer) SetVisible(visible bool)         { p.visible = visible }

func (p *pluginRenderer) UpdateTime(timeSeconds float32) {
	if p.materialPass == nil {
		return
	}
	if _, ok := p.materialPass.Uniform("u_time"); !ok {
		return
	}
	p.materialPass.SetUniform("u_time", material.FloatValue(timeSeconds))
}

func (p *pluginRenderer) UpdateVerticeBuffer(device gpu.Device, headWidth, headHeight, inputWidth, inputHeight int) {
	if p.materialPass == nil || inputWidth <= 0 || inputHeight <= 0 {
		return
	}
	if headWidth == inputWidth && headHeight == inputHeight {
		return
	}

	scaleX := float32(headWidth) / float32(inputWidth)
	scaleY := float32(headHeight) / float32(inputHeight)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	quad := quadVertices(float32(inputWidth)/2*scale, float32(inputHeight)/2*scale)

	if handle := p.materialPass.AttributeBuffer(); handle != 0 {
		if device.WriteVertexBuffer(handle, quad) {
			return
		}
	}
	if handle, ok := device.CreateVertexBuffer(quad); ok {
		p.materialPass.SetAttributeBuffer(handle)
	}
}
