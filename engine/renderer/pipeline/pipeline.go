// Package pipeline implements the compiled-GPU-program cache that backs
// ShaderManager (spec §4.3): every distinct (vertex, fragment) source pair
// resolves to one wgpu.RenderPipeline, created once and reused for every
// Pass that shares the pair. The compositor has no compute passes, so the
// teacher's compute/render split is trimmed to render-only.
package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies the kind of pipeline a Pipeline wraps. The
// compositor only ever builds render pipelines (no compute passes), but
// the type is kept so Pipeline's shape still reads as "a GPU program
// cache entry" rather than assuming render is the only possibility.
type PipelineType int

const (
	// PipelineTypeRender indicates a render pipeline with vertex and fragment shader entry points.
	PipelineTypeRender PipelineType = iota
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	vertexSource, fragmentSource string

	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline defines the interface for a GPU render pipeline, holding the
// source of the two shader stages plus all configuration state required
// to build a wgpu.RenderPipeline (depth, blend, cull, topology).
type Pipeline interface {
	// Type returns the type of the pipeline.
	Type() PipelineType

	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	PipelineKey() string

	// VertexSource returns the vertex shader source this pipeline was built from.
	VertexSource() string

	// FragmentSource returns the fragment shader source this pipeline was built from.
	FragmentSource() string

	// Pipeline returns the underlying *wgpu.RenderPipeline, or nil if not yet created.
	Pipeline() *wgpu.RenderPipeline

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	DepthWriteEnabled() bool

	// DepthBias returns the depth bias value configured for this pipeline.
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether blending is enabled for this pipeline.
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	BlendState() *wgpu.BlendState

	// SetRenderPipeline sets the underlying wgpu render pipeline once compiled.
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline. WGPUDevice
// passes the vertex and fragment source joined by a NUL byte as
// pipelineKey.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - vertexSource: the resolved vertex shader source
//   - fragmentSource: the resolved fragment shader source
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance, not yet compiled (Pipeline() returns nil until SetRenderPipeline)
func NewPipeline(pipelineKey, vertexSource, fragmentSource string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:    pipelineKey,
		pipelineType:   PipelineTypeRender,
		vertexSource:   vertexSource,
		fragmentSource: fragmentSource,
		// The compositor draws a flat quad per pass with no depth buffer
		// to test against; premultiplied-alpha blending is the default
		// since video/glyph sources carry an alpha channel.
		depthTestEnabled:  false,
		depthWriteEnabled: false,
		blendEnabled:      true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleStrip,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) VertexSource() string {
	return p.vertexSource
}

func (p *pipeline) FragmentSource() string {
	return p.fragmentSource
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
