// Package material defines Pass, the compositor's render-graph node: a
// plain data record describing one draw invocation (shaders, output
// target, uniforms), whose behaviour is imposed entirely by its
// consumers (ShaderManager, RenderPassExecutor, ParamEvaluator).
package material

import "github.com/cunzhuang123/compositor/engine/gpu"

// ClearMask selects which buffers a Pass clears before drawing.
type ClearMask uint8

const (
	ClearNone  ClearMask = 0
	ClearColor ClearMask = 1 << 0
)

// pass is the implementation of the Pass interface.
type pass struct {
	name             string
	renderTargetInfo RenderTargetInfo
	vertexShader     string
	fragmentShader   string
	attributeBuffer  gpu.BufferHandle
	uniforms         map[string]UniformValue
	clearColor       [4]float32
	clearMask        ClearMask

	// attribute locations recorded by CacheAttributeLocations;
	// passexec.Executor neither sets nor reads them.
	positionLoc    int32
	texCoordLoc    int32
	locationsCached bool
}

// Pass is one GPU draw invocation: its shaders, inputs, output target,
// and parameters (spec §3 Material/Pass, §4.2). A Pass is a plain data
// record; the DAG semantics (dependency discovery, topological
// execution, target pooling) live in RenderPassExecutor and
// RenderTargetPool, not here.
type Pass interface {
	// Name retrieves this Pass's unique identity within a frame.
	//
	// Returns:
	//   - string: the pass name
	Name() string

	// RenderTargetInfo retrieves the logical output target this Pass draws into.
	//
	// Returns:
	//   - RenderTargetInfo: the output target's (name, width, height) identity
	RenderTargetInfo() RenderTargetInfo

	// VertexShader retrieves the ShaderManager key for this Pass's vertex stage.
	//
	// Returns:
	//   - string: the vertex shader key
	VertexShader() string

	// FragmentShader retrieves the ShaderManager key for this Pass's fragment stage.
	//
	// Returns:
	//   - string: the fragment shader key
	FragmentShader() string

	// AttributeBuffer retrieves the GPU buffer handle backing this Pass's vertex quad.
	//
	// Returns:
	//   - gpu.BufferHandle: the attribute buffer handle
	AttributeBuffer() gpu.BufferHandle

	// SetAttributeBuffer rebinds this Pass's vertex quad to a different
	// GPU buffer, used by Renderer/PluginRenderer.UpdateVerticeBuffer
	// when a texture dependency's size forces a resize (spec §4.9).
	//
	// Parameters:
	//   - handle: the new attribute buffer handle
	SetAttributeBuffer(handle gpu.BufferHandle)

	// Uniforms retrieves this Pass's full uniform set, keyed by name.
	//
	// Returns:
	//   - map[string]UniformValue: the uniform bindings
	Uniforms() map[string]UniformValue

	// Uniform retrieves a single named uniform.
	//
	// Parameters:
	//   - name: the uniform's name
	//
	// Returns:
	//   - UniformValue: the uniform's current value
	//   - bool: whether a uniform with that name exists
	Uniform(name string) (UniformValue, bool)

	// ClearColor retrieves the colour this Pass clears its target to, when ClearMask includes ClearColor.
	//
	// Returns:
	//   - [4]float32: the clear colour (RGBA)
	ClearColor() [4]float32

	// ClearMask retrieves which buffers this Pass clears before drawing.
	//
	// Returns:
	//   - ClearMask: the clear mask
	ClearMask() ClearMask

	// SetUniform overwrites a single named uniform's value, creating the
	// entry if absent. Used by ParamEvaluator and keyframe-driven updates
	// to rewrite a uniform's value each frame.
	//
	// Parameters:
	//   - name: the uniform's name
	//   - value: the new value
	SetUniform(name string, value UniformValue)

	// SetRenderTargetSize overwrites this Pass's output target's width and
	// height, leaving its name unchanged (used after evaluating
	// width_expr/height_expr, spec §4.6 step 3).
	//
	// Parameters:
	//   - width: the new output width in pixels
	//   - height: the new output height in pixels
	SetRenderTargetSize(width, height int)

	// CachedAttributeLocations retrieves the attribute locations cached by
	// a previous bind, if any.
	//
	// Returns:
	//   - positionLoc: the cached a_position location
	//   - texCoordLoc: the cached a_texCoord location
	//   - ok: whether locations have been cached yet
	CachedAttributeLocations() (positionLoc, texCoordLoc int32, ok bool)

	// CacheAttributeLocations records the attribute locations resolved on
	// first bind, so later frames skip the lookup.
	//
	// Parameters:
	//   - positionLoc: the a_position location
	//   - texCoordLoc: the a_texCoord location
	CacheAttributeLocations(positionLoc, texCoordLoc int32)
}

var _ Pass = &pass{}

// NewPass creates a new Pass instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of PassBuilderOption functions to configure the pass
//
// Returns:
//   - Pass: a new Pass instance
func NewPass(options ...PassBuilderOption) Pass {
	p := &pass{
		uniforms: make(map[string]UniformValue),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pass) Name() string                       { return p.name }
func (p *pass) RenderTargetInfo() RenderTargetInfo  { return p.renderTargetInfo }
func (p *pass) VertexShader() string                { return p.vertexShader }
func (p *pass) FragmentShader() string              { return p.fragmentShader }
func (p *pass) AttributeBuffer() gpu.BufferHandle   { return p.attributeBuffer }
func (p *pass) SetAttributeBuffer(handle gpu.BufferHandle) { p.attributeBuffer = handle }
func (p *pass) Uniforms() map[string]UniformValue   { return p.uniforms }
func (p *pass) ClearColor() [4]float32              { return p.clearColor }
func (p *pass) ClearMask() ClearMask                { return p.clearMask }

func (p *pass) Uniform(name string) (UniformValue, bool) {
	v, ok := p.uniforms[name]
	return v, ok
}

func (p *pass) SetUniform(name string, value UniformValue) {
	p.uniforms[name] = value
}

func (p *pass) SetRenderTargetSize(width, height int) {
	p.renderTargetInfo.Width = width
	p.renderTargetInfo.Height = height
}

func (p *pass) CachedAttributeLocations() (int32, int32, bool) {
	return p.positionLoc, p.texCoordLoc, p.locationsCached
}

func (p *pass) CacheAttributeLocations(positionLoc, texCoordLoc int32) {
	p.positionLoc = positionLoc
	p.texCoordLoc = texCoordLoc
	p.locationsCached = true
}
