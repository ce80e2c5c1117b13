package material

import "github.com/cunzhuang123/compositor/engine/gpu"

// PassBuilderOption is a function that configures a pass instance during construction.
type PassBuilderOption func(*pass)

// WithPassName is an option builder that sets the pass's unique identity.
//
// Parameters:
//   - name: the pass name
//
// Returns:
//   - PassBuilderOption: a function that applies the name option to a pass
func WithPassName(name string) PassBuilderOption {
	return func(p *pass) {
		p.name = name
	}
}

// WithRenderTargetInfo is an option builder that sets the pass's output target identity.
//
// Parameters:
//   - info: the (name, width, height) identity of the output target
//
// Returns:
//   - PassBuilderOption: a function that applies the render target info option to a pass
func WithRenderTargetInfo(info RenderTargetInfo) PassBuilderOption {
	return func(p *pass) {
		p.renderTargetInfo = info
	}
}

// WithVertexShader is an option builder that sets the pass's vertex shader key.
//
// Parameters:
//   - key: the ShaderManager key for the vertex stage
//
// Returns:
//   - PassBuilderOption: a function that applies the vertex shader option to a pass
func WithVertexShader(key string) PassBuilderOption {
	return func(p *pass) {
		p.vertexShader = key
	}
}

// WithFragmentShader is an option builder that sets the pass's fragment shader key.
//
// Parameters:
//   - key: the ShaderManager key for the fragment stage
//
// Returns:
//   - PassBuilderOption: a function that applies the fragment shader option to a pass
func WithFragmentShader(key string) PassBuilderOption {
	return func(p *pass) {
		p.fragmentShader = key
	}
}

// WithAttributeBuffer is an option builder that sets the pass's vertex attribute buffer.
//
// Parameters:
//   - handle: the GPU buffer handle backing the vertex quad
//
// Returns:
//   - PassBuilderOption: a function that applies the attribute buffer option to a pass
func WithAttributeBuffer(handle gpu.BufferHandle) PassBuilderOption {
	return func(p *pass) {
		p.attributeBuffer = handle
	}
}

// WithUniform is an option builder that sets a single named uniform at construction time.
//
// Parameters:
//   - name: the uniform's name
//   - value: the uniform's value
//
// Returns:
//   - PassBuilderOption: a function that applies the uniform option to a pass
func WithUniform(name string, value UniformValue) PassBuilderOption {
	return func(p *pass) {
		if p.uniforms == nil {
			p.uniforms = make(map[string]UniformValue)
		}
		p.uniforms[name] = value
	}
}

// WithClear is an option builder that sets the pass's clear colour and mask.
//
// Parameters:
//   - color: the RGBA clear colour
//   - mask: which buffers to clear before drawing
//
// Returns:
//   - PassBuilderOption: a function that applies the clear option to a pass
func WithClear(color [4]float32, mask ClearMask) PassBuilderOption {
	return func(p *pass) {
		p.clearColor = color
		p.clearMask = mask
	}
}
