// Package passexec implements RenderPassExecutor (spec §4.10): depth-first
// traversal of a Pass's MaterialPtr dependencies, rendering each pass
// exactly once per frame, with render-target pooling. Vertex attribute
// locations are fixed by the device's pipeline vertex layout; the executor
// neither looks them up nor uses a Pass's cached-location fields.
package passexec

import (
	"log"

	"github.com/cunzhuang123/compositor/engine/gpu"
	"github.com/cunzhuang123/compositor/engine/renderer/material"
	"github.com/cunzhuang123/compositor/engine/renderer/rendertarget"
)

// ProgramResolver resolves a Pass's (vertexShader, fragmentShader) key
// pair to a compiled GPU program (ShaderManager's contract, spec §4.3).
type ProgramResolver interface {
	Program(vertexShaderKey, fragmentShaderKey string) (gpu.ProgramHandle, bool)
}

// Executor renders a set of root Passes and everything they transitively
// depend on, exactly once each per call to Render (spec §4.10).
type Executor struct {
	device   gpu.Device
	pool     *rendertarget.Pool
	programs ProgramResolver

	// textureUnit counters are per-pass, so no executor-level state is
	// needed there; rendered tracks identity across one Render call.
	rendered map[string]bool
}

// NewExecutor constructs an Executor bound to device, pool, and programs.
func NewExecutor(device gpu.Device, pool *rendertarget.Pool, programs ProgramResolver) *Executor {
	return &Executor{device: device, pool: pool, programs: programs}
}

// Render executes every pass in passes and their transitive MaterialPtr
// dependencies, depth-first, each exactly once (spec §4.10, invariant 1
// and Scenario F). If release is true, every target acquired this call is
// returned to the pool's free list afterward.
func (e *Executor) Render(passes []material.Pass, byName map[string]material.Pass, release bool) {
	e.rendered = make(map[string]bool)
	for _, p := range passes {
		e.renderPass(p, byName)
	}
	if release {
		e.pool.ReleaseUnused()
	}
}

// renderPass depth-first renders p's MaterialPtr dependencies before p
// itself. A pass name is marked on entry, before its dependencies are
// walked, so a back-edge (cycle) or diamond dependency short-circuits on
// an already-visited name and never re-renders a node (spec §4.10 cycle
// safety).
func (e *Executor) renderPass(p material.Pass, byName map[string]material.Pass) {
	if e.rendered[p.Name()] {
		return
	}
	e.rendered[p.Name()] = true

	for _, u := range p.Uniforms() {
		if u.Kind != material.UniformMaterialPtr {
			continue
		}
		dep, ok := byName[u.MaterialPtr]
		if !ok {
			continue
		}
		e.renderPass(dep, byName)
	}

	e.renderSinglePass(p, byName)
}

// renderSinglePass runs the GPU-side work for one Pass (spec §4.10 steps 1-7).
func (e *Executor) renderSinglePass(p material.Pass, byName map[string]material.Pass) {
	program, ok := e.programs.Program(p.VertexShader(), p.FragmentShader())
	if !ok {
		log.Printf("passexec: pass %q: shader program unavailable, skipping draw", p.Name())
		return
	}

	info := p.RenderTargetInfo()
	fb, err := e.pool.Acquire(info, false)
	if err != nil {
		log.Printf("passexec: pass %q: %v", p.Name(), err)
		return
	}

	uniforms := make(map[string]gpu.UniformBinding, len(p.Uniforms()))
	for name, u := range p.Uniforms() {
		binding, ok := e.resolveUniform(u, byName)
		if !ok {
			log.Printf("passexec: pass %q: could not resolve uniform %q", p.Name(), name)
			continue
		}
		uniforms[name] = binding
	}

	var clear *gpu.ClearState
	if p.ClearMask()&material.ClearColor != 0 {
		clear = &gpu.ClearState{Color: p.ClearColor(), Mask: gpu.ClearColor | gpu.ClearDepth}
	}

	if err := e.device.Draw(fb, program, p.AttributeBuffer(), uniforms, clear); err != nil {
		log.Printf("passexec: pass %q: draw failed: %v", p.Name(), err)
	}
}

// resolveUniform converts a material.UniformValue into a gpu.UniformBinding,
// acquiring a render target (and thus a bindable colour texture) for
// Texture2D-adjacent kinds that reference another pass or a named target.
func (e *Executor) resolveUniform(u material.UniformValue, byName map[string]material.Pass) (gpu.UniformBinding, bool) {
	switch u.Kind {
	case material.UniformTexture2D:
		return gpu.UniformBinding{Kind: gpu.KindTexture2D, Texture: u.Texture}, true
	case material.UniformMaterialPtr:
		dep, ok := byName[u.MaterialPtr]
		if !ok {
			return gpu.UniformBinding{}, false
		}
		fb, err := e.pool.Acquire(dep.RenderTargetInfo(), false)
		if err != nil {
			return gpu.UniformBinding{}, false
		}
		return gpu.UniformBinding{Kind: gpu.KindTexture2D, Texture: fb.ColorTexture}, true
	case material.UniformRenderTarget:
		fb, err := e.pool.Acquire(u.RenderTarget, false)
		if err != nil {
			return gpu.UniformBinding{}, false
		}
		return gpu.UniformBinding{Kind: gpu.KindTexture2D, Texture: fb.ColorTexture}, true
	case material.UniformMat4:
		return gpu.UniformBinding{Kind: gpu.KindMat4, Mat4: u.Mat4}, true
	case material.UniformFloat:
		return gpu.UniformBinding{Kind: gpu.KindFloat, Float: u.Float}, true
	case material.UniformVec2f:
		return gpu.UniformBinding{Kind: gpu.KindVec2f, Vec2f: u.Vec2f}, true
	case material.UniformVec3f:
		return gpu.UniformBinding{Kind: gpu.KindVec3f, Vec3f: u.Vec3f}, true
	case material.UniformVec4f:
		return gpu.UniformBinding{Kind: gpu.KindVec4f, Vec4f: u.Vec4f}, true
	case material.UniformInt:
		return gpu.UniformBinding{Kind: gpu.KindInt, Int: u.Int}, true
	case material.UniformVec2i:
		return gpu.UniformBinding{Kind: gpu.KindVec2i, Vec2i: u.Vec2i}, true
	case material.UniformVec3i:
		return gpu.UniformBinding{Kind: gpu.KindVec3i, Vec3i: u.Vec3i}, true
	default:
		return gpu.UniformBinding{}, false
	}
}
