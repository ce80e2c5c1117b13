package renderer

import (
	"github.com/cunzhuang123/compositor/engine/camera"
	"github.com/cunzhuang123/compositor/engine/gpu"
	"github.com/cunzhuang123/compositor/engine/renderer/material"
)

// renderer is the implementation of Renderer.
type renderer struct {
	name string

	materialPass material.Pass
	resource     Resource

	position [3]float32
	rotation [3]float32
	scale    [2]float32
	anchor   [2]float32
	color    [4]float32
}

// Renderer owns one sequence's final Pass and the static transform/
// colour state that feeds it every frame (spec §4.9). It is the base
// renderer kind used for "graphic" (image/video) and "text" tracks;
// PluginRenderer and TransitionRenderer are distinct kinds with their
// own update semantics.
type Renderer interface {
	// Name retrieves this renderer's identity, matching its owning sequence's id.
	Name() string

	// MaterialPass retrieves the final Pass this renderer draws through.
	MaterialPass() material.Pass

	// SetMaterialPass attaches (or replaces) this renderer's final Pass,
	// e.g. after deserialising a sequence's effect chain (spec §4.11 step 3).
	SetMaterialPass(pass material.Pass)

	// Resource retrieves the GPU-backed content this renderer displays.
	Resource() Resource

	// SetResource attaches (or replaces) this renderer's backing resource,
	// e.g. after a video decode or a text rasteriser rebuild.
	SetResource(resource Resource)

	// SetPosition sets the renderer's world-space translation.
	SetPosition(x, y, z float32)

	// SetRotation sets the renderer's Euler rotation in radians.
	SetRotation(x, y, z float32)

	// SetScale sets the renderer's 2D scale factors.
	SetScale(x, y float32)

	// SetAnchor sets the renderer's pivot point, subtracted before scale/rotation (spec §4.9).
	SetAnchor(x, y float32)

	// SetColor sets the renderer's u_color tint/opacity.
	SetColor(rgba [4]float32)

	// UpdateMaterialUniforms rewrites u_modelMatrix, u_viewMatrix,
	// u_projectionMatrix, and u_color on the final Pass from the
	// renderer's current transform state and cam (spec §4.9).
	//
	// Parameters:
	//   - cam: the scene camera supplying view/projection matrices
	UpdateMaterialUniforms(cam camera.Camera)

	// UpdateVerticeBuffer resizes the final Pass's vertex quad to
	// (dependencyWidth, dependencyHeight) when the Pass's u_texture
	// dependency is an upstream Pass/RenderTarget whose size differs
	// from the resource's own size; pass 0,0 to fall back to the
	// resource's native size (spec §4.9).
	//
	// Parameters:
	//   - device: the GPU device used to (re)write the vertex buffer
	//   - dependencyWidth, dependencyHeight: the upstream size, or 0,0
	UpdateVerticeBuffer(device gpu.Device, dependencyWidth, dependencyHeight int)
}

var _ Renderer = &renderer{}

// NewRenderer constructs a Renderer configured by options, with scale
// defaulting to (1,1) and color defaulting to opaque white.
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		scale: [2]float32{1, 1},
		color: [4]float32{1, 1, 1, 1},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) Name() string                 { return r.name }
func (r *renderer) MaterialPass() material.Pass  { return r.materialPass }
func (r *renderer) SetMaterialPass(p material.Pass) { r.materialPass = p }
func (r *renderer) Resource() Resource           { return r.resource }
func (r *renderer) SetResource(res Resource)     { r.resource = res }

func (r *renderer) SetPosition(x, y, z float32) { r.position = [3]float32{x, y, z} }
func (r *renderer) SetRotation(x, y, z float32) { r.rotation = [3]float32{x, y, z} }
func (r *renderer) SetScale(x, y float32)       { r.scale = [2]float32{x, y} }
func (r *renderer) SetAnchor(x, y float32)      { r.anchor = [2]float32{x, y} }
func (r *renderer) SetColor(rgba [4]float32)    { r.color = rgba }

func (r *renderer) UpdateMaterialUniforms(cam camera.Camera) {
	if r.materialPass == nil {
		return
	}

	var resourceRotation float32
	if r.resource != nil {
		resourceRotation = r.resource.Rotation()
	}

	m := modelMatrix(
		r.position[0], r.position[1], r.position[2],
		r.rotation[0], r.rotation[1], r.rotation[2],
		resourceRotation,
		r.scale[0], r.scale[1],
		r.anchor[0], r.anchor[1],
	)
	r.materialPass.SetUniform("u_modelMatrix", material.Mat4Value(m))
	if cam != nil {
		r.materialPass.SetUniform("u_viewMatrix", material.Mat4Value(cam.ViewMatrix()))
		r.materialPass.SetUniform("u_projectionMatrix", material.Mat4Value(cam.ProjectionMatrix()))
	}
	r.materialPass.SetUniform("u_color", material.Vec4fValue(r.color))
}

func (r *renderer) UpdateVerticeBuffer(device gpu.Device, dependencyWidth, dependencyHeight int) {
	if r.materialPass == nil {
		return
	}

	w, h := dependencyWidth, dependencyHeight
	if w <= 0 || h <= 0 {
		if r.resource == nil {
			return
		}
		w, h = r.resource.Width(), r.resource.Height()
	}

	quad := quadVertices(float32(w)/2, float32(h)/2)

	if handle := r.materialPass.AttributeBuffer(); handle != 0 {
		if device.WriteVertexBuffer(handle, quad) {
			return
		}
	}
	if handle, ok := device.CreateVertexBuffer(quad); ok {
		r.materialPass.SetAttributeBuffer(handle)
	}
}
