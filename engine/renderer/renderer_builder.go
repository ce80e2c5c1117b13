package renderer

import "github.com/cunzhuang123/compositor/engine/renderer/material"

// RendererBuilderOption is a functional option for configuring a Renderer at construction.
type RendererBuilderOption func(*renderer)

// WithRendererName sets the renderer's identity.
func WithRendererName(name string) RendererBuilderOption {
	return func(r *renderer) {
		r.name = name
	}
}

// WithRendererMaterialPass attaches the renderer's final Pass at construction time.
func WithRendererMaterialPass(pass material.Pass) RendererBuilderOption {
	return func(r *renderer) {
		r.materialPass = pass
	}
}

// WithRendererResource attaches the renderer's backing resource at construction time.
func WithRendererResource(resource Resource) RendererBuilderOption {
	return func(r *renderer) {
		r.resource = resource
	}
}

// WithRendererPosition sets the renderer's initial world-space translation.
func WithRendererPosition(x, y, z float32) RendererBuilderOption {
	return func(r *renderer) {
		r.position = [3]float32{x, y, z}
	}
}

// WithRendererRotation sets the renderer's initial Euler rotation, in radians.
func WithRendererRotation(x, y, z float32) RendererBuilderOption {
	return func(r *renderer) {
		r.rotation = [3]float32{x, y, z}
	}
}

// WithRendererScale sets the renderer's initial 2D scale factors.
func WithRendererScale(x, y float32) RendererBuilderOption {
	return func(r *renderer) {
		r.scale = [2]float32{x, y}
	}
}

// WithRendererAnchor sets the renderer's initial pivot point.
func WithRendererAnchor(x, y float32) RendererBuilderOption {
	return func(r *renderer) {
		r.anchor = [2]float32{x, y}
	}
}

// WithRendererColor sets the renderer's initial u_color tint/opacity.
func WithRendererColor(rgba [4]float32) RendererBuilderOption {
	return func(r *renderer) {
		r.color = rgba
	}
}
