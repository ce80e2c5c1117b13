package renderer

import "github.com/cunzhuang123/compositor/engine/renderer/material"

// TransitionRendererBuilderOption is a functional option for configuring a TransitionRenderer at construction.
type TransitionRendererBuilderOption func(*transitionRenderer)

// WithTransitionRendererID sets the transition's identity.
func WithTransitionRendererID(id string) TransitionRendererBuilderOption {
	return func(t *transitionRenderer) {
		t.id = id
	}
}

// WithTransitionRendererMaterialPass attaches the transition's final Pass at construction time.
func WithTransitionRendererMaterialPass(pass material.Pass) TransitionRendererBuilderOption {
	return func(t *transitionRenderer) {
		t.materialPass = pass
	}
}

// WithTransitionRendererFirstRenderer sets the outgoing sequence's renderer.
func WithTransitionRendererFirstRenderer(r Renderer) TransitionRendererBuilderOption {
	return func(t *transitionRenderer) {
		t.firstRenderer = r
	}
}

// WithTransitionRendererSecondRenderer sets the incoming sequence's renderer.
func WithTransitionRendererSecondRenderer(r Renderer) TransitionRendererBuilderOption {
	return func(t *transitionRenderer) {
		t.secondRenderer = r
	}
}
