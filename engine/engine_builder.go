package engine

import "github.com/cunzhuang123/compositor/engine/camera"

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to
// the Engine instance during NewEngine.
type EngineBuilderOption func(*Engine)

// WithEngineCamera supplies a pre-configured camera rather than letting
// the first UpdateTracks call build one sized to the document.
func WithEngineCamera(cam camera.Camera) EngineBuilderOption {
	return func(e *Engine) {
		e.cam = cam
	}
}
