// Package camera provides the compositor's fixed 2D orthographic camera:
// a view/projection matrix pair mapping the output frame's pixel space
// onto the NDC quad every Pass draws against. There is no interactive
// controller (spec's Non-goals exclude interactive editing) — the
// camera's only input is the output resolution.
package camera

import (
	"sync"

	"github.com/cunzhuang123/compositor/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	width  float32
	height float32

	viewMatrix       [16]float32
	projectionMatrix [16]float32
}

// Camera defines the interface for the compositor's fixed orthographic
// camera. It holds the output resolution and computes the view and
// projection matrices Renderer.UpdateMaterialUniforms binds as
// u_viewMatrix/u_projectionMatrix for every Pass.
type Camera interface {
	// Width returns the camera's output width in pixels.
	Width() float32

	// Height returns the camera's output height in pixels.
	Height() float32

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 orthographic projection matrix as 16 floats (column-major).
	ProjectionMatrix() [16]float32

	// Resize updates the output resolution and recomputes the projection
	// matrix. Called whenever the timeline document's width/height change
	// (spec §6).
	//
	// Parameters:
	//   - width, height: the new output resolution in pixels
	Resize(width, height float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new fixed orthographic Camera sized to width x
// height pixels, with top-left origin matching the timeline's pixel
// coordinate space (spec §2).
//
// Parameters:
//   - width, height: the output resolution in pixels
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(width, height float32, options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.Mutex{},
		width:      width,
		height:     height,
		viewMatrix: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
	}
	c.updateProjection()
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Width() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

func (c *cameraImpl) Height() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) Resize(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = width
	c.height = height
	c.updateProjection()
}

// updateProjection recomputes the orthographic projection matrix from
// width/height: (0,0) top-left to (width,height) bottom-right maps onto
// NDC, with Y flipped since the timeline's pixel space grows downward
// while NDC grows upward. Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	common.Ortho(c.projectionMatrix[:], 0, c.width, c.height, 0, -1, 1)
}
