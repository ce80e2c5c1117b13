// Package renderer implements the timeline's three renderer kinds (spec
// §4.9): Renderer (a graphic or text sequence's static transform/colour
// state), PluginRenderer (one effect stage's resize/time bookkeeping),
// and TransitionRenderer (a cross-fade between two sequences' renderers).
// Each owns exactly one final material.Pass, the node RenderPassExecutor
// and RenderTargetPool ultimately walk.
package renderer

import "github.com/cunzhuang123/compositor/engine/gpu"

// Resource is the GPU-backed content behind a Renderer: a decoded image,
// a video's current frame, or a rasterised text layout. Width/Height is
// the renderer's current output size; SourceWidth/SourceHeight is the
// resource's own intrinsic size before any transform is applied — the
// two differ for e.g. a video whose track forces a different display
// size than its decoded frames (spec §4 point 3, "sourceWidth"/
// "sourceHeight" resolution order for plugin index 0; grounded on
// `original_source/cpp/src/RendererResource.h`).
type Resource interface {
	// Width returns the resource's current (possibly overridden) width in pixels.
	Width() int

	// Height returns the resource's current (possibly overridden) height in pixels.
	Height() int

	// SourceWidth returns the resource's intrinsic, undistorted width in pixels.
	SourceWidth() int

	// SourceHeight returns the resource's intrinsic, undistorted height in pixels.
	SourceHeight() int

	// Texture returns the GPU texture currently holding the resource's pixels.
	Texture() gpu.TextureHandle

	// Rotation returns the resource's intrinsic rotation in radians
	// (e.g. a video's stream-side rotation metadata), folded into
	// u_modelMatrix's Z rotation term alongside the sequence's own
	// rotate adjustment (spec §4.9: "R(−z + resource_rotation)").
	Rotation() float32
}

// staticResource is a fixed-size Resource with no intrinsic rotation,
// sufficient for decoded still images and rasterised text (spec §4
// point 3's "renderer has a backing resource" branch).
type staticResource struct {
	width, height int
	texture       gpu.TextureHandle
}

// NewStaticResource constructs a Resource for content with a fixed size
// and no rotation metadata (still images, text rasterisations).
func NewStaticResource(width, height int, texture gpu.TextureHandle) Resource {
	return &staticResource{width: width, height: height, texture: texture}
}

func (r *staticResource) Width() int                { return r.width }
func (r *staticResource) Height() int               { return r.height }
func (r *staticResource) SourceWidth() int          { return r.width }
func (r *staticResource) SourceHeight() int         { return r.height }
func (r *staticResource) Texture() gpu.TextureHandle { return r.texture }
func (r *staticResource) Rotation() float32          { return 0 }

// SetTexture replaces the decoded texture backing this resource (a
// fresh image decode, or a text rasteriser rebuild triggered by a
// keyframed text adjustment).
func (r *staticResource) SetTexture(texture gpu.TextureHandle) {
	r.texture = texture
}

var _ Resource = &staticResource{}

// videoResource is a Resource backed by a video decoder: its texture's
// contents are refreshed in place every frame (spec §5 "Video
// decoder(s)" — frame_at decodes into a per-resource scratch buffer and
// re-uploads into the resource's existing texture), and it carries the
// stream's intrinsic rotation.
type videoResource struct {
	width, height             int
	sourceWidth, sourceHeight int
	texture                   gpu.TextureHandle
	rotation                  float32
}

// NewVideoResource constructs a Resource for a video track: width/height
// is the display size after any track-level override, sourceWidth/
// sourceHeight is the decoded frame's native size, and rotationRadians
// is the stream's intrinsic rotation metadata.
func NewVideoResource(width, height, sourceWidth, sourceHeight int, texture gpu.TextureHandle, rotationRadians float32) Resource {
	return &videoResource{
		width: width, height: height,
		sourceWidth: sourceWidth, sourceHeight: sourceHeight,
		texture: texture, rotation: rotationRadians,
	}
}

func (r *videoResource) Width() int                { return r.width }
func (r *videoResource) Height() int                { return r.height }
func (r *videoResource) SourceWidth() int           { return r.sourceWidth }
func (r *videoResource) SourceHeight() int          { return r.sourceHeight }
func (r *videoResource) Texture() gpu.TextureHandle { return r.texture }
func (r *videoResource) Rotation() float32          { return r.rotation }

var _ Resource = &videoResource{}
