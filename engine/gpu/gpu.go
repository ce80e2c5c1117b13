// Package gpu is the abstract seam between the render-graph core and the
// concrete GPU API. The core (rendertarget, passexec, shader, material
// packages) is written entirely against these interfaces so it can be
// exercised in tests without a live device; a wgpu-backed implementation
// satisfies them at runtime via engine/renderer/pipeline.
package gpu

// TextureHandle identifies a GPU-resident 2D texture. The zero value
// denotes "no texture".
type TextureHandle uint64

// ProgramHandle identifies a compiled, linked vertex+fragment program.
// The zero value denotes "no program" (compile failure sentinel).
type ProgramHandle uint64

// BufferHandle identifies a GPU vertex/attribute buffer.
type BufferHandle uint64

// Device is the minimal GPU surface the render graph needs: allocate and
// destroy render targets, compile programs, and issue a single draw.
// Exactly one frame-owning goroutine may call Device methods (spec §5:
// the GPU context is not multi-thread-safe).
type Device interface {
	// CreateColorTarget allocates an RGBA8 color texture (plus optional
	// depth/stencil) and wires it into a framebuffer. Returns false if
	// the framebuffer is incomplete; the partially created resources
	// must already be torn down by the implementation before returning.
	CreateColorTarget(width, height int, depthStencil bool) (Framebuffer, bool)

	// DestroyTarget releases a framebuffer's underlying GPU resources.
	DestroyTarget(fb Framebuffer)

	// ClearTarget binds fb and clears color (and depth, if present) to
	// (0,0,0,0).
	ClearTarget(fb Framebuffer)

	// CompileProgram compiles and links a vertex+fragment shader pair.
	// Returns the zero ProgramHandle and false on failure.
	CompileProgram(vertexSrc, fragmentSrc string) (ProgramHandle, bool)

	// Draw issues one draw call: bind fb as the render target, bind
	// program, bind vertexBuffer with the fixed [pos3,uv2]x4 layout,
	// apply clearColor/clearMask if set, upload each uniform, and draw
	// 4 vertices as a triangle strip.
	Draw(fb Framebuffer, program ProgramHandle, vertexBuffer BufferHandle, uniforms map[string]UniformBinding, clear *ClearState) error

	// ReadPixels reads RGBA8 pixel data from fb into dst (len(dst) must
	// be >= width*height*4).
	ReadPixels(fb Framebuffer, width, height int, dst []byte) error

	// CreateVertexBuffer allocates a new [pos3,uv2]x4 vertex buffer
	// initialised to quad and returns its handle. Used by Renderer and
	// PluginRenderer to give each resource its own resizable quad,
	// distinct from the shared NDC/screen buffers (spec §4.9
	// update_vertice_buffer).
	CreateVertexBuffer(quad [20]float32) (BufferHandle, bool)

	// WriteVertexBuffer overwrites an existing vertex buffer's contents
	// with quad. Returns false if handle is unknown.
	WriteVertexBuffer(handle BufferHandle, quad [20]float32) bool

	// CreateTexture allocates an RGBA8 texture of (width, height) and
	// uploads pixels into it. Used to realise a decoded image/video
	// frame or rasterised glyph raster as a sampleable GPU texture
	// (spec §5: "re-uploaded into the resource's texture").
	CreateTexture(width, height int, pixels []byte) (TextureHandle, bool)

	// WriteTexture re-uploads pixels into an existing texture of the
	// same dimensions it was created with. Returns false if handle is
	// unknown. Used for video playback, where each decoded frame
	// overwrites the previous one in place rather than reallocating.
	WriteTexture(handle TextureHandle, pixels []byte) bool

	// DestroyTexture releases a texture created by CreateTexture.
	DestroyTexture(handle TextureHandle)
}

// Framebuffer is an allocated render target: a color texture (and
// optionally a depth/stencil buffer) wired into a single framebuffer
// object. The screen/default target uses sentinel handles that the
// pool never destroys.
type Framebuffer struct {
	Handle       uint64
	ColorTexture TextureHandle
	DepthStencil uint64
	IsScreen     bool
}

// ClearState describes an optional clear issued immediately before a draw.
type ClearState struct {
	Color [4]float32
	Mask  ClearMask
}

// ClearMask selects which attachments a ClearState clears.
type ClearMask uint8

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

// UniformBinding is a fully resolved GPU-side uniform value ready to
// upload: exactly one of the typed fields is meaningful, selected by Kind.
type UniformBinding struct {
	Kind    UniformKind
	Int     int32
	Float   float32
	Vec2i   [2]int32
	Vec3i   [3]int32
	Vec2f   [2]float32
	Vec3f   [3]float32
	Vec4f   [4]float32
	Mat4    [16]float32
	Texture TextureHandle
}

// UniformKind tags the active field of a UniformBinding.
type UniformKind uint8

const (
	KindInt UniformKind = iota
	KindFloat
	KindVec2i
	KindVec3i
	KindVec2f
	KindVec3f
	KindVec4f
	KindMat4
	KindTexture2D
)
