package pipeline

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cunzhuang123/compositor/engine/gpu"
)

// colorFormat is the format every off-screen render target and the
// screen surface are created/configured with. RGBA8 matches the PBO
// readback layout the encoder expects (spec §5).
const colorFormat = wgpu.TextureFormatRGBA8Unorm

// uniformBufferSize is large enough to hold the packed bytes of every
// uniform kind material.UniformValue.Bytes() can produce (a 4x4 matrix,
// the widest case, is 64 bytes); rounded up to the device's minimum
// uniform buffer offset alignment.
const uniformBufferSize = 256

// WGPUDevice is the wgpu-backed implementation of gpu.Device: the
// concrete GPU surface behind the render-graph core's abstract port
// (spec §9 DESIGN NOTES).
type WGPUDevice struct {
	mu     sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	sampler      *wgpu.Sampler
	uniformLayout *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout

	programs map[string]*compiledProgram
	nextProgram uint64

	textures  map[gpu.TextureHandle]*wgpuTexture
	nextTexture uint64

	buffers   map[gpu.BufferHandle]*wgpu.Buffer
	nextBuffer uint64

	quadVertexBuffer *wgpu.Buffer
}

// compiledProgram pairs a cached Pipeline with the program handle it was
// issued under. Every pipeline is created against the shared
// uniformLayout, so no layout is stored here.
type compiledProgram struct {
	handle   gpu.ProgramHandle
	pipeline Pipeline
}

// wgpuTexture bundles the resources one CreateColorTarget call allocates.
type wgpuTexture struct {
	texture      *wgpu.Texture
	view         *wgpu.TextureView
	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView
	width        int
	height       int
}

// NewWGPUDevice requests an adapter/device pair from instance (headless:
// no surface, since the compositor renders to off-screen textures and
// reads them back for encoding rather than presenting, spec §5) and
// builds the single fixed bind group layout every compiled program
// shares: binding 0 a filtering sampler, binding 1 a 2D texture, binding
// 2 a uniform buffer carrying one UniformValue's packed bytes.
func NewWGPUDevice(instance *wgpu.Instance, forceFallbackAdapter bool) (*WGPUDevice, error) {
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "compositor device"})
	if err != nil {
		return nil, fmt.Errorf("pipeline: request device: %w", err)
	}

	sampler, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "compositor sampler",
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: create sampler: %w", err)
	}

	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "compositor uniform layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uniformBufferSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: create bind group layout: %w", err)
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "compositor pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: create pipeline layout: %w", err)
	}

	d := &WGPUDevice{
		device:         device,
		queue:          device.GetQueue(),
		sampler:        sampler,
		uniformLayout:  layout,
		pipelineLayout: pipelineLayout,
		programs:       make(map[string]*compiledProgram),
		textures:       make(map[gpu.TextureHandle]*wgpuTexture),
		buffers:        make(map[gpu.BufferHandle]*wgpu.Buffer),
	}

	// The fixed NDC quad every Pass draws against: position.xyz, uv.xy,
	// four vertices, triangle-strip order (spec §4.2).
	quad := []float32{
		-1, -1, 0, 0, 1,
		1, -1, 0, 1, 1,
		-1, 1, 0, 0, 0,
		1, 1, 0, 1, 0,
	}
	quadBytes := floatsToBytes(quad)
	vb, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "compositor quad",
		Size:             uint64(len(quadBytes)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: create quad vertex buffer: %w", err)
	}
	d.queue.WriteBuffer(vb, 0, quadBytes)
	d.quadVertexBuffer = vb

	return d, nil
}

// QuadVertexBuffer returns the handle of the shared [pos3,uv2]x4 quad
// buffer every Pass's AttributeBuffer should reference unless a plugin
// supplies its own geometry.
func (d *WGPUDevice) QuadVertexBuffer() gpu.BufferHandle {
	handle := gpu.BufferHandle(atomic.AddUint64(&d.nextBuffer, 1))
	d.buffers[handle] = d.quadVertexBuffer
	return handle
}

// CreateVertexBuffer allocates a dedicated, writable vertex buffer for
// one Renderer/PluginRenderer quad, distinct from the shared NDC/screen
// buffers handed out by QuadVertexBuffer.
func (d *WGPUDevice) CreateVertexBuffer(quad [20]float32) (gpu.BufferHandle, bool) {
	data := floatsToBytes(quad[:])
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "renderer quad",
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, false
	}
	d.queue.WriteBuffer(buf, 0, data)

	d.mu.Lock()
	handle := gpu.BufferHandle(atomic.AddUint64(&d.nextBuffer, 1))
	d.buffers[handle] = buf
	d.mu.Unlock()
	return handle, true
}

// WriteVertexBuffer overwrites handle's contents with quad (spec §4.9
// update_vertice_buffer: resizing a Pass's quad when its texture
// dependency's size changes).
func (d *WGPUDevice) WriteVertexBuffer(handle gpu.BufferHandle, quad [20]float32) bool {
	d.mu.Lock()
	buf, ok := d.buffers[handle]
	d.mu.Unlock()
	if !ok {
		return false
	}
	d.queue.WriteBuffer(buf, 0, floatsToBytes(quad[:]))
	return true
}

// CreateTexture allocates an RGBA8 texture sized width x height and
// uploads pixels into it via queue.WriteTexture, mirroring the teacher's
// `InitTextureView` upload path for glTF-embedded textures. Used to
// realise a decoded image/video raster or rasterised glyph as a
// sampleable Resource texture.
func (d *WGPUDevice) CreateTexture(width, height int, pixels []byte) (gpu.TextureHandle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "resource texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		Format:        colorFormat,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, false
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, false
	}

	d.writeTextureData(tex, width, height, pixels)

	handle := gpu.TextureHandle(atomic.AddUint64(&d.nextTexture, 1))
	d.textures[handle] = &wgpuTexture{texture: tex, view: view, width: width, height: height}
	return handle, true
}

// WriteTexture re-uploads pixels into handle's existing texture,
// reusing its allocation (spec §5: a decoded video frame is
// "re-uploaded into the resource's texture" rather than reallocated
// every frame).
func (d *WGPUDevice) WriteTexture(handle gpu.TextureHandle, pixels []byte) bool {
	d.mu.Lock()
	wt, ok := d.textures[handle]
	d.mu.Unlock()
	if !ok {
		return false
	}
	d.writeTextureData(wt.texture, wt.width, wt.height, pixels)
	return true
}

// DestroyTexture releases a texture created by CreateTexture.
func (d *WGPUDevice) DestroyTexture(handle gpu.TextureHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	wt, ok := d.textures[handle]
	if !ok {
		return
	}
	wt.view.Release()
	wt.texture.Release()
	delete(d.textures, handle)
}

func (d *WGPUDevice) writeTextureData(tex *wgpu.Texture, width, height int, pixels []byte) {
	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(width * 4),
			RowsPerImage: uint32(height),
		},
		&wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
	)
}

func (d *WGPUDevice) CreateColorTarget(width, height int, depthStencil bool) (gpu.Framebuffer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "render target",
		Usage:     wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		Format:        colorFormat,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return gpu.Framebuffer{}, false
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return gpu.Framebuffer{}, false
	}

	wt := &wgpuTexture{texture: tex, view: view, width: width, height: height}

	if depthStencil {
		depthTex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:     "render target depth",
			Usage:     wgpu.TextureUsageRenderAttachment,
			Dimension: wgpu.TextureDimension2D,
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			Format:        wgpu.TextureFormatDepth24Plus,
			MipLevelCount: 1,
			SampleCount:   1,
		})
		if err != nil {
			view.Release()
			tex.Release()
			return gpu.Framebuffer{}, false
		}
		depthView, err := depthTex.CreateView(nil)
		if err != nil {
			depthTex.Release()
			view.Release()
			tex.Release()
			return gpu.Framebuffer{}, false
		}
		wt.depthTexture = depthTex
		wt.depthView = depthView
	}

	texHandle := gpu.TextureHandle(atomic.AddUint64(&d.nextTexture, 1))
	d.textures[texHandle] = wt

	return gpu.Framebuffer{
		Handle:       uint64(texHandle),
		ColorTexture: texHandle,
	}, true
}

func (d *WGPUDevice) DestroyTarget(fb gpu.Framebuffer) {
	if fb.IsScreen {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	wt, ok := d.textures[fb.ColorTexture]
	if !ok {
		return
	}
	if wt.depthView != nil {
		wt.depthView.Release()
		wt.depthTexture.Release()
	}
	wt.view.Release()
	wt.texture.Release()
	delete(d.textures, fb.ColorTexture)
}

func (d *WGPUDevice) ClearTarget(fb gpu.Framebuffer) {
	if fb.IsScreen {
		return
	}
	d.mu.Lock()
	wt, ok := d.textures[fb.ColorTexture]
	d.mu.Unlock()
	if !ok {
		return
	}

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       wt.view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{},
			},
		},
	})
	pass.End()
	cb, err := encoder.Finish(nil)
	if err != nil {
		return
	}
	d.queue.Submit(cb)
	cb.Release()
}

// CompileProgram creates a render pipeline for the (vertexSrc,
// fragmentSrc) pair, caching by the concatenated source text so repeat
// calls with the same resolved shader strings are free (ShaderManager
// already caches by key above this, but a cache here protects direct
// callers too).
func (d *WGPUDevice) CompileProgram(vertexSrc, fragmentSrc string) (gpu.ProgramHandle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cacheKey := vertexSrc + "\x00" + fragmentSrc
	if existing, ok := d.programs[cacheKey]; ok {
		return existing.handle, existing.handle != 0
	}

	vs, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "vertex",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: vertexSrc},
	})
	if err != nil {
		d.programs[cacheKey] = &compiledProgram{}
		return 0, false
	}
	fs, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "fragment",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fragmentSrc},
	})
	if err != nil {
		d.programs[cacheKey] = &compiledProgram{}
		return 0, false
	}

	p := NewPipeline(cacheKey, vertexSrc, fragmentSrc)

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "compositor pipeline",
		Layout: d.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 5 * 4,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 3 * 4, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    colorFormat,
					WriteMask: p.WriteMask(),
					Blend:     p.BlendState(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		d.programs[cacheKey] = &compiledProgram{}
		return 0, false
	}
	p.SetRenderPipeline(created)

	handle := gpu.ProgramHandle(atomic.AddUint64(&d.nextProgram, 1))
	d.programs[cacheKey] = &compiledProgram{handle: handle, pipeline: p}
	return handle, true
}

func (d *WGPUDevice) programByHandle(handle gpu.ProgramHandle) *compiledProgram {
	for _, p := range d.programs {
		if p.handle == handle {
			return p
		}
	}
	return nil
}

// Draw issues one render pass: bind fb, clear if requested, bind the
// program's pipeline and a per-draw bind group holding the draw's
// texture/sampler/uniform-buffer triple, draw 4 vertices as a triangle
// strip (spec §4.10 renderSinglePass).
func (d *WGPUDevice) Draw(fb gpu.Framebuffer, program gpu.ProgramHandle, vertexBuffer gpu.BufferHandle, uniforms map[string]gpu.UniformBinding, clear *gpu.ClearState) error {
	d.mu.Lock()
	cp := d.programByHandle(program)
	wt := d.textures[fb.ColorTexture]
	vb := d.buffers[vertexBuffer]
	d.mu.Unlock()

	if cp == nil || cp.pipeline == nil {
		return fmt.Errorf("pipeline: unknown program handle %d", program)
	}
	if wt == nil {
		return fmt.Errorf("pipeline: unknown framebuffer target %d", fb.ColorTexture)
	}
	if vb == nil {
		return fmt.Errorf("pipeline: unknown vertex buffer handle %d", vertexBuffer)
	}

	textureBinding, uniformBytes := packUniforms(uniforms)

	ub, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "draw uniforms",
		Size:  uniformBufferSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("pipeline: create uniform buffer: %w", err)
	}
	defer ub.Release()
	d.queue.WriteBuffer(ub, 0, uniformBytes)

	var textureView *wgpu.TextureView
	if textureBinding != 0 {
		d.mu.Lock()
		if srcTex, ok := d.textures[textureBinding]; ok {
			textureView = srcTex.view
		}
		d.mu.Unlock()
	}
	if textureView == nil {
		textureView = wt.view
	}

	bindGroup, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "draw bind group",
		Layout: d.uniformLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Sampler: d.sampler},
			{Binding: 1, TextureView: textureView},
			{Binding: 2, Buffer: ub, Offset: 0, Size: uniformBufferSize},
		},
	})
	if err != nil {
		return fmt.Errorf("pipeline: create bind group: %w", err)
	}
	defer bindGroup.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("pipeline: create command encoder: %w", err)
	}

	colorAttachment := wgpu.RenderPassColorAttachment{
		View:    wt.view,
		LoadOp:  wgpu.LoadOpLoad,
		StoreOp: wgpu.StoreOpStore,
	}
	if clear != nil && clear.Mask&gpu.ClearColor != 0 {
		colorAttachment.LoadOp = wgpu.LoadOpClear
		colorAttachment.ClearValue = wgpu.Color{
			R: float64(clear.Color[0]),
			G: float64(clear.Color[1]),
			B: float64(clear.Color[2]),
			A: float64(clear.Color[3]),
		}
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{colorAttachment},
	})
	pass.SetPipeline(cp.pipeline.Pipeline())
	pass.SetBindGroup(0, bindGroup, nil)
	pass.SetVertexBuffer(0, vb, 0, wgpu.WholeSize)
	pass.Draw(4, 1, 0, 0)
	pass.End()

	cb, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("pipeline: finish command buffer: %w", err)
	}
	d.queue.Submit(cb)
	cb.Release()
	return nil
}

// ReadPixels copies fb's color texture into a CPU-visible staging
// buffer and blocks until the map completes, feeding the PBO readback
// pipeline (spec §5).
func (d *WGPUDevice) ReadPixels(fb gpu.Framebuffer, width, height int, dst []byte) error {
	d.mu.Lock()
	wt, ok := d.textures[fb.ColorTexture]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("pipeline: unknown framebuffer target %d", fb.ColorTexture)
	}

	bytesPerRow := alignUp(uint32(width*4), 256)
	bufSize := uint64(bytesPerRow) * uint64(height)

	staging, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "readback staging",
		Size:  bufSize,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return fmt.Errorf("pipeline: create staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("pipeline: create command encoder: %w", err)
	}
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{Texture: wt.texture},
		&wgpu.ImageCopyBuffer{
			Buffer: staging,
			Layout: wgpu.TextureDataLayout{BytesPerRow: bytesPerRow, RowsPerImage: uint32(height)},
		},
		&wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
	)
	cb, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("pipeline: finish readback command buffer: %w", err)
	}
	d.queue.Submit(cb)
	cb.Release()

	done := make(chan error, 1)
	staging.MapAsync(wgpu.MapModeRead, 0, bufSize, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- fmt.Errorf("pipeline: map staging buffer failed: %v", status)
			return
		}
		done <- nil
	})
	d.device.Poll(true, nil)
	if err := <-done; err != nil {
		return err
	}
	defer staging.Unmap()

	mapped := staging.GetMappedRange(0, bufSize)
	rowBytes := width * 4
	for row := 0; row < height; row++ {
		src := mapped[row*int(bytesPerRow) : row*int(bytesPerRow)+rowBytes]
		copy(dst[row*rowBytes:(row+1)*rowBytes], src)
	}
	return nil
}

// packUniforms finds the first bound texture (the fragment shader's
// sampler2D, binding 1) and packs every non-texture uniform into the
// shared uniform buffer, in uniform-name order for determinism. There
// is no shader-reflected layout to pack against (spec's shaders are
// opaque source strings, not annotated like the teacher's WGSL), so
// each scalar/vector/matrix is written back-to-back at its natural
// size; a Pass with more than one non-texture uniform relies on its
// shader reading them in the same declared order.
func packUniforms(uniforms map[string]gpu.UniformBinding) (gpu.TextureHandle, []byte) {
	var tex gpu.TextureHandle
	names := make([]string, 0, len(uniforms))
	for name, u := range uniforms {
		if u.Kind == gpu.KindTexture2D && tex == 0 {
			tex = u.Texture
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	buf := make([]byte, uniformBufferSize)
	offset := 0
	write := func(v float32) {
		if offset+4 > len(buf) {
			return
		}
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
		offset += 4
	}
	writeInt := func(v int32) {
		if offset+4 > len(buf) {
			return
		}
		binary.LittleEndian.PutUint32(buf[offset:], uint32(v))
		offset += 4
	}

	for _, name := range names {
		u := uniforms[name]
		switch u.Kind {
		case gpu.KindInt:
			writeInt(u.Int)
		case gpu.KindFloat:
			write(u.Float)
		case gpu.KindVec2i:
			writeInt(u.Vec2i[0])
			writeInt(u.Vec2i[1])
		case gpu.KindVec3i:
			writeInt(u.Vec3i[0])
			writeInt(u.Vec3i[1])
			writeInt(u.Vec3i[2])
		case gpu.KindVec2f:
			write(u.Vec2f[0])
			write(u.Vec2f[1])
		case gpu.KindVec3f:
			write(u.Vec3f[0])
			write(u.Vec3f[1])
			write(u.Vec3f[2])
		case gpu.KindVec4f:
			write(u.Vec4f[0])
			write(u.Vec4f[1])
			write(u.Vec4f[2])
			write(u.Vec4f[3])
		case gpu.KindMat4:
			for _, f := range u.Mat4 {
				write(f)
			}
		}
	}
	return tex, buf
}

func alignUp(n, alignment uint32) uint32 {
	if n%alignment == 0 {
		return n
	}
	return n + (alignment - n%alignment)
}

func floatsToBytes(values []float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
