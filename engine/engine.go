// Package engine implements Engine (spec §4.11): the top-level
// orchestrator that turns a decoded timeline.Document into GPU passes
// for every frame and drains the finished frames into an encoder sink.
// UpdateTracks builds the renderer/plugin/transition graph once from the
// document; Play then steps global time forward, updating and drawing
// each frame.
package engine

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/cunzhuang123/compositor/common"
	"github.com/cunzhuang123/compositor/engine/camera"
	"github.com/cunzhuang123/compositor/engine/gpu"
	"github.com/cunzhuang123/compositor/engine/keyframe"
	"github.com/cunzhuang123/compositor/engine/loader"
	"github.com/cunzhuang123/compositor/engine/paramevaluator"
	"github.com/cunzhuang123/compositor/engine/profiler"
	"github.com/cunzhuang123/compositor/engine/renderer"
	"github.com/cunzhuang123/compositor/engine/renderer/material"
	"github.com/cunzhuang123/compositor/engine/renderer/passexec"
	"github.com/cunzhuang123/compositor/engine/renderer/rendertarget"
	"github.com/cunzhuang123/compositor/engine/renderer/shader"
	"github.com/cunzhuang123/compositor/engine/timeline"
	"github.com/cunzhuang123/compositor/engine/window"
)

// screenTargetName is the RenderTargetInfo.Name every screen-blit Pass
// and the render-target pool's default target share (spec §4.1: the
// pool's designated default key is never freed).
const screenTargetName = "screen"

// passEntity is the shape shared by Renderer, PluginRenderer, and
// TransitionRenderer that UpdateTracks needs to attach and look up a
// deserialised Pass tree without depending on any one concrete kind.
type passEntity interface {
	Name() string
	MaterialPass() material.Pass
	SetMaterialPass(material.Pass)
}

// Engine is the render-graph core's top-level orchestrator (spec
// §4.11). One Engine processes one timeline.Document from UpdateTracks
// through Play to completion.
type Engine struct {
	device  gpu.Device
	cam     camera.Camera
	pool    *rendertarget.Pool
	shaders *shader.Manager
	exec    *passexec.Executor

	keyframes *keyframe.Engine
	params    *paramevaluator.Evaluator

	sources  SourceFactory
	encoders EncoderFactory

	screenBuffer gpu.BufferHandle
	ndcBuffer    gpu.BufferHandle
	screenFB     gpu.Framebuffer

	rendererBuffers  map[string]gpu.BufferHandle
	resourceTextures map[string]gpu.TextureHandle
	videoSources     map[string]loader.VideoSource

	doc *timeline.Document

	renderers    map[string]renderer.Renderer
	pluginOnly   map[string]renderer.PluginRenderer
	transitions  map[string]renderer.TransitionRenderer
	secondOfTran map[string]string // sequence id -> next sequence id on its track

	trackType map[string]timeline.TrackType // sequence id -> owning track's type

	byName map[string]material.Pass

	profiler *profiler.Profiler
	preview  window.Window // non-nil only when the active document sets isDebug
}

// NewEngine constructs an Engine backed by device, with sources/encoders
// supplying the external collaborators Play needs (decoded frames,
// rasterised glyphs, the encoder sink). The camera/render-target pool/
// shader manager/pass executor are all (re)built by the first
// UpdateTracks call, sized to that document's resolution.
func NewEngine(device gpu.Device, sources SourceFactory, encoders EncoderFactory, options ...EngineBuilderOption) *Engine {
	e := &Engine{
		device:    device,
		sources:   sources,
		encoders:  encoders,
		keyframes: keyframe.NewEngine(),
		params:    paramevaluator.NewEvaluator(),
		profiler:  profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

var _ material.ResourceResolver = (*Engine)(nil)

func (e *Engine) ScreenBuffer() gpu.BufferHandle { return e.screenBuffer }
func (e *Engine) NDCBuffer() gpu.BufferHandle    { return e.ndcBuffer }

func (e *Engine) RendererBuffer(resourceID string) (gpu.BufferHandle, bool) {
	h, ok := e.rendererBuffers[resourceID]
	return h, ok
}

func (e *Engine) ResourceTexture(resourceID string) (gpu.TextureHandle, bool) {
	h, ok := e.resourceTextures[resourceID]
	return h, ok
}

// UpdateTracks rebuilds the renderer/plugin/transition graph from doc
// (spec §4.11 update_tracks, steps 1-7).
func (e *Engine) UpdateTracks(doc *timeline.Document) error {
	e.doc = doc
	e.initSubsystems(doc)

	// Step 1: discard the previous frame's renderer/plugin/transition
	// maps (and the GPU resources they alone owned).
	e.resetGraph()

	// Step 2: for each visible track, for each sequence, instantiate
	// the appropriate renderer kind.
	for _, track := range doc.Tracks {
		if !track.Visible {
			continue
		}
		for _, seq := range track.Sequences {
			e.trackType[seq.ID] = track.Type
			if err := e.instantiateEntity(track.Type, seq); err != nil {
				log.Printf("engine: sequence %q: %v", seq.ID, err)
			}
		}
	}

	// Step 3: for sequences with a non-empty plugins array, deserialise
	// their effect chain and attach it as the entity's final Pass.
	for _, track := range doc.Tracks {
		if !track.Visible {
			continue
		}
		for _, seq := range track.Sequences {
			e.attachEffectChain(seq)
		}
	}

	// Step 4: initialise each plugin stage's width/height and
	// expression-bound uniforms.
	for _, track := range doc.Tracks {
		if !track.Visible {
			continue
		}
		for _, seq := range track.Sequences {
			e.initPlugins(seq)
		}
	}

	// Step 5: instantiate a TransitionRenderer for every sequence that
	// declares one, and deserialise its Pass.
	for _, track := range doc.Tracks {
		if !track.Visible {
			continue
		}
		e.buildTransitions(track)
	}

	// Step 6: install the document's extended shader sources.
	e.shaders = shader.NewManager(e.device, doc.MaterialData.Shaders)
	e.exec = passexec.NewExecutor(e.device, e.pool, e.shaders)

	// Step 7: set each sequence's static (pre-keyframe) transform/colour.
	for _, track := range doc.Tracks {
		if !track.Visible {
			continue
		}
		for _, seq := range track.Sequences {
			if r, ok := e.renderers[seq.ID]; ok {
				e.updateRendererStatics(r, seq, track.Type == timeline.TrackText)
			}
		}
	}

	return nil
}

// initSubsystems (re)builds the subsystems sized to doc's resolution,
// constructing them on first use and resetting them on later calls.
func (e *Engine) initSubsystems(doc *timeline.Document) {
	width, height := float32(doc.Width), float32(doc.Height)

	if e.cam == nil {
		e.cam = camera.NewCamera(width, height)
	} else {
		e.cam.Resize(width, height)
	}

	if e.pool == nil {
		fb, ok := e.device.CreateColorTarget(doc.Width, doc.Height, false)
		if !ok {
			log.Printf("engine: failed to allocate the screen target at %dx%d", doc.Width, doc.Height)
		}
		e.screenFB = fb
		e.pool = rendertarget.NewPool(e.device, material.RenderTargetInfo{Name: screenTargetName, Width: doc.Width, Height: doc.Height}, fb)
	} else {
		e.pool.Reset()
	}

	if e.screenBuffer == 0 {
		if h, ok := e.device.CreateVertexBuffer(quadVertices(width/2, height/2)); ok {
			e.screenBuffer = h
		}
	}
	if e.ndcBuffer == 0 {
		if h, ok := e.device.CreateVertexBuffer(quadVertices(1, 1)); ok {
			e.ndcBuffer = h
		}
	}

	e.updatePreviewWindow(doc)
}

// updatePreviewWindow opens a GLFW preview window the first time a
// document sets isDebug, and closes a previously opened one if a later
// document turns isDebug back off (spec's "isDebug opens a live preview
// window... zero interactive input wired to the timeline").
func (e *Engine) updatePreviewWindow(doc *timeline.Document) {
	if doc.IsDebug && e.preview == nil {
		e.preview = window.NewWindow(
			window.WithTitle("compositor preview"),
			window.WithWidth(doc.Width),
			window.WithHeight(doc.Height),
		)
	} else if !doc.IsDebug && e.preview != nil {
		e.preview.Close()
		e.preview = nil
	}
}

// resetGraph discards the previous UpdateTracks call's renderer/plugin/
// transition graph (spec §4.11 step 1).
func (e *Engine) resetGraph() {
	for _, vs := range e.videoSources {
		vs.Close()
	}
	for _, tex := range e.resourceTextures {
		e.device.DestroyTexture(tex)
	}

	e.renderers = make(map[string]renderer.Renderer)
	e.pluginOnly = make(map[string]renderer.PluginRenderer)
	e.transitions = make(map[string]renderer.TransitionRenderer)
	e.secondOfTran = make(map[string]string)
	e.trackType = make(map[string]timeline.TrackType)
	e.rendererBuffers = make(map[string]gpu.BufferHandle)
	e.resourceTextures = make(map[string]gpu.TextureHandle)
	e.videoSources = make(map[string]loader.VideoSource)
	e.byName = make(map[string]material.Pass)
}

// instantiateEntity builds the renderer kind appropriate for trackType:
// a Renderer backed by an image/video/glyph Resource for graphic/text
// sequences, or a bare PluginRenderer for plugin-track sequences (spec
// §4.11 step 2).
func (e *Engine) instantiateEntity(trackType timeline.TrackType, seq timeline.Sequence) error {
	switch trackType {
	case timeline.TrackGraphic:
		res, err := e.loadGraphicResource(seq)
		if err != nil {
			return err
		}
		e.renderers[seq.ID] = renderer.NewRenderer(
			renderer.WithRendererName(seq.ID),
			renderer.WithRendererResource(res),
		)
	case timeline.TrackText:
		res, err := e.loadTextResource(seq)
		if err != nil {
			return err
		}
		e.renderers[seq.ID] = renderer.NewRenderer(
			renderer.WithRendererName(seq.ID),
			renderer.WithRendererResource(res),
		)
	case timeline.TrackPlugin:
		e.pluginOnly[seq.ID] = renderer.NewPluginRenderer(
			renderer.WithPluginRendererName(seq.ID),
			renderer.WithPluginRendererVisible(true),
		)
	default:
		return fmt.Errorf("unknown track type %q", trackType)
	}
	return nil
}

// loadGraphicResource decodes seq's image or video file, uploads its
// first frame as a GPU texture, and registers the resource's texture
// and a per-sequence vertex buffer under seq.ID for ResourceResolver
// (spec §6 Resource: "extension-based video/image split").
func (e *Engine) loadGraphicResource(seq timeline.Sequence) (renderer.Resource, error) {
	path := seq.Resource.AbsolutePath

	if seq.Resource.IsVideo() {
		vs, err := e.sources.OpenVideo(path)
		if err != nil {
			return nil, &loader.ResourceLoadError{SequenceID: seq.ID, Path: path, Reason: err.Error()}
		}
		startSeconds := timeline.OriginalTime(seq.Timer, seq.Timer.OffsetMS) / 1000
		pixels, width, height, err := vs.FrameAt(startSeconds)
		if err != nil {
			vs.Close()
			return nil, &loader.ResourceLoadError{SequenceID: seq.ID, Path: path, Reason: err.Error()}
		}
		tex, ok := e.device.CreateTexture(width, height, pixels)
		if !ok {
			vs.Close()
			return nil, &loader.ResourceLoadError{SequenceID: seq.ID, Path: path, Reason: "failed to upload video frame texture"}
		}
		e.videoSources[seq.ID] = vs
		e.resourceTextures[seq.ID] = tex
		e.registerRendererBuffer(seq.ID, width, height)
		return renderer.NewVideoResource(width, height, width, height, tex, 0), nil
	}

	img, err := e.sources.OpenImage(path)
	if err != nil {
		return nil, &loader.ResourceLoadError{SequenceID: seq.ID, Path: path, Reason: err.Error()}
	}
	pixels, width, height, err := img.Raster()
	if err != nil {
		return nil, err
	}
	tex, ok := e.device.CreateTexture(width, height, pixels)
	if !ok {
		return nil, &loader.ResourceLoadError{SequenceID: seq.ID, Path: path, Reason: "failed to upload image texture"}
	}
	e.resourceTextures[seq.ID] = tex
	e.registerRendererBuffer(seq.ID, width, height)
	return renderer.NewStaticResource(width, height, tex), nil
}

// loadTextResource rasterises seq's styled text via the shared
// GlyphRasterizer and uploads the result as a GPU texture.
func (e *Engine) loadTextResource(seq timeline.Sequence) (renderer.Resource, error) {
	pixels, width, height, err := e.rasterizeText(seq)
	if err != nil {
		return nil, err
	}
	tex, ok := e.device.CreateTexture(width, height, pixels)
	if !ok {
		return nil, &loader.ResourceLoadError{SequenceID: seq.ID, Path: seq.Resource.AbsolutePath, Reason: "failed to upload text texture"}
	}
	e.resourceTextures[seq.ID] = tex
	e.registerRendererBuffer(seq.ID, width, height)
	return renderer.NewStaticResource(width, height, tex), nil
}

// rasterizeText runs seq's text resource through the shared
// GlyphRasterizer, applying globalRenderScale to fontSize/strokeWidth
// (spec §6: "globalRenderScale: Multiplier for text fontSize and
// strokeWidth").
func (e *Engine) rasterizeText(seq timeline.Sequence) ([]byte, int, int, error) {
	scale := e.doc.GlobalRenderScale
	if scale == 0 {
		scale = 1
	}
	r := seq.Resource
	color, _ := common.HexToRGBA(r.Color)
	strokeColor, _ := common.HexToRGBA(r.StrokeColor)
	pixels, width, height, err := e.sources.Glyphs().Rasterize(
		r.Text, r.AbsolutePath, r.FontSize*scale, color, r.StrokeEnabled, r.StrokeWidth*scale, strokeColor,
	)
	if err != nil {
		return nil, 0, 0, &loader.ResourceLoadError{SequenceID: seq.ID, Path: r.AbsolutePath, Reason: err.Error()}
	}
	return pixels, width, height, nil
}

// registerRendererBuffer allocates seq's own [pos3,uv2]x4 vertex buffer
// sized to (width, height) and records it under id for ResourceResolver.
func (e *Engine) registerRendererBuffer(id string, width, height int) {
	if h, ok := e.device.CreateVertexBuffer(quadVertices(float32(width)/2, float32(height)/2)); ok {
		e.rendererBuffers[id] = h
	}
}

// attachEffectChain deserialises seq's Pass tree from
// materialData.materialPasses[seqId] and attaches it as the owning
// entity's final Pass (spec §4.11 step 3). A sequence with no plugins
// gets a default pass-through blit of its own resource texture instead.
func (e *Engine) attachEffectChain(seq timeline.Sequence) {
	entity := e.entity(seq.ID)
	if entity == nil {
		return
	}

	if len(seq.Plugins) == 0 {
		if r, ok := e.renderers[seq.ID]; ok {
			entity.SetMaterialPass(e.defaultBlitPass(seq.ID, r.Resource()))
		}
		return
	}

	raw, ok := e.doc.MaterialData.MaterialPasses[seq.ID]
	if !ok {
		log.Printf("engine: sequence %q declares plugins but has no materialPasses entry", seq.ID)
		return
	}
	root, err := material.DecodePass(raw, e, e.byName)
	if err != nil {
		log.Printf("engine: sequence %q: decode effect chain: %v", seq.ID, err)
		return
	}
	entity.SetMaterialPass(root)
}

// defaultBlitPass constructs a pass-through Pass sampling res's texture
// directly, for a sequence with no plugins array.
func (e *Engine) defaultBlitPass(seqID string, res renderer.Resource) material.Pass {
	width, height := 0, 0
	if res != nil {
		width, height = res.Width(), res.Height()
	}
	var tex gpu.TextureHandle
	if res != nil {
		tex = res.Texture()
	}
	p := material.NewPass(
		material.WithPassName(seqID),
		material.WithRenderTargetInfo(material.RenderTargetInfo{Name: seqID, Width: width, Height: height}),
		material.WithVertexShader("builtin/quad.vert"),
		material.WithFragmentShader("builtin/blit.frag"),
		material.WithUniform("u_texture", material.Texture2DValue(tex)),
		material.WithUniform("u_color", material.Vec4fValue([4]float32{1, 1, 1, 1})),
	)
	if h, ok := e.rendererBuffers[seqID]; ok {
		p.SetAttributeBuffer(h)
	}
	e.byName[seqID] = p
	return p
}

// entity retrieves the Renderer or PluginRenderer backing sequence id,
// whichever was instantiated for it.
func (e *Engine) entity(id string) passEntity {
	if r, ok := e.renderers[id]; ok {
		return r
	}
	if p, ok := e.pluginOnly[id]; ok {
		return p
	}
	return nil
}

// initPlugins runs ParamEvaluator once per plugin stage to set its
// initial width/height and expression-bound uniforms (spec §4.11 step
// 4), using each plugin's static control map (no keyframe override yet).
func (e *Engine) initPlugins(seq timeline.Sequence) {
	entity := e.entity(seq.ID)
	if entity == nil || len(seq.Plugins) == 0 {
		return
	}
	source := e.sourceDimensions(seq)
	for i, p := range seq.Plugins {
		e.params.EvaluatePlugin(entity.Name(), i, p.Control, source, e.passLookup)
	}
}

// sourceDimensions resolves ParamEvaluator's sourceWidth/sourceHeight
// for a sequence's plugin index 0 (spec §4.6 step 1): the backing
// resource's intrinsic size, or for a plugin-only entity, its own Pass
// tree's output target size.
func (e *Engine) sourceDimensions(seq timeline.Sequence) paramevaluator.SourceDimensions {
	if r, ok := e.renderers[seq.ID]; ok && r.Resource() != nil {
		return paramevaluator.SourceDimensions{Width: r.Resource().SourceWidth(), Height: r.Resource().SourceHeight()}
	}
	if p, ok := e.pluginOnly[seq.ID]; ok && p.MaterialPass() != nil {
		info := p.MaterialPass().RenderTargetInfo()
		return paramevaluator.SourceDimensions{Width: info.Width, Height: info.Height}
	}
	return paramevaluator.SourceDimensions{Width: e.doc.Width, Height: e.doc.Height}
}

// passLookup finds every Pass in the current frame's registry whose
// name ends with suffix (ParamEvaluator.PassLookup, spec §4.6 step 2).
func (e *Engine) passLookup(suffix string) []material.Pass {
	var out []material.Pass
	for name, p := range e.byName {
		if strings.HasSuffix(name, suffix) {
			out = append(out, p)
		}
	}
	return out
}

// buildTransitions instantiates a TransitionRenderer for every sequence
// on track that declares one, bridging it to the next sequence on the
// same track (spec §4.11 step 5; a Transition spans the boundary
// between a Sequence and the next one on the same track).
func (e *Engine) buildTransitions(track timeline.Track) {
	for i, seq := range track.Sequences {
		if seq.Transition == nil {
			continue
		}
		if i+1 >= len(track.Sequences) {
			log.Printf("engine: sequence %q declares a transition but is the last on its track", seq.ID)
			continue
		}
		first, ok := e.renderers[seq.ID]
		if !ok {
			continue
		}
		second, ok := e.renderers[track.Sequences[i+1].ID]
		if !ok {
			continue
		}

		tr := renderer.NewTransitionRenderer(
			renderer.WithTransitionRendererID(seq.Transition.ID),
			renderer.WithTransitionRendererFirstRenderer(first),
			renderer.WithTransitionRendererSecondRenderer(second),
		)

		raw, ok := e.doc.MaterialData.MaterialPasses[seq.Transition.ID]
		var pass material.Pass
		if ok {
			decoded, err := material.DecodePass(raw, e, e.byName)
			if err != nil {
				log.Printf("engine: transition %q: decode pass: %v", seq.Transition.ID, err)
			} else {
				pass = decoded
			}
		}
		if pass == nil {
			pass = e.defaultCrossfadePass(seq.Transition.ID)
		}
		tr.SetMaterialPass(pass)

		e.transitions[seq.ID] = tr
		e.secondOfTran[seq.ID] = track.Sequences[i+1].ID
	}
}

// defaultCrossfadePass builds the built-in cross-fade Pass used when a
// transition has no explicit materialPasses entry (spec §4.3
// "builtin/crossfade.frag").
func (e *Engine) defaultCrossfadePass(id string) material.Pass {
	p := material.NewPass(
		material.WithPassName(id),
		material.WithRenderTargetInfo(material.RenderTargetInfo{Name: id, Width: e.doc.Width, Height: e.doc.Height}),
		material.WithVertexShader("builtin/quad.vert"),
		material.WithFragmentShader("builtin/crossfade.frag"),
		material.WithUniform("u_time", material.FloatValue(0)),
		material.WithAttributeBuffer(e.screenBuffer),
	)
	e.byName[id] = p
	return p
}

// updateRendererStatics sets r's static (pre-keyframe) transform/colour
// state from seq.Adjust (spec §4.11 step 7).
func (e *Engine) updateRendererStatics(r renderer.Renderer, seq timeline.Sequence, isText bool) {
	a := appliedAdjust{
		transform:   seq.Adjust.Transform,
		rotate:      seq.Adjust.Rotate,
		scale:       seq.Adjust.Scale,
		opacity:     seq.Adjust.Opacity,
		color:       seq.Resource.Color,
		strokeColor: seq.Resource.StrokeColor,
	}
	e.applyRendererAdjust(r, a, isText)
}

// applyRendererAdjust writes a's transform/colour onto r: position from
// normalised transform * output size (y inverted), rotation in degrees
// converted to radians, scale passed through, and colour/opacity
// combined into u_color's alpha (spec §4 point 3, §4.7).
func (e *Engine) applyRendererAdjust(r renderer.Renderer, a appliedAdjust, isText bool) {
	width, height := float32(e.doc.Width), float32(e.doc.Height)
	x := float32(a.transform.X) * width
	y := height - float32(a.transform.Y)*height
	r.SetPosition(x, y, 0)
	r.SetRotation(0, 0, float32(a.rotate*math.Pi/180))

	scaleX, scaleY := float32(a.scale.X), float32(a.scale.Y)
	if scaleX == 0 {
		scaleX = 1
	}
	if scaleY == 0 {
		scaleY = 1
	}
	r.SetScale(scaleX, scaleY)

	rgba := [4]float32{1, 1, 1, float32(a.opacity)}
	if isText {
		if c, ok := common.HexToRGBA(a.color); ok {
			rgba = c
			rgba[3] *= float32(a.opacity)
		}
	}
	r.SetColor(rgba)
}
