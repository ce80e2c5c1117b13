package engine

import (
	"log"
	"strconv"

	"github.com/cunzhuang123/compositor/common"
	"github.com/cunzhuang123/compositor/engine/renderer"
	"github.com/cunzhuang123/compositor/engine/renderer/material"
	"github.com/cunzhuang123/compositor/engine/timeline"
)

// Play steps global time from doc.StartTime to doc.EndTime by
// doc.StepTime, drawing one frame per step and pushing it to the
// encoder sink (spec §4.11 play, steps 1-3). UpdateTracks must have
// already been called for doc.
func (e *Engine) Play() error {
	doc := e.doc
	encoder, err := e.encoders.NewEncoder(doc.Width, doc.Height, doc.FPS, doc.BitRateMbps, doc.OutputPath)
	if err != nil {
		return err
	}

	rgba := make([]byte, doc.Width*doc.Height*4)
	slots := [2][]byte{
		make([]byte, doc.Width*doc.Height*3),
		make([]byte, doc.Width*doc.Height*3),
	}
	cur := 0
	havePending := false

	for t := doc.StartTime; t < doc.EndTime; t += doc.StepTime {
		if e.preview != nil && !e.preview.PumpEvents() {
			log.Printf("engine: preview window closed, stopping playback early at t=%.3fms", t)
			break
		}

		draws := e.frameDraws(t)
		blits := e.screenBlitPasses(draws)

		e.device.ClearTarget(e.screenFB)
		e.exec.Render(blits, e.byName, true)

		if err := e.device.ReadPixels(e.screenFB, doc.Width, doc.Height, rgba); err != nil {
			log.Printf("engine: read back frame at t=%.3fms: %v", t, err)
			continue
		}
		rgbaToRGB(rgba, slots[cur])
		e.profiler.Tick()

		if havePending {
			if err := encoder.Push(slots[1-cur]); err != nil {
				log.Printf("engine: encoder push: %v", err)
			}
		}
		havePending = true
		cur = 1 - cur
	}

	if havePending {
		if err := encoder.Push(slots[1-cur]); err != nil {
			log.Printf("engine: encoder push (final frame): %v", err)
		}
	}

	if e.preview != nil {
		e.preview.Close()
		e.preview = nil
	}

	return encoder.Close()
}

// frameDraws advances every visible sequence to globalMS — refreshing
// video frames, re-evaluating keyframes and plugin controls, updating
// transitions — and returns the ordered list of entity Passes to
// composite this frame (spec §4.11 play step 2).
func (e *Engine) frameDraws(globalMS float64) []material.Pass {
	var draws []material.Pass
	seen := make(map[string]bool)

	for _, track := range e.doc.Tracks {
		if !track.Visible {
			continue
		}
		isText := track.Type == timeline.TrackText

		for _, seq := range track.Sequences {
			visible := timeline.IsVisible(seq.Timer, globalMS)

			if visible {
				if track.Type == timeline.TrackGraphic {
					e.refreshVideoFrame(seq, globalMS)
				}

				a := e.applyKeyframes(seq, globalMS, isText)
				if r, ok := e.renderers[seq.ID]; ok {
					e.applyRendererAdjust(r, a, isText)
					if a.textDirty {
						e.rerasterizeText(seq, a)
					}
					r.UpdateMaterialUniforms(e.cam)
				}

				e.updatePluginControls(seq, globalMS)
			}

			// TransitionActive's window straddles the sequence's end time
			// symmetrically and outlives IsVisible's closed upper bound, so
			// the transition update runs regardless of visibility.
			if seq.Transition != nil && timeline.TransitionActive(seq.Timer, seq.Transition.Duration, globalMS) {
				e.updateTransition(seq, globalMS)
				if tr, ok := e.transitions[seq.ID]; ok && !seen[tr.MaterialPass().Name()] {
					draws = append(draws, tr.MaterialPass())
					seen[tr.MaterialPass().Name()] = true
					// The transition owns compositing both renderers for
					// this step; skip drawing the first renderer on its own.
					continue
				}
			}

			if !visible {
				continue
			}

			if entity := e.entity(seq.ID); entity != nil && entity.MaterialPass() != nil {
				if !seen[entity.MaterialPass().Name()] {
					draws = append(draws, entity.MaterialPass())
					seen[entity.MaterialPass().Name()] = true
				}
			}
		}
	}

	return draws
}

// refreshVideoFrame decodes the frame at globalMS's mapped original time
// and uploads it into the sequence's existing texture, resizing the
// texture only if the decoded frame's dimensions changed.
func (e *Engine) refreshVideoFrame(seq timeline.Sequence, globalMS float64) {
	vs, ok := e.videoSources[seq.ID]
	if !ok {
		return
	}
	seconds := timeline.OriginalTime(seq.Timer, globalMS) / 1000
	pixels, width, height, err := vs.FrameAt(seconds)
	if err != nil {
		log.Printf("engine: sequence %q: decode video frame: %v", seq.ID, err)
		return
	}

	r, ok := e.renderers[seq.ID]
	if !ok || r.Resource() == nil {
		return
	}
	res := r.Resource()
	if width == res.Width() && height == res.Height() {
		e.device.WriteTexture(res.Texture(), pixels)
		return
	}

	newTex, ok := e.device.CreateTexture(width, height, pixels)
	if !ok {
		log.Printf("engine: sequence %q: failed to reallocate video texture", seq.ID)
		return
	}
	e.device.DestroyTexture(res.Texture())
	e.resourceTextures[seq.ID] = newTex
	newRes := renderer.NewVideoResource(width, height, width, height, newTex, res.Rotation())
	r.SetResource(newRes)
	r.UpdateVerticeBuffer(e.device, 0, 0)
	if len(seq.Plugins) == 0 {
		if p := r.MaterialPass(); p != nil {
			p.SetUniform("u_texture", material.Texture2DValue(newTex))
		}
	}
}

// rerasterizeText rebuilds a text sequence's glyph raster from a's
// keyframe-overridden style fields and uploads it, reusing the existing
// texture when the raster's size is unchanged.
func (e *Engine) rerasterizeText(seq timeline.Sequence, a appliedAdjust) {
	r, ok := e.renderers[seq.ID]
	if !ok || r.Resource() == nil {
		return
	}
	res := r.Resource()

	scale := e.doc.GlobalRenderScale
	if scale == 0 {
		scale = 1
	}
	color, _ := common.HexToRGBA(a.color)
	strokeColor, _ := common.HexToRGBA(a.strokeColor)
	pixels, width, height, err := e.sources.Glyphs().Rasterize(
		seq.Resource.Text, seq.Resource.AbsolutePath, a.fontSize*scale, color, seq.Resource.StrokeEnabled, a.strokeWidth*scale, strokeColor,
	)
	if err != nil {
		log.Printf("engine: sequence %q: re-rasterize text: %v", seq.ID, err)
		return
	}

	if width == res.Width() && height == res.Height() {
		e.device.WriteTexture(res.Texture(), pixels)
		return
	}

	newTex, ok := e.device.CreateTexture(width, height, pixels)
	if !ok {
		log.Printf("engine: sequence %q: failed to reallocate text texture", seq.ID)
		return
	}
	e.device.DestroyTexture(res.Texture())
	e.resourceTextures[seq.ID] = newTex
	r.SetResource(renderer.NewStaticResource(width, height, newTex))
	r.UpdateVerticeBuffer(e.device, 0, 0)
	if len(seq.Plugins) == 0 {
		if p := r.MaterialPass(); p != nil {
			p.SetUniform("u_texture", material.Texture2DValue(newTex))
		}
	}
}

// updatePluginControls re-evaluates every plugin stage on seq with its
// own keyframe-overridden control map (spec §4.7, §4.11 play step 2a).
func (e *Engine) updatePluginControls(seq timeline.Sequence, globalMS float64) {
	if len(seq.Plugins) == 0 {
		return
	}
	entity := e.entity(seq.ID)
	if entity == nil {
		return
	}
	source := e.sourceDimensions(seq)
	for i, p := range seq.Plugins {
		ctrl := e.controlOverrides(p, globalMS)
		e.params.EvaluatePlugin(entity.Name(), i, ctrl, source, e.passLookup)
	}
}

// updateTransition advances the TransitionRenderer owned by seq to
// globalMS's normalised progress and rebinds its two source textures
// (spec §4.11 play step 2b).
func (e *Engine) updateTransition(seq timeline.Sequence, globalMS float64) {
	tr, ok := e.transitions[seq.ID]
	if !ok {
		return
	}
	param := timeline.TransitionParameter(seq.Timer, seq.Transition.Duration, globalMS)
	tr.UpdateTime(float32(param))
	tr.UpdateRenderTargetInfo("u_firstTexture", "u_secondTexture", nil, nil)
}

// screenBlitPasses builds one transient pass-through Pass per draw,
// sampling it onto the shared full-screen quad at the document's output
// resolution (spec §4.11 play step 2c). These passes are never
// registered in the persistent byName registry — they are rebuilt fresh
// every frame and never referenced by name.
func (e *Engine) screenBlitPasses(draws []material.Pass) []material.Pass {
	out := make([]material.Pass, 0, len(draws))
	for i, d := range draws {
		p := material.NewPass(
			material.WithPassName(screenBlitName(i)),
			material.WithRenderTargetInfo(material.RenderTargetInfo{Name: screenTargetName, Width: e.doc.Width, Height: e.doc.Height}),
			material.WithVertexShader("builtin/quad.vert"),
			material.WithFragmentShader("builtin/blit.frag"),
			material.WithUniform("u_texture", material.MaterialPtrValue(d.Name())),
			material.WithUniform("u_color", material.Vec4fValue([4]float32{1, 1, 1, 1})),
			material.WithAttributeBuffer(e.screenBuffer),
		)
		out = append(out, p)
	}
	return out
}

func screenBlitName(i int) string {
	return screenTargetName + "_blit_" + strconv.Itoa(i)
}

// rgbaToRGB drops src's alpha channel into dst, which must be sized
// len(src)/4*3 (matching EncoderSink.Push's RGB8 contract against
// gpu.Device.ReadPixels' RGBA8 output).
func rgbaToRGB(src, dst []byte) {
	j := 0
	for i := 0; i+3 < len(src); i += 4 {
		dst[j] = src[i]
		dst[j+1] = src[i+1]
		dst[j+2] = src[i+2]
		j += 3
	}
}
