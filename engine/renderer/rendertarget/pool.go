// Package rendertarget implements RenderTargetPool (spec §4.1): a single
// pool, owned by the Engine, handing out pooled offscreen targets keyed by
// (name, width, height) so passes that write to the same logical target
// within a frame share one physical framebuffer.
package rendertarget

import (
	"fmt"
	"strconv"

	"github.com/cunzhuang123/compositor/engine/gpu"
	"github.com/cunzhuang123/compositor/engine/renderer/material"
)

// Pool hands out gpu.Framebuffer targets keyed by
// "name_WIDTHxHEIGHT" (spec §4.1). A single Pool instance is owned by the
// Engine and mutated only from the render thread.
type Pool struct {
	device gpu.Device

	inUse map[string]gpu.Framebuffer
	free  map[string]gpu.Framebuffer

	// defaultKey is the key that maps to the externally supplied
	// screen/offscreen final target, never freed by the pool.
	defaultKey        string
	defaultFramebuffer gpu.Framebuffer
}

// NewPool constructs an empty Pool backed by device, with defaultInfo
// mapped to defaultFramebuffer (the screen/offscreen final target; spec
// §4.1 "special case").
func NewPool(device gpu.Device, defaultInfo material.RenderTargetInfo, defaultFramebuffer gpu.Framebuffer) *Pool {
	return &Pool{
		device:             device,
		inUse:              make(map[string]gpu.Framebuffer),
		free:               make(map[string]gpu.Framebuffer),
		defaultKey:         key(defaultInfo.Name, defaultInfo.Width, defaultInfo.Height),
		defaultFramebuffer: defaultFramebuffer,
	}
}

func key(name string, width, height int) string {
	return name + "_" + strconv.Itoa(width) + "x" + strconv.Itoa(height)
}

// Acquire hands out the target for info (spec §4.1 acquire):
//   - already in_use this frame: return the same handle.
//   - in the free pool: rebind, clear to transparent, move to in_use.
//   - the designated default target: return the sentinel screen framebuffer.
//   - otherwise: allocate a new colour (+ optional depth/stencil) target.
func (p *Pool) Acquire(info material.RenderTargetInfo, hasDepthStencil bool) (gpu.Framebuffer, error) {
	k := key(info.Name, info.Width, info.Height)

	if fb, ok := p.inUse[k]; ok {
		return fb, nil
	}

	if fb, ok := p.free[k]; ok {
		p.device.ClearTarget(fb)
		delete(p.free, k)
		p.inUse[k] = fb
		return fb, nil
	}

	if k == p.defaultKey {
		p.inUse[k] = p.defaultFramebuffer
		return p.defaultFramebuffer, nil
	}

	fb, ok := p.device.CreateColorTarget(info.Width, info.Height, hasDepthStencil)
	if !ok {
		return gpu.Framebuffer{}, fmt.Errorf("rendertarget: framebuffer incomplete for %q", k)
	}
	p.inUse[k] = fb
	return fb, nil
}

// Release moves the target for info from in_use back to the free pool
// (spec §4.1 release).
func (p *Pool) Release(info material.RenderTargetInfo) {
	k := key(info.Name, info.Width, info.Height)
	if fb, ok := p.inUse[k]; ok {
		p.free[k] = fb
		delete(p.inUse, k)
	}
}

// ReleaseUnused moves every currently in_use target back to the free
// pool (spec §4.1 release_unused, called at frame end).
func (p *Pool) ReleaseUnused() {
	for k, fb := range p.inUse {
		p.free[k] = fb
		delete(p.inUse, k)
	}
}

// Reset destroys every GPU resource the pool owns, in both the free and
// in_use maps, and clears both (spec §4.1 reset). The default/screen
// target is never destroyed, since the pool does not own it.
func (p *Pool) Reset() {
	for k, fb := range p.free {
		if k == p.defaultKey {
			continue
		}
		p.device.DestroyTarget(fb)
	}
	for k, fb := range p.inUse {
		if k == p.defaultKey {
			continue
		}
		p.device.DestroyTarget(fb)
	}
	p.free = make(map[string]gpu.Framebuffer)
	p.inUse = make(map[string]gpu.Framebuffer)
}
