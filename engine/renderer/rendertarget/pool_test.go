package rendertarget

import (
	"testing"

	"github.com/cunzhuang123/compositor/engine/gpu"
	"github.com/cunzhuang123/compositor/engine/renderer/material"
)

type fakeDevice struct {
	nextHandle uint64
	destroyed  []uint64
	cleared    []uint64
}

func (f *fakeDevice) CreateColorTarget(width, height int, depthStencil bool) (gpu.Framebuffer, bool) {
	f.nextHandle++
	return gpu.Framebuffer{Handle: f.nextHandle, ColorTexture: gpu.TextureHandle(f.nextHandle)}, true
}

func (f *fakeDevice) DestroyTarget(fb gpu.Framebuffer) {
	f.destroyed = append(f.destroyed, fb.Handle)
}

func (f *fakeDevice) ClearTarget(fb gpu.Framebuffer) {
	f.cleared = append(f.cleared, fb.Handle)
}

func (f *fakeDevice) CompileProgram(vertexSrc, fragmentSrc string) (gpu.ProgramHandle, bool) {
	return 0, true
}

func (f *fakeDevice) Draw(fb gpu.Framebuffer, program gpu.ProgramHandle, vertexBuffer gpu.BufferHandle, uniforms map[string]gpu.UniformBinding, clear *gpu.ClearState) error {
	return nil
}

func (f *fakeDevice) ReadPixels(fb gpu.Framebuffer, width, height int, dst []byte) error {
	return nil
}

func (f *fakeDevice) CreateVertexBuffer(quad [20]float32) (gpu.BufferHandle, bool) { return 1, true }
func (f *fakeDevice) WriteVertexBuffer(handle gpu.BufferHandle, quad [20]float32) bool {
	return true
}
func (f *fakeDevice) CreateTexture(width, height int, pixels []byte) (gpu.TextureHandle, bool) {
	return 1, true
}
func (f *fakeDevice) WriteTexture(handle gpu.TextureHandle, pixels []byte) bool { return true }
func (f *fakeDevice) DestroyTexture(handle gpu.TextureHandle)                   {}

var _ gpu.Device = &fakeDevice{}

func TestAcquireScenarioEPoolReuse(t *testing.T) {
	dev := &fakeDevice{}
	pool := NewPool(dev, material.RenderTargetInfo{Name: "screen"}, gpu.Framebuffer{IsScreen: true})

	info := material.RenderTargetInfo{Name: "seq", Width: 1920, Height: 1080}
	fb1, err := pool.Acquire(info, false)
	if err != nil {
		t.Fatal(err)
	}
	pool.ReleaseUnused()

	fb2, err := pool.Acquire(info, false)
	if err != nil {
		t.Fatal(err)
	}
	if fb1.Handle != fb2.Handle {
		t.Errorf("expected same physical framebuffer handle, got %v vs %v", fb1.Handle, fb2.Handle)
	}
}

func TestAcquireTwiceSameFrameReturnsSameHandle(t *testing.T) {
	dev := &fakeDevice{}
	pool := NewPool(dev, material.RenderTargetInfo{Name: "screen"}, gpu.Framebuffer{IsScreen: true})

	info := material.RenderTargetInfo{Name: "seq", Width: 640, Height: 480}
	fb1, _ := pool.Acquire(info, false)
	fb2, _ := pool.Acquire(info, false)
	if fb1.Handle != fb2.Handle {
		t.Errorf("expected identical in-use handle within a frame, got %v vs %v", fb1.Handle, fb2.Handle)
	}
}

func TestAcquireDefaultTargetReturnsScreenSentinel(t *testing.T) {
	dev := &fakeDevice{}
	screenFB := gpu.Framebuffer{IsScreen: true}
	pool := NewPool(dev, material.RenderTargetInfo{Name: "screen", Width: 0, Height: 0}, screenFB)

	fb, err := pool.Acquire(material.RenderTargetInfo{Name: "screen", Width: 0, Height: 0}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !fb.IsScreen {
		t.Error("expected the default target to resolve to the screen sentinel")
	}
	if len(dev.destroyed) != 0 {
		t.Error("screen target should never be destroyed")
	}
}

func TestResetDestroysAllOwnedTargets(t *testing.T) {
	dev := &fakeDevice{}
	pool := NewPool(dev, material.RenderTargetInfo{Name: "screen"}, gpu.Framebuffer{IsScreen: true})

	pool.Acquire(material.RenderTargetInfo{Name: "a", Width: 100, Height: 100}, false)
	pool.Acquire(material.RenderTargetInfo{Name: "b", Width: 200, Height: 200}, false)
	pool.ReleaseUnused()
	pool.Reset()

	if len(dev.destroyed) != 2 {
		t.Errorf("expected 2 destroyed targets, got %d", len(dev.destroyed))
	}
}
