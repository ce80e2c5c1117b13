package shader

import (
	"testing"

	"github.com/cunzhuang123/compositor/engine/gpu"
)

type fakeDevice struct {
	compileCalls int
	fail         bool
}

func (d *fakeDevice) CreateColorTarget(width, height int, depthStencil bool) (gpu.Framebuffer, bool) {
	return gpu.Framebuffer{}, true
}
func (d *fakeDevice) DestroyTarget(fb gpu.Framebuffer) {}
func (d *fakeDevice) ClearTarget(fb gpu.Framebuffer)   {}
func (d *fakeDevice) CompileProgram(vertexSrc, fragmentSrc string) (gpu.ProgramHandle, bool) {
	d.compileCalls++
	if d.fail {
		return 0, false
	}
	return gpu.ProgramHandle(d.compileCalls), true
}
func (d *fakeDevice) Draw(fb gpu.Framebuffer, program gpu.ProgramHandle, vb gpu.BufferHandle, uniforms map[string]gpu.UniformBinding, clear *gpu.ClearState) error {
	return nil
}
func (d *fakeDevice) ReadPixels(fb gpu.Framebuffer, width, height int, dst []byte) error {
	return nil
}
func (d *fakeDevice) CreateVertexBuffer(quad [20]float32) (gpu.BufferHandle, bool) { return 1, true }
func (d *fakeDevice) WriteVertexBuffer(handle gpu.BufferHandle, quad [20]float32) bool {
	return true
}
func (d *fakeDevice) CreateTexture(width, height int, pixels []byte) (gpu.TextureHandle, bool) {
	return 1, true
}
func (d *fakeDevice) WriteTexture(handle gpu.TextureHandle, pixels []byte) bool { return true }
func (d *fakeDevice) DestroyTexture(handle gpu.TextureHandle)                   {}

func TestProgramCachesOnSecondCall(t *testing.T) {
	dev := &fakeDevice{}
	m := NewManager(dev, nil)

	p1, ok := m.Program("builtin/quad.vert", "builtin/blit.frag")
	if !ok {
		t.Fatal("expected success")
	}
	p2, ok := m.Program("builtin/quad.vert", "builtin/blit.frag")
	if !ok {
		t.Fatal("expected success on cached lookup")
	}
	if p1 != p2 {
		t.Errorf("expected cached identical program handle, got %v vs %v", p1, p2)
	}
	if dev.compileCalls != 1 {
		t.Errorf("expected exactly 1 compile call, got %d", dev.compileCalls)
	}
}

func TestProgramResolvesExtendedShaderWithVersionHeader(t *testing.T) {
	dev := &fakeDevice{}
	m := NewManager(dev, map[string]string{"myFrag": "void main() {}"})

	_, ok := m.Program("builtin/quad.vert", "myFrag")
	if !ok {
		t.Fatal("expected extended shader resolution to succeed")
	}
}

func TestProgramUnknownKeyFails(t *testing.T) {
	dev := &fakeDevice{}
	m := NewManager(dev, nil)

	_, ok := m.Program("builtin/quad.vert", "nonexistent")
	if ok {
		t.Error("expected failure for unknown fragment key")
	}
}

func TestProgramCompileFailureCachesSentinel(t *testing.T) {
	dev := &fakeDevice{fail: true}
	m := NewManager(dev, nil)

	_, ok := m.Program("builtin/quad.vert", "builtin/blit.frag")
	if ok {
		t.Fatal("expected failure")
	}
	_, ok = m.Program("builtin/quad.vert", "builtin/blit.frag")
	if ok {
		t.Fatal("expected failure on cached sentinel")
	}
	if dev.compileCalls != 1 {
		t.Errorf("expected compile attempted only once, got %d calls", dev.compileCalls)
	}
}
