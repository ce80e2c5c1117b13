package passexec

import (
	"testing"

	"github.com/cunzhuang123/compositor/engine/gpu"
	"github.com/cunzhuang123/compositor/engine/renderer/material"
	"github.com/cunzhuang123/compositor/engine/renderer/rendertarget"
)

type fakeDevice struct {
	nextTex uint64
}

func (d *fakeDevice) CreateColorTarget(width, height int, depthStencil bool) (gpu.Framebuffer, bool) {
	d.nextTex++
	return gpu.Framebuffer{Handle: d.nextTex, ColorTexture: gpu.TextureHandle(d.nextTex)}, true
}
func (d *fakeDevice) DestroyTarget(fb gpu.Framebuffer) {}
func (d *fakeDevice) ClearTarget(fb gpu.Framebuffer)   {}
func (d *fakeDevice) CompileProgram(vertexSrc, fragmentSrc string) (gpu.ProgramHandle, bool) {
	return 1, true
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

// recordingResolver records the order passes resolve their program in,
// using the vertex shader key as a stand-in for the pass's identity
// (tests set VertexShader == pass name).
type recordingResolver struct {
	order *[]string
}

func (r recordingResolver) Program(vertexShaderKey, fragmentShaderKey string) (gpu.ProgramHandle, bool) {
	*r.order = append(*r.order, vertexShaderKey)
	return 1, true
}

func TestRenderDiamondDependencyRendersSharedNodeOnce(t *testing.T) {
	var order []string

	// A depends on B, C depends on B (Scenario F).
	b := material.NewPass(
		material.WithPassName("B"),
		material.WithVertexShader("B"),
		material.WithRenderTargetInfo(material.RenderTargetInfo{Name: "b", Width: 10, Height: 10}),
	)
	a := material.NewPass(
		material.WithPassName("A"),
		material.WithVertexShader("A"),
		material.WithRenderTargetInfo(material.RenderTargetInfo{Name: "a", Width: 10, Height: 10}),
		material.WithUniform("u_texture", material.MaterialPtrValue("B")),
	)
	c := material.NewPass(
		material.WithPassName("C"),
		material.WithVertexShader("C"),
		material.WithRenderTargetInfo(material.RenderTargetInfo{Name: "c", Width: 10, Height: 10}),
		material.WithUniform("u_texture", material.MaterialPtrValue("B")),
	)

	byName := map[string]material.Pass{"A": a, "B": b, "C": c}

	dev := &fakeDevice{}
	pool := rendertarget.NewPool(dev, material.RenderTargetInfo{Name: "screen"}, gpu.Framebuffer{IsScreen: true})
	exec := NewExecutor(dev, pool, recordingResolver{order: &order})

	exec.Render([]material.Pass{a, c}, byName, true)

	count := map[string]int{}
	for _, name := range order {
		count[name]++
	}
	if count["B"] != 1 {
		t.Errorf("B rendered %d times, want 1", count["B"])
	}
	if count["A"] != 1 || count["C"] != 1 {
		t.Errorf("A/C rendered unexpected number of times: %+v", count)
	}

	bIdx, aIdx, cIdx := indexOf(order, "B"), indexOf(order, "A"), indexOf(order, "C")
	if !(bIdx < aIdx && bIdx < cIdx) {
		t.Errorf("expected B before both A and C, got order %v", order)
	}
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func TestRenderCyclicBackEdgeShortCircuits(t *testing.T) {
	var order []string

	// X depends on Y, Y depends on X (back-edge): whichever is
	// rendered first wins, the other's dependency is short-circuited.
	x := material.NewPass(
		material.WithPassName("X"),
		material.WithVertexShader("X"),
		material.WithRenderTargetInfo(material.RenderTargetInfo{Name: "x", Width: 10, Height: 10}),
		material.WithUniform("u_texture", material.MaterialPtrValue("Y")),
	)
	y := material.NewPass(
		material.WithPassName("Y"),
		material.WithVertexShader("Y"),
		material.WithRenderTargetInfo(material.RenderTargetInfo{Name: "y", Width: 10, Height: 10}),
		material.WithUniform("u_texture", material.MaterialPtrValue("X")),
	)
	byName := map[string]material.Pass{"X": x, "Y": y}

	dev := &fakeDevice{}
	pool := rendertarget.NewPool(dev, material.RenderTargetInfo{Name: "screen"}, gpu.Framebuffer{IsScreen: true})
	exec := NewExecutor(dev, pool, recordingResolver{order: &order})

	exec.Render([]material.Pass{x}, byName, true)

	if len(order) != 2 {
		t.Fatalf("expected exactly 2 renders for a 2-node cycle, got %v", order)
	}
}
