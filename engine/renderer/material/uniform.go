package material

import (
	"encoding/binary"
	"math"

	"github.com/cunzhuang123/compositor/engine/gpu"
)

// UniformKind tags which field of a UniformValue holds the live value
// (spec §3 UniformValue: a tagged sum of scalar/vector/matrix/texture/
// pass-reference/render-target-reference variants).
type UniformKind int

const (
	UniformInt UniformKind = iota
	UniformFloat
	UniformVec2i
	UniformVec3i
	UniformVec2f
	UniformVec3f
	UniformVec4f
	UniformMat4
	UniformTexture2D
	UniformMaterialPtr
	UniformRenderTarget
)

// RenderTargetInfo is the logical identity of an offscreen target: two
// Infos are equivalent iff (Name, Width, Height) match (spec §3). WidthExpr
// and HeightExpr, when non-empty, are evaluated once per ParamEvaluator
// pass to override Width/Height before the Pass executes.
type RenderTargetInfo struct {
	Name       string
	Width      int
	Height     int
	WidthExpr  string
	HeightExpr string
}

// Key returns the RenderTargetPool lookup key for this info
// ("name_WIDTHxHEIGHT", spec §4.1).
func (i RenderTargetInfo) Key() string {
	return i.Name + "_" + itoa(i.Width) + "x" + itoa(i.Height)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// UniformValue is one uniform binding on a Pass: a tagged value plus an
// optional Expression. When Expression is non-empty, ParamEvaluator
// rebuilds the typed value from it every frame before the Pass executes
// (spec §3).
type UniformValue struct {
	Kind UniformKind

	Int   int32
	Float float32
	Vec2i [2]int32
	Vec3i [3]int32
	Vec2f [2]float32
	Vec3f [3]float32
	Vec4f [4]float32
	Mat4  [16]float32

	Texture gpu.TextureHandle

	// MaterialPtr is the pass_name of the upstream Pass this uniform
	// samples from (resolved to a RenderTarget by RenderPassExecutor).
	MaterialPtr string

	// RenderTarget is a direct-by-name-and-size reference to a pooled
	// target, used when the uniform names a shared target rather than a
	// specific upstream Pass.
	RenderTarget RenderTargetInfo

	Expression string
}

// IntValue constructs an Int-kind UniformValue.
func IntValue(v int32) UniformValue { return UniformValue{Kind: UniformInt, Int: v} }

// FloatValue constructs a Float-kind UniformValue.
func FloatValue(v float32) UniformValue { return UniformValue{Kind: UniformFloat, Float: v} }

// Vec2fValue constructs a Vec2f-kind UniformValue.
func Vec2fValue(v [2]float32) UniformValue { return UniformValue{Kind: UniformVec2f, Vec2f: v} }

// Vec3fValue constructs a Vec3f-kind UniformValue.
func Vec3fValue(v [3]float32) UniformValue { return UniformValue{Kind: UniformVec3f, Vec3f: v} }

// Vec4fValue constructs a Vec4f-kind UniformValue.
func Vec4fValue(v [4]float32) UniformValue { return UniformValue{Kind: UniformVec4f, Vec4f: v} }

// Mat4Value constructs a Mat4-kind UniformValue.
func Mat4Value(v [16]float32) UniformValue { return UniformValue{Kind: UniformMat4, Mat4: v} }

// Texture2DValue constructs a Texture2D-kind UniformValue.
func Texture2DValue(h gpu.TextureHandle) UniformValue {
	return UniformValue{Kind: UniformTexture2D, Texture: h}
}

// MaterialPtrValue constructs a MaterialPtr-kind UniformValue referencing
// the Pass named passName.
func MaterialPtrValue(passName string) UniformValue {
	return UniformValue{Kind: UniformMaterialPtr, MaterialPtr: passName}
}

// RenderTargetValue constructs a RenderTarget-kind UniformValue.
func RenderTargetValue(info RenderTargetInfo) UniformValue {
	return UniformValue{Kind: UniformRenderTarget, RenderTarget: info}
}

// Bytes serializes a numeric/matrix UniformValue to its little-endian GPU
// upload representation. Texture2D, MaterialPtr, and RenderTarget kinds
// are resolved to a bound sampler by RenderPassExecutor rather than
// uploaded as bytes, and return nil here.
func (u UniformValue) Bytes() []byte {
	switch u.Kind {
	case UniformInt:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(u.Int))
		return buf
	case UniformFloat:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(u.Float))
		return buf
	case UniformVec2i:
		return packInts(u.Vec2i[:])
	case UniformVec3i:
		return packInts(u.Vec3i[:])
	case UniformVec2f:
		return packFloats(u.Vec2f[:])
	case UniformVec3f:
		return packFloats(u.Vec3f[:])
	case UniformVec4f:
		return packFloats(u.Vec4f[:])
	case UniformMat4:
		return packFloats(u.Mat4[:])
	default:
		return nil
	}
}

func packInts(v []int32) []byte {
	buf := make([]byte, 4*len(v))
	for i, n := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(n))
	}
	return buf
}

func packFloats(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
