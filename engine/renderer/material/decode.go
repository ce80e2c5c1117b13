package material

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cunzhuang123/compositor/engine/gpu"
)

// uniformJSON mirrors one entry of a MaterialPass JSON's "uniforms" map
// (spec §6: `{type, value, express?}`).
type uniformJSON struct {
	Type       string          `json:"type"`
	Value      json.RawMessage `json:"value"`
	Expression string          `json:"express"`
}

// passJSON mirrors the MaterialPass JSON shape (spec §6).
type passJSON struct {
	PassName       string                 `json:"passName"`
	RenderTarget   renderTargetJSON       `json:"renderTarget"`
	VertexShader   string                 `json:"vertexShader"`
	FragmentShader string                 `json:"fragmentShader"`
	AttributeBuffer json.RawMessage       `json:"attributeBuffer"`
	Uniforms       map[string]uniformJSON `json:"uniforms"`
}

type renderTargetJSON struct {
	Name          string `json:"name"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	WidthExpress  string `json:"widthExpress"`
	HeightExpress string `json:"heightExpress"`
}

// ResourceResolver resolves the symbolic buffer/texture references a
// MaterialPass JSON uses instead of embedding raw GPU handles: the two
// shared quad buffers, a per-renderer vertex buffer, and a shared
// resource's texture (spec §6: "bufferResourceId:...", "textureResourceId:...").
type ResourceResolver interface {
	// ScreenBuffer retrieves the shared screen-space quad buffer.
	ScreenBuffer() gpu.BufferHandle
	// NDCBuffer retrieves the shared NDC quad buffer.
	NDCBuffer() gpu.BufferHandle
	// RendererBuffer retrieves the named renderer's own vertex buffer.
	RendererBuffer(resourceID string) (gpu.BufferHandle, bool)
	// ResourceTexture retrieves a shared resource's texture by id.
	ResourceTexture(resourceID string) (gpu.TextureHandle, bool)
}

// DecodePass recursively deserialises a MaterialPass JSON document into a
// Pass tree: a sampler2D uniform whose value is an object with "passName"
// becomes a nested child Pass (MaterialPtr), one with "name"+"width"
// becomes a RenderTarget reference, and a string "textureResourceId:id"
// resolves through resolver to a Texture2D (spec §4.2).
//
// registry, if non-nil, receives every Pass decoded — root and nested —
// keyed by name. RenderPassExecutor resolves MaterialPtr uniforms by
// name against exactly this kind of flat map, so a nested child Pass
// that wasn't also recorded here would be unreachable at render time
// even though its name is referenced.
func DecodePass(raw json.RawMessage, resolver ResourceResolver, registry map[string]Pass) (Pass, error) {
	var pj passJSON
	if err := json.Unmarshal(raw, &pj); err != nil {
		return nil, fmt.Errorf("material: decode pass: %w", err)
	}

	buffer, err := decodeAttributeBuffer(pj.AttributeBuffer, resolver)
	if err != nil {
		return nil, fmt.Errorf("material: pass %q: %w", pj.PassName, err)
	}

	p := &pass{
		name: pj.PassName,
		renderTargetInfo: RenderTargetInfo{
			Name:       pj.RenderTarget.Name,
			Width:      pj.RenderTarget.Width,
			Height:     pj.RenderTarget.Height,
			WidthExpr:  pj.RenderTarget.WidthExpress,
			HeightExpr: pj.RenderTarget.HeightExpress,
		},
		vertexShader:    pj.VertexShader,
		fragmentShader:  pj.FragmentShader,
		attributeBuffer: buffer,
		uniforms:        make(map[string]UniformValue),
	}
	if registry != nil {
		registry[p.name] = p
	}

	for name, uj := range pj.Uniforms {
		value, err := decodeUniform(uj, resolver, registry)
		if err != nil {
			return nil, fmt.Errorf("material: pass %q uniform %q: %w", pj.PassName, name, err)
		}
		p.uniforms[name] = value
	}

	return p, nil
}

func decodeAttributeBuffer(raw json.RawMessage, resolver ResourceResolver) (gpu.BufferHandle, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var ref string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return 0, fmt.Errorf("attributeBuffer: expected string reference")
	}
	switch ref {
	case "bufferResourceId:sreenBuffer":
		return resolver.ScreenBuffer(), nil
	case "bufferResourceId:ndcBuffer":
		return resolver.NDCBuffer(), nil
	default:
		id := strings.TrimPrefix(ref, "bufferResourceId:")
		handle, ok := resolver.RendererBuffer(id)
		if !ok {
			return 0, fmt.Errorf("attributeBuffer: unknown resource %q", id)
		}
		return handle, nil
	}
}

func decodeUniform(uj uniformJSON, resolver ResourceResolver, registry map[string]Pass) (UniformValue, error) {
	switch uj.Type {
	case "int", "bool":
		var v int32
		if len(uj.Value) > 0 {
			var f float64
			if err := json.Unmarshal(uj.Value, &f); err == nil {
				v = int32(f)
			} else {
				var b bool
				if err := json.Unmarshal(uj.Value, &b); err == nil && b {
					v = 1
				}
			}
		}
		u := IntValue(v)
		u.Expression = uj.Expression
		return u, nil
	case "float":
		var f float64
		if len(uj.Value) > 0 {
			_ = json.Unmarshal(uj.Value, &f)
		}
		u := FloatValue(float32(f))
		u.Expression = uj.Expression
		return u, nil
	case "vec2":
		arr, err := decodeFloatArray(uj.Value, 2)
		if err != nil {
			return UniformValue{}, err
		}
		u := Vec2fValue([2]float32{arr[0], arr[1]})
		u.Expression = uj.Expression
		return u, nil
	case "vec3":
		arr, err := decodeFloatArray(uj.Value, 3)
		if err != nil {
			return UniformValue{}, err
		}
		u := Vec3fValue([3]float32{arr[0], arr[1], arr[2]})
		u.Expression = uj.Expression
		return u, nil
	case "vec4":
		arr, err := decodeFloatArray(uj.Value, 4)
		if err != nil {
			return UniformValue{}, err
		}
		u := Vec4fValue([4]float32{arr[0], arr[1], arr[2], arr[3]})
		u.Expression = uj.Expression
		return u, nil
	case "ivec2":
		arr, err := decodeIntArray(uj.Value, 2)
		if err != nil {
			return UniformValue{}, err
		}
		return UniformValue{Kind: UniformVec2i, Vec2i: [2]int32{arr[0], arr[1]}, Expression: uj.Expression}, nil
	case "ivec3":
		arr, err := decodeIntArray(uj.Value, 3)
		if err != nil {
			return UniformValue{}, err
		}
		return UniformValue{Kind: UniformVec3i, Vec3i: [3]int32{arr[0], arr[1], arr[2]}, Expression: uj.Expression}, nil
	case "mat4":
		arr, err := decodeFloatArray(uj.Value, 16)
		if err != nil {
			return UniformValue{}, err
		}
		var m [16]float32
		copy(m[:], arr)
		return Mat4Value(m), nil
	case "sampler2D":
		return decodeSampler(uj.Value, resolver, registry)
	default:
		return UniformValue{}, fmt.Errorf("unsupported uniform type %q", uj.Type)
	}
}

func decodeSampler(raw json.RawMessage, resolver ResourceResolver, registry map[string]Pass) (UniformValue, error) {
	// A bare string: "textureResourceId:<id>".
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		id := strings.TrimPrefix(asString, "textureResourceId:")
		tex, ok := resolver.ResourceTexture(id)
		if !ok {
			return UniformValue{}, fmt.Errorf("sampler2D: unknown texture resource %q", id)
		}
		return Texture2DValue(tex), nil
	}

	// An object: either {passName:...} (nested child Pass -> MaterialPtr)
	// or {name, width, height} (a RenderTarget reference).
	var probe struct {
		PassName string `json:"passName"`
		Name     string `json:"name"`
		Width    *int   `json:"width"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return UniformValue{}, fmt.Errorf("sampler2D: unrecognised value shape")
	}
	if probe.PassName != "" {
		child, err := DecodePass(raw, resolver, registry)
		if err != nil {
			return UniformValue{}, err
		}
		return MaterialPtrValue(child.Name()), nil
	}
	if probe.Width != nil {
		var rt renderTargetJSON
		if err := json.Unmarshal(raw, &rt); err != nil {
			return UniformValue{}, fmt.Errorf("sampler2D: malformed render target reference")
		}
		return RenderTargetValue(RenderTargetInfo{Name: rt.Name, Width: rt.Width, Height: rt.Height}), nil
	}
	return UniformValue{}, fmt.Errorf("sampler2D: unrecognised value shape")
}

func decodeFloatArray(raw json.RawMessage, n int) ([]float32, error) {
	var nums []float64
	if err := json.Unmarshal(raw, &nums); err != nil {
		return nil, fmt.Errorf("expected array of %d numbers", n)
	}
	out := make([]float32, n)
	for i := 0; i < n && i < len(nums); i++ {
		out[i] = float32(nums[i])
	}
	return out, nil
}

func decodeIntArray(raw json.RawMessage, n int) ([]int32, error) {
	var nums []float64
	if err := json.Unmarshal(raw, &nums); err != nil {
		return nil, fmt.Errorf("expected array of %d numbers", n)
	}
	out := make([]int32, n)
	for i := 0; i < n && i < len(nums); i++ {
		out[i] = int32(nums[i])
	}
	return out, nil
}
