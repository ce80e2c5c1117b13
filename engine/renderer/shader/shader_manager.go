// Package shader implements ShaderManager (spec §4.3): a cache of
// compiled GPU programs keyed by the (vertex, fragment) shader-key pair,
// resolving each key against an embedded built-in source map or a
// timeline-supplied "extend shaders" map.
package shader

import (
	"fmt"
	"log"
	"strings"

	"github.com/cunzhuang123/compositor/engine/gpu"
)

// builtinVersionHeader is prepended to a user-extended shader's source
// before compilation (spec §4.3: "a version header is prepended").
const builtinVersionHeader = "#version 300 es\n"

// builtinSources is the embedded, read-only map of built-in shader keys
// to GLSL source: the NDC/screen quad pass-through vertex shader and a
// plain textured-blit fragment shader, covering every Pass the engine
// itself constructs (the final screen blit, transitions' default
// cross-fade, and any plugin that declines to supply its own shader).
var builtinSources = map[string]string{
	"builtin/quad.vert": `#version 300 es
in vec3 a_position;
in vec2 a_texCoord;
out vec2 v_texCoord;
uniform mat4 u_modelMatrix;
uniform mat4 u_viewMatrix;
uniform mat4 u_projectionMatrix;
void main() {
	v_texCoord = a_texCoord;
	gl_Position = u_projectionMatrix * u_viewMatrix * u_modelMatrix * vec4(a_position, 1.0);
}`,
	"builtin/blit.frag": `#version 300 es
precision mediump float;
in vec2 v_texCoord;
out vec4 fragColor;
uniform sampler2D u_texture;
uniform vec4 u_color;
void main() {
	fragColor = texture(u_texture, v_texCoord) * u_color;
}`,
	"builtin/crossfade.frag": `#version 300 es
precision mediump float;
in vec2 v_texCoord;
out vec4 fragColor;
uniform sampler2D u_firstTexture;
uniform sampler2D u_secondTexture;
uniform float u_time;
void main() {
	vec4 a = texture(u_firstTexture, v_texCoord);
	vec4 b = texture(u_secondTexture, v_texCoord);
	fragColor = mix(a, b, clamp(u_time, 0.0, 1.0));
}`,
}

// hasShaderExtension reports whether key's suffix marks it as a direct
// source-bearing key (.vert/.frag/.glsl) rather than a key into the
// user-extended shader map (spec §4.3: "a path ending in a recognised
// shader extension loads from an embedded read-only map; otherwise the
// path is a key into the user-extended shader map").
func hasShaderExtension(key string) bool {
	return strings.HasSuffix(key, ".vert") || strings.HasSuffix(key, ".frag") || strings.HasSuffix(key, ".glsl")
}

// Manager caches compiled programs keyed by "vertexKey|fragmentKey"
// (spec §4.3). On a cache miss it resolves both shader keys, compiles and
// links via device, and retains the result only on success; a compile
// failure is logged and a sentinel (zero) program is cached so repeated
// lookups don't recompile a known-bad pair every frame.
type Manager struct {
	device         gpu.Device
	extendShaders  map[string]string
	programs       map[string]gpu.ProgramHandle
}

// NewManager constructs a Manager backed by device. extendShaders is the
// timeline's user-supplied shader map (materialData.shaders, spec §6).
func NewManager(device gpu.Device, extendShaders map[string]string) *Manager {
	return &Manager{
		device:        device,
		extendShaders: extendShaders,
		programs:      make(map[string]gpu.ProgramHandle),
	}
}

// Program resolves and compiles the (vertexKey, fragmentKey) pair into a
// GPU program, caching by "vertexKey|fragmentKey" (spec §4.3). Implements
// passexec.ProgramResolver.
func (m *Manager) Program(vertexKey, fragmentKey string) (gpu.ProgramHandle, bool) {
	cacheKey := vertexKey + "|" + fragmentKey
	if program, ok := m.programs[cacheKey]; ok {
		return program, program != 0
	}

	vertexSrc, err := m.resolveSource(vertexKey)
	if err != nil {
		log.Printf("shader: %q: %v", cacheKey, err)
		m.programs[cacheKey] = 0
		return 0, false
	}
	fragmentSrc, err := m.resolveSource(fragmentKey)
	if err != nil {
		log.Printf("shader: %q: %v", cacheKey, err)
		m.programs[cacheKey] = 0
		return 0, false
	}

	program, ok := m.device.CompileProgram(vertexSrc, fragmentSrc)
	if !ok {
		log.Printf("shader: %q: compile/link failed", cacheKey)
		m.programs[cacheKey] = 0
		return 0, false
	}
	m.programs[cacheKey] = program
	return program, true
}

// resolveSource resolves key to GLSL source: a recognised-extension key
// reads from the embedded built-in map; otherwise key indexes the
// timeline's extended shader map and gets the version header prepended.
func (m *Manager) resolveSource(key string) (string, error) {
	if hasShaderExtension(key) {
		src, ok := builtinSources[key]
		if !ok {
			return "", fmt.Errorf("shader: no built-in source for key %q", key)
		}
		return src, nil
	}
	src, ok := m.extendShaders[key]
	if !ok {
		return "", fmt.Errorf("shader: no extended source for key %q", key)
	}
	return builtinVersionHeader + src, nil
}
