package engine

import (
	"encoding/json"
	"testing"

	"github.com/cunzhuang123/compositor/engine/keyframe"
	"github.com/cunzhuang123/compositor/engine/renderer/material"
	"github.com/cunzhuang123/compositor/engine/timeline"
)

func TestRgbaToRGBDropsAlpha(t *testing.T) {
	src := []byte{10, 20, 30, 255, 40, 50, 60, 0}
	dst := make([]byte, 6)
	rgbaToRGB(src, dst)

	want := []byte{10, 20, 30, 40, 50, 60}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestScreenBlitName(t *testing.T) {
	if got := screenBlitName(0); got != "screen_blit_0" {
		t.Fatalf("screenBlitName(0) = %q", got)
	}
	if got := screenBlitName(12); got != "screen_blit_12" {
		t.Fatalf("screenBlitName(12) = %q", got)
	}
}

func TestScreenBlitPassesSampleEachDrawByName(t *testing.T) {
	e := &Engine{doc: &timeline.Document{Width: 640, Height: 480}}

	p1 := material.NewPass(material.WithPassName("a"))
	p2 := material.NewPass(material.WithPassName("b"))

	blits := e.screenBlitPasses([]material.Pass{p1, p2})
	if len(blits) != 2 {
		t.Fatalf("len(blits) = %d, want 2", len(blits))
	}
	for i, name := range []string{"a", "b"} {
		u, ok := blits[i].Uniform("u_texture")
		if !ok {
			t.Fatalf("blit %d: missing u_texture uniform", i)
		}
		if u.Kind != material.UniformMaterialPtr || u.MaterialPtr != name {
			t.Fatalf("blit %d: u_texture = %+v, want MaterialPtr %q", i, u, name)
		}
		if blits[i].RenderTargetInfo().Name != screenTargetName {
			t.Fatalf("blit %d: render target = %q, want %q", i, blits[i].RenderTargetInfo().Name, screenTargetName)
		}
	}
}

func TestParseControlPath(t *testing.T) {
	cases := []struct {
		path        string
		wantName    string
		wantIndex   int
		wantIndexed bool
	}{
		{"control.opacity", "opacity", 0, false},
		{"control.color[2]", "color", 2, true},
		{"adjust.rotate", "", 0, false},
	}
	for _, c := range cases {
		name, index, indexed := parseControlPath(c.path)
		if name != c.wantName || index != c.wantIndex || indexed != c.wantIndexed {
			t.Errorf("parseControlPath(%q) = (%q, %d, %v), want (%q, %d, %v)",
				c.path, name, index, indexed, c.wantName, c.wantIndex, c.wantIndexed)
		}
	}
}

func decodeEntries(t *testing.T, js string) []timeline.KeyframeEntry {
	t.Helper()
	var entries []timeline.KeyframeEntry
	if err := json.Unmarshal([]byte(js), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	return entries
}

func TestControlOverridesAppliesIndexedKeyframe(t *testing.T) {
	e := &Engine{keyframes: keyframe.NewEngine()}

	p := timeline.Plugin{
		Control: map[string]json.RawMessage{
			"tint": json.RawMessage(`[1,1,1,1]`),
		},
		Keyframe: map[string][]timeline.KeyframeEntry{
			"control.tint[1]": decodeEntries(t, `[
				{"offset":0,"value":0.5,"type":"number"},
				{"offset":1000,"value":0.5,"type":"number"}
			]`),
		},
	}

	out := e.controlOverrides(p, 500)
	var arr []float64
	if err := json.Unmarshal(out["tint"], &arr); err != nil {
		t.Fatalf("unmarshal tint: %v", err)
	}
	if len(arr) != 4 || arr[1] != 0.5 {
		t.Fatalf("tint = %v, want [1,0.5,1,1]", arr)
	}
}

func TestControlOverridesLeavesUnkeyframedControlUntouched(t *testing.T) {
	e := &Engine{}
	p := timeline.Plugin{Control: map[string]json.RawMessage{"a": json.RawMessage(`1`)}}
	out := e.controlOverrides(p, 0)
	if string(out["a"]) != "1" {
		t.Fatalf("out[a] = %s, want 1", out["a"])
	}
}
