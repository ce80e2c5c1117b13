package engine

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cunzhuang123/compositor/engine/timeline"
)

// appliedAdjust is one sequence's transform/resource state at a single
// global time, after every active keyframe track has overridden its
// corresponding static Adjust/Resource field (spec §4.7, §6 "keyframe").
type appliedAdjust struct {
	transform timeline.Vec2
	rotate    float64
	scale     timeline.Vec2
	opacity   float64

	color       string
	strokeColor string
	fontSize    float64
	strokeWidth float64

	textDirty bool
}

// applyKeyframes evaluates every "adjust.*"/"resource.*" keyframe track
// seq declares at globalMS, overriding the corresponding static field.
// isText selects the text-only interpretation of adjust.scale — it
// derives fontSize/strokeWidth and marks a glyph rerender due, rather
// than a geometric scale (spec §4 point 3).
func (e *Engine) applyKeyframes(seq timeline.Sequence, globalMS float64, isText bool) appliedAdjust {
	a := appliedAdjust{
		transform:   seq.Adjust.Transform,
		rotate:      seq.Adjust.Rotate,
		scale:       seq.Adjust.Scale,
		opacity:     seq.Adjust.Opacity,
		color:       seq.Resource.Color,
		strokeColor: seq.Resource.StrokeColor,
		fontSize:    seq.Resource.FontSize,
		strokeWidth: seq.Resource.StrokeWidth,
	}

	if v, ok := e.keyframeNumber(seq, "adjust.transform.x", globalMS); ok {
		a.transform.X = v
	}
	if v, ok := e.keyframeNumber(seq, "adjust.transform.y", globalMS); ok {
		a.transform.Y = v
	}
	if v, ok := e.keyframeNumber(seq, "adjust.rotate", globalMS); ok {
		a.rotate = v
	}
	if v, ok := e.keyframeNumber(seq, "adjust.opacity", globalMS); ok {
		a.opacity = v
	}

	scaleX, scaleXOK := e.keyframeNumber(seq, "adjust.scale.x", globalMS)
	scaleY, scaleYOK := e.keyframeNumber(seq, "adjust.scale.y", globalMS)
	switch {
	case isText && scaleXOK:
		a.fontSize = seq.Resource.FontSize * scaleX
		a.strokeWidth = seq.Resource.StrokeWidth * scaleX
		a.textDirty = true
	case !isText:
		if scaleXOK {
			a.scale.X = scaleX
		}
		if scaleYOK {
			a.scale.Y = scaleY
		}
	}

	if isText {
		if v, ok := e.keyframeString(seq, "resource.color", globalMS); ok {
			a.color = v
			a.textDirty = true
		}
		if v, ok := e.keyframeString(seq, "resource.strokeColor", globalMS); ok {
			a.strokeColor = v
			a.textDirty = true
		}
		if v, ok := e.keyframeNumber(seq, "resource.fontSize", globalMS); ok {
			a.fontSize = v
			a.textDirty = true
		}
		if v, ok := e.keyframeNumber(seq, "resource.strokeWidth", globalMS); ok {
			a.strokeWidth = v
			a.textDirty = true
		}
	}

	return a
}

func (e *Engine) keyframeNumber(seq timeline.Sequence, path string, globalMS float64) (float64, bool) {
	list := seq.KeyframesFor(path)
	if len(list) == 0 {
		return 0, false
	}
	v, ok := e.keyframes.ValueAt(list, globalMS)
	if !ok || !v.IsNumber {
		return 0, false
	}
	return v.Number, true
}

func (e *Engine) keyframeString(seq timeline.Sequence, path string, globalMS float64) (string, bool) {
	list := seq.KeyframesFor(path)
	if len(list) == 0 {
		return "", false
	}
	v, ok := e.keyframes.ValueAt(list, globalMS)
	if !ok || !v.IsString {
		return "", false
	}
	return v.String, true
}

// controlOverrides evaluates plugin p's own keyframe tracks at globalMS
// and returns a copy of p.Control with every keyframed "control.<k>" or
// indexed "control.<k>[i]" path overwritten (spec §4.7: indexed form
// fills one array component, leaving the rest at their static values).
// With no active keyframe track, p.Control is returned unchanged.
func (e *Engine) controlOverrides(p timeline.Plugin, globalMS float64) map[string]json.RawMessage {
	if len(p.Keyframe) == 0 {
		return p.Control
	}

	out := make(map[string]json.RawMessage, len(p.Control))
	for k, v := range p.Control {
		out[k] = v
	}

	for path, entries := range p.Keyframe {
		name, index, indexed := parseControlPath(path)
		if name == "" {
			continue
		}
		list := timeline.DecodeKeyframeList(entries)
		v, ok := e.keyframes.ValueAt(list, globalMS)
		if !ok {
			continue
		}

		if indexed {
			arr := decodeControlArray(out[name])
			for len(arr) <= index {
				arr = append(arr, 0)
			}
			if v.IsNumber {
				arr[index] = v.Number
			}
			if raw, err := json.Marshal(arr); err == nil {
				out[name] = raw
			}
			continue
		}

		if v.IsNumber {
			if raw, err := json.Marshal(v.Number); err == nil {
				out[name] = raw
			}
		} else if v.IsString {
			if raw, err := json.Marshal(v.String); err == nil {
				out[name] = raw
			}
		}
	}

	return out
}

// parseControlPath splits "control.foo" into ("foo", 0, false), or
// "control.foo[1]" into ("foo", 1, true). Any other prefix is not a
// control path and returns an empty name.
func parseControlPath(path string) (name string, index int, indexed bool) {
	const prefix = "control."
	if !strings.HasPrefix(path, prefix) {
		return "", 0, false
	}
	rest := path[len(prefix):]
	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return rest, 0, false
	}
	close := strings.IndexByte(rest, ']')
	if close < open {
		return rest[:open], 0, false
	}
	idx, err := strconv.Atoi(rest[open+1 : close])
	if err != nil {
		return rest[:open], 0, false
	}
	return rest[:open], idx, true
}

// decodeControlArray reads a control value back as a float64 slice,
// tolerating a bare scalar (treated as a length-1 array).
func decodeControlArray(raw json.RawMessage) []float64 {
	if len(raw) == 0 {
		return nil
	}
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}
	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return []float64{scalar}
	}
	return nil
}
