// Package keyframe implements piecewise interpolation over an
// offset-sorted list of keyframes, driving the timeline's adjust/resource/
// control animation paths (spec §4.7).
package keyframe

import (
	"github.com/cunzhuang123/compositor/common"
)

// Keyframe is one entry in an offset-sorted animation list. Value holds
// either a number (scalar keyframe) or a "#RRGGBB[AA]" string (color
// keyframe); Type mirrors the JSON document's declared value type but is
// not itself consulted by ValueAt (the engine infers number-vs-color from
// the value shape, exactly like the original).
type Keyframe struct {
	OffsetMS float64
	Value    Value
	Type     string
}

// Value is a tagged keyframe payload: either a float64 number or a hex
// color string. Exactly one of IsNumber/IsString is true for a populated
// Value.
type Value struct {
	Number    float64
	IsNumber  bool
	String    string
	IsString  bool
}

// NumberValue constructs a numeric Value.
func NumberValue(v float64) Value { return Value{Number: v, IsNumber: true} }

// StringValue constructs a string Value (typically a hex color).
func StringValue(v string) Value { return Value{String: v, IsString: true} }

// Engine evaluates keyframe lists. It holds no state; it is a thin,
// stateless namespace kept as its own concrete type (there is no
// interface in front of it).
type Engine struct{}

// NewEngine constructs a keyframe Engine.
func NewEngine() *Engine { return &Engine{} }

// ValueAt returns the interpolated value of list at global time t
// (milliseconds), per spec §4.7:
//
//   - an empty list (after skipping malformed entries) returns the zero
//     Value with ok=false.
//   - entries missing Offset/Value/Type in the source JSON are expected to
//     already have been filtered out by the caller's decode step; this
//     function assumes every entry it sees is well-formed and only
//     implements the interpolation walk itself.
//   - the first entry whose Offset is reached without a predecessor
//     returns that entry's raw value unmodified.
//   - between two entries, numeric pairs interpolate linearly; equal-length
//     hex-color pairs interpolate channel-wise; anything else returns the
//     previous entry's raw value (spec's documented fallthrough, not an
//     error).
//   - t past the last offset returns the last entry's raw value.
func (e *Engine) ValueAt(list []Keyframe, t float64) (Value, bool) {
	if len(list) == 0 {
		return Value{}, false
	}

	var prev *Keyframe
	for i := range list {
		kf := &list[i]
		if t < kf.OffsetMS {
			if prev == nil {
				return kf.Value, true
			}
			return interpolate(*prev, *kf, t), true
		}
		prev = kf
	}

	// t is >= every offset: return the last entry verbatim.
	return prev.Value, true
}

// interpolate computes the value strictly between prev and curr at time t,
// t known to satisfy prev.OffsetMS <= t < curr.OffsetMS.
func interpolate(prev, curr Keyframe, t float64) Value {
	factor := (t - prev.OffsetMS) / (curr.OffsetMS - prev.OffsetMS)

	if prev.Value.IsString && curr.Value.IsString {
		prevColor, prevOK := common.HexToRGBA(prev.Value.String)
		currColor, currOK := common.HexToRGBA(curr.Value.String)
		if prevOK && currOK {
			return StringValue(common.RGBAToHex(common.LerpRGBA(prevColor, currColor, factor)))
		}
		// Malformed hex on either side: fall through to the
		// previous-value tolerance behavior below.
	}

	if prev.Value.IsNumber && curr.Value.IsNumber {
		return NumberValue(prev.Value.Number + factor*(curr.Value.Number-prev.Value.Number))
	}

	// Type mismatch (or unparsable color): documented tolerance
	// behavior — return the previous keyframe's raw value rather than
	// erroring (spec §4.7, §9 Open Questions).
	return prev.Value
}
