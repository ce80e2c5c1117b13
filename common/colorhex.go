package common

import (
	"fmt"
	"strconv"
	"strings"
)

// HexToRGBA parses a "#RRGGBB" or "#RRGGBBAA" string into normalised
// [0,1] RGBA channels. The alpha channel defaults to 1.0 (0xFF) when the
// string is 6 digits. The leading '#' is optional. Returns false unless
// the rest of the string is exactly 6 or 8 hex digits.
func HexToRGBA(hex string) ([4]float32, bool) {
	var out [4]float32
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 && len(s) != 8 {
		return out, false
	}
	channel := func(i int) (float32, bool) {
		v, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			return 0, false
		}
		return float32(v) / 255.0, true
	}
	r, ok := channel(0)
	if !ok {
		return out, false
	}
	g, ok := channel(2)
	if !ok {
		return out, false
	}
	b, ok := channel(4)
	if !ok {
		return out, false
	}
	a := float32(1.0)
	if len(s) == 8 {
		a, ok = channel(6)
		if !ok {
			return out, false
		}
	}
	return [4]float32{r, g, b, a}, true
}

// RGBAToHex re-encodes normalised [0,1] RGBA channels as a "#RRGGBBAA"
// string. Values outside [0,1] are clamped.
func RGBAToHex(c [4]float32) string {
	clamp := func(v float32) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(v*255.0 + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", clamp(c[0]), clamp(c[1]), clamp(c[2]), clamp(c[3]))
}

// LerpRGBA linearly interpolates two RGBA colors channel-wise.
func LerpRGBA(a, b [4]float32, factor float64) [4]float32 {
	var out [4]float32
	for i := range out {
		out[i] = a[i] + float32(factor)*(b[i]-a[i])
	}
	return out
}
