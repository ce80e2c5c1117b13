// Package timeline decodes the JSON timeline document (tracks of sequences,
// each backed by a graphic/text/plugin resource, with keyframed adjustments
// and optional transitions) into the in-memory types the engine walks every
// call to UpdateTracks.
package timeline

import (
	"encoding/json"
	"fmt"

	"github.com/cunzhuang123/compositor/engine/keyframe"
)

// TrackType distinguishes how a track's sequences are rendered.
type TrackType string

const (
	TrackGraphic TrackType = "graphic"
	TrackText    TrackType = "text"
	TrackPlugin  TrackType = "plugin"
)

// Document is the top-level input: one render job.
type Document struct {
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	FPS               int     `json:"fps"`
	BitRateMbps       float64 `json:"mBitRate"`
	GlobalRenderScale float64 `json:"globalRenderScale"`
	StartTime         float64 `json:"startTime"`
	EndTime           float64 `json:"endTime"`
	StepTime          float64 `json:"stepTime"`
	OutputPath        string  `json:"outputPath"`
	IsDebug           bool    `json:"isDebug"`
	Tracks            []Track `json:"tracks"`
	MaterialData      struct {
		MaterialPasses map[string]json.RawMessage `json:"materialPasses"`
		Shaders        map[string]string          `json:"shaders"`
	} `json:"materialData"`
}

// ParseDocument decodes and minimally validates the top-level input
// document; malformed JSON or a missing required field is an
// InputParseError (fatal at startup per spec §7).
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &InputParseError{Reason: err.Error()}
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, &InputParseError{Reason: "width and height must be positive"}
	}
	if doc.FPS <= 0 {
		return nil, &InputParseError{Reason: "fps must be positive"}
	}
	if doc.OutputPath == "" {
		return nil, &InputParseError{Reason: "outputPath is required"}
	}
	if doc.GlobalRenderScale == 0 {
		doc.GlobalRenderScale = 1.0
	}
	return &doc, nil
}

// InputParseError reports a malformed or incomplete input document.
type InputParseError struct {
	Reason string
}

func (e *InputParseError) Error() string {
	return fmt.Sprintf("input parse error: %s", e.Reason)
}

// Track is one layer of the timeline: an ordered list of Sequences of a
// single TrackType, independently toggled visible/hidden.
type Track struct {
	ID        string     `json:"id"`
	Type      TrackType  `json:"type"`
	Visible   bool       `json:"visible"`
	Sequences []Sequence `json:"sequences"`
}

// Timer carries a Sequence's placement and trim on the global timeline
// (spec §4.8 TrackTiming); all time fields are milliseconds, rate/start
// are ratios.
type Timer struct {
	OffsetMS         float64 `json:"offset"`
	Duration         float64 `json:"duration"`
	OriginalDuration float64 `json:"originalDuration"`
	Rate             float64 `json:"rate"`
	Start            float64 `json:"start"`
}

// Vec2 is a small {x,y} pair used by Adjust's transform and scale fields.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Adjust holds a Sequence's static (pre-keyframe) transform state.
type Adjust struct {
	Transform Vec2    `json:"transform"`
	Rotate    float64 `json:"rotate"`
	Scale     Vec2    `json:"scale"`
	Opacity   float64 `json:"opacity"`
}

// Resource is a Sequence's content: a graphic (image or video) by
// AbsolutePath, or text fields, depending on the owning Track's type. A
// plugin-type Sequence carries no Resource fields at all.
type Resource struct {
	AbsolutePath  string  `json:"absolutePath"`
	Text          string  `json:"text"`
	FontSize      float64 `json:"fontSize"`
	Color         string  `json:"color"`
	StrokeEnabled bool    `json:"strokeEnabled"`
	StrokeWidth   float64 `json:"strokeWidth"`
	StrokeColor   string  `json:"strokeColor"`
}

// videoExtensions lists the resource.absolutePath suffixes that select the
// video decode path rather than the still-image path (spec §6 Sequence).
var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".flv": true,
	".wmv": true, ".mpeg": true, ".mpg": true, ".m4v": true, ".3gp": true,
	".webm": true,
}

// IsVideo reports whether r's absolute path extension selects the video
// decode path (spec §6: "extension-based video/image split").
func (r Resource) IsVideo() bool {
	ext := lowerExt(r.AbsolutePath)
	return videoExtensions[ext]
}

func lowerExt(path string) string {
	dot := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			dot = i
			break
		}
		if path[i] == '/' || path[i] == '\\' {
			break
		}
	}
	if dot < 0 {
		return ""
	}
	out := make([]byte, len(path)-dot)
	for i, c := range []byte(path[dot:]) {
		if c >= 'A' && c <= 'Z' {
			c = c - 'A' + 'a'
		}
		out[i] = c
	}
	return string(out)
}

// Plugin is one effect stage attached to a Sequence: a control map
// (constants and/or expressions evaluated by ParamEvaluator) and optional
// per-control-path keyframes.
type Plugin struct {
	ID       string                     `json:"id"`
	Control  map[string]json.RawMessage `json:"control"`
	Keyframe map[string][]KeyframeEntry `json:"keyframe"`
}

// Transition attaches a cross-fade (or other) effect spanning the boundary
// between this Sequence and the next one on the same track.
type Transition struct {
	ID       string  `json:"id"`
	Duration float64 `json:"duration"`
}

// KeyframeEntry is one {offset, value, type} record as it appears in the
// JSON keyframe arrays. A malformed entry (missing offset, value, or type)
// is silently skipped during decode, matching the original engine's
// getKeyframeValue behaviour of ignoring incomplete records rather than
// failing the whole list.
type KeyframeEntry struct {
	OffsetMS float64
	Value    keyframe.Value
	Type     string
	ok       bool
}

// UnmarshalJSON decodes one keyframe record, marking it invalid (and thus
// droppable by DecodeKeyframeList) rather than erroring when a required
// field is absent.
func (k *KeyframeEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Offset *float64        `json:"offset"`
		Value  json.RawMessage `json:"value"`
		Type   *string         `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil // malformed entry: leave k zero-valued/invalid
	}
	if raw.Offset == nil || raw.Value == nil || raw.Type == nil {
		return nil
	}
	var asNumber float64
	if err := json.Unmarshal(raw.Value, &asNumber); err == nil {
		k.Value = keyframe.NumberValue(asNumber)
	} else {
		var asString string
		if err := json.Unmarshal(raw.Value, &asString); err != nil {
			return nil
		}
		k.Value = keyframe.StringValue(asString)
	}
	k.OffsetMS = *raw.Offset
	k.Type = *raw.Type
	k.ok = true
	return nil
}

// DecodeKeyframeList converts decoded JSON entries into a keyframe.Keyframe
// slice, dropping any entry that failed to decode a required field.
func DecodeKeyframeList(entries []KeyframeEntry) []keyframe.Keyframe {
	out := make([]keyframe.Keyframe, 0, len(entries))
	for _, e := range entries {
		if !e.ok {
			continue
		}
		out = append(out, keyframe.Keyframe{OffsetMS: e.OffsetMS, Value: e.Value, Type: e.Type})
	}
	return out
}

// Sequence is one timed element on a Track: its placement (Timer), static
// adjustment state (Adjust), content (Resource), and optional plugin chain,
// transition, and keyframe tracks.
type Sequence struct {
	ID         string                     `json:"id"`
	Type       string                     `json:"type"`
	Timer      Timer                      `json:"timer"`
	Adjust     Adjust                     `json:"adjust"`
	Resource   Resource                   `json:"resource"`
	Plugins    []Plugin                   `json:"plugins"`
	Transition *Transition                `json:"transition"`
	Keyframe   map[string][]KeyframeEntry `json:"keyframe"`
}

// KeyframesFor returns the decoded keyframe list for a dotted path
// (e.g. "adjust.transform.x", "control.foo[1]"), or nil if none exists.
func (s Sequence) KeyframesFor(path string) []keyframe.Keyframe {
	entries, ok := s.Keyframe[path]
	if !ok {
		return nil
	}
	return DecodeKeyframeList(entries)
}
