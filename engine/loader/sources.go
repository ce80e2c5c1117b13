package loader

import "fmt"

// VideoSource decodes a single video resource on demand, keeping its own
// decode cursor and backing codec state (spec §1: "Video decode source
// (provides frame_at(seconds) -> RGB raster and duration)"). Engine
// holds one VideoSource per video-backed sequence and calls FrameAt at
// most once per visible frame (spec §5: video decoder thread).
type VideoSource interface {
	// FrameAt decodes the frame nearest seconds on the source's own
	// timeline, returning row-major RGB8 pixels and the frame's actual
	// width/height — which may differ from the render resolution;
	// Renderer.UpdateVerticeBuffer reconciles the two.
	FrameAt(seconds float64) (pixels []byte, width, height int, err error)

	// Duration retrieves the source's total playable length, in seconds.
	Duration() float64

	// Close releases the underlying decoder.
	Close() error
}

// ImageSource decodes a single still-image resource once and serves its
// raster on demand (spec §1: "Image decode source (provides raster and
// intrinsic size)").
type ImageSource interface {
	// Raster retrieves the decoded RGBA8 pixel data and the image's intrinsic width/height.
	Raster() (pixels []byte, width, height int, err error)
}

// GlyphRasterizer renders a styled string to a rectangular RGBA texture
// (spec §1: "Glyph rasteriser (provides a rectangular RGBA texture for a
// styled string)"), used by "text"-track sequences.
type GlyphRasterizer interface {
	// Rasterize renders text using fontPath at fontSize/color, with an
	// optional stroke, to a tightly-fit RGBA8 raster.
	Rasterize(text, fontPath string, fontSize float64, color [4]float32, strokeEnabled bool, strokeWidth float64, strokeColor [4]float32) (pixels []byte, width, height int, err error)
}

// EncoderSink accepts finished RGB frames via a bounded queue and
// flushes/finalises the MP4 container on Close (spec §1: "Video encoder
// sink (accepts RGB frames via a bounded queue, flushes on close)";
// spec §5 encoder worker thread).
type EncoderSink interface {
	// Push enqueues one frame's RGB8 pixels for encoding. Returns
	// EncoderQueueFull if the bounded queue is saturated (spec §7: the
	// frame is dropped, rendering continues) or EncoderFatal if the
	// encoder has already failed permanently.
	Push(pixels []byte) error

	// Close flushes any buffered frames, finalises the container, and releases the encoder. Idempotent.
	Close() error
}

// ResourceLoadError reports a failure to open or decode a single
// sequence's backing resource — video, image, or font (spec §7). The
// owning sequence is dropped from the frame; rendering continues.
type ResourceLoadError struct {
	SequenceID string
	Path       string
	Reason     string
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("resource load error: sequence %q path %q: %s", e.SequenceID, e.Path, e.Reason)
}

// EncoderQueueFull reports that EncoderSink.Push dropped a frame because
// its bounded queue was saturated (spec §7). Rendering continues; the
// frame is simply absent from the output.
type EncoderQueueFull struct {
	Reason string
}

func (e *EncoderQueueFull) Error() string {
	return fmt.Sprintf("encoder queue full: %s", e.Reason)
}

// EncoderFatal reports that the encoder worker's codec API has failed
// irrecoverably (spec §7). Any subsequent Push fails; the main loop
// finishes its current pass then exits.
type EncoderFatal struct {
	Reason string
}

func (e *EncoderFatal) Error() string {
	return fmt.Sprintf("encoder fatal: %s", e.Reason)
}
