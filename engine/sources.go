package engine

import "github.com/cunzhuang123/compositor/engine/loader"

// SourceFactory constructs the external per-resource collaborators a
// timeline document's sequences are backed by: opening a still image or
// video file, and rasterising styled text (spec §1 "Out of scope": video
// decode source, image decode source, glyph rasteriser). Engine depends
// on these three methods only; the embedding application supplies the
// concrete decoders (FFmpeg, a font renderer, etc).
type SourceFactory interface {
	// OpenImage opens the still image at path for decoding.
	OpenImage(path string) (loader.ImageSource, error)

	// OpenVideo opens the video file at path for frame-at-a-time decoding.
	OpenVideo(path string) (loader.VideoSource, error)

	// Glyphs retrieves the shared glyph rasteriser used by every
	// text-track sequence.
	Glyphs() loader.GlyphRasterizer
}

// EncoderFactory constructs the bounded-queue encoder sink a Play call
// drains finished frames into, sized to the document's resolution, frame
// rate, and bitrate (spec §1 "Out of scope": video encoder sink; §5
// encoder worker thread).
type EncoderFactory interface {
	// NewEncoder constructs an EncoderSink that writes an H.264 MP4 to
	// outputPath at width x height, fps frames per second, and
	// bitRateMbps megabits per second.
	NewEncoder(width, height, fps int, bitRateMbps float64, outputPath string) (loader.EncoderSink, error)
}
