package main

import (
	"fmt"

	"github.com/cunzhuang123/compositor/engine/loader"
)

// fileSourceFactory is the default engine.SourceFactory: still images go
// through loader.NewFileImageSource's real decode path; video and text
// have no grounded decoder/rasteriser in this build (spec §1 "Out of
// scope" — an FFmpeg binding and a font-shaping library are both
// external to the render-graph core) and fail each sequence individually
// via ResourceLoadError rather than aborting the whole run.
type fileSourceFactory struct {
	glyphs loader.GlyphRasterizer
}

func newFileSourceFactory() *fileSourceFactory {
	return &fileSourceFactory{glyphs: unconfiguredGlyphRasterizer{}}
}

func (f *fileSourceFactory) OpenImage(path string) (loader.ImageSource, error) {
	return loader.NewFileImageSource(path), nil
}

func (f *fileSourceFactory) OpenVideo(path string) (loader.VideoSource, error) {
	return nil, fmt.Errorf("no video decoder configured for %q", path)
}

func (f *fileSourceFactory) Glyphs() loader.GlyphRasterizer {
	return f.glyphs
}

// unconfiguredGlyphRasterizer satisfies loader.GlyphRasterizer for
// builds with no font-shaping library wired in; every call returns an
// error, which Engine wraps in a ResourceLoadError and treats as "drop
// this sequence".
type unconfiguredGlyphRasterizer struct{}

func (unconfiguredGlyphRasterizer) Rasterize(text, fontPath string, fontSize float64, color [4]float32, strokeEnabled bool, strokeWidth float64, strokeColor [4]float32) ([]byte, int, int, error) {
	return nil, 0, 0, fmt.Errorf("no glyph rasterizer configured for font %q", fontPath)
}

// unconfiguredEncoderFactory satisfies engine.EncoderFactory for builds
// with no H.264/MP4 muxer wired in (spec §1 "Out of scope"). NewEncoder
// fails at construction time, matching original_source/cpp/Main.cpp's
// "unknown error" catch path rather than silently discarding frames.
type unconfiguredEncoderFactory struct{}

func (unconfiguredEncoderFactory) NewEncoder(width, height, fps int, bitRateMbps float64, outputPath string) (loader.EncoderSink, error) {
	return nil, fmt.Errorf("no video encoder configured for output %q", outputPath)
}
