package loader

import (
	"fmt"

	"github.com/cunzhuang123/compositor/common"
)

// fileImageSource is the default ImageSource: a still image read from
// disk and decoded once via common.ImportedTexture (PNG/JPEG via
// stdlib image, BMP via golang.org/x/image/bmp — the same decode path
// the teacher's model loader uses for glTF-embedded textures, spec §6
// "otherwise image").
type fileImageSource struct {
	path    string
	texture common.ImportedTexture

	decoded bool
	pixels  []byte
	width   int
	height  int
}

var _ ImageSource = &fileImageSource{}

// NewFileImageSource constructs an ImageSource reading from path,
// decoding lazily on first Raster call.
func NewFileImageSource(path string) ImageSource {
	return &fileImageSource{
		path:    path,
		texture: common.ImportedTexture{Path: path},
	}
}

func (s *fileImageSource) Raster() ([]byte, int, int, error) {
	if s.decoded {
		return s.pixels, s.width, s.height, nil
	}

	pixels, width, height, err := s.texture.Decode()
	if err != nil {
		return nil, 0, 0, &ResourceLoadError{Path: s.path, Reason: fmt.Sprintf("decode image: %v", err)}
	}

	s.pixels = pixels
	s.width = int(width)
	s.height = int(height)
	s.decoded = true
	return s.pixels, s.width, s.height, nil
}
