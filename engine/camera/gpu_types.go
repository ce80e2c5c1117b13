package camera

import (
	"encoding/binary"
	"math"
)

// GPUCameraUniform is the GPU-aligned representation of the camera
// uniform buffer: the view and projection matrices every Pass binds as
// u_viewMatrix/u_projectionMatrix (spec §4.2). 128 bytes, two mat4x4s
// back to back.
type GPUCameraUniform struct {
	View       [16]float32
	Projection [16]float32
}

// Size returns the size of the GPUCameraUniform struct in bytes.
func (g *GPUCameraUniform) Size() int {
	return 128
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.View[i]))
	}
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Projection[i]))
	}
	return buf
}
