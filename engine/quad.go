package engine

// quadVertices builds a [pos3,uv2]x4 triangle-strip quad of half-extent
// (halfW, halfH) centred on the origin, in the same corner order as the
// shared NDC buffer (top-left uv origin): (-,-),(+,-),(-,+),(+,+). Mirrors
// renderer.quadVertices (unexported there) for the vertex buffers Engine
// allocates directly: per-resource quads and the full-screen blit quad.
func quadVertices(halfW, halfH float32) [20]float32 {
	return [20]float32{
		-halfW, -halfH, 0, 0, 1,
		halfW, -halfH, 0, 1, 1,
		-halfW, halfH, 0, 0, 0,
		halfW, halfH, 0, 1, 0,
	}
}
