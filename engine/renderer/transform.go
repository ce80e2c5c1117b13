package renderer

import (
	"math"

	"github.com/cunzhuang123/compositor/common"
)

// modelMatrix builds u_modelMatrix per spec §4.9:
// T(position)·R(x)·R(y)·R(−z+resourceRotation)·S(scale)·T(−anchor).
// common.BuildModelMatrix folds scale/rotation/translation into one call
// in a different order (it has no anchor term), so the chain is composed
// explicitly here via common.Mul4, one elementary matrix at a time.
func modelMatrix(posX, posY, posZ, rotX, rotY, rotZ, resourceRotation, scaleX, scaleY, anchorX, anchorY float32) [16]float32 {
	t := translateMatrix(posX, posY, posZ)
	rx := rotateXMatrix(rotX)
	ry := rotateYMatrix(rotY)
	rz := rotateZMatrix(-rotZ + resourceRotation)
	s := scaleMatrix(scaleX, scaleY, 1)
	ta := translateMatrix(-anchorX, -anchorY, 0)

	var m [16]float32
	common.Mul4(m[:], t[:], rx[:])
	common.Mul4(m[:], m[:], ry[:])
	common.Mul4(m[:], m[:], rz[:])
	common.Mul4(m[:], m[:], s[:])
	common.Mul4(m[:], m[:], ta[:])
	return m
}

func translateMatrix(x, y, z float32) [16]float32 {
	var m [16]float32
	common.Identity(m[:])
	m[12], m[13], m[14] = x, y, z
	return m
}

func scaleMatrix(x, y, z float32) [16]float32 {
	var m [16]float32
	common.Identity(m[:])
	m[0], m[5], m[10] = x, y, z
	return m
}

func rotateXMatrix(theta float32) [16]float32 {
	var m [16]float32
	common.Identity(m[:])
	c, s := float32(math.Cos(float64(theta))), float32(math.Sin(float64(theta)))
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

func rotateYMatrix(theta float32) [16]float32 {
	var m [16]float32
	common.Identity(m[:])
	c, s := float32(math.Cos(float64(theta))), float32(math.Sin(float64(theta)))
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

func rotateZMatrix(theta float32) [16]float32 {
	var m [16]float32
	common.Identity(m[:])
	c, s := float32(math.Cos(float64(theta))), float32(math.Sin(float64(theta)))
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// quadVertices builds a [pos3,uv2]x4 triangle-strip quad of half-extent
// (halfW, halfH) centred on the origin, in the same corner order as the
// shared NDC buffer (top-left uv origin): (-,-),(+,-),(-,+),(+,+).
func quadVertices(halfW, halfH float32) [20]float32 {
	return [20]float32{
		-halfW, -halfH, 0, 0, 1,
		halfW, -halfH, 0, 1, 1,
		-halfW, halfH, 0, 0, 0,
		halfW, halfH, 0, 1, 0,
	}
}
