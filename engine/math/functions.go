package math

import (
	"encoding/binary"
	stdmath "math"
)

// Vector 2
// ------------------------------------------

/**
 * @brief Creates and returns a new 2-element vector using the supplied values.
 */
func NewVec2(x, y float32) Vec2 {
	return Vec2{
		X: x,
		Y: y,
	}
}

/**
 * @brief Creates and returns a 2-component vector with all components set to 0.0f.
 */
func NewVec2Zero() Vec2 {
	return Vec2{X: 0.0, Y: 0.0}
}

/**
 *  Adds other to v and returns a copy of the result.
 */
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

/**
 * Subtracts other from v and returns a copy of the result.
 */
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Bytes packs the vector as two little-endian f32 values (a WGSL vec2<f32>).
func (v Vec2) Bytes() []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint32(out[0:], stdmath.Float32bits(v.X))
	binary.LittleEndian.PutUint32(out[4:], stdmath.Float32bits(v.Y))
	return out
}

// Vector 3
// ------------------------------------------

/**
 * @brief Creates and returns a new 3-element vector using the supplied values.
 */
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{
		X: x,
		Y: y,
		Z: z,
	}
}

// Bytes packs the vector as three little-endian f32 values.
func (v Vec3) Bytes() []byte {
	out := make([]byte, 12)
	binary.LittleEndian.PutUint32(out[0:], stdmath.Float32bits(v.X))
	binary.LittleEndian.PutUint32(out[4:], stdmath.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(out[8:], stdmath.Float32bits(v.Z))
	return out
}

// Vertices
// ------------------------------------------

// Bytes packs the vertex the way a vec3<f32> vertex attribute reads it.
func (v Vertex3D) Bytes() []byte {
	return v.Position.Bytes()
}

// Bytes packs position then texture coordinate, 20 bytes per vertex.
func (v VertexUV) Bytes() []byte {
	return append(v.Position.Bytes(), v.Texcoord.Bytes()...)
}

// Float32Bytes packs a scalar the way a WGSL f32 uniform reads it.
func Float32Bytes(f float32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, stdmath.Float32bits(f))
	return out
}
