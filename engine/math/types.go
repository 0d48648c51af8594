package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

/**
 * @brief Represents a single vertex of a position-only quad.
 */
type Vertex3D struct {
	/** @brief The position of the vertex */
	Position Vec3
}

/**
 * @brief Represents a single vertex carrying a texture coordinate.
 */
type VertexUV struct {
	/** @brief The position of the vertex */
	Position Vec3
	/** @brief The texture coordinate of the vertex. */
	Texcoord Vec2
}
