package passes

import "github.com/spaghettifunk/epifaneia/engine/math"

// Both passes draw a single full-screen triangle strip.
const QuadVertexCount = 4

func sdfQuad() []math.Vertex3D {
	return []math.Vertex3D{
		{Position: math.NewVec3(-1, 1, 0)},
		{Position: math.NewVec3(-1, -1, 0)},
		{Position: math.NewVec3(1, 1, 0)},
		{Position: math.NewVec3(1, -1, 0)},
	}
}

// Texture row 0 maps to the top of the window.
func windowQuad() []math.VertexUV {
	return []math.VertexUV{
		{Position: math.NewVec3(-1, 1, 0), Texcoord: math.NewVec2(0, 0)},
		{Position: math.NewVec3(-1, -1, 0), Texcoord: math.NewVec2(0, 1)},
		{Position: math.NewVec3(1, 1, 0), Texcoord: math.NewVec2(1, 0)},
		{Position: math.NewVec3(1, -1, 0), Texcoord: math.NewVec2(1, 1)},
	}
}

func sdfQuadBytes() []byte {
	var out []byte
	for _, v := range sdfQuad() {
		out = append(out, v.Bytes()...)
	}
	return out
}

func windowQuadBytes() []byte {
	var out []byte
	for _, v := range windowQuad() {
		out = append(out, v.Bytes()...)
	}
	return out
}
