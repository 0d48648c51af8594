// Package geometry packs the point data of an input document into the
// uniform buffer bound at slot 0 of the SDF pipeline.
package geometry

import (
	"encoding/binary"
	"encoding/json"
	stdmath "math"

	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

const (
	// Alignment is applied after every record and to the whole buffer.
	Alignment = 8
	// PlaceholderSize is the length of the zero buffer used when there is
	// no usable geometry.
	PlaceholderSize = 64
)

// Placeholder returns the zero-filled buffer used when there is no geometry.
func Placeholder() []byte {
	return make([]byte, PlaceholderSize)
}

// Encode flattens a value tree of records (arrays of arrays of numbers)
// into little-endian f32 values. Each record is padded to Alignment bytes.
// Inner items that are not arrays and leaves that are not numbers are
// skipped. When the tree is not an array, or nothing is emitted, the
// result is Placeholder().
func Encode(tree interface{}) []byte {
	records, ok := tree.([]interface{})
	if !ok {
		return Placeholder()
	}

	var buf []byte
	for _, record := range records {
		items, ok := record.([]interface{})
		if !ok {
			continue
		}
		for _, item := range items {
			values, ok := item.([]interface{})
			if !ok {
				continue
			}
			for _, v := range values {
				f, ok := toFloat32(v)
				if !ok {
					continue
				}
				buf = binary.LittleEndian.AppendUint32(buf, stdmath.Float32bits(f))
			}
		}
		buf = pad(buf)
	}
	buf = pad(buf)

	if len(buf) == 0 {
		return Placeholder()
	}
	return buf
}

func pad(buf []byte) []byte {
	aligned := metadata.GetAligned(uint64(len(buf)), Alignment)
	return append(buf, make([]byte, aligned-uint64(len(buf)))...)
}

func toFloat32(v interface{}) (float32, bool) {
	switch n := v.(type) {
	case float64:
		return float32(n), true
	case float32:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return float32(f), true
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	case uint64:
		return float32(n), true
	default:
		return 0, false
	}
}
