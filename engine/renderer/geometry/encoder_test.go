package geometry

import (
	"encoding/binary"
	"encoding/json"
	stdmath "math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode walks buf with the record layout of records and returns the values
// found at each f32 slot.
func decode(t *testing.T, buf []byte, records [][][]float64) [][]float32 {
	t.Helper()
	out := make([][]float32, len(records))
	offset := 0
	for i, record := range records {
		for _, item := range record {
			for range item {
				require.LessOrEqual(t, offset+4, len(buf))
				out[i] = append(out[i], stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[offset:])))
				offset += 4
			}
		}
		if rem := offset % Alignment; rem != 0 {
			offset += Alignment - rem
		}
	}
	return out
}

func toTree(records [][][]float64) interface{} {
	tree := make([]interface{}, len(records))
	for i, record := range records {
		items := make([]interface{}, len(record))
		for j, item := range record {
			values := make([]interface{}, len(item))
			for k, v := range item {
				values[k] = v
			}
			items[j] = values
		}
		tree[i] = items
	}
	return tree
}

func TestEncodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 200; run++ {
		records := make([][][]float64, 1+rng.Intn(4))
		for i := range records {
			records[i] = make([][]float64, 1+rng.Intn(5))
			for j := range records[i] {
				records[i][j] = make([]float64, 1+rng.Intn(3))
				for k := range records[i][j] {
					records[i][j][k] = rng.NormFloat64() * 100
				}
			}
		}

		buf := Encode(toTree(records))
		require.Zero(t, len(buf)%Alignment, "length %d", len(buf))

		got := decode(t, buf, records)
		for i, record := range records {
			var want []float32
			for _, item := range record {
				for _, v := range item {
					want = append(want, float32(v))
				}
			}
			assert.Equal(t, want, got[i])
		}
	}
}

func TestEncodeRecordPadding(t *testing.T) {
	// One f32 in the first record, so the second starts at byte 8.
	buf := Encode(toTree([][][]float64{{{1}}, {{2, 3}}}))
	require.Len(t, buf, 16)
	assert.Equal(t, float32(1), stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[4:8])
	assert.Equal(t, float32(2), stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[8:])))
	assert.Equal(t, float32(3), stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[12:])))
}

func TestEncodePlaceholder(t *testing.T) {
	for name, tree := range map[string]interface{}{
		"number": 42.0,
		"string": "points",
		"object": map[string]interface{}{"a": []interface{}{1.0}},
		"null":   nil,
		"empty":  []interface{}{},
		"hollow": []interface{}{[]interface{}{}, []interface{}{[]interface{}{}}},
		"words":  []interface{}{[]interface{}{[]interface{}{"x", true}}},
	} {
		buf := Encode(tree)
		assert.Equal(t, make([]byte, PlaceholderSize), buf, name)
	}
}

func TestEncodeSkipsMalformedItems(t *testing.T) {
	tree := []interface{}{
		"not a record",
		[]interface{}{
			7.0,
			[]interface{}{1.0, "x", 2.0},
		},
	}
	buf := Encode(tree)
	require.Len(t, buf, 8)
	assert.Equal(t, float32(1), stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(2), stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[4:])))
}

func TestEncodeJSONNumbers(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`[[[0.5, -1.25], [3, 4]]]`))
	dec.UseNumber()
	var tree interface{}
	require.NoError(t, dec.Decode(&tree))

	buf := Encode(tree)
	require.Len(t, buf, 16)
	for i, want := range []float32{0.5, -1.25, 3, 4} {
		assert.Equal(t, want, stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
	}
}
