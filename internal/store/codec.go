package store

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Vector artifact layout: dimensions (uint32 LE), count (uint32 LE), then
// count*dimensions float32 values in little-endian order.

// EncodeVectors serializes vectors. All vectors must share one dimension.
func EncodeVectors(vectors [][]float32) ([]byte, error) {
	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	out := make([]byte, 8, 8+len(vectors)*dims*4)
	binary.LittleEndian.PutUint32(out[0:4], uint32(dims))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(vectors)))
	for i, vec := range vectors {
		if len(vec) != dims {
			return nil, fmt.Errorf("vector %d has %d dimensions, expected %d", i, len(vec), dims)
		}
		out = append(out, float32SliceToBytes(vec)...)
	}
	return out, nil
}

// DecodeVectors deserializes a vector artifact.
func DecodeVectors(data []byte) ([][]float32, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("vector data too short: %d bytes", len(data))
	}
	dims := int(binary.LittleEndian.Uint32(data[0:4]))
	count := int(binary.LittleEndian.Uint32(data[4:8]))
	body := data[8:]
	if len(body) != count*dims*4 {
		return nil, fmt.Errorf("vector data has %d bytes, expected %d", len(body), count*dims*4)
	}
	vectors := make([][]float32, count)
	for i := 0; i < count; i++ {
		vectors[i] = bytesToFloat32Slice(body[i*dims*4 : (i+1)*dims*4])
	}
	return vectors, nil
}

func float32SliceToBytes(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:(i+1)*4], math.Float32bits(f))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : (i+1)*4]))
	}
	return out
}
