package comm

import (
	"bytes"
	"encoding/binary"

	"github.com/gomlx/exceptions"
)

// Fixed is the set of element types that can travel in a message.
type Fixed interface {
	~float64 | ~float32 | ~int64 | ~int32 | ~uint64 | ~uint32 | ~uint8
}

// Encode packs vals little-endian with no framing.
func Encode[T Fixed](vals []T) []byte {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, vals); err != nil {
		exceptions.Panicf("encode %d values: %v", len(vals), err)
	}
	return buf.Bytes()
}

// Decode is the inverse of Encode. The buffer length must be a multiple of
// the element size.
func Decode[T Fixed](data []byte) (vals []T) {
	var (
		zero T
		size = binary.Size(zero)
	)
	if len(data)%size != 0 {
		exceptions.Panicf("decode: %d bytes is not a multiple of %d", len(data), size)
	}
	vals = make([]T, len(data)/size)
	if len(vals) == 0 {
		return
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, vals); err != nil {
		exceptions.Panicf("decode %d values: %v", len(vals), err)
	}
	return
}
