package vectorindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Binary index layout, all integers little-endian:
//
//	magic "CHAI" (4 bytes)
//	version uint16
//	modelLen uint16, model bytes
//	dim uint32
//	count uint32
//	count*dim float32 vector values, row-major
const (
	indexMagic   = "CHAI"
	indexVersion = 1
)

var errCorruptIndex = errors.New("corrupt index file")

type indexFile struct {
	Model   string
	Dim     int
	Vectors [][]float32
}

func encodeIndex(f *indexFile) ([]byte, error) {
	if len(f.Model) > math.MaxUint16 {
		return nil, fmt.Errorf("model name too long: %d bytes", len(f.Model))
	}
	for i, vec := range f.Vectors {
		if len(vec) != f.Dim {
			return nil, fmt.Errorf("vector %d has dimension %d, index dimension is %d", i, len(vec), f.Dim)
		}
	}

	size := 4 + 2 + 2 + len(f.Model) + 4 + 4 + len(f.Vectors)*f.Dim*4
	out := make([]byte, 0, size)

	out = append(out, indexMagic...)
	out = binary.LittleEndian.AppendUint16(out, indexVersion)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(f.Model)))
	out = append(out, f.Model...)
	out = binary.LittleEndian.AppendUint32(out, uint32(f.Dim))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(f.Vectors)))
	for _, vec := range f.Vectors {
		for _, v := range vec {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	}
	return out, nil
}

func decodeIndex(data []byte) (*indexFile, error) {
	off := 0
	need := func(n int) error {
		if off+n > len(data) {
			return errCorruptIndex
		}
		return nil
	}

	if err := need(8); err != nil {
		return nil, err
	}
	if string(data[0:4]) != indexMagic {
		return nil, errCorruptIndex
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != indexVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errCorruptIndex, version)
	}
	modelLen := int(binary.LittleEndian.Uint16(data[6:8]))
	off = 8

	if err := need(modelLen + 8); err != nil {
		return nil, err
	}
	model := string(data[off : off+modelLen])
	off += modelLen
	dim := int(binary.LittleEndian.Uint32(data[off : off+4]))
	count := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
	off += 8

	if count > 0 && dim <= 0 {
		return nil, errCorruptIndex
	}
	// Sized in uint64: count*dim*4 can wrap a 32-bit int before the
	// payload-length comparison
	payload := uint64(count) * uint64(dim) * 4
	if payload != uint64(len(data)-off) {
		return nil, errCorruptIndex
	}

	vectors := make([][]float32, count)
	for i := 0; i < count; i++ {
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		vectors[i] = vec
	}

	return &indexFile{Model: model, Dim: dim, Vectors: vectors}, nil
}
