// Package shader loads precompiled SPIR-V binaries.
package shader

import (
	"os"

	"github.com/cockroachdb/errors"
)

// ErrMisaligned is returned for binaries whose length is not a whole number of words
var ErrMisaligned = errors.New("SPIR-V binary size should be divisible by 4")

// Decode packs little-endian bytes into 32-bit SPIR-V words
func Decode(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, errors.Wrapf(ErrMisaligned, "got %d bytes", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode, nil
}

// Encode is the inverse of Decode
func Encode(words []uint32) []byte {
	b := make([]byte, len(words)*4)
	for i, word := range words {
		b[i*4] = byte(word)
		b[i*4+1] = byte(word >> 8)
		b[i*4+2] = byte(word >> 16)
		b[i*4+3] = byte(word >> 24)
	}
	return b
}

// Load reads and decodes the shader binary at path
func Load(path string) ([]uint32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read shader %s", path)
	}

	words, err := Decode(b)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", path)
	}
	return words, nil
}
