package mark

import (
	"github.com/yyyoichi/bitstream-go"

	"github.com/yyyoichi/aethertag/internal/pixel"
)

var _ pixel.EmbedMark = (*Mark)(nil)

// Mark is a sequential bitstream handed to the pixel embedder.
// Bits are stored packed into uint64 words, most significant bit first.
type Mark struct {
	reader *bitstream.BitReader[uint64]
}

// NewBytes expands data into 8 bits per byte.
func NewBytes(data []byte) *Mark {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range data {
		w.Write8(0, 8, v)
	}
	return newMark(w)
}

// NewString expands the bytes of s into 8 bits per byte.
func NewString(s string) *Mark {
	return NewBytes([]byte(s))
}

// NewBools wraps an already expanded bitstream, for example one read back
// from an image.
func NewBools(bits []bool) *Mark {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range bits {
		w.WriteBool(v)
	}
	return newMark(w)
}

func newMark(w *bitstream.BitWriter[uint64]) *Mark {
	reader := bitstream.NewBitReader(w.Data(), 0, 0)
	reader.SetBits(w.Bits())
	return &Mark{reader: reader}
}

// Len returns the number of bits in the mark.
func (m *Mark) Len() int {
	return m.reader.Bits()
}

// GetBit returns the bit at position at as 0 or 1.
func (m *Mark) GetBit(at int) uint8 {
	return m.reader.Read8R(1, at)
}

// DecodeToBytes groups the bits into bytes. A trailing partial byte is dropped.
func (m *Mark) DecodeToBytes() []byte {
	out := make([]byte, m.Len()/8)
	for i := range out {
		out[i] = m.reader.Read8R(8, i)
	}
	return out
}

func (m *Mark) DecodeToString() string {
	return string(m.DecodeToBytes())
}

// Decode converts an extracted bitstream back to text. A trailing partial
// byte is dropped.
func Decode(bits []bool) string {
	return NewBools(bits).DecodeToString()
}
