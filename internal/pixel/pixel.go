package pixel

import (
	"errors"
	"fmt"
)

var (
	ErrCapacity = errors.New("bitstream exceeds image capacity")
)

type EmbedMark interface {
	GetBit(at int) uint8
	Len() int
}

// Enable reports whether buf can carry markLen bits.
func Enable(buf *Buffer, markLen int) error {
	if total := buf.Capacity(); total < markLen {
		return fmt.Errorf("%w: %d pixels < %d bits", ErrCapacity, total, markLen)
	}
	return nil
}

// Embed writes bit i of mark into the least significant bit of the carrier
// channel of pixel i. Every other byte is left untouched. Nothing is
// written when the mark does not fit.
func Embed(buf *Buffer, mark EmbedMark, opts ...Option) error {
	markLen := mark.Len()
	if err := Enable(buf, markLen); err != nil {
		return err
	}
	ch := int(newConfig(opts...).channel)
	for i := range markLen {
		at := i*4 + ch
		buf.pix[at] = buf.pix[at]&^1 | mark.GetBit(i)&1
	}
	return nil
}

// Extract reads the carrier channel LSB of every pixel in raster order.
func Extract(buf *Buffer, opts ...Option) []bool {
	ch := int(newConfig(opts...).channel)
	bits := make([]bool, buf.Capacity())
	for i := range bits {
		bits[i] = buf.pix[i*4+ch]&1 == 1
	}
	return bits
}
