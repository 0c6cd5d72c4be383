package pixel

import (
	"image"

	"golang.org/x/image/draw"
)

// Buffer holds an image as 4 channels per pixel in R, G, B, A order,
// non-premultiplied, one byte per channel, pixels in raster order.
type Buffer struct {
	bounds        image.Rectangle
	width, height int
	pix           []uint8
}

// NewBuffer copies src into a new Buffer. Sources without alpha become
// fully opaque.
func NewBuffer(src image.Image) *Buffer {
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return &Buffer{
		bounds: bounds,
		width:  bounds.Dx(),
		height: bounds.Dy(),
		pix:    dst.Pix,
	}
}

// Capacity is the number of bits the buffer can carry: one per pixel.
func (b *Buffer) Capacity() int {
	return b.width * b.height
}

func (b *Buffer) Width() int {
	return b.width
}

func (b *Buffer) Height() int {
	return b.height
}

// Pix exposes the channel bytes. Callers must not keep it across operations.
func (b *Buffer) Pix() []uint8 {
	return b.pix
}

func (b *Buffer) Copy() *Buffer {
	c := *b
	c.pix = make([]uint8, len(b.pix))
	_ = copy(c.pix, b.pix)
	return &c
}

// Image builds an *image.NRGBA with the bounds of the original source.
func (b *Buffer) Image() *image.NRGBA {
	dst := image.NewNRGBA(b.bounds)
	_ = copy(dst.Pix, b.pix)
	return dst
}
