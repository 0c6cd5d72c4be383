package watermark

import (
	"fmt"
	"log/slog"

	"github.com/yyyoichi/aethertag/internal/pixel"
	"github.com/yyyoichi/aethertag/payload"
)

type Option func(*Watermark) error

// Channel selects the carrier channel. Embed and detect must agree.
type Channel = pixel.Channel

const (
	Red   = pixel.Red
	Green = pixel.Green
	Blue  = pixel.Blue
	Alpha = pixel.Alpha
)

// WithChannel moves the carrier bits off the blue channel.
func WithChannel(ch Channel) Option {
	return func(w *Watermark) error {
		if ch < Red || ch > Alpha {
			return fmt.Errorf("%w: %d", ErrInvalidChannel, int(ch))
		}
		w.channel = ch
		return nil
	}
}

// WithMaxPixels bounds the pixel count of decoded images. Larger images
// are refused from their header. n <= 0 keeps the default.
func WithMaxPixels(n int) Option {
	return func(w *Watermark) error {
		if n > 0 {
			w.maxPixels = n
		}
		return nil
	}
}

// WithBuilder replaces the payload builder, typically to pin the clock
// and id generator.
func WithBuilder(b *payload.Builder) Option {
	return func(w *Watermark) error {
		w.builder = b
		return nil
	}
}

// WithLedger records every issued payload and lets Detect report whether
// an extracted id was issued here.
func WithLedger(l Ledger) Option {
	return func(w *Watermark) error {
		w.ledger = l
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Watermark) error {
		w.logger = logger
		return nil
	}
}
