package watermark

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/yyyoichi/aethertag/frame"
	"github.com/yyyoichi/aethertag/internal/imagecodec"
	"github.com/yyyoichi/aethertag/internal/ledger"
	"github.com/yyyoichi/aethertag/internal/pixel"
	"github.com/yyyoichi/aethertag/internal/quality"
	"github.com/yyyoichi/aethertag/mark"
	"github.com/yyyoichi/aethertag/payload"
)

// ProtectedMarker is the substring protected file names carry.
const ProtectedMarker = "_aether_protected"

var (
	ErrTooSmallImage  = errors.New("image is too small for the payload")
	ErrDecode         = errors.New("unsupported or corrupt image")
	ErrInvalidChannel = errors.New("invalid carrier channel")
)

// Embed frames text and writes it into a copy of src.
// This is a convenience function that creates a Watermark instance and calls its ProtectText method.
func Embed(ctx context.Context, src image.Image, text string, opts ...Option) (image.Image, error) {
	w, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return w.ProtectText(ctx, src, text)
}

// Extract returns the framed text carried by src. found is false when src
// carries no watermark.
func Extract(ctx context.Context, src image.Image, opts ...Option) (text string, found bool, err error) {
	w, err := New(opts...)
	if err != nil {
		return "", false, err
	}
	return w.extract(ctx, pixel.NewBuffer(src))
}

type Watermark struct {
	channel   Channel
	maxPixels int
	builder   *payload.Builder
	ledger    Ledger
	logger    *slog.Logger
}

// New initializes a watermark service.
// For default values, refer to the init function.
func New(opts ...Option) (*Watermark, error) {
	w := new(Watermark)
	if err := w.init(opts...); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Watermark) init(opts ...Option) error {
	w.channel = Blue
	w.maxPixels = imagecodec.DefaultMaxPixels
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return err
		}
	}
	if w.builder == nil {
		w.builder = payload.NewBuilder()
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	return nil
}

// Protect embeds a fingerprinted payload into the image encoded in original.
//
// Process:
//  1. Decodes original into a 4 channel pixel buffer.
//  2. Fingerprints the original file bytes.
//  3. Builds the payload record and wraps it in the frame delimiters.
//  4. Writes the frame bits into the carrier channel LSBs.
//  5. Encodes the result as PNG.
//
// Nothing is written when the image cannot carry the payload; the error
// then wraps ErrTooSmallImage.
func (w *Watermark) Protect(ctx context.Context, original []byte, meta string) (*Protected, error) {
	src, err := w.decode(ctx, original)
	if err != nil {
		return nil, err
	}
	fp := payload.Fingerprint(original)
	p, text, err := w.builder.Build(fp, meta)
	if err != nil {
		return nil, err
	}
	res, err := w.protect(ctx, src, text)
	if err != nil {
		return nil, err
	}
	res.Fingerprint = fp
	res.ID = p.ID
	res.Signature = p.ID

	if w.ledger != nil {
		if err := w.ledger.Record(ctx, ledger.Entry{
			ID:          p.ID,
			Fingerprint: fp,
			Timestamp:   p.Timestamp,
			Meta:        p.Meta,
			Width:       res.Width,
			Height:      res.Height,
			Bits:        res.Bits,
		}); err != nil {
			return nil, fmt.Errorf("failed to record payload: %w", err)
		}
	}
	w.logger.DebugContext(ctx, "protected image",
		"id", p.ID,
		"fingerprint", fp,
		"bits", res.Bits,
		"psnr", res.Quality.PSNR,
	)
	return res, nil
}

// ProtectClient embeds the client payload form: the "FP-" signature,
// a timestamp and meta. Client payloads carry no id and are not recorded.
func (w *Watermark) ProtectClient(ctx context.Context, original []byte, meta string) (*Protected, error) {
	src, err := w.decode(ctx, original)
	if err != nil {
		return nil, err
	}
	sig := payload.ClientSignature(original)
	_, text, err := w.builder.BuildClient(sig, meta)
	if err != nil {
		return nil, err
	}
	res, err := w.protect(ctx, src, text)
	if err != nil {
		return nil, err
	}
	res.Fingerprint = payload.Fingerprint(original)
	res.Signature = sig
	return res, nil
}

// ProtectText embeds bare text into a copy of src. src is not modified.
func (w *Watermark) ProtectText(ctx context.Context, src image.Image, text string) (image.Image, error) {
	if frame.Contains(text) {
		return nil, frame.ErrContainsDelimiter
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := pixel.NewBuffer(src)
	if err := w.embed(buf, text); err != nil {
		return nil, err
	}
	return buf.Image(), nil
}

// Detect decodes data and looks for a watermark. A decode failure, including
// an image over the pixel limit, wraps ErrDecode; an image without a
// watermark is a Detection with Detected false.
func (w *Watermark) Detect(ctx context.Context, data []byte, filename string) (*Detection, error) {
	src, err := w.decode(ctx, data)
	if err != nil {
		return nil, err
	}
	return w.DetectImage(ctx, src, filename)
}

// DetectImage looks for a watermark in an already decoded image.
//
// Process:
//  1. Reads the carrier channel LSB of every pixel.
//  2. Groups the bits into bytes and scans for the frame delimiters.
//  3. Parses the framed text as a structured record, falling back to
//     opaque text.
func (w *Watermark) DetectImage(ctx context.Context, src image.Image, filename string) (*Detection, error) {
	d := &Detection{FilenameVerified: HasProtectedMarker(filename)}
	text, found, err := w.extract(ctx, pixel.NewBuffer(src))
	if err != nil {
		return nil, err
	}
	if !found {
		w.logger.DebugContext(ctx, "no watermark", "filename", filename)
		return d, nil
	}
	d.Detected = true
	d.Raw = text
	d.Payload = payload.Parse(text)

	if w.ledger != nil {
		if err := w.lookup(ctx, d); err != nil {
			return nil, err
		}
	}
	w.logger.DebugContext(ctx, "watermark detected",
		"kind", d.Payload.Kind.String(),
		"signature", d.Signature(),
		"registered", d.Registered,
		"related", len(d.Related),
	)
	return d, nil
}

// lookup fills Registered and Related from the ledger.
func (w *Watermark) lookup(ctx context.Context, d *Detection) error {
	if id := d.Payload.Record.ID; d.Payload.Kind == payload.Structured && id != "" {
		_, err := w.ledger.Lookup(ctx, id)
		switch {
		case err == nil:
			d.Registered = true
		case !errors.Is(err, ledger.ErrNotFound):
			return fmt.Errorf("failed to look up payload: %w", err)
		}
	}
	fp := d.Payload.Fingerprint()
	if fp == "" {
		return nil
	}
	entries, err := w.ledger.ByFingerprint(ctx, fp)
	if err != nil {
		return fmt.Errorf("failed to look up fingerprint: %w", err)
	}
	for _, e := range entries {
		if e.ID != d.Payload.Record.ID {
			d.Related = append(d.Related, e.ID)
		}
	}
	return nil
}

func (w *Watermark) decode(ctx context.Context, data []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, _, err := imagecodec.Decode(data, w.maxPixels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return src, nil
}

func (w *Watermark) protect(ctx context.Context, src image.Image, text string) (*Protected, error) {
	buf := pixel.NewBuffer(src)
	original := buf.Copy()
	if err := w.embed(buf, text); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := imagecodec.EncodePNG(buf.Image())
	if err != nil {
		return nil, err
	}
	report, err := quality.Compare(original.Pix(), buf.Pix())
	if err != nil {
		return nil, err
	}
	return &Protected{
		Image:   out,
		Text:    text,
		Width:   buf.Width(),
		Height:  buf.Height(),
		Bits:    (len(text) + frame.Overhead()) * 8,
		Quality: report,
	}, nil
}

func (w *Watermark) embed(buf *pixel.Buffer, text string) error {
	m := mark.NewString(frame.Wrap(text))
	if err := pixel.Embed(buf, m, pixel.WithChannel(w.channel)); err != nil {
		return fmt.Errorf("%w: %w", ErrTooSmallImage, err)
	}
	return nil
}

func (w *Watermark) extract(ctx context.Context, buf *pixel.Buffer) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	bits := pixel.Extract(buf, pixel.WithChannel(w.channel))
	text, err := frame.Unwrap(mark.Decode(bits))
	if errors.Is(err, frame.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// HasProtectedMarker reports whether filename carries ProtectedMarker.
func HasProtectedMarker(filename string) bool {
	return strings.Contains(filename, ProtectedMarker)
}

// ProtectedName derives the download name of a protected copy:
// the original base name, ProtectedMarker and a .png extension.
func ProtectedName(original string) string {
	base := filepath.Base(original)
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ProtectedMarker + ".png"
}
