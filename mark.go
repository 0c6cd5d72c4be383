package watermark

import (
	"context"
	"time"

	"github.com/yyyoichi/aethertag/internal/ledger"
	"github.com/yyyoichi/aethertag/internal/quality"
	"github.com/yyyoichi/aethertag/payload"
)

var _ Ledger = (*ledger.DB)(nil)

// Ledger stores issued payloads.
type Ledger interface {
	Record(ctx context.Context, e ledger.Entry) error
	Lookup(ctx context.Context, id string) (ledger.Entry, error)
	ByFingerprint(ctx context.Context, fingerprint string) ([]ledger.Entry, error)
}

// Protected is the result of Protect.
type Protected struct {
	// Image is the lossless PNG carrying the watermark.
	Image       []byte
	Fingerprint string
	// ID is the generated payload id. Empty for client payloads.
	ID string
	// Signature identifies the payload: the id, or the client signature.
	Signature string
	// Text is the payload text inside the frame.
	Text string
	// Width and Height are the carrier image dimensions.
	Width, Height int
	// Bits is the length of the embedded bitstream.
	Bits    int
	Quality quality.Report
}

// Detection is the result of Detect. A missing watermark is a normal
// result with Detected false.
type Detection struct {
	Detected bool
	// Raw is the text found between the frame delimiters.
	Raw     string
	Payload payload.Decoded
	// FilenameVerified reports whether the file name carries ProtectedMarker.
	// It corroborates a detection and never replaces one.
	FilenameVerified bool
	// Registered is set when the configured ledger knows the payload id.
	Registered bool
	// Related lists the other payload ids the ledger issued for the same
	// fingerprint, newest first.
	Related []string
}

func (d *Detection) Signature() string {
	if !d.Detected {
		return ""
	}
	return d.Payload.Signature()
}

func (d *Detection) Timestamp() (time.Time, bool) {
	if !d.Detected {
		return time.Time{}, false
	}
	return d.Payload.Time()
}

// Meta returns the caller metadata of a structured payload.
func (d *Detection) Meta() string {
	if !d.Detected || d.Payload.Kind != payload.Structured {
		return ""
	}
	return d.Payload.Record.Meta
}
