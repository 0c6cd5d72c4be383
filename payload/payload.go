package payload

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yyyoichi/aethertag/frame"
)

// DefaultMeta replaces empty caller metadata.
const DefaultMeta = "{}"

var (
	ErrDelimiterInMeta = fmt.Errorf("metadata: %w", frame.ErrContainsDelimiter)
)

// Payload is the record issued by the protect service.
type Payload struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fp"`
	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64  `json:"ts"`
	Meta      string `json:"meta"`
}

// ClientPayload is the record issued by the browser client.
type ClientPayload struct {
	Signature string `json:"sig"`
	Timestamp int64  `json:"ts"`
	Meta      string `json:"meta"`
}

// Time returns the payload timestamp.
func (p Payload) Time() time.Time {
	return time.UnixMilli(p.Timestamp)
}

type Builder struct {
	now   func() time.Time
	newID func() string
}

type BuilderOption func(*Builder)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(newID func() string) BuilderOption {
	return func(b *Builder) {
		b.newID = newID
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles a Payload for the given fingerprint and metadata and
// returns it together with its canonical JSON text.
// Metadata holding a frame delimiter is refused.
func (b *Builder) Build(fingerprint, meta string) (Payload, string, error) {
	if meta == "" {
		meta = DefaultMeta
	}
	if frame.Contains(meta) {
		return Payload{}, "", ErrDelimiterInMeta
	}
	p := Payload{
		ID:          b.newID(),
		Fingerprint: fingerprint,
		Timestamp:   b.now().UnixMilli(),
		Meta:        meta,
	}
	text, err := json.Marshal(p)
	if err != nil {
		return Payload{}, "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return p, string(text), nil
}

// BuildClient assembles the client form of the payload. Empty metadata is
// kept empty.
func (b *Builder) BuildClient(signature, meta string) (ClientPayload, string, error) {
	if frame.Contains(meta) {
		return ClientPayload{}, "", ErrDelimiterInMeta
	}
	p := ClientPayload{
		Signature: signature,
		Timestamp: b.now().UnixMilli(),
		Meta:      meta,
	}
	text, err := json.Marshal(p)
	if err != nil {
		return ClientPayload{}, "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return p, string(text), nil
}
