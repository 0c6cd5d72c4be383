package payload

import (
	"encoding/json"
	"strings"
	"time"
)

// Kind tags the variant held by Decoded.
type Kind int

const (
	// Opaque text that is not a structured record.
	Opaque Kind = iota
	// Structured is a JSON record carrying id, fp or sig.
	Structured
)

func (k Kind) String() string {
	if k == Structured {
		return "structured"
	}
	return "opaque"
}

// Record holds the fields found in a structured payload. Both the server
// form (id, fp) and the client form (sig) decode into it.
type Record struct {
	ID           string
	Fingerprint  string
	Signature    string
	Timestamp    int64
	HasTimestamp bool
	Meta         string
}

// Decoded is the result of Parse: either a Structured record or Opaque text.
type Decoded struct {
	Kind   Kind
	Record Record
	// Text is the extracted payload text as found in the image.
	Text string
}

type wireRecord struct {
	ID          *string         `json:"id"`
	Fingerprint *string         `json:"fp"`
	Signature   *string         `json:"sig"`
	Timestamp   *int64          `json:"ts"`
	Meta        json.RawMessage `json:"meta"`
}

// Parse tries a structured decode first and falls back to Opaque.
// A structured payload is a JSON object carrying at least one of id, fp
// or sig.
func Parse(text string) Decoded {
	d := Decoded{Kind: Opaque, Text: text}

	var w wireRecord
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return d
	}
	if w.ID == nil && w.Fingerprint == nil && w.Signature == nil {
		return d
	}

	d.Kind = Structured
	d.Record.ID = deref(w.ID)
	d.Record.Fingerprint = deref(w.Fingerprint)
	d.Record.Signature = deref(w.Signature)
	if w.Timestamp != nil {
		d.Record.Timestamp = *w.Timestamp
		d.Record.HasTimestamp = true
	}
	if len(w.Meta) > 0 {
		var s string
		if err := json.Unmarshal(w.Meta, &s); err == nil {
			d.Record.Meta = s
		} else {
			d.Record.Meta = string(w.Meta)
		}
	}
	return d
}

// Signature prefers sig, then id, then the opaque text.
func (d Decoded) Signature() string {
	if d.Kind == Opaque {
		return d.Text
	}
	if d.Record.Signature != "" {
		return d.Record.Signature
	}
	return d.Record.ID
}

// Fingerprint returns the fingerprint a structured payload carries, either
// as fp or inside a client signature. Empty when there is none.
func (d Decoded) Fingerprint() string {
	if d.Kind != Structured {
		return ""
	}
	if d.Record.Fingerprint != "" {
		return d.Record.Fingerprint
	}
	if fp, ok := strings.CutPrefix(d.Record.Signature, clientSignaturePrefix); ok && len(fp) == FingerprintLen {
		return strings.ToLower(fp)
	}
	return ""
}

// Time returns the embedded timestamp when the payload carries one.
func (d Decoded) Time() (time.Time, bool) {
	if d.Kind != Structured || !d.Record.HasTimestamp {
		return time.Time{}, false
	}
	return time.UnixMilli(d.Record.Timestamp), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
