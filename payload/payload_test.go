package payload

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yyyoichi/aethertag/frame"
)

func TestFingerprint(t *testing.T) {
	t.Run("known digest", func(t *testing.T) {
		// sha256("") = e3b0c44298fc1c149afbf4c8996fb924...
		assert.Equal(t, "e3b0c44298fc1c14", Fingerprint(nil))
		assert.Equal(t, "e3b0c44298fc1c14", Fingerprint([]byte{}))
		// sha256("abc") = ba7816bf8f01cfea...
		assert.Equal(t, "ba7816bf8f01cfea", Fingerprint([]byte("abc")))
	})

	t.Run("deterministic and distinct", func(t *testing.T) {
		re := regexp.MustCompile(`^[0-9a-f]{16}$`)
		seen := make(map[string]struct{})
		for range 256 {
			b := make([]byte, 64)
			_, _ = rand.Read(b)
			fp := Fingerprint(b)
			assert.Regexp(t, re, fp)
			assert.Equal(t, fp, Fingerprint(b))
			seen[fp] = struct{}{}
		}
		assert.Len(t, seen, 256)
	})

	t.Run("client signature", func(t *testing.T) {
		assert.Equal(t, "FP-BA7816BF8F01CFEA", ClientSignature([]byte("abc")))
	})
}

func TestBuilder(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	b := NewBuilder(
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { return "abc" }),
	)

	t.Run("canonical text", func(t *testing.T) {
		p, text, err := b.Build("deadbeefcafefeed", "")
		require.NoError(t, err)
		assert.Equal(t, Payload{ID: "abc", Fingerprint: "deadbeefcafefeed", Timestamp: 1700000000000, Meta: "{}"}, p)
		assert.Equal(t, `{"id":"abc","fp":"deadbeefcafefeed","ts":1700000000000,"meta":"{}"}`, text)
		assert.True(t, p.Time().Equal(fixed))
	})

	t.Run("metadata kept verbatim", func(t *testing.T) {
		p, text, err := b.Build("deadbeefcafefeed", `{"owner":"studio"}`)
		require.NoError(t, err)
		assert.Equal(t, `{"owner":"studio"}`, p.Meta)

		var back Payload
		require.NoError(t, json.Unmarshal([]byte(text), &back))
		assert.Equal(t, p, back)
	})

	t.Run("delimiter in metadata", func(t *testing.T) {
		_, _, err := b.Build("deadbeefcafefeed", "x"+frame.EndDelimiter)
		assert.True(t, errors.Is(err, ErrDelimiterInMeta))
		_, _, err = b.BuildClient("FP-00", frame.StartDelimiter)
		assert.True(t, errors.Is(err, ErrDelimiterInMeta))
	})

	t.Run("client form", func(t *testing.T) {
		p, text, err := b.BuildClient("FP-DEADBEEFCAFEFEED", "")
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000000), p.Timestamp)
		assert.Equal(t, `{"sig":"FP-DEADBEEFCAFEFEED","ts":1700000000000,"meta":""}`, text)
	})

	t.Run("default generator issues unique ids", func(t *testing.T) {
		b := NewBuilder()
		p1, _, err := b.Build("fp", "")
		require.NoError(t, err)
		p2, _, err := b.Build("fp", "")
		require.NoError(t, err)
		assert.NotEmpty(t, p1.ID)
		assert.NotEqual(t, p1.ID, p2.ID)
	})
}

func TestParse(t *testing.T) {
	test := []struct {
		name   string
		text   string
		kind   Kind
		record Record
		sig    string
	}{
		{"server payload",
			`{"id":"abc","fp":"deadbeefcafefeed","ts":1700000000000,"meta":"{}"}`,
			Structured,
			Record{ID: "abc", Fingerprint: "deadbeefcafefeed", Timestamp: 1700000000000, HasTimestamp: true, Meta: "{}"},
			"abc"},
		{"client payload",
			`{"sig":"FP-DEADBEEFCAFEFEED","ts":5,"meta":"note"}`,
			Structured,
			Record{Signature: "FP-DEADBEEFCAFEFEED", Timestamp: 5, HasTimestamp: true, Meta: "note"},
			"FP-DEADBEEFCAFEFEED"},
		{"object meta",
			`{"id":"x","meta":{"k":1}}`,
			Structured,
			Record{ID: "x", Meta: `{"k":1}`},
			"x"},
		{"bare text", "my-signature", Opaque, Record{}, "my-signature"},
		{"json without known fields", `{"hello":"world"}`, Opaque, Record{}, `{"hello":"world"}`},
		{"json array", `[1,2,3]`, Opaque, Record{}, `[1,2,3]`},
		{"json number", `42`, Opaque, Record{}, `42`},
		{"empty", ``, Opaque, Record{}, ``},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			d := Parse(tt.text)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.text, d.Text)
			assert.Equal(t, tt.record, d.Record)
			assert.Equal(t, tt.sig, d.Signature())

			ts, ok := d.Time()
			assert.Equal(t, tt.record.HasTimestamp, ok)
			if ok {
				assert.Equal(t, tt.record.Timestamp, ts.UnixMilli())
			}
		})
	}
}

func TestErrDelimiterInMetaWrapsFrameError(t *testing.T) {
	assert.True(t, errors.Is(ErrDelimiterInMeta, frame.ErrContainsDelimiter))
}

func TestDecodedFingerprint(t *testing.T) {
	test := []struct {
		name string
		text string
		fp   string
	}{
		{"server payload", `{"id":"abc","fp":"deadbeefcafefeed"}`, "deadbeefcafefeed"},
		{"client payload", `{"sig":"FP-DEADBEEFCAFEFEED"}`, "deadbeefcafefeed"},
		{"foreign sig", `{"sig":"someone"}`, ""},
		{"short client sig", `{"sig":"FP-ABC"}`, ""},
		{"id only", `{"id":"abc"}`, ""},
		{"opaque", "deadbeefcafefeed", ""},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fp, Parse(tt.text).Fingerprint())
		})
	}
	assert.Equal(t, Fingerprint([]byte("abc")), Parse(`{"sig":"`+ClientSignature([]byte("abc"))+`"}`).Fingerprint())
}
