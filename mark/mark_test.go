package mark

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkEncodeDecode(t *testing.T) {
	test := []struct {
		name   string
		new    func() *Mark
		len    int
		assert func(*testing.T, *Mark)
	}{
		{"string_1",
			func() *Mark { return NewString("TEST_MARK") },
			9 * 8,
			func(t *testing.T, m *Mark) {
				assert.Equal(t, "TEST_MARK", m.DecodeToString())
				assert.Equal(t, []byte("TEST_MARK"), m.DecodeToBytes())
			}},
		{"string_2",
			func() *Mark { return NewString("a") },
			8,
			func(t *testing.T, m *Mark) {
				assert.Equal(t, "a", m.DecodeToString())
			}},
		{"string_utf8",
			func() *Mark { return NewString("こんにちはHello") },
			len([]byte("こんにちはHello")) * 8,
			func(t *testing.T, m *Mark) {
				assert.Equal(t, "こんにちはHello", m.DecodeToString())
			}},
		{"bytes_1",
			func() *Mark { return NewBytes([]byte{0x01, 0xff, 0x00}) },
			24,
			func(t *testing.T, m *Mark) {
				assert.Equal(t, []byte{0x01, 0xff, 0x00}, m.DecodeToBytes())
			}},
		{"bools_partial",
			func() *Mark {
				return NewBools([]bool{
					false, true, false, true,
					false, false, true, true,
					false, false, false, true, true, true,
				})
			},
			14,
			func(t *testing.T, m *Mark) {
				assert.Equal(t, []byte{0b01_010_011}, m.DecodeToBytes())
			}},
		{"empty",
			func() *Mark { return NewString("") },
			0,
			func(t *testing.T, m *Mark) {
				assert.Empty(t, m.DecodeToBytes())
			}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.new()
			assert.Equal(t, tt.len, m.Len())
			tt.assert(t, m)

			// bit-by-bit copy through GetBit must decode identically
			bits := make([]bool, m.Len())
			for i := range bits {
				bits[i] = m.GetBit(i) == 1
			}
			tt.assert(t, NewBools(bits))
		})
	}
}

func TestGetBitMSBFirst(t *testing.T) {
	m := NewBytes([]byte{0b1000_0001})
	assert.Equal(t, uint8(1), m.GetBit(0))
	for i := 1; i < 7; i++ {
		assert.Equal(t, uint8(0), m.GetBit(i))
	}
	assert.Equal(t, uint8(1), m.GetBit(7))
}

func TestDecode(t *testing.T) {
	t.Run("drops partial byte", func(t *testing.T) {
		bits := bitsOf("Hi")
		bits = append(bits, true, false, true)
		assert.Equal(t, "Hi", Decode(bits))
		assert.Empty(t, Decode([]bool{true, true, true}))
		assert.Empty(t, Decode(nil))
	})

	t.Run("round trip", func(t *testing.T) {
		for _, s := range []string{
			"",
			"a",
			`{"id":"abc","fp":"deadbeefcafefeed","ts":1700000000000,"meta":"{}"}`,
			":::AETHER_START:::{}:::AETHER_END:::",
			" !\"#$%&'()*+,-./0123456789:;<=>?@ABCXYZ[\\]^_`abcxyz{|}~",
			"こんにちは",
		} {
			assert.Equal(t, s, Decode(bitsOf(s)))
		}
	})

	t.Run("msb first", func(t *testing.T) {
		// 'A' = 0x41 = 0100_0001
		assert.Equal(t, []bool{false, true, false, false, false, false, false, true}, bitsOf("A"))
		assert.Equal(t, "A", Decode([]bool{false, true, false, false, false, false, false, true}))
	})
}

func bitsOf(s string) []bool {
	m := NewString(s)
	bits := make([]bool, m.Len())
	for i := range bits {
		bits[i] = m.GetBit(i) == 1
	}
	return bits
}
