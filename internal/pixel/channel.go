package pixel

import "fmt"

// Channel selects which byte of each pixel carries the bit.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	Alpha
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Alpha:
		return "alpha"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

func (c Channel) valid() bool {
	return c >= Red && c <= Alpha
}

type Option func(*config)

type config struct {
	channel Channel
}

// WithChannel changes the carrier channel. Blue is the default; embed and
// extract must agree.
func WithChannel(ch Channel) Option {
	return func(c *config) {
		if ch.valid() {
			c.channel = ch
		}
	}
}

func newConfig(opts ...Option) config {
	c := config{channel: Blue}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
