package bzip2

import "log/slog"

// defaultDepthLimit is the prefix length after which the block sorter
// gives up on a block whose rotations remain mostly tied and falls back
// to randomization.
const defaultDepthLimit = 256

// An Option configures an Encoder or Decoder.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	depthLimit int
}

func newConfig(opts []Option) config {
	c := config{
		logger:     slog.New(slog.DiscardHandler),
		depthLimit: defaultDepthLimit,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// WithLogger makes the Encoder or Decoder log one Debug record per block
// and per stream to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDepthLimit sets the sorted prefix length at which the encoder checks
// for a degenerate block. A block whose rotations are still mostly tied at
// that depth is randomized and sorted again. A negative limit disables the
// check, so degenerate blocks are sorted to completion.
func WithDepthLimit(n int) Option {
	return func(c *config) {
		switch {
		case n < 0:
			c.depthLimit = 0
		case n > 0:
			c.depthLimit = n
		}
	}
}
