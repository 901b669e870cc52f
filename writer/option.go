// Package writer implements the incremental segment writer: it tracks the
// previous segment's object order, per-channel raw-index shape, and
// property state (the EffectiveState), and on each flush decides what must
// be re-emitted versus what the reader can inherit from the prior segment.
package writer

// Option configures a Writer at construction time. Unlike the teacher's
// internal/options package, which parameterizes the functional-option
// pattern over an arbitrary generic target type, writer has exactly one
// config type to apply options to, so Option is a plain closure rather
// than an instantiation of a generic Option[T]/Func[T] pair.
type Option func(*config) error

type config struct {
	bigEndian          bool
	interleave         bool
	appendOptimization bool
}

// applyOptions runs opts over cfg in order, stopping at the first error.
func applyOptions(cfg *config, opts ...Option) error {
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return err
		}
	}

	return nil
}

// WithBigEndian configures the writer to emit every segment with
// TocBigEndian set and all meta/raw values in big-endian order. The
// default is little-endian.
func WithBigEndian() Option {
	return func(c *config) error {
		c.bigEndian = true

		return nil
	}
}

// WithInterleave requests interleaved (per-index tuple) raw payload
// layout for every segment. Only fixed-width channels can be interleaved:
// a Flush whose segment holds a string channel or a chunk staged through
// WriteRawChunk fails with ErrInterleaveRequiresFixedWidth, and no
// channel-major fallback is applied.
func WithInterleave() Option {
	return func(c *config) error {
		c.interleave = true

		return nil
	}
}

// WithAppendOptimization enables the optional micro-optimisation of
// extending the previous segment's raw region in place (patching its
// next_seg_offset) instead of opening a new segment, when the channel
// order, raw-index shapes, and interleave setting are unchanged from the
// previous flush. Spec.md's §4.F calls this optional; implementations
// without it remain correct.
func WithAppendOptimization() Option {
	return func(c *config) error {
		c.appendOptimization = true

		return nil
	}
}
