package bzip2

import "io"

// A Writer compresses everything written to it into one bzip2 stream on
// an underlying writer. The stream is complete once Close returns.
type Writer struct {
	w      io.Writer
	enc    *Encoder
	err    error
	closed bool
}

// NewWriter returns a Writer compressing to w at level 1..9.
func NewWriter(w io.Writer, level int, opts ...Option) (*Writer, error) {
	enc, err := NewEncoder(level, opts...)
	if err != nil {
		return nil, err
	}
	return &Writer{w: w, enc: enc}, nil
}

// Write implements io.Writer. Output appears on the underlying writer
// whenever a block fills up.
func (z *Writer) Write(p []byte) (int, error) {
	if err := z.emit(p, Run); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Flush closes the current block and writes all complete bytes so far.
func (z *Writer) Flush() error { return z.emit(nil, Flush) }

// Close ends the stream. It does not close the underlying writer.
func (z *Writer) Close() error {
	if z.closed {
		return z.err
	}
	z.closed = true
	return z.emit(nil, Finish)
}

// Reset discards all state and writes a new stream to w.
func (z *Writer) Reset(w io.Writer) {
	z.w = w
	z.enc.Reset()
	z.err, z.closed = nil, false
}

func (z *Writer) emit(p []byte, action Action) error {
	if z.err != nil {
		return z.err
	}
	for chunk, err := range z.enc.Encode(p, action) {
		if err != nil {
			z.err = err
			return err
		}
		if _, err := z.w.Write(chunk); err != nil {
			z.err = err
			return err
		}
	}
	return nil
}
