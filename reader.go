package bzip2

import (
	"errors"
	"io"
)

const readBufferSize = 64 << 10

// A Reader decompresses the bzip2 streams read from an underlying reader.
type Reader struct {
	r    io.Reader
	dec  *Decoder
	in   []byte
	out  []byte // decoded bytes not yet returned
	back []byte // backing storage for out
	eof  bool
	err  error
}

// NewReader returns a Reader decompressing from r. Concatenated streams
// are read as one.
func NewReader(r io.Reader, opts ...Option) *Reader {
	return &Reader{
		r:   r,
		dec: NewDecoder(opts...),
		in:  make([]byte, readBufferSize),
	}
}

// Read implements io.Reader.
func (z *Reader) Read(p []byte) (int, error) {
	for len(z.out) == 0 {
		if z.err != nil {
			return 0, z.err
		}
		if z.eof {
			return 0, io.EOF
		}
		z.fill()
	}
	n := copy(p, z.out)
	z.out = z.out[n:]
	return n, nil
}

// fill reads one chunk of input and decodes what it completes.
func (z *Reader) fill() {
	n, err := z.r.Read(z.in)
	action := Run
	switch {
	case errors.Is(err, io.EOF):
		action = Finish
		z.eof = true
	case err != nil:
		z.err = err
	}
	z.back = z.back[:0]
	for chunk, derr := range z.dec.Decode(z.in[:n], action) {
		if derr != nil {
			z.err = derr
			break
		}
		z.back = append(z.back, chunk...)
	}
	z.out = z.back
}

// Reset discards all state and reads from r next.
func (z *Reader) Reset(r io.Reader) {
	z.r = r
	z.dec.Reset()
	z.out, z.back = nil, z.back[:0]
	z.eof, z.err = false, nil
}
