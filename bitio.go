package bzip2

// A bitWriter packs bits MSB-first into a byte slice.
// Complete bytes accumulate in buf; up to 7 trailing bits wait in bits
// until more bits arrive or flush pads them with zeros.
type bitWriter struct {
	buf   []byte
	bits  uint64 // low nbits bits are pending output
	nbits uint   // always < 8 between calls
	total int64  // bits written since the last reset
}

// writeBits writes the low n bits of v, most significant first. n <= 32.
func (w *bitWriter) writeBits(v uint32, n uint) {
	w.bits = w.bits<<n | uint64(v)&(1<<n-1)
	w.nbits += n
	w.total += int64(n)
	for w.nbits >= 8 {
		w.nbits -= 8
		w.buf = append(w.buf, byte(w.bits>>w.nbits))
	}
	w.bits &= 1<<w.nbits - 1
}

// writeBits64 writes the low n bits of v. n <= 64.
func (w *bitWriter) writeBits64(v uint64, n uint) {
	if n > 32 {
		w.writeBits(uint32(v>>32), n-32)
		n = 32
	}
	w.writeBits(uint32(v), n)
}

func (w *bitWriter) writeBool(b bool) {
	if b {
		w.writeBits(1, 1)
	} else {
		w.writeBits(0, 1)
	}
}

// flush pads the pending bits with zeros up to a byte boundary.
func (w *bitWriter) flush() {
	if w.nbits > 0 {
		w.writeBits(0, 8-w.nbits)
	}
}

// bytes returns the complete bytes written since the last call to
// discard. The partial trailing byte is not included.
func (w *bitWriter) bytes() []byte { return w.buf }

// discard drops the complete bytes, keeping the pending bits.
func (w *bitWriter) discard() { w.buf = w.buf[:0] }

func (w *bitWriter) reset() {
	w.buf = w.buf[:0]
	w.bits, w.nbits, w.total = 0, 0, 0
}

// A bitReader unpacks bits MSB-first from a byte slice.
// Reading past the end of the slice fails with ErrUnexpectedEOF, which
// the decoder treats as a request for more input.
type bitReader struct {
	buf   []byte
	pos   int    // next byte of buf to load
	bits  uint64 // low nbits bits are unread
	nbits uint
}

// init positions the reader at bit skip of buf. skip < 8.
func (r *bitReader) init(buf []byte, skip uint) error {
	*r = bitReader{buf: buf}
	if skip > 0 {
		_, err := r.readBits(skip)
		return err
	}
	return nil
}

// readBits reads n bits, n <= 32.
func (r *bitReader) readBits(n uint) (uint32, error) {
	for r.nbits < n {
		if r.pos >= len(r.buf) {
			return 0, ErrUnexpectedEOF
		}
		r.bits = r.bits<<8 | uint64(r.buf[r.pos])
		r.pos++
		r.nbits += 8
	}
	r.nbits -= n
	return uint32(r.bits>>r.nbits) & (uint32(1)<<n - 1), nil
}

// readBits64 reads n bits, n <= 64.
func (r *bitReader) readBits64(n uint) (uint64, error) {
	var hi uint32
	if n > 32 {
		var err error
		if hi, err = r.readBits(n - 32); err != nil {
			return 0, err
		}
		n = 32
	}
	lo, err := r.readBits(n)
	return uint64(hi)<<n | uint64(lo), err
}

func (r *bitReader) readBit() (bool, error) {
	b, err := r.readBits(1)
	return b == 1, err
}

// alignToByte discards the unread bits of the current byte.
func (r *bitReader) alignToByte() {
	r.nbits -= r.nbits % 8
}

// offset returns the number of bits consumed from buf.
func (r *bitReader) offset() int {
	return r.pos*8 - int(r.nbits)
}
