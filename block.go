package bzip2

// A blockWriter accumulates input into one block, applying the initial
// run-length stage: a run of 4 to 255 equal bytes is stored as four copies
// followed by a byte holding the remaining count.
//
// The run being collected is not part of the block until it ends, so a
// run may carry over into the next block. The block checksum covers the
// bytes of every run written into the block.
type blockWriter struct {
	buf   []byte
	limit int
	crc   uint32
	inUse [256]bool

	last byte
	run  int // length of the pending run of last; 0 if none
}

func (b *blockWriter) init(level int) {
	b.limit = blockCapacity(level)
	if cap(b.buf) < b.limit+minRLE1Repeat+1 {
		b.buf = make([]byte, 0, b.limit+minRLE1Repeat+1)
	}
	b.reset()
	b.run = 0
}

// write consumes bytes from src until src is exhausted or the block is
// full, and returns the number of bytes consumed.
func (b *blockWriter) write(src []byte) int {
	for i, c := range src {
		switch {
		case b.run == 0:
			b.last, b.run = c, 1
		case c == b.last && b.run < maxRLE1Run:
			b.run++
		default:
			b.writeRun()
			b.last, b.run = c, 1
			if b.full() {
				return i + 1
			}
		}
	}
	return len(src)
}

// writeRun moves the pending run into the block.
func (b *blockWriter) writeRun() {
	b.crc = updateCRCRun(b.crc, b.last, b.run)
	b.inUse[b.last] = true
	for range min(b.run, minRLE1Repeat) {
		b.buf = append(b.buf, b.last)
	}
	if b.run >= minRLE1Repeat {
		n := byte(b.run - minRLE1Repeat)
		b.buf = append(b.buf, n)
		b.inUse[n] = true
	}
	b.run = 0
}

// endRun moves the pending run, if any, into the block.
func (b *blockWriter) endRun() {
	if b.run > 0 {
		b.writeRun()
	}
}

func (b *blockWriter) full() bool  { return len(b.buf) >= b.limit }
func (b *blockWriter) empty() bool { return len(b.buf) == 0 }

// reset clears the block but keeps the pending run.
func (b *blockWriter) reset() {
	b.buf = b.buf[:0]
	b.crc = 0
	b.inUse = [256]bool{}
}

// recountInUse rebuilds the in-use set after the block bytes changed.
func (b *blockWriter) recountInUse() {
	b.inUse = [256]bool{}
	for _, c := range b.buf {
		b.inUse[c] = true
	}
}

// symbolMap numbers the in-use byte values in ascending order. It returns
// the number of values in use.
func symbolMap(inUse *[256]bool, seq *[256]byte) int {
	n := 0
	for c, ok := range inUse {
		if ok {
			seq[c] = byte(n)
			n++
		}
	}
	return n
}
