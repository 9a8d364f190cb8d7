package bzip2

import (
	"errors"
	"iter"
	"log/slog"
)

type decState int

const (
	decStreamHeader decState = iota // expecting "BZh" and a level
	decBlock                        // expecting a block record or the footer
	decTrailing                     // after the last stream; input is ignored
)

// errNeedInput stops a decoding step until more input arrives.
var errNeedInput = errors.New("bzip2: need more input")

// A Decoder decompresses one or more concatenated bzip2 streams.
//
// Input is buffered until a whole block record is available. Parsing is
// retried only after the buffer has doubled since the last failed attempt,
// or at once on Flush and Finish, so feeding many small chunks costs
// amortized linear time.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	log *slog.Logger

	state    decState
	level    int
	combined uint32
	streams  int
	blocks   int
	err      error

	store  []byte // backing storage for buf
	buf    []byte // unconsumed input
	bitOff uint   // bits of buf[0] already consumed
	wait   int    // buffer length to reach before retrying a parse

	hdr       blockHeader
	tables    tableSet
	mtf       moveToFront
	seqToByte [256]byte
	tt        []uint32
	out       []byte
}

// NewDecoder returns a Decoder ready for the start of a stream.
func NewDecoder(opts ...Option) *Decoder {
	c := newConfig(opts)
	d := &Decoder{log: c.logger}
	d.Reset()
	return d
}

// Reset discards all state so the Decoder can start over.
func (d *Decoder) Reset() {
	d.state = decStreamHeader
	d.level = 0
	d.combined = 0
	d.streams = 0
	d.blocks = 0
	d.err = nil
	d.store = d.store[:0]
	d.buf = d.store
	d.bitOff = 0
	d.wait = 0
}

// Decode appends src to the buffered input and returns the decompressed
// blocks that become available, one chunk per block. Work happens as the
// sequence is iterated; each chunk is only valid until the next iteration
// step.
//
// With Run, an incomplete block simply waits for more input. Flush parses
// as far as possible at once. Finish additionally requires the input to
// end with a complete stream, and yields ErrUnexpectedEOF otherwise.
// Streams may be concatenated; their outputs are joined. Bytes after a
// complete stream that do not start another stream are ignored.
//
// After an error every later call yields the same error until Reset.
func (d *Decoder) Decode(src []byte, action Action) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		if d.err != nil {
			yield(nil, d.err)
			return
		}
		d.append(src)
		src = nil
		for {
			out, err := d.step(action)
			switch {
			case err == errNeedInput:
				return
			case err != nil:
				d.err = err
				yield(nil, err)
				return
			case out == nil:
				continue
			case !yield(out, nil):
				return
			}
		}
	}
}

// append adds src to the buffered input, first moving the unconsumed bytes
// to the front of the backing store.
func (d *Decoder) append(src []byte) {
	if len(d.buf) == 0 || &d.buf[0] != &d.store[0] {
		d.store = d.store[:copy(d.store[:cap(d.store)], d.buf)]
	}
	d.store = append(d.store, src...)
	d.buf = d.store
}

// consume drops the bits r has read from the buffer.
func (d *Decoder) consume(r *bitReader) {
	off := r.offset()
	d.buf = d.buf[off/8:]
	d.bitOff = uint(off % 8)
	d.wait = 0
}

// step makes one unit of progress: a stream header, a block or a footer.
// It returns a decoded block, nil after a header or footer, or an error.
// errNeedInput means the buffered input is exhausted; at the end of the
// final stream it is returned with Finish too.
func (d *Decoder) step(action Action) ([]byte, error) {
	final := action == Finish
	if d.state == decTrailing {
		d.buf = d.buf[len(d.buf):]
		return nil, errNeedInput
	}
	if d.state == decStreamHeader {
		if len(d.buf) == 0 && (d.streams > 0 || !final) {
			return nil, errNeedInput
		}
		level, err := parseStreamHeader(d.buf)
		if err == ErrUnexpectedEOF && !final {
			return nil, errNeedInput
		}
		if err != nil && d.streams > 0 {
			d.log.Debug("bzip2: ignoring trailing data", slog.Int("bytes", len(d.buf)))
			d.state = decTrailing
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		d.level = level
		d.buf = d.buf[hdrLen:]
		d.combined = 0
		d.state = decBlock
		return nil, nil
	}

	if action == Run && len(d.buf) < d.wait {
		return nil, errNeedInput
	}
	var r bitReader
	magic, err := d.readMagic(&r)
	if err == nil {
		switch magic {
		case blockMagic:
			err = d.readBlock(&r)
		case endMagic:
			err = d.readFooter(&r)
		default:
			err = malformed("bad block magic %#x", magic)
		}
	}
	if err == ErrUnexpectedEOF && !final {
		d.wait = 2 * len(d.buf)
		return nil, errNeedInput
	}
	if err != nil {
		return nil, err
	}
	d.consume(&r)
	if magic == endMagic {
		return nil, nil
	}
	return d.out, nil
}

func (d *Decoder) readMagic(r *bitReader) (uint64, error) {
	if err := r.init(d.buf, d.bitOff); err != nil {
		return 0, err
	}
	return r.readBits64(magicBits)
}

func (d *Decoder) readFooter(r *bitReader) error {
	crc, err := r.readBits(32)
	if err != nil {
		return err
	}
	if crc != d.combined {
		return ErrChecksum
	}
	r.alignToByte()
	d.log.Debug("bzip2: stream decoded",
		slog.Int("stream", d.streams),
		slog.Int("blocks", d.blocks),
		slog.Any("crc", crc))
	d.streams++
	d.state = decStreamHeader
	return nil
}

// readBlock decodes the block record following a block magic into d.out.
func (d *Decoder) readBlock(r *bitReader) error {
	h := &d.hdr
	if err := h.readFrom(r); err != nil {
		return err
	}
	capacity := d.level * blockUnit
	if h.origin > capacity+10 {
		return malformed("origin pointer %d", h.origin)
	}
	inUse, err := readSymbolMap(r, &d.seqToByte)
	if err != nil {
		return err
	}
	alphaSize := inUse + 2
	if err := d.tables.readFrom(r, alphaSize); err != nil {
		return err
	}

	// Symbols, undoing zero-run coding and move-to-front as they arrive.
	var counts [256]int
	tt := d.tt[:0]
	if cap(tt) < capacity {
		tt = make([]uint32, 0, capacity)
	}
	eob := eobSymbol(inUse)
	d.mtf.init(inUse)
	run, weight := 0, 1
	for g := 0; ; g++ {
		if g >= len(d.tables.selectors) {
			return invariant("selector %d of %d", g, len(d.tables.selectors))
		}
		t := &d.tables.tables[d.tables.selectors[g]]
		for range groupSize {
			s, err := t.decode(r, alphaSize)
			if err != nil {
				return err
			}
			if s.isRun() {
				if weight >= maxRunLength {
					return malformed("zero run too long")
				}
				run += weight << s
				weight <<= 1
				continue
			}
			if run > 0 {
				if len(tt)+run > capacity {
					return malformed("block longer than %d bytes", capacity)
				}
				c := d.seqToByte[d.mtf.list[0]]
				counts[c] += run
				for range run {
					tt = append(tt, uint32(c))
				}
				run, weight = 0, 1
			}
			if s == eob {
				d.tt = tt
				return d.finishBlock(tt, &counts)
			}
			if len(tt) >= capacity {
				return malformed("block longer than %d bytes", capacity)
			}
			c := d.seqToByte[d.mtf.front(int(s)-1)]
			counts[c]++
			tt = append(tt, uint32(c))
		}
	}
}

// finishBlock inverts the block sort, undoes randomization and the initial
// run-length stage, and checks the block CRC.
func (d *Decoder) finishBlock(tt []uint32, counts *[256]int) error {
	h := &d.hdr
	if h.origin >= len(tt) {
		return invariant("origin pointer %d in block of %d bytes", h.origin, len(tt))
	}
	pos := inverseBWT(tt, h.origin, counts)

	var rnd randomizer
	out := d.out[:0]
	prev, same := -1, 0
	for range tt {
		pos = tt[pos]
		c := byte(pos)
		pos >>= 8
		if h.randomized {
			c ^= rnd.next()
		}
		if same == minRLE1Repeat {
			for range c {
				out = append(out, byte(prev))
			}
			prev, same = -1, 0
			continue
		}
		if int(c) == prev {
			same++
		} else {
			prev, same = int(c), 1
		}
		out = append(out, c)
	}
	d.out = out

	crc := updateCRC(0, out)
	if crc != h.crc {
		return ErrChecksum
	}
	d.combined = combineCRC(d.combined, crc)
	d.log.Debug("bzip2: block decoded",
		slog.Int("block", d.blocks),
		slog.Int("size", len(tt)),
		slog.Int("decoded", len(out)),
		slog.Any("crc", crc),
		slog.Bool("randomized", h.randomized),
		slog.Int("tables", d.tables.n),
		slog.Int("selectors", len(d.tables.selectors)))
	d.blocks++
	return nil
}

// AppendDecode runs Decode and appends every chunk to dst.
func (d *Decoder) AppendDecode(dst, src []byte, action Action) ([]byte, error) {
	for chunk, err := range d.Decode(src, action) {
		if err != nil {
			return dst, err
		}
		dst = append(dst, chunk...)
	}
	return dst, nil
}

// Decompress returns the concatenated contents of the streams in src.
func Decompress(src []byte) ([]byte, error) {
	return NewDecoder().AppendDecode(nil, src, Finish)
}
