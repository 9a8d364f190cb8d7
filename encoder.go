package bzip2

import (
	"fmt"
	"iter"
	"log/slog"
)

type encState int

const (
	stateAccumulating encState = iota // filling the current block
	stateTransforming                 // sorting and coding a closed block
	stateEmitting                     // handing coded bytes to the consumer
	stateFinished                     // footer written
)

// An Encoder compresses a byte stream into a single bzip2 stream.
//
// Input is consumed in blocks of up to level*100000 bytes. Each closed
// block goes through the initial run-length stage, the block sort,
// move-to-front ranking with zero-run coding and adaptive multi-table
// Huffman coding. The stream header is written with the first output.
//
// An Encoder is not safe for concurrent use. Its scratch memory is reused
// across blocks and across Reset.
type Encoder struct {
	level      int
	log        *slog.Logger
	depthLimit int

	state    encState
	started  bool // stream header written
	combined uint32
	blocks   int
	pending  []byte // input left over from an abandoned iteration

	block  blockWriter
	bw     bitWriter
	sorter bwtSorter
	last   []byte
	syms   []symbol
	freq   [maxAlphaSize]uint32
	mtf    moveToFront
	tables tableSet
}

// NewEncoder returns an Encoder producing blocks of up to level*100000
// bytes. level must be in 1..9.
func NewEncoder(level int, opts ...Option) (*Encoder, error) {
	if level < minLevel || level > maxLevel {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	c := newConfig(opts)
	e := &Encoder{
		level:      level,
		log:        c.logger,
		depthLimit: c.depthLimit,
	}
	e.Reset()
	return e, nil
}

// Level returns the block size level.
func (e *Encoder) Level() int { return e.level }

// Reset discards all state so the Encoder can start a new stream.
func (e *Encoder) Reset() {
	e.state = stateAccumulating
	e.started = false
	e.combined = 0
	e.blocks = 0
	e.pending = e.pending[:0]
	e.block.init(e.level)
	e.bw.reset()
}

// Encode consumes src and returns the compressed output it makes
// available, as a sequence of chunks. Work happens as the sequence is
// iterated; each chunk is only valid until the next iteration step.
//
// With Run, only closed blocks produce output. Flush closes the current
// block and yields every complete byte so far; up to 7 bits of the last
// block stay buffered because blocks are not byte aligned. Finish also
// writes the footer, after which the Encoder only accepts empty input
// until Reset.
//
// If the consumer stops early, the unconsumed part of src is kept and
// processed by the next call; the action of the abandoned call is not
// carried over. A call made from inside the loop over another call's
// chunks yields ErrBusy.
func (e *Encoder) Encode(src []byte, action Action) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		switch e.state {
		case stateTransforming, stateEmitting:
			yield(nil, ErrBusy)
			return
		case stateFinished:
			if len(src) > 0 || len(e.pending) > 0 {
				yield(nil, ErrFinished)
			}
			return
		}
		if len(e.pending) > 0 {
			e.pending = append(e.pending, src...)
			src = e.pending
		}
		for len(src) > 0 {
			n := e.block.write(src)
			src = src[n:]
			if !e.block.full() {
				continue
			}
			e.closeBlock()
			if !e.emit(yield) {
				e.pending = append(e.pending[:0], src...)
				return
			}
		}
		e.pending = e.pending[:0]

		switch action {
		case Flush:
			e.block.endRun()
			if !e.block.empty() {
				e.closeBlock()
			}
			e.emit(yield)
		case Finish:
			e.block.endRun()
			if !e.block.empty() {
				e.closeBlock()
			}
			e.startStream()
			writeFooter(&e.bw, e.combined)
			e.log.Debug("bzip2: stream encoded",
				slog.Int("blocks", e.blocks),
				slog.Any("crc", e.combined))
			e.emit(yield)
			e.state = stateFinished
		}
	}
}

// emit hands the complete output bytes to yield and reports whether the
// consumer wants more.
func (e *Encoder) emit(yield func([]byte, error) bool) bool {
	out := e.bw.bytes()
	if len(out) == 0 {
		e.state = stateAccumulating
		return true
	}
	e.state = stateEmitting
	more := yield(out, nil)
	e.bw.discard()
	e.state = stateAccumulating
	return more
}

func (e *Encoder) startStream() {
	if e.started {
		return
	}
	e.started = true
	e.bw.buf = appendStreamHeader(e.bw.buf, e.level)
}

// closeBlock codes the current block into e.bw.
func (e *Encoder) closeBlock() {
	e.state = stateTransforming
	e.startStream()
	b := &e.block
	n := len(b.buf)
	hdr := blockHeader{crc: b.crc}
	e.combined = combineCRC(e.combined, b.crc)

	if cap(e.last) < n {
		e.last = make([]byte, n, cap(b.buf))
	}
	last := e.last[:n]
	origin, ok := e.sorter.sort(last, b.buf, e.depthLimit)
	if !ok {
		randomizeBlock(b.buf)
		b.recountInUse()
		hdr.randomized = true
		origin, _ = e.sorter.sort(last, b.buf, 0)
	}
	hdr.origin = origin

	var seq [256]byte
	inUse := symbolMap(&b.inUse, &seq)
	alphaSize := inUse + 2
	e.freq = [maxAlphaSize]uint32{}
	e.syms = e.mtf.rankRuns(e.syms[:0], last, &seq, inUse, e.freq[:alphaSize])
	e.tables.train(e.syms, e.freq[:alphaSize], alphaSize)

	start := e.bw.total
	hdr.writeTo(&e.bw)
	writeSymbolMap(&e.bw, &b.inUse)
	e.tables.writeTo(&e.bw)
	e.tables.encode(&e.bw, e.syms)

	e.log.Debug("bzip2: block encoded",
		slog.Int("block", e.blocks),
		slog.Int("size", n),
		slog.Any("crc", hdr.crc),
		slog.Bool("randomized", hdr.randomized),
		slog.Int("origin", origin),
		slog.Int("symbols", len(e.syms)),
		slog.Int("inUse", inUse),
		slog.Int("tables", e.tables.n),
		slog.Int("selectors", len(e.tables.selectors)),
		slog.Int64("bits", e.bw.total-start))
	e.blocks++
	b.reset()
}

// AppendEncode runs Encode and appends every chunk to dst.
func (e *Encoder) AppendEncode(dst, src []byte, action Action) ([]byte, error) {
	for chunk, err := range e.Encode(src, action) {
		if err != nil {
			return dst, err
		}
		dst = append(dst, chunk...)
	}
	return dst, nil
}

// Compress returns src compressed as one complete stream at level.
func Compress(src []byte, level int) ([]byte, error) {
	e, err := NewEncoder(level)
	if err != nil {
		return nil, err
	}
	return e.AppendEncode(nil, src, Finish)
}
