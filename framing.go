package bzip2

// Stream layout:
//
//	"BZh" level('1'..'9')
//	block*      48-bit blockMagic, 32-bit CRC, 1-bit randomized,
//	            24-bit origin, symbol map, tables, coded symbols
//	footer      48-bit endMagic, 32-bit combined CRC, zero padding
//
// Blocks are not byte aligned; only the stream start and the end of the
// footer are.

func appendStreamHeader(dst []byte, level int) []byte {
	return append(append(dst, hdrMagic...), '0'+byte(level))
}

// parseStreamHeader returns the level of the stream header at the start of
// b. It reports ErrUnexpectedEOF when b is a strict prefix of a header.
func parseStreamHeader(b []byte) (int, error) {
	for i := range min(len(b), len(hdrMagic)) {
		if b[i] != hdrMagic[i] {
			return 0, malformed("bad stream magic")
		}
	}
	if len(b) < hdrLen {
		return 0, ErrUnexpectedEOF
	}
	level := int(b[len(hdrMagic)]) - '0'
	if level < minLevel || level > maxLevel {
		return 0, malformed("block size level %q", b[len(hdrMagic)])
	}
	return level, nil
}

// blockHeader is the fixed part of a block record.
type blockHeader struct {
	crc        uint32
	randomized bool
	origin     int
}

func (h *blockHeader) writeTo(w *bitWriter) {
	w.writeBits64(blockMagic, magicBits)
	w.writeBits(h.crc, 32)
	w.writeBool(h.randomized)
	w.writeBits(uint32(h.origin), originBits)
}

// readFrom reads the header fields following the block magic.
func (h *blockHeader) readFrom(r *bitReader) (err error) {
	if h.crc, err = r.readBits(32); err != nil {
		return err
	}
	if h.randomized, err = r.readBit(); err != nil {
		return err
	}
	v, err := r.readBits(originBits)
	h.origin = int(v)
	return err
}

func writeFooter(w *bitWriter, crc uint32) {
	w.writeBits64(endMagic, magicBits)
	w.writeBits(crc, 32)
	w.flush()
}

// writeSymbolMap writes the set of byte values in use: a 16-bit map of
// which 16-value ranges are used, then a 16-bit map for each used range.
func writeSymbolMap(w *bitWriter, inUse *[256]bool) {
	var ranges uint32
	var sub [16]uint32
	for c, ok := range inUse {
		if ok {
			ranges |= 1 << (15 - c>>4)
			sub[c>>4] |= 1 << (15 - c&15)
		}
	}
	w.writeBits(ranges, 16)
	for i, m := range sub {
		if ranges&(1<<(15-i)) != 0 {
			w.writeBits(m, 16)
		}
	}
}

// readSymbolMap reads what writeSymbolMap wrote into seqToByte and returns
// how many byte values are in use.
func readSymbolMap(r *bitReader, seqToByte *[256]byte) (int, error) {
	ranges, err := r.readBits(16)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range 16 {
		if ranges&(1<<(15-i)) == 0 {
			continue
		}
		m, err := r.readBits(16)
		if err != nil {
			return 0, err
		}
		for j := range 16 {
			if m&(1<<(15-j)) != 0 {
				seqToByte[n] = byte(i<<4 | j)
				n++
			}
		}
	}
	if n == 0 {
		return 0, malformed("empty symbol map")
	}
	return n, nil
}
