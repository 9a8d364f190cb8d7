package bzip2

// codeTable is one prefix code over the block alphabet.
// The code is canonical: codes are assigned in order of increasing length,
// and in symbol order within a length, so the lengths alone describe it.
//
// Decoding uses the limit/base/perm layout: a code of length l with value v
// is valid when v <= limit[l], and perm[v-base[l]] is its symbol.
type codeTable struct {
	lengths [maxAlphaSize]uint8
	codes   [maxAlphaSize]uint32

	limit  [maxCodeLen + 2]int32
	base   [maxCodeLen + 2]int32
	perm   [maxAlphaSize]uint16
	minLen int
	maxLen int
}

// assignCodes derives the canonical codes from lengths[:alphaSize].
func (t *codeTable) assignCodes(alphaSize int) {
	minLen, maxLen := t.lengthRange(alphaSize)
	var code uint32
	for l := minLen; l <= maxLen; l++ {
		for s, n := range t.lengths[:alphaSize] {
			if int(n) == l {
				t.codes[s] = code
				code++
			}
		}
		code <<= 1
	}
}

func (t *codeTable) lengthRange(alphaSize int) (lo, hi int) {
	lo, hi = 32, 0
	for _, n := range t.lengths[:alphaSize] {
		lo = min(lo, int(n))
		hi = max(hi, int(n))
	}
	return lo, hi
}

// buildDecoder fills the decoding tables from lengths[:alphaSize].
func (t *codeTable) buildDecoder(alphaSize int) {
	t.minLen, t.maxLen = t.lengthRange(alphaSize)
	p := 0
	for l := t.minLen; l <= t.maxLen; l++ {
		for s, n := range t.lengths[:alphaSize] {
			if int(n) == l {
				t.perm[p] = uint16(s)
				p++
			}
		}
	}
	t.base = [maxCodeLen + 2]int32{}
	t.limit = [maxCodeLen + 2]int32{}
	for _, n := range t.lengths[:alphaSize] {
		t.base[n+1]++
	}
	for l := 1; l < len(t.base); l++ {
		t.base[l] += t.base[l-1]
	}
	var vec int32
	for l := t.minLen; l <= t.maxLen; l++ {
		vec += t.base[l+1] - t.base[l]
		t.limit[l] = vec - 1
		vec <<= 1
	}
	for l := t.maxLen; l > t.minLen; l-- {
		t.base[l] = (t.limit[l-1]+1)<<1 - t.base[l]
	}
	t.base[t.minLen] = 0
}

// decode reads one symbol. alphaSize bounds the permutation index.
func (t *codeTable) decode(r *bitReader, alphaSize int) (symbol, error) {
	n := t.minLen
	v, err := r.readBits(uint(n))
	if err != nil {
		return 0, err
	}
	code := int32(v)
	for code > t.limit[n] {
		n++
		if n > t.maxLen {
			return 0, malformed("huffman code longer than %d bits", t.maxLen)
		}
		b, err := r.readBits(1)
		if err != nil {
			return 0, err
		}
		code = code<<1 | int32(b)
	}
	i := code - t.base[n]
	if i < 0 || int(i) >= alphaSize {
		return 0, malformed("huffman code out of range")
	}
	return symbol(t.perm[i]), nil
}

// writeTo writes lengths[:alphaSize] as a 5-bit start length followed by
// one delta per symbol: "10" adds one, "11" subtracts one, "0" moves to
// the next symbol.
func (t *codeTable) writeTo(w *bitWriter, alphaSize int) {
	cur := int(t.lengths[0])
	w.writeBits(uint32(cur), firstLenBits)
	for _, n := range t.lengths[:alphaSize] {
		for ; cur < int(n); cur++ {
			w.writeBits(2, 2)
		}
		for ; cur > int(n); cur-- {
			w.writeBits(3, 2)
		}
		w.writeBits(0, 1)
	}
}

// readFrom reads lengths[:alphaSize] written by writeTo. Every length must
// stay within 1..20 while it is being adjusted.
func (t *codeTable) readFrom(r *bitReader, alphaSize int) error {
	v, err := r.readBits(firstLenBits)
	if err != nil {
		return err
	}
	cur := int(v)
	for s := range alphaSize {
		for {
			if cur < 1 || cur > maxCodeLen {
				return malformed("code length %d", cur)
			}
			b, err := r.readBits(1)
			if err != nil {
				return err
			}
			if b == 0 {
				break
			}
			if b, err = r.readBits(1); err != nil {
				return err
			}
			if b == 0 {
				cur++
			} else {
				cur--
			}
		}
		t.lengths[s] = uint8(cur)
	}
	return nil
}
