package bzip2

// moveToFront keeps a recency list of up to 256 values.
type moveToFront struct {
	list [256]byte
}

// init sets the list to 0, 1, ..., n-1.
func (m *moveToFront) init(n int) {
	for i := range n {
		m.list[i] = byte(i)
	}
}

// rank returns the position of v and moves v to the front.
func (m *moveToFront) rank(v byte) int {
	if m.list[0] == v {
		return 0
	}
	prev := m.list[0]
	i := 1
	for ; m.list[i] != v; i++ {
		m.list[i], prev = prev, m.list[i]
	}
	m.list[i] = prev
	m.list[0] = v
	return i
}

// front returns the value at position i and moves it to the front.
func (m *moveToFront) front(i int) byte {
	v := m.list[i]
	copy(m.list[1:i+1], m.list[:i])
	m.list[0] = v
	return v
}

// rankRuns turns the last column of a sorted block into the rank/run symbol
// stream. Bytes are first renumbered through seq, then ranked against a
// recency list; runs of rank zero become RUNA/RUNB digits and rank r
// becomes symbol r+1. The stream ends with the end-of-block symbol.
// Symbol frequencies are added to freq.
func (m *moveToFront) rankRuns(dst []symbol, last []byte, seq *[256]byte, inUse int, freq []uint32) []symbol {
	m.init(inUse)
	zeros := 0
	for _, c := range last {
		r := m.rank(seq[c])
		if r == 0 {
			zeros++
			continue
		}
		dst = appendRun(dst, zeros, freq)
		zeros = 0
		s := symbol(r + 1)
		dst = append(dst, s)
		freq[s]++
	}
	dst = appendRun(dst, zeros, freq)
	eob := eobSymbol(inUse)
	freq[eob]++
	return append(dst, eob)
}

// appendRun writes a run of n zero ranks as bijective base-2 digits,
// least significant first: RUNA is digit 1, RUNB is digit 2.
func appendRun(dst []symbol, n int, freq []uint32) []symbol {
	for n++; n > 1; n >>= 1 {
		s := symbol(n & 1)
		dst = append(dst, s)
		freq[s]++
	}
	return dst
}
