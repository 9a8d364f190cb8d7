package bzip2

// tableSet is the group of coding tables used by one block and the
// selector choosing a table for each run of groupSize symbols.
type tableSet struct {
	n         int // number of tables in use
	alphaSize int
	tables    [maxTables]codeTable
	selectors []uint8

	counts  counters
	lengths lengthBuilder
	mtf     moveToFront
}

// train fits the tables to syms, whose symbol frequencies are freq.
//
// The tables start as a partition of the alphabet into bands of roughly
// equal total frequency, each table cheap inside its band and expensive
// outside it. Each refinement pass assigns every group to its cheapest
// table and rebuilds each table from the symbols of the groups it won.
func (ts *tableSet) train(syms []symbol, freq []uint32, alphaSize int) {
	ts.n = tableCount(len(syms))
	ts.alphaSize = alphaSize

	remain := len(syms)
	lo := 0
	for part := ts.n; part > 0; part-- {
		target := remain / part
		hi := lo - 1
		acc := 0
		for acc < target && hi < alphaSize-1 {
			hi++
			acc += int(freq[hi])
		}
		if hi > lo && part != ts.n && part != 1 && (ts.n-part)%2 == 1 {
			acc -= int(freq[hi])
			hi--
		}
		t := &ts.tables[part-1]
		for s := range alphaSize {
			if s >= lo && s <= hi {
				t.lengths[s] = lesserCost
			} else {
				t.lengths[s] = greaterCost
			}
		}
		lo = hi + 1
		remain -= acc
	}

	for range refinePasses {
		ts.counts.reset(ts.n)
		ts.selectors = ts.selectors[:0]
		for g := 0; g < len(syms); g += groupSize {
			group := syms[g:min(g+groupSize, len(syms))]
			best := ts.cheapest(group)
			ts.selectors = append(ts.selectors, uint8(best))
			ts.counts.inc(best, group)
		}
		for t := range ts.n {
			ts.lengths.build(ts.tables[t].lengths[:alphaSize], ts.counts.freq[t][:alphaSize], encCodeLen)
		}
	}
	for t := range ts.n {
		ts.tables[t].assignCodes(alphaSize)
	}
}

// cheapest returns the table coding group in the fewest bits, preferring
// the lowest index on ties.
func (ts *tableSet) cheapest(group []symbol) int {
	var cost [maxTables]uint32
	for _, s := range group {
		for t := range ts.n {
			cost[t] += uint32(ts.tables[t].lengths[s])
		}
	}
	best := 0
	for t := 1; t < ts.n; t++ {
		if cost[t] < cost[best] {
			best = t
		}
	}
	return best
}

// writeTo writes the table count, the move-to-front coded selectors in
// unary, and the code lengths of every table.
func (ts *tableSet) writeTo(w *bitWriter) {
	w.writeBits(uint32(ts.n), tableCntBits)
	w.writeBits(uint32(len(ts.selectors)), selectorBits)
	ts.mtf.init(ts.n)
	for _, sel := range ts.selectors {
		r := ts.mtf.rank(sel)
		w.writeBits((1<<(r+1))-2, uint(r+1))
	}
	for t := range ts.n {
		ts.tables[t].writeTo(w, ts.alphaSize)
	}
}

// encode writes syms with the table each group selected.
func (ts *tableSet) encode(w *bitWriter, syms []symbol) {
	for i, sel := range ts.selectors {
		t := &ts.tables[sel]
		g := i * groupSize
		for _, s := range syms[g:min(g+groupSize, len(syms))] {
			w.writeBits(t.codes[s], uint(t.lengths[s]))
		}
	}
}

// readFrom reads what writeTo wrote and prepares the tables for decoding.
// Selectors beyond the most a block can use are read and dropped.
func (ts *tableSet) readFrom(r *bitReader, alphaSize int) error {
	v, err := r.readBits(tableCntBits)
	if err != nil {
		return err
	}
	ts.n = int(v)
	if ts.n < minTables || ts.n > maxTables {
		return malformed("table count %d", ts.n)
	}
	if v, err = r.readBits(selectorBits); err != nil {
		return err
	}
	nsel := int(v)
	if nsel < 1 {
		return malformed("no selectors")
	}
	ts.alphaSize = alphaSize
	ts.selectors = ts.selectors[:0]
	ts.mtf.init(ts.n)
	for range nsel {
		i := 0
		for {
			b, err := r.readBits(1)
			if err != nil {
				return err
			}
			if b == 0 {
				break
			}
			if i++; i >= ts.n {
				return invariant("selector %d of %d tables", i, ts.n)
			}
		}
		sel := ts.mtf.front(i)
		if len(ts.selectors) < maxSelectors {
			ts.selectors = append(ts.selectors, sel)
		}
	}
	for t := range ts.n {
		if err := ts.tables[t].readFrom(r, alphaSize); err != nil {
			return err
		}
		ts.tables[t].buildDecoder(alphaSize)
	}
	return nil
}
