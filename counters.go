package bzip2

// counters tracks how often each table codes each symbol during one
// refinement pass of table training, and how many groups chose each table.
//
// Layout: one full-width row per table. Rows are 258 uint32s, so the whole
// struct is about 6KB and is reused across passes and blocks.
type counters struct {
	freq [maxTables][maxAlphaSize]uint32
	fave [maxTables]int
}

// reset clears the first n rows.
func (c *counters) reset(n int) {
	for t := range n {
		c.freq[t] = [maxAlphaSize]uint32{}
	}
	c.fave = [maxTables]int{}
}

// inc charges one group of symbols to table t.
func (c *counters) inc(t int, group []symbol) {
	row := &c.freq[t]
	for _, s := range group {
		row[s]++
	}
	c.fave[t]++
}
