package bzip2

import "testing"

func TestMoveToFront(t *testing.T) {
	var m moveToFront
	m.init(4)
	values := []byte{2, 2, 0, 3, 2}
	ranks := []int{}
	for _, v := range values {
		ranks = append(ranks, m.rank(v))
	}
	want := []int{2, 0, 1, 3, 2}
	for i := range want {
		if ranks[i] != want[i] {
			t.Fatalf("ranks %v, want %v", ranks, want)
		}
	}

	var d moveToFront
	d.init(4)
	for i, r := range ranks {
		if got := d.front(r); got != values[i] {
			t.Fatalf("front(%d) = %d at %d", r, got, i)
		}
	}
}

// decodeRun reads a zero run from bijective base-2 digits.
func decodeRun(digits []symbol) int {
	n, w := 0, 1
	for _, s := range digits {
		n += w << s
		w <<= 1
	}
	return n
}

func TestZeroRunDigits(t *testing.T) {
	freq := make([]uint32, 2)
	for n := 1; n < 5000; n++ {
		digits := appendRun(nil, n, freq)
		if got := decodeRun(digits); got != n {
			t.Fatalf("run %d decoded as %d from %v", n, got, digits)
		}
	}
	if digits := appendRun(nil, 0, freq); len(digits) != 0 {
		t.Fatalf("empty run wrote %v", digits)
	}
	if digits := appendRun(nil, 1, freq); len(digits) != 1 || digits[0] != runA {
		t.Fatalf("run 1 wrote %v", digits)
	}
	if digits := appendRun(nil, 2, freq); len(digits) != 1 || digits[0] != runB {
		t.Fatalf("run 2 wrote %v", digits)
	}
}

func TestRankRuns(t *testing.T) {
	var seq [256]byte
	seq['a'], seq['b'] = 0, 1
	var m moveToFront
	freq := make([]uint32, 4)
	syms := m.rankRuns(nil, []byte("aaabba"), &seq, 2, freq)
	// a a a: run of 3 zeros; b: rank 1; b: zero; a: rank 1; EOB.
	want := []symbol{runA, runA, 2, runA, 2, 3}
	if len(syms) != len(want) {
		t.Fatalf("got %v want %v", syms, want)
	}
	for i := range want {
		if syms[i] != want[i] {
			t.Fatalf("got %v want %v", syms, want)
		}
	}
	if freq[runA] != 3 || freq[2] != 2 || freq[3] != 1 {
		t.Fatalf("freq %v", freq)
	}
}
