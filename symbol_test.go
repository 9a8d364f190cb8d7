package bzip2

import "testing"

func TestSymbolBasics(t *testing.T) {
	if !runA.isRun() || !runB.isRun() {
		t.Fatalf("RUNA/RUNB not runs")
	}
	if symbol(2).isRun() {
		t.Fatalf("rank 1 treated as run")
	}
	if eobSymbol(2) != 3 {
		t.Fatalf("eob for 2 values = %d", eobSymbol(2))
	}
	if eobSymbol(256) != maxAlphaSize-1 {
		t.Fatalf("eob for 256 values = %d", eobSymbol(256))
	}
	if blockCapacity(9) != 899981 || blockCapacity(1) != 99981 {
		t.Fatalf("capacity %d %d", blockCapacity(1), blockCapacity(9))
	}
	if maxSelectors != 18002 {
		t.Fatalf("maxSelectors = %d", maxSelectors)
	}
}

func TestTableCount(t *testing.T) {
	tests := []struct{ n, want int }{
		{1, 2}, {199, 2}, {200, 3}, {599, 3}, {600, 4},
		{1199, 4}, {1200, 5}, {2399, 5}, {2400, 6}, {900000, 6},
	}
	for _, tt := range tests {
		if got := tableCount(tt.n); got != tt.want {
			t.Errorf("tableCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
