package bzip2

import "testing"

func TestCRC(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0},
		{"123456789", 0xfc891918},
		{"a\n", 0x633ed6e2},
		{"hello world", 0x44f71378},
	}
	for _, tt := range tests {
		if got := updateCRC(0, []byte(tt.in)); got != tt.want {
			t.Errorf("crc(%q) = %#08x, want %#08x", tt.in, got, tt.want)
		}
	}
}

func TestCRCIncremental(t *testing.T) {
	in := []byte("the quick brown fox jumps over the lazy dog")
	whole := updateCRC(0, in)
	for i := range in {
		if got := updateCRC(updateCRC(0, in[:i]), in[i:]); got != whole {
			t.Fatalf("split at %d: %#x != %#x", i, got, whole)
		}
	}
	if got, want := updateCRCRun(updateCRC(0, []byte("ab")), 'x', 7), updateCRC(0, []byte("abxxxxxxx")); got != want {
		t.Fatalf("run: %#x != %#x", got, want)
	}
}

func TestCombineCRC(t *testing.T) {
	if got := combineCRC(0, 0x633ed6e2); got != 0x633ed6e2 {
		t.Fatalf("first block: %#x", got)
	}
	if got := combineCRC(0x80000001, 0); got != 0x00000003 {
		t.Fatalf("rotate: %#x", got)
	}
}
