package bzip2

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"testing"
)

func TestBitWriterMSBFirst(t *testing.T) {
	var w bitWriter
	w.writeBits(1, 1)
	w.writeBits(0, 1)
	w.writeBits(5, 3)
	if len(w.bytes()) != 0 {
		t.Fatalf("partial byte emitted early: %x", w.bytes())
	}
	w.flush()
	if got := w.bytes(); !bytes.Equal(got, []byte{0xa8}) {
		t.Fatalf("got %x want a8", got)
	}

	w.reset()
	w.writeBits64(blockMagic, magicBits)
	want := []byte{0x31, 0x41, 0x59, 0x26, 0x53, 0x59}
	if got := w.bytes(); !bytes.Equal(got, want) {
		t.Fatalf("magic: got %x want %x", got, want)
	}
}

func TestBitRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	type field struct {
		v uint32
		n uint
	}
	var (
		fields []field
		w      bitWriter
	)
	for range 5000 {
		n := uint(1 + rng.IntN(32))
		v := rng.Uint32() & (uint32(1)<<n - 1)
		fields = append(fields, field{v, n})
		w.writeBits(v, n)
	}
	w.flush()

	var r bitReader
	if err := r.init(w.bytes(), 0); err != nil {
		t.Fatalf("init: %v", err)
	}
	for i, f := range fields {
		got, err := r.readBits(f.n)
		if err != nil {
			t.Fatalf("field %d: %v", i, err)
		}
		if got != f.v {
			t.Fatalf("field %d: got %#x want %#x (%d bits)", i, got, f.v, f.n)
		}
	}
}

func TestBitReaderOffsets(t *testing.T) {
	buf := []byte{0b1010_1100, 0b0101_0011, 0xff}
	var r bitReader
	if err := r.init(buf, 3); err != nil {
		t.Fatalf("init: %v", err)
	}
	v, err := r.readBits(5)
	if err != nil || v != 0b01100 {
		t.Fatalf("got %05b, %v", v, err)
	}
	if r.offset() != 8 {
		t.Fatalf("offset %d, want 8", r.offset())
	}
	if b, _ := r.readBit(); b {
		t.Fatalf("expected zero bit")
	}
	r.alignToByte()
	if r.offset() != 16 {
		t.Fatalf("aligned offset %d, want 16", r.offset())
	}
	v64, err := r.readBits64(8)
	if err != nil || v64 != 0xff {
		t.Fatalf("got %x, %v", v64, err)
	}
	if _, err := r.readBits(1); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("read past end: %v", err)
	}
}
