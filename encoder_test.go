package bzip2

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
)

var sampleWords = strings.Fields(`the quick brown fox jumps over lazy dog
	pack my box with five dozen liquor jugs sphinx of black quartz judge vow
	block sorting compression moves bytes into runs that entropy coders love`)

// sampleText returns n bytes of word salad, reproducible from seed.
func sampleText(n int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	b := make([]byte, 0, n+16)
	for len(b) < n {
		b = append(b, sampleWords[rng.IntN(len(sampleWords))]...)
		if rng.IntN(12) == 0 {
			b = append(b, '\n')
		} else {
			b = append(b, ' ')
		}
	}
	return b[:n]
}

func randomBytes(n int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, 1))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rng.Uint32())
	}
	return b
}

// encodeChunks feeds in to a fresh encoder in pieces of the given sizes,
// cycling through sizes, and finishes the stream.
func encodeChunks(t testing.TB, level int, in []byte, sizes ...int) []byte {
	t.Helper()
	e, err := NewEncoder(level)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	var out []byte
	for i := 0; len(in) > 0; i++ {
		n := min(sizes[i%len(sizes)], len(in))
		if out, err = e.AppendEncode(out, in[:n], Run); err != nil {
			t.Fatalf("Run: %v", err)
		}
		in = in[n:]
	}
	if out, err = e.AppendEncode(out, nil, Finish); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return out
}

func TestEncodeEmpty(t *testing.T) {
	out, err := Compress(nil, 9)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	want := []byte{'B', 'Z', 'h', '9', 0x17, 0x72, 0x45, 0x38, 0x50, 0x90, 0, 0, 0, 0}
	if !bytes.Equal(out, want) {
		t.Fatalf("got %x want %x", out, want)
	}
	got, err := Decompress(out)
	if err != nil || len(got) != 0 {
		t.Fatalf("Decompress: %q, %v", got, err)
	}
}

func TestEncodeHeader(t *testing.T) {
	out, err := Compress([]byte("a\n"), 9)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	// Stream header, block magic and the CRC of "a\n".
	want := []byte{0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0x63, 0x3e, 0xd6, 0xe2}
	if !bytes.HasPrefix(out, want) {
		t.Fatalf("got %x, want prefix %x", out, want)
	}
	if out[len(want)]&0x80 != 0 {
		t.Fatalf("short block marked randomized")
	}
}

func TestEncodeGolden(t *testing.T) {
	// Byte-identical to the reference bzip2 for this input.
	want, _ := hex.DecodeString("425a6839314159265359633ed6e2000000c100001020002000210082b177245385090633ed6e20")
	got, err := Compress([]byte("a\n"), 9)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got  %x\nwant %x", got, want)
	}
}

func TestInvalidLevel(t *testing.T) {
	for _, level := range []int{-1, 0, 10} {
		if _, err := NewEncoder(level); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("level %d: got %v", level, err)
		}
	}
}

func TestRoundtrip(t *testing.T) {
	inputs := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"byte", []byte{0}},
		{"two", []byte("a\n")},
		{"allBytes", func() []byte {
			b := make([]byte, 256)
			for i := range b {
				b[i] = byte(i)
			}
			return b
		}()},
		{"runs", bytes.Repeat([]byte("aaaaaaabbbbbbbbbbbbbbbbbbc"), 1000)},
		{"text", sampleText(250000, 1)},
		{"random", randomBytes(150000, 2)},
		{"zeros", make([]byte, 400000)},
		{"pattern", []byte("aabbaabbaabbaabb\n")},
	}
	for _, level := range []int{1, 9} {
		for _, in := range inputs {
			t.Run(in.name, func(t *testing.T) {
				comp, err := Compress(in.data, level)
				if err != nil {
					t.Fatalf("Compress: %v", err)
				}
				got, err := Decompress(comp)
				if err != nil {
					t.Fatalf("Decompress: %v", err)
				}
				if !bytes.Equal(got, in.data) {
					t.Fatalf("roundtrip mismatch: %d bytes in, %d out", len(in.data), len(got))
				}
			})
		}
	}
}

func TestIncrementalMatchesOneShot(t *testing.T) {
	in := sampleText(260000, 3)
	want, err := Compress(in, 1)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	for _, sizes := range [][]int{{1}, {7, 1000, 3}, {65536}, {99981, 1}} {
		src := in
		if sizes[0] == 1 && len(sizes) == 1 {
			src = in[:20000]
		}
		got := encodeChunks(t, 1, src, sizes...)
		ref := want
		if len(src) != len(in) {
			if ref, err = Compress(src, 1); err != nil {
				t.Fatalf("Compress: %v", err)
			}
		}
		if !bytes.Equal(got, ref) {
			t.Fatalf("chunk sizes %v: output differs from one-shot", sizes)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	in := sampleText(120000, 4)
	a, _ := Compress(in, 5)
	b, _ := Compress(in, 5)
	if !bytes.Equal(a, b) {
		t.Fatalf("same input compressed differently")
	}
}

func TestRandomizedBlock(t *testing.T) {
	in := bytes.Repeat([]byte{'a'}, 100000)
	comp, err := Compress(in, 9)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if comp[14]&0x80 == 0 {
		t.Fatalf("degenerate block not randomized")
	}
	got, err := Decompress(comp)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, in) {
		t.Fatalf("randomized roundtrip mismatch")
	}

	// Without a depth limit the same block sorts to completion.
	e, _ := NewEncoder(9, WithDepthLimit(-1))
	comp, err = e.AppendEncode(nil, in, Finish)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if comp[14]&0x80 != 0 {
		t.Fatalf("block randomized with the check disabled")
	}
	if got, err = Decompress(comp); err != nil || !bytes.Equal(got, in) {
		t.Fatalf("unlimited roundtrip: %v", err)
	}
}

func TestEncodeBlocksLazily(t *testing.T) {
	e, _ := NewEncoder(1)
	in := sampleText(350000, 5)
	chunks := 0
	for chunk, err := range e.Encode(in, Run) {
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if len(chunk) == 0 {
			t.Fatalf("empty chunk")
		}
		chunks++
	}
	if chunks != 3 {
		t.Fatalf("%d chunks for three full blocks", chunks)
	}
}

func TestEncodeResumesAfterBreak(t *testing.T) {
	in := sampleText(350000, 6)
	want, _ := Compress(in, 1)

	e, _ := NewEncoder(1)
	var out []byte
	for chunk, err := range e.Encode(in, Run) {
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		out = append(out, chunk...)
		break
	}
	out, err := e.AppendEncode(out, nil, Finish)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !bytes.Equal(out, want) {
		t.Fatalf("resumed output differs")
	}
}

func TestEncodeAfterFinish(t *testing.T) {
	e, _ := NewEncoder(9)
	if _, err := e.AppendEncode(nil, []byte("x"), Finish); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	out, err := e.AppendEncode(nil, nil, Finish)
	if err != nil || len(out) != 0 {
		t.Fatalf("empty Finish after Finish: %x, %v", out, err)
	}
	if _, err := e.AppendEncode(nil, []byte("y"), Run); !errors.Is(err, ErrFinished) {
		t.Fatalf("input after Finish: %v", err)
	}

	e.Reset()
	out, err = e.AppendEncode(nil, []byte("y"), Finish)
	if err != nil {
		t.Fatalf("after Reset: %v", err)
	}
	if got, err := Decompress(out); err != nil || string(got) != "y" {
		t.Fatalf("after Reset: %q, %v", got, err)
	}
}

func TestEncodeReentrant(t *testing.T) {
	in := sampleText(250000, 8)
	want, _ := Compress(in, 1)

	e, _ := NewEncoder(1)
	var out []byte
	for chunk, err := range e.Encode(in, Finish) {
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		out = append(out, chunk...)
		if _, err := e.AppendEncode(nil, []byte("nested"), Run); !errors.Is(err, ErrBusy) {
			t.Fatalf("nested Encode: %v", err)
		}
	}
	if !bytes.Equal(out, want) {
		t.Fatalf("output changed by rejected nested calls")
	}
}

func TestFlushExposesPrefix(t *testing.T) {
	in := sampleText(30000, 7)
	e, _ := NewEncoder(9)
	d := NewDecoder()
	var (
		out     []byte
		decoded []byte
		flushed []int // input length at each flush
	)
	for i := 0; i < len(in); i += 5000 {
		part := in[i:min(i+5000, len(in))]
		var err error
		if out, err = e.AppendEncode(out[:0], part, Flush); err != nil {
			t.Fatalf("Flush: %v", err)
		}
		flushed = append(flushed, i+len(part))
		if decoded, err = d.AppendDecode(decoded, out, Flush); err != nil {
			t.Fatalf("decode after flush %d: %v", len(flushed), err)
		}
		if !bytes.HasPrefix(in, decoded) {
			t.Fatalf("decoded data is not a prefix of the input")
		}
		// Every block but the newest is complete in the flushed bytes.
		if k := len(flushed); k > 1 && len(decoded) < flushed[k-2] {
			t.Fatalf("flush %d: decoded %d bytes, want at least %d", k, len(decoded), flushed[k-2])
		}
	}
	out, err := e.AppendEncode(out[:0], nil, Finish)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if decoded, err = d.AppendDecode(decoded, out, Finish); err != nil {
		t.Fatalf("final decode: %v", err)
	}
	if !bytes.Equal(decoded, in) {
		t.Fatalf("flushed stream mismatch")
	}
}

func BenchmarkEncode(b *testing.B) {
	inputs := []struct {
		name string
		data []byte
	}{
		{"text_1MB", sampleText(1<<20, 1)},
		{"random_256KB", randomBytes(256<<10, 2)},
	}
	for _, in := range inputs {
		b.Run(in.name, func(b *testing.B) {
			e, _ := NewEncoder(9)
			var out []byte
			b.SetBytes(int64(len(in.data)))
			b.ReportAllocs()
			for b.Loop() {
				e.Reset()
				out, _ = e.AppendEncode(out[:0], in.data, Finish)
			}
			b.ReportMetric(float64(len(out))/float64(len(in.data)), "ratio")
		})
	}
}
