// Package codec provides a uniform interface over this module's bzip2
// implementation and the third-party compression libraries it sits next
// to, selected by name.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/axiomhq/bzip2"
	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/therootcompany/xz"
)

// ErrUnknown is returned for a codec name no implementation is registered
// for.
var ErrUnknown = errors.New("codec: unknown codec")

// Compressor compresses whole buffers.
type Compressor interface {
	// Name returns the registry name the Compressor was selected by.
	Name() string
	// Compress appends the encoding of src to dst.
	Compress(src, dst []byte) []byte
}

// Decompressor decodes whole buffers whose decoded size is known.
type Decompressor interface {
	// Name returns the codec family, which for bzip2 omits the level.
	Name() string
	// Decompress decodes src into dst, which must be exactly the size
	// of the decoded data. Implementations may be shared between
	// goroutines.
	Decompress(src, dst []byte) error
}

// bzip2 encoders and decoders keep large block buffers between uses.
var (
	bzEncoders [10]sync.Pool // by level
	bzDecoders = sync.Pool{New: func() any { return bzip2.NewDecoder() }}
)

func getEncoder(level int) *bzip2.Encoder {
	if e, ok := bzEncoders[level].Get().(*bzip2.Encoder); ok {
		e.Reset()
		return e
	}
	e, err := bzip2.NewEncoder(level)
	if err != nil {
		panic(err)
	}
	return e
}

type bzip2Codec struct {
	name  string
	level int
}

func (b bzip2Codec) Name() string { return b.name }

func (b bzip2Codec) Compress(src, dst []byte) []byte {
	e := getEncoder(b.level)
	defer bzEncoders[b.level].Put(e)
	out, err := e.AppendEncode(dst, src, bzip2.Finish)
	if err != nil {
		// a fresh encoder accepts any input
		panic(err)
	}
	return out
}

func (b bzip2Codec) Decompress(src, dst []byte) error {
	d := bzDecoders.Get().(*bzip2.Decoder)
	defer bzDecoders.Put(d)
	d.Reset()
	ret, err := d.AppendDecode(dst[:0:len(dst)], src, bzip2.Finish)
	if err != nil {
		return err
	}
	return checkFilled("bzip2", ret, dst)
}

type zstdCompressor struct {
	name string
	enc  *zstd.Encoder
}

func (z zstdCompressor) Compress(src, dst []byte) []byte {
	return z.enc.EncodeAll(src, dst)
}

func (z zstdCompressor) Name() string { return z.name }

var (
	zstdOnce    sync.Once
	zstdDecoder *zstd.Decoder
)

func sharedZstd() *zstd.Decoder {
	zstdOnce.Do(func() {
		z, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
		if err != nil {
			panic(err)
		}
		zstdDecoder = z
	})
	return zstdDecoder
}

type zstdDecompressor struct{}

func (zstdDecompressor) Name() string { return "zstd" }

func (zstdDecompressor) Decompress(src, dst []byte) error {
	ret, err := sharedZstd().DecodeAll(src, dst[:0:len(dst)])
	if err != nil {
		return err
	}
	return checkFilled("zstd", ret, dst)
}

type s2Codec struct{}

func (s2Codec) Name() string { return "s2" }

func (s2Codec) Compress(src, dst []byte) []byte {
	return append(dst, s2.Encode(nil, src)...)
}

func (s2Codec) Decompress(src, dst []byte) error {
	ret, err := s2.Decode(dst[:0:len(dst)], src)
	if err != nil {
		return err
	}
	return checkFilled("s2", ret, dst)
}

type gzipCodec struct{}

func (gzipCodec) Name() string { return "gzip" }

func (gzipCodec) Compress(src, dst []byte) []byte {
	buf := bytes.NewBuffer(dst)
	w := gzip.NewWriter(buf)
	w.Write(src)
	w.Close()
	return buf.Bytes()
}

func (gzipCodec) Decompress(src, dst []byte) error {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return err
	}
	return readFull("gzip", r, dst)
}

// xz is only ever read.
type xzDecompressor struct{}

func (xzDecompressor) Name() string { return "xz" }

func (xzDecompressor) Decompress(src, dst []byte) error {
	r, err := xz.NewReader(bytes.NewReader(src), xz.DefaultDictMax)
	if err != nil {
		return err
	}
	return readFull("xz", r, dst)
}

// checkFilled reports whether a decoder wrote its output in place into
// dst and filled it.
func checkFilled(name string, ret, dst []byte) error {
	switch {
	case len(ret) != len(dst):
		return fmt.Errorf("%s: decoded %d bytes into a %d byte buffer", name, len(ret), len(dst))
	case len(ret) > 0 && &ret[0] != &dst[0]:
		return fmt.Errorf("%s: decoder grew the output buffer", name)
	}
	return nil
}

func readFull(name string, r io.Reader, dst []byte) error {
	if _, err := io.ReadFull(r, dst); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	// reading to the end makes the decoder verify its trailer
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if n > 0 {
		return fmt.Errorf("%s: more than %d bytes decompressed", name, len(dst))
	}
	return nil
}

// bzip2Level parses "bzip2" and "bzip2-N".
func bzip2Level(name string) (int, bool) {
	if name == "bzip2" {
		return 9, true
	}
	rest, ok := strings.CutPrefix(name, "bzip2-")
	if !ok {
		return 0, false
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > 9 {
		return 0, false
	}
	return level, true
}

// Compression returns the Compressor registered as name, or nil.
// Its Name method reports name back.
func Compression(name string) Compressor {
	if level, ok := bzip2Level(name); ok {
		return bzip2Codec{name: name, level: level}
	}
	switch name {
	case "zstd-better":
		z, _ := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithEncoderConcurrency(1))
		return zstdCompressor{name: name, enc: z}
	case "zstd":
		z, _ := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		return zstdCompressor{name: name, enc: z}
	case "s2":
		return s2Codec{}
	case "gzip":
		return gzipCodec{}
	default:
		return nil
	}
}

// Decompression returns the Decompressor for name, or nil. Every
// "bzip2-N" name shares the "bzip2" decoder.
func Decompression(name string) Decompressor {
	if _, ok := bzip2Level(name); ok {
		return bzip2Codec{name: "bzip2"}
	}
	switch name {
	case "zstd", "zstd-better":
		return zstdDecompressor{}
	case "s2":
		return s2Codec{}
	case "gzip":
		return gzipCodec{}
	case "xz":
		return xzDecompressor{}
	default:
		return nil
	}
}

var suffixes = map[string]string{
	".bz2": "bzip2",
	".zst": "zstd",
	".gz":  "gzip",
	".s2":  "s2",
	".xz":  "xz",
}

// BySuffix returns the codec name for the extension of path, or "" when
// the extension is not a compressed format.
func BySuffix(path string) string {
	return suffixes[strings.ToLower(filepath.Ext(path))]
}

// Suffix returns the file extension for the codec name, or "".
func Suffix(name string) string {
	if _, ok := bzip2Level(name); ok {
		name = "bzip2"
	}
	if name == "zstd-better" {
		name = "zstd"
	}
	for ext, n := range suffixes {
		if n == name {
			return ext
		}
	}
	return ""
}

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

// NewReader returns a reader decompressing r with the named codec.
func NewReader(name string, r io.Reader) (io.ReadCloser, error) {
	if _, ok := bzip2Level(name); ok {
		return nopCloser{bzip2.NewReader(r)}, nil
	}
	switch name {
	case "zstd", "zstd-better":
		z, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return z.IOReadCloser(), nil
	case "s2":
		return nopCloser{s2.NewReader(r)}, nil
	case "gzip":
		z, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return z, nil
	case "xz":
		z, err := xz.NewReader(r, xz.DefaultDictMax)
		if err != nil {
			return nil, err
		}
		return nopCloser{z}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknown, name)
}

// NewWriter returns a writer compressing to w with the named codec.
// Closing it completes the compressed stream but leaves w open.
func NewWriter(name string, w io.Writer) (io.WriteCloser, error) {
	if level, ok := bzip2Level(name); ok {
		z, err := bzip2.NewWriter(w, level)
		if err != nil {
			return nil, err
		}
		return z, nil
	}
	switch name {
	case "zstd", "zstd-better":
		level := zstd.SpeedDefault
		if name == "zstd-better" {
			level = zstd.SpeedBetterCompression
		}
		z, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level))
		if err != nil {
			return nil, err
		}
		return z, nil
	case "s2":
		return s2.NewWriter(w), nil
	case "gzip":
		return gzip.NewWriter(w), nil
	case "xz":
		return nil, fmt.Errorf("codec: xz is decompress only")
	}
	return nil, fmt.Errorf("%w %q", ErrUnknown, name)
}

// Sum64 returns the xxhash64 fingerprint of data.
func Sum64(data []byte) uint64 { return xxhash.Sum64(data) }

// Sum64Reader returns the xxhash64 fingerprint and length of everything
// read from r.
func Sum64Reader(r io.Reader) (uint64, int64, error) {
	var h xxhash.Digest
	h.Reset()
	n, err := io.Copy(&h, r)
	return h.Sum64(), n, err
}
