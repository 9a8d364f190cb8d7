// Command bzz compresses and decompresses files with bzip2 or any other
// codec of package codec.
//
// Usage:
//
//	bzz [-d | -t] [-k] [-c] [-level n] [-codec name] [files...]
//
// With no files, or the file "-", it filters standard input to standard
// output. Arguments with glob patterns, including "**", are expanded.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/axiomhq/bzip2/codec"
	"github.com/bmatcuk/doublestar/v4"
)

var (
	dflag     = flag.Bool("d", false, "decompress")
	tflag     = flag.Bool("t", false, "test integrity and print the xxhash64 of the contents")
	kflag     = flag.Bool("k", false, "keep input files")
	cflag     = flag.Bool("c", false, "write to standard output")
	vflag     = flag.Bool("v", false, "verbose logging")
	level     = flag.Int("level", 9, "bzip2 block size level 1..9")
	codecName = flag.String("codec", "bzip2", "codec for compression, and for decompressing files without a known suffix")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bzz [-d | -t] [-k] [-c] [-level n] [-codec name] [files...]")
		flag.PrintDefaults()
	}
	flag.Parse()

	lvl := slog.LevelInfo
	if *vflag {
		lvl = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	if *level < 1 || *level > 9 {
		log.Error("invalid level", slog.Int("level", *level))
		os.Exit(1)
	}
	files, err := expand(flag.Args())
	if err != nil {
		log.Error("bad pattern", slog.Any("err", err))
		os.Exit(1)
	}
	failed := false
	for _, name := range files {
		if err := run(log, name); err != nil {
			log.Error("bzz failed", slog.String("file", name), slog.Any("err", err))
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// expand replaces glob patterns in args with the files they match.
func expand(args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{"-"}, nil
	}
	var files []string
	for _, arg := range args {
		if arg == "-" || !strings.ContainsAny(arg, "*?[{") {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %s", arg)
		}
		files = append(files, matches...)
	}
	return files, nil
}

// compressionName returns the codec used for compressing.
func compressionName() string {
	if *codecName == "bzip2" {
		return fmt.Sprintf("bzip2-%d", *level)
	}
	return *codecName
}

func run(log *slog.Logger, name string) error {
	switch {
	case *tflag:
		return test(name)
	case *dflag:
		return decompress(log, name)
	default:
		return compress(log, name)
	}
}

func open(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

func test(name string) error {
	f, err := open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	r, err := codec.NewReader(decoderFor(name), f)
	if err != nil {
		return err
	}
	defer r.Close()
	sum, n, err := codec.Sum64Reader(r)
	if err != nil {
		return err
	}
	fmt.Printf("%016x  %d  %s\n", sum, n, name)
	return nil
}

func decoderFor(name string) string {
	if c := codec.BySuffix(name); c != "" {
		return c
	}
	return *codecName
}

func compress(log *slog.Logger, name string) error {
	cname := compressionName()
	suffix := codec.Suffix(cname)
	if suffix == "" && !*cflag && name != "-" {
		return fmt.Errorf("no file suffix for codec %q", cname)
	}
	return convert(log, name, name+suffix, func(dst io.Writer, src io.Reader) error {
		w, err := codec.NewWriter(cname, dst)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, src); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	})
}

func decompress(log *slog.Logger, name string) error {
	cname := decoderFor(name)
	out := strings.TrimSuffix(name, filepath.Ext(name))
	if codec.BySuffix(name) == "" && !*cflag && name != "-" {
		return errors.New("unknown suffix; use -c to write to standard output")
	}
	return convert(log, name, out, func(dst io.Writer, src io.Reader) error {
		r, err := codec.NewReader(cname, src)
		if err != nil {
			return err
		}
		defer r.Close()
		_, err = io.Copy(dst, r)
		return err
	})
}

// convert runs fn from the input file to the output file, or to stdout
// with -c and for stdin. The output appears under its final name only
// once it is complete; the input is then removed unless -k is given.
func convert(log *slog.Logger, in, out string, fn func(io.Writer, io.Reader) error) error {
	src, err := open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	if *cflag || in == "-" {
		return fn(os.Stdout, src)
	}
	if _, err := os.Lstat(out); err == nil {
		return fmt.Errorf("output %s already exists", out)
	}
	tmp, err := os.CreateTemp(filepath.Dir(out), ".bzz-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := fn(tmp, src); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return err
	}
	log.Debug("wrote", slog.String("in", in), slog.String("out", out))
	if !*kflag {
		return os.Remove(in)
	}
	return nil
}
