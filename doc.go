// Package bzip2 implements the bzip2 compressed container: a streaming
// block-sorting encoder and decoder whose output other bzip2 tools read and
// whose input they write.
//
// # Overview
//
// Input is split into blocks of up to level*100000 bytes (level 1..9).
// Each block is transformed in stages:
//   - Initial run-length stage: runs of 4 to 255 equal bytes become four
//     copies and a count byte
//   - Block sort: the Burrows-Wheeler transform over cyclic rotations
//   - Move-to-front ranking, with runs of rank zero written as RUNA/RUNB
//     digits
//   - Entropy coding with 2 to 6 Huffman tables, switched every 50 symbols
//
// Each block carries a CRC of its input; the stream footer carries a
// combination of all block CRCs. Decoding undoes the stages in reverse and
// checks both.
//
// # Streaming
//
// Encoder and Decoder consume input in chunks of any size and hand back
// output lazily as an iter.Seq2 of byte chunks. An Action tells them what
// to do after the input:
//   - Run: consume input, emit what is ready
//   - Flush: emit everything derivable from the input so far
//   - Finish: end the stream
//
// Output chunks are owned by the Encoder or Decoder and valid only until
// the next iteration step. AppendEncode and AppendDecode copy them into a
// caller slice; Writer and Reader wrap the same machinery as io.Writer and
// io.Reader.
//
// # Degenerate Blocks
//
// Highly repetitive blocks make the block sort slow. When the sort is
// still mostly unresolved at a configurable depth, the block is XORed with
// a fixed pseudo-random schedule, flagged as randomized, and sorted again.
// Decoders undo the schedule. Some decoders, including the standard
// library's compress/bzip2, reject randomized blocks.
//
// # Basic Usage
//
//	compressed, err := bzip2.Compress(data, 9)
//	if err != nil {
//	    return err
//	}
//	original, err := bzip2.Decompress(compressed)
//
//	// Or stream
//	enc, _ := bzip2.NewEncoder(9)
//	for chunk, err := range enc.Encode(part, bzip2.Run) {
//	    ...
//	}
//	for chunk, err := range enc.Encode(nil, bzip2.Finish) {
//	    ...
//	}
//
// # Logging
//
// WithLogger attaches a log/slog logger that receives one Debug record per
// block and per stream with sizes, checksums and table statistics.
package bzip2
