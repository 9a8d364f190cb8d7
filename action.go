package bzip2

import "strconv"

// Action tells an Encoder or Decoder what to do after consuming its input.
type Action int

const (
	// Run consumes input and emits whatever output becomes available.
	Run Action = iota
	// Flush emits everything derivable from the input so far. An Encoder
	// closes the current block early; a Decoder parses without waiting
	// for the buffer to grow.
	Flush
	// Finish ends the stream. An Encoder writes the footer; a Decoder
	// treats missing data as truncation.
	Finish
)

func (a Action) String() string {
	switch a {
	case Run:
		return "run"
	case Flush:
		return "flush"
	case Finish:
		return "finish"
	}
	return "Action(" + strconv.Itoa(int(a)) + ")"
}
