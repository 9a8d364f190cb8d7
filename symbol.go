package bzip2

// Container and coder constants.
const (
	hdrMagic   = "BZh"
	hdrLen     = len(hdrMagic) + 1 // magic plus level digit
	blockMagic = 0x314159265359
	endMagic   = 0x177245385090
	magicBits  = 48

	blockUnit  = 100000 // raw block capacity per level
	blockSlack = 19     // room left for the run that closes a block
	minLevel   = 1
	maxLevel   = 9

	originBits    = 24 // origin pointer width, enough for 9*blockUnit
	tableCntBits  = 3
	selectorBits  = 15
	firstLenBits  = 5
	maxSelectors  = 2 + (maxLevel*blockUnit)/groupSize
	maxRunLength  = 2 * 1024 * 1024 // decoder guard against run overflow
	maxRLE1Run    = 255
	minRLE1Repeat = 4

	minTables    = 2
	maxTables    = 6
	groupSize    = 50 // symbols per selector
	refinePasses = 4

	maxCodeLen   = 20 // longest code the decoder accepts
	encCodeLen   = 17 // longest code the encoder produces
	maxAlphaSize = 256 + 2

	// Initial costs for the band partition that seeds table training.
	lesserCost  = 0
	greaterCost = 15
)

// symbol is one entry of the rank/run stream: RUNA, RUNB, a move-to-front
// rank shifted up by one, or the end-of-block marker.
type symbol uint16

const (
	runA symbol = 0
	runB symbol = 1
)

func (s symbol) isRun() bool { return s <= runB }

// eobSymbol returns the end-of-block symbol for a block using inUse
// distinct byte values.
func eobSymbol(inUse int) symbol { return symbol(inUse + 1) }

// tableCount returns how many coding tables a block of n symbols uses.
func tableCount(n int) int {
	switch {
	case n < 200:
		return 2
	case n < 600:
		return 3
	case n < 1200:
		return 4
	case n < 2400:
		return 5
	default:
		return maxTables
	}
}

// blockCapacity is the maximum number of bytes a block at level can hold
// after the initial run-length stage.
func blockCapacity(level int) int { return level*blockUnit - blockSlack }
