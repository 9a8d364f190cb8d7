package bzip2

import (
	"cmp"
	"slices"
)

// blowupShare is the inverse fraction of a block that may remain unsorted
// at the depth limit before the block is declared degenerate.
const blowupShare = 4

// A bwtSorter orders the cyclic rotations of a block by prefix doubling:
// after the round for h, rotations are grouped by their first 2h bytes.
// Each round only re-sorts the groups that are still tied, keyed by the
// group of the rotation h bytes further on.
//
// The scratch arrays are kept between blocks.
type bwtSorter struct {
	sa     []int32 // rotation start, in sorted order
	rank   []int32 // first index in sa of the group holding each rotation
	keys   []rotKey
	groups []span
	next   []span
}

type rotKey struct {
	idx int32
	key int32
}

// span is a run sa[lo:hi] of rotations that compare equal so far.
type span struct {
	lo, hi int32
}

func (s *bwtSorter) grow(n int) {
	if cap(s.sa) < n {
		s.sa = make([]int32, n)
		s.rank = make([]int32, n)
		s.keys = make([]rotKey, n)
	}
}

// sort writes the last column of the sorted rotation matrix of block into
// dst and returns the row holding the unrotated block.
//
// With limit > 0 the sort stops once h reaches limit and more than
// 1/blowupShare of the rotations are still tied; it then reports false and
// dst is unspecified.
func (s *bwtSorter) sort(dst, block []byte, limit int) (origin int, ok bool) {
	n := len(block)
	if n == 0 {
		return 0, true
	}
	s.grow(n)
	sa, rank, keys := s.sa[:n], s.rank[:n], s.keys[:n]

	var start [257]int32
	for _, c := range block {
		start[int(c)+1]++
	}
	for c := 1; c < len(start); c++ {
		start[c] += start[c-1]
	}
	fill := start
	for i, c := range block {
		sa[fill[c]] = int32(i)
		fill[c]++
		rank[i] = start[c]
	}
	groups := s.groups[:0]
	for c := range 256 {
		if start[c+1]-start[c] > 1 {
			groups = append(groups, span{start[c], start[c+1]})
		}
	}
	next := s.next[:0]
	defer func() { s.groups, s.next = groups[:0], next[:0] }()

	for h := 1; len(groups) > 0; h *= 2 {
		if h >= n {
			// Still tied after n bytes: the rotations are identical.
			for _, g := range groups {
				slices.Sort(sa[g.lo:g.hi])
			}
			break
		}
		if limit > 0 && h >= limit {
			tied := 0
			for _, g := range groups {
				tied += int(g.hi - g.lo)
			}
			if tied*blowupShare > n {
				return 0, false
			}
		}
		for _, g := range groups {
			seg := keys[g.lo:g.hi]
			for k := range seg {
				i := int(sa[int(g.lo)+k])
				j := i + h
				if j >= n {
					j -= n
				}
				seg[k] = rotKey{idx: int32(i), key: rank[j]}
			}
			slices.SortFunc(seg, func(a, b rotKey) int { return cmp.Compare(a.key, b.key) })
			for k, rk := range seg {
				sa[int(g.lo)+k] = rk.idx
			}
		}
		next = next[:0]
		for _, g := range groups {
			seg := keys[g.lo:g.hi]
			lo := g.lo
			for k := 1; k <= len(seg); k++ {
				if k < len(seg) && seg[k].key == seg[k-1].key {
					continue
				}
				hi := g.lo + int32(k)
				for p := lo; p < hi; p++ {
					rank[sa[p]] = lo
				}
				if hi-lo > 1 {
					next = append(next, span{lo, hi})
				}
				lo = hi
			}
		}
		groups, next = next, groups
	}

	for p, i := range sa {
		if i == 0 {
			origin = p
			dst[p] = block[n-1]
		} else {
			dst[p] = block[i-1]
		}
	}
	return origin, true
}

// inverseBWT links tt into the order that regenerates a block and returns
// the position to start the walk from. On entry the low byte of each tt
// entry holds the last-column byte and counts holds how often each byte
// occurs; counts is clobbered.
//
// Walking is: pos = tt[pos]; emit byte(pos); pos >>= 8.
func inverseBWT(tt []uint32, origin int, counts *[256]int) uint32 {
	sum := 0
	for c, k := range counts {
		counts[c] = sum
		sum += k
	}
	for i, v := range tt {
		c := v & 0xff
		tt[counts[c]] |= uint32(i) << 8
		counts[c]++
	}
	return tt[origin] >> 8
}
