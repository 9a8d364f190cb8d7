package bzip2

import "math/bits"

// The container checksums each block with the MSB-first CRC-32
// (polynomial 0x04C11DB7, all-ones init and final XOR), known elsewhere as
// CRC-32/BZIP2.
const crcPoly = 0x04c11db7

var crcTable = func() (t [256]uint32) {
	for i := range t {
		c := uint32(i) << 24
		for range 8 {
			if c&0x80000000 != 0 {
				c = c<<1 ^ crcPoly
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return t
}()

// updateCRC returns crc extended with buf. A zero crc is the checksum of
// no input.
func updateCRC(crc uint32, buf []byte) uint32 {
	crc = ^crc
	for _, b := range buf {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return ^crc
}

// updateCRCRun returns crc extended with n copies of b.
func updateCRCRun(crc uint32, b byte, n int) uint32 {
	crc = ^crc
	for range n {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return ^crc
}

// combineCRC folds a block checksum into the stream checksum.
func combineCRC(stream, block uint32) uint32 {
	return bits.RotateLeft32(stream, 1) ^ block
}
