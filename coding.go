package rrr

import (
	"math/bits"
)

// BlockSize is the number of bits per block.
const BlockSize = 64

const errSelectRange = "rrr: select past the last occurrence in block"

// Encode returns the index of block in size class popcount.
//
// popcount must be the number of set bits in block. Classes stored raw
// (see ClassWidth) return the block itself, so code < Binomial(64, popcount)
// only holds for the enumerated classes; every code fits in
// ClassWidth(popcount) bits.
func Encode(block uint64, popcount uint64) (code uint64) {
	if popcount == 0 || popcount == BlockSize {
		return 0
	}
	if isRawClass(popcount) {
		return block
	}

	k, mirrored := normalize(popcount)
	if mirrored {
		block = ^block
	}
	for block != 0 {
		i := bits.TrailingZeros64(block)
		code += binomialCoefs[k][BlockSize-1-i]
		k--
		block &= block - 1
	}
	return code
}

// Decode returns the block for index code in size class popcount.
func Decode(code uint64, popcount uint64) (block uint64) {
	switch {
	case popcount == 0:
		return 0
	case popcount == BlockSize:
		return ^uint64(0)
	case isRawClass(popcount):
		return code
	}

	k, mirrored := normalize(popcount)
	for i := 0; i < BlockSize; i++ {
		coef := binomialCoefs[k][BlockSize-1-i]
		if code >= coef {
			block |= 1 << i
			code -= coef
			k--
			if k == 0 {
				break
			}
		}
	}
	if mirrored {
		return ^block
	}
	return block
}

// skip consumes the thresholds of positions [0, pos) and returns what is
// left of code and of the normalized class.
func skip(code, k, pos uint64) (uint64, uint64) {
	for i := uint64(0); i < pos; i++ {
		coef := binomialCoefs[k][BlockSize-1-i]
		if code >= coef {
			code -= coef
			k--
		}
	}
	return code, k
}

// Bit reports whether bit pos of the block encoded as (code, popcount) is set.
func Bit(code uint64, popcount uint64, pos uint64) bool {
	switch {
	case popcount == 0:
		return false
	case popcount == BlockSize:
		return true
	case isRawClass(popcount):
		return code>>pos&1 == 1
	}

	k, mirrored := normalize(popcount)
	code, k = skip(code, k, pos)
	return mirrored != (code >= binomialCoefs[k][BlockSize-1-pos])
}

// BitAndRank returns Bit(code, popcount, pos) together with
// Rank(code, popcount, pos), scanning the code once.
func BitAndRank(code uint64, popcount uint64, pos uint64) (bool, uint64) {
	switch {
	case popcount == 0:
		return false, 0
	case popcount == BlockSize:
		return true, pos
	case isRawClass(popcount):
		return code>>pos&1 == 1, uint64(bits.OnesCount64(code & (1<<pos - 1)))
	}

	n, mirrored := normalize(popcount)
	code, k := skip(code, n, pos)
	set := code >= binomialCoefs[k][BlockSize-1-pos]
	if mirrored {
		return !set, pos - n + k
	}
	return set, n - k
}

// Rank returns the number of set bits in positions [0, pos) of the block
// encoded as (code, popcount).
func Rank(code uint64, popcount uint64, pos uint64) uint64 {
	switch {
	case popcount == 0:
		return 0
	case popcount == BlockSize:
		return pos
	case isRawClass(popcount):
		return uint64(bits.OnesCount64(code & (1<<pos - 1)))
	}

	n, mirrored := normalize(popcount)
	_, k := skip(code, n, pos)
	if mirrored {
		return pos - n + k
	}
	return n - k
}

// Select returns the position of the num-th (counting from 0) occurrence of
// bit in the block encoded as (code, popcount).
//
// num must be less than the number of bit's in the block, otherwise Select
// panics.
func Select(code uint64, popcount uint64, num uint64, bit bool) uint64 {
	switch {
	case popcount == 0 || popcount == BlockSize:
		if bit != (popcount == BlockSize) || num >= BlockSize {
			panic(errSelectRange)
		}
		return num
	case isRawClass(popcount):
		if !bit {
			code = ^code
		}
		return selectWord(code, num)
	}

	k, mirrored := normalize(popcount)
	if bit != mirrored {
		return selectSet(code, k, num)
	}
	return selectUnset(code, k, num)
}

// selectSet finds the num-th position whose threshold is crossed, that is
// the num-th set bit of the normalized block.
func selectSet(code, k, num uint64) uint64 {
	for i := uint64(0); i < BlockSize; i++ {
		coef := binomialCoefs[k][BlockSize-1-i]
		if code >= coef {
			if num == 0 {
				return i
			}
			num--
			code -= coef
			k--
		}
	}
	panic(errSelectRange)
}

// selectUnset finds the num-th unset bit of the normalized block.
func selectUnset(code, k, num uint64) uint64 {
	for i := uint64(0); i < BlockSize; i++ {
		coef := binomialCoefs[k][BlockSize-1-i]
		if code >= coef {
			code -= coef
			k--
		} else {
			if num == 0 {
				return i
			}
			num--
		}
	}
	panic(errSelectRange)
}

// selectWord returns the position of the num-th set bit of w.
func selectWord(w uint64, num uint64) uint64 {
	for ; num > 0 && w != 0; num-- {
		w &= w - 1
	}
	if w == 0 {
		panic(errSelectRange)
	}
	return uint64(bits.TrailingZeros64(w))
}
