package rrr

import (
	"math/bits"
)

// maxEnumWidth is the widest code worth storing enumerated. Classes whose
// codes need more bits are stored as the raw block.
const maxEnumWidth = 46

// binomialCoefs[r][m] is C(m, r). Only r <= BlockSize/2 is kept, larger
// classes are complemented before lookup.
var binomialCoefs [BlockSize/2 + 1][BlockSize]uint64

// classWidths is the number of bits used to store a code of each class.
var classWidths [BlockSize + 1]uint8

// Build coefficients lookup table and a table to lookup space usage for a specific class.
func init() {
	// Set first row
	for m := 0; m < BlockSize; m++ {
		binomialCoefs[0][m] = 1
	}

	for r := 1; r <= BlockSize/2; r++ {
		for m := 1; m < BlockSize; m++ {
			binomialCoefs[r][m] = binomialCoefs[r-1][m-1] + binomialCoefs[r][m-1]
		}
	}

	// Generate class widths
	for p := uint64(0); p <= BlockSize; p++ {
		w := bits.Len64(Binomial(BlockSize, p) - 1)
		if w > maxEnumWidth {
			w = BlockSize
		}
		classWidths[p] = uint8(w)
	}
}

// Binomial returns C(n, k) for n <= 64. It is zero when k > n.
func Binomial(n, k uint64) uint64 {
	if n > BlockSize {
		panic("rrr: binomial row larger than block size")
	}
	if k > n {
		return 0
	}
	if n-k < k {
		k = n - k
	}
	if n < BlockSize {
		return binomialCoefs[k][n]
	}
	if k == 0 {
		return 1
	}
	return binomialCoefs[k-1][n-1] + binomialCoefs[k][n-1]
}

// ClassWidth returns the number of bits a code of the given class occupies.
// It is BlockSize for classes stored raw.
func ClassWidth(popcount uint64) uint64 {
	return uint64(classWidths[popcount])
}

func isRawClass(popcount uint64) bool {
	return classWidths[popcount] == BlockSize
}

// normalize maps a class above BlockSize/2 onto its complement class.
func normalize(popcount uint64) (k uint64, mirrored bool) {
	if popcount > BlockSize/2 {
		return BlockSize - popcount, true
	}
	return popcount, false
}
