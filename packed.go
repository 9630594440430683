package rrr

// setBits writes the low width bits of val at bit offset pos of words.
// The target range must be zero.
func setBits(words []uint64, pos uint64, width uint64, val uint64) {
	if width == 0 {
		return
	}
	block, offset := pos/BlockSize, pos%BlockSize
	words[block] |= val << offset
	if offset+width > BlockSize {
		words[block+1] |= val >> (BlockSize - offset)
	}
}

// getBits reads width bits at bit offset pos of words.
func getBits(words []uint64, pos uint64, width uint64) uint64 {
	if width == 0 {
		return 0
	}
	block, offset := pos/BlockSize, pos%BlockSize
	v := words[block] >> offset
	if offset+width > BlockSize {
		v |= words[block+1] << (BlockSize - offset)
	}
	if width == BlockSize {
		return v
	}
	return v & (1<<width - 1)
}
