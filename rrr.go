package rrr

import (
	"math/bits"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/bits-and-blooms/bitset"
	"gopkg.in/src-d/go-errors.v1"
)

// blocksPerSuperblock is the number of blocks per superblock, used for the rank/
// select overlay structure.
const blocksPerSuperblock = 32

// ErrSize is returned when the requested size cannot hold the input bits.
var ErrSize = errors.NewKind("size %d is smaller than the %d bits of input")

// RRR is a static compressed bit vector represented as
//
// Succinct indexable dictionaries with applications to encoding k-ary trees and multisets
type RRR struct {
	// size is the number of bits in the vector.
	size uint64
	// ones is the number of set bits in the vector.
	ones uint64
	// classes holds the popcount of each block.
	classes []uint8
	// codes holds the code of each block, packed in ClassWidth bits.
	codes []uint64
	// superBlockPtrs is the bit offset in codes of the first block of each superblock.
	superBlockPtrs []uint64
	// superBlockRank is the number of set bits before each superblock.
	superBlockRank []uint64
}

// New builds a compressed bitvector from the first b.Len() bits of b.
func New(b *bitset.BitSet) (*RRR, error) {
	return NewFromWords(b.Bytes(), uint64(b.Len()))
}

// NewFromRoaring builds a compressed bitvector of size bits from rb.
func NewFromRoaring(rb *roaring.Bitmap, size uint64) (*RRR, error) {
	if !rb.IsEmpty() && uint64(rb.Maximum()) >= size {
		return nil, ErrSize.New(size, uint64(rb.Maximum())+1)
	}
	words := make([]uint64, (size+BlockSize-1)/BlockSize)
	it := rb.Iterator()
	for it.HasNext() {
		v := it.Next()
		words[v/BlockSize] |= 1 << (v % BlockSize)
	}
	return NewFromWords(words, size)
}

// NewFromWords builds a compressed bitvector from the first size bits of
// words, bit i being bit i%64 of words[i/64].
func NewFromWords(words []uint64, size uint64) (*RRR, error) {
	if size > uint64(len(words))*BlockSize {
		return nil, ErrSize.New(size, uint64(len(words))*BlockSize)
	}
	blockCount := (size + BlockSize - 1) / BlockSize
	superBlockCount := (blockCount + blocksPerSuperblock - 1) / blocksPerSuperblock
	r := &RRR{
		size:           size,
		classes:        make([]uint8, blockCount),
		superBlockPtrs: make([]uint64, superBlockCount),
		superBlockRank: make([]uint64, superBlockCount),
	}

	// Set block classes and determine size of the codes.
	var codeLen uint64
	for b := uint64(0); b < blockCount; b++ {
		k := uint64(bits.OnesCount64(blockAt(words, b, size)))
		r.classes[b] = uint8(k)
		codeLen += ClassWidth(k)
	}
	r.codes = make([]uint64, (codeLen+BlockSize-1)/BlockSize)

	var offset uint64
	for b := uint64(0); b < blockCount; b++ {
		if b%blocksPerSuperblock == 0 {
			// Starting a new super block. Set offset and prefix sum up to this
			// point.
			r.superBlockPtrs[b/blocksPerSuperblock] = offset
			r.superBlockRank[b/blocksPerSuperblock] = r.ones
		}
		k := uint64(r.classes[b])
		w := ClassWidth(k)
		setBits(r.codes, offset, w, Encode(blockAt(words, b, size), k))
		offset += w
		r.ones += k
	}
	return r, nil
}

// blockAt returns block b of words with the bits at and past size cleared.
func blockAt(words []uint64, b uint64, size uint64) uint64 {
	block := words[b]
	if tail := size - b*BlockSize; tail < BlockSize {
		block &= 1<<tail - 1
	}
	return block
}

// block returns the class and code of block b.
func (r *RRR) block(b uint64) (class, code uint64) {
	sb := b / blocksPerSuperblock
	offset := r.superBlockPtrs[sb]
	for i := sb * blocksPerSuperblock; i < b; i++ {
		offset += ClassWidth(uint64(r.classes[i]))
	}
	class = uint64(r.classes[b])
	return class, getBits(r.codes, offset, ClassWidth(class))
}

// Access returns true if i is set
func (r *RRR) Access(i uint64) bool {
	if i >= r.size {
		panic("unable to access bit larger than size")
	}
	class, code := r.block(i / BlockSize)
	return Bit(code, class, i%BlockSize)
}

// Rank1 returns the number of set bits before the ith bit.
func (r *RRR) Rank1(i uint64) uint64 {
	if i >= r.size {
		if i > r.size {
			panic("unable to rank past size")
		}
		return r.ones
	}

	block := i / BlockSize
	superBlock := block / blocksPerSuperblock

	rank := r.superBlockRank[superBlock]
	offset := r.superBlockPtrs[superBlock]
	for b := superBlock * blocksPerSuperblock; b < block; b++ {
		class := uint64(r.classes[b])
		offset += ClassWidth(class)
		rank += class
	}

	if i%BlockSize == 0 {
		return rank
	}
	class := uint64(r.classes[block])
	return rank + Rank(getBits(r.codes, offset, ClassWidth(class)), class, i%BlockSize)
}

// Rank0 returns the number of unset bits before the ith bit.
func (r *RRR) Rank0(i uint64) uint64 {
	return i - r.Rank1(i)
}

// BitAndRank returns Access(i) and Rank1(i).
func (r *RRR) BitAndRank(i uint64) (bool, uint64) {
	if i >= r.size {
		panic("unable to access bit larger than size")
	}

	block := i / BlockSize
	superBlock := block / blocksPerSuperblock

	rank := r.superBlockRank[superBlock]
	offset := r.superBlockPtrs[superBlock]
	for b := superBlock * blocksPerSuperblock; b < block; b++ {
		class := uint64(r.classes[b])
		offset += ClassWidth(class)
		rank += class
	}

	class := uint64(r.classes[block])
	bit, blockRank := BitAndRank(getBits(r.codes, offset, ClassWidth(class)), class, i%BlockSize)
	return bit, rank + blockRank
}

// Select returns the position of the ith (counting from 0) occurrence of bit.
func (r *RRR) Select(i uint64, bit bool) uint64 {
	if bit {
		return r.Select1(i)
	}
	return r.Select0(i)
}

// Select1 returns the index of the ith (counting from 0) set bit.
func (r *RRR) Select1(i uint64) uint64 {
	if i >= r.ones {
		panic("unable to select past the last set bit")
	}

	// Find superblock which contains what we are looking for
	superBlock := sort.Search(len(r.superBlockRank), func(idx int) bool {
		return r.superBlockRank[idx] > i
	}) - 1

	// Iterate through the blocks of this super block until we've found
	// the one containing the bit we're interested in.
	offset := r.superBlockPtrs[superBlock]
	rank := r.superBlockRank[superBlock]
	b := uint64(superBlock * blocksPerSuperblock)
	for ; ; b++ {
		class := uint64(r.classes[b])
		if rank+class > i {
			break
		}
		rank += class
		offset += ClassWidth(class)
	}

	class := uint64(r.classes[b])
	code := getBits(r.codes, offset, ClassWidth(class))
	return b*BlockSize + Select(code, class, i-rank, true)
}

// Select0 returns the index of the ith (counting from 0) unset bit.
func (r *RRR) Select0(i uint64) uint64 {
	if i >= r.size-r.ones {
		panic("unable to select past the last unset bit")
	}

	// Find superblock which contains what we are looking for. Padding of the
	// last block sits after every real zero, so it is never selected.
	superBlock := sort.Search(len(r.superBlockRank), func(idx int) bool {
		return uint64(idx)*blocksPerSuperblock*BlockSize-r.superBlockRank[idx] > i
	}) - 1

	offset := r.superBlockPtrs[superBlock]
	rank0 := uint64(superBlock)*blocksPerSuperblock*BlockSize - r.superBlockRank[superBlock]
	b := uint64(superBlock * blocksPerSuperblock)
	for ; ; b++ {
		class := uint64(r.classes[b])
		zeroes := BlockSize - class
		if rank0+zeroes > i {
			break
		}
		rank0 += zeroes
		offset += ClassWidth(class)
	}

	class := uint64(r.classes[b])
	code := getBits(r.codes, offset, ClassWidth(class))
	return b*BlockSize + Select(code, class, i-rank0, false)
}

// Size returns the number of bits in r
func (r *RRR) Size() uint64 {
	return r.size
}

// Ones returns the number of set bits in r
func (r *RRR) Ones() uint64 {
	return r.ones
}

// ClassHistogram returns the number of blocks in each class.
func (r *RRR) ClassHistogram() (h [BlockSize + 1]uint64) {
	for _, k := range r.classes {
		h[k]++
	}
	return h
}

// Uncompress returns an uncompressed bit vector
func (r *RRR) Uncompress() *bitset.BitSet {
	uncompressed := bitset.New(uint(r.size))
	var offset uint64
	for b, k := range r.classes {
		class := uint64(k)
		w := ClassWidth(class)
		block := Decode(getBits(r.codes, offset, w), class)
		offset += w
		for block != 0 {
			uncompressed.Set(uint(uint64(b)*BlockSize + uint64(bits.TrailingZeros64(block))))
			block &= block - 1
		}
	}
	return uncompressed
}

// SizeInBytes returns the number of bytes held by r.
func (r *RRR) SizeInBytes() uint64 {
	return uint64(len(r.classes)) + uint64(len(r.codes)*8) +
		uint64(len(r.superBlockPtrs)*8) + uint64(len(r.superBlockRank)*8)
}
