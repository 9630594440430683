package rrr

import (
	"math/bits"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// randomBlock returns a block with exactly popcount set bits.
func randomBlock(rnd *rand.Rand, popcount int) uint64 {
	var block uint64
	for _, i := range rnd.Perm(BlockSize)[:popcount] {
		block |= 1 << i
	}
	return block
}

// sampleBlocks returns a few blocks of every class, including runs at both
// ends of the block.
func sampleBlocks() []uint64 {
	rnd := rand.New(rand.NewSource(42))
	var blocks []uint64
	for p := 0; p <= BlockSize; p++ {
		for i := 0; i < 8; i++ {
			blocks = append(blocks, randomBlock(rnd, p))
		}
		if p < BlockSize {
			blocks = append(blocks, 1<<p-1, ^(^uint64(0) >> p))
		}
	}
	return blocks
}

func TestEncodeDecode(t *testing.T) {
	for _, block := range sampleBlocks() {
		p := uint64(bits.OnesCount64(block))
		code := Encode(block, p)
		require.Equal(t, block, Decode(code, p), "class %d code %d", p, code)
		require.NoError(t, Validate(code, p))

		switch {
		case p == 0 || p == BlockSize:
			require.Zero(t, code)
		case isRawClass(p):
			require.Equal(t, block, code)
		default:
			require.Less(t, code, Binomial(BlockSize, p))
		}
		require.LessOrEqual(t, bits.Len64(code), int(ClassWidth(p)))
	}
}

func TestEncodeBijection(t *testing.T) {
	// every pattern of a small class maps onto [0, C(64,2))
	seen := make([]bool, Binomial(BlockSize, 2))
	for i := 0; i < BlockSize; i++ {
		for j := i + 1; j < BlockSize; j++ {
			code := Encode(1<<i|1<<j, 2)
			require.False(t, seen[code], "code %d twice", code)
			seen[code] = true
		}
	}

	// and the mirrored class shares the codes of its complement
	for i := 0; i < BlockSize; i++ {
		block := uint64(1) << i
		require.Equal(t, Encode(block, 1), Encode(^block, BlockSize-1))
	}
}

func TestBit(t *testing.T) {
	for _, block := range sampleBlocks() {
		p := uint64(bits.OnesCount64(block))
		code := Encode(block, p)
		for pos := uint64(0); pos < BlockSize; pos++ {
			expect := block>>pos&1 == 1
			if Bit(code, p, pos) != expect {
				t.Fatalf("Bit(%d, %d, %d) of %#016x: expected %t", code, p, pos, block, expect)
			}
		}
	}
}

func TestRank(t *testing.T) {
	for _, block := range sampleBlocks() {
		p := uint64(bits.OnesCount64(block))
		code := Encode(block, p)
		for pos := uint64(0); pos < BlockSize; pos++ {
			expect := uint64(bits.OnesCount64(block & (1<<pos - 1)))
			if got := Rank(code, p, pos); got != expect {
				t.Fatalf("Rank(%d, %d, %d) of %#016x: expected %d; got %d", code, p, pos, block, expect, got)
			}
			bit, rank := BitAndRank(code, p, pos)
			require.Equal(t, block>>pos&1 == 1, bit)
			require.Equal(t, expect, rank)
		}
	}
}

func TestSelect(t *testing.T) {
	for _, block := range sampleBlocks() {
		p := uint64(bits.OnesCount64(block))
		code := Encode(block, p)

		for num := uint64(0); num < p; num++ {
			pos := Select(code, p, num, true)
			require.True(t, block>>pos&1 == 1, "select1 %d of %#016x gave %d", num, block, pos)
			require.Equal(t, num, Rank(code, p, pos))
		}
		for num := uint64(0); num < BlockSize-p; num++ {
			pos := Select(code, p, num, false)
			require.True(t, block>>pos&1 == 0, "select0 %d of %#016x gave %d", num, block, pos)
			require.Equal(t, num, pos-Rank(code, p, pos))
		}

		require.Panics(t, func() { Select(code, p, p, true) })
		require.Panics(t, func() { Select(code, p, BlockSize-p, false) })
	}
}

func TestEmptyAndFullBlocks(t *testing.T) {
	for _, code := range []uint64{0, 1, 12345} {
		require.Zero(t, Decode(code, 0))
		require.Equal(t, ^uint64(0), Decode(code, BlockSize))
	}
	require.Zero(t, Encode(0, 0))
	require.Zero(t, Encode(^uint64(0), BlockSize))

	for pos := uint64(0); pos < BlockSize; pos++ {
		require.False(t, Bit(0, 0, pos))
		require.True(t, Bit(0, BlockSize, pos))
		require.Zero(t, Rank(0, 0, pos))
		require.Equal(t, pos, Rank(0, BlockSize, pos))
		require.Equal(t, pos, Select(0, BlockSize, pos, true))
		require.Equal(t, pos, Select(0, 0, pos, false))
	}
	require.Panics(t, func() { Select(0, BlockSize, 0, false) })
	require.Panics(t, func() { Select(0, 0, 0, true) })
}

func TestSingleBit(t *testing.T) {
	code := Encode(1<<5, 1)
	require.Equal(t, uint64(58), code)
	require.Equal(t, binomialCoefs[1][58], code)
	require.Equal(t, uint64(1<<5), Decode(58, 1))
	require.Equal(t, uint64(5), Select(58, 1, 0, true))
}

func TestSingleZero(t *testing.T) {
	block := ^uint64(1 << 3)
	code := Encode(block, 63)
	require.Equal(t, uint64(60), code)
	require.Equal(t, block, Decode(60, 63))
	require.False(t, Bit(60, 63, 3))
	require.True(t, Bit(60, 63, 4))
	require.Equal(t, uint64(3), Select(60, 63, 0, false))
	require.Equal(t, uint64(4), Select(60, 63, 3, true))
}

func TestZeroBlock(t *testing.T) {
	require.Zero(t, Encode(0, 0))
	for pos := uint64(0); pos < BlockSize; pos++ {
		require.False(t, Bit(0, 0, pos))
	}
	require.Zero(t, Select(0, 0, 0, false))
}

func BenchmarkEncode(b *testing.B) {
	blocks := sampleBlocks()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		block := blocks[i%len(blocks)]
		Encode(block, uint64(bits.OnesCount64(block)))
	}
}

func BenchmarkRank(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	block := randomBlock(rnd, 10)
	code := Encode(block, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Rank(code, 10, uint64(i%BlockSize))
	}
}

func BenchmarkSelect(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	block := randomBlock(rnd, 10)
	code := Encode(block, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Select(code, 10, uint64(i%10), true)
	}
}
