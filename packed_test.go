package rrr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackedBits(t *testing.T) {
	words := make([]uint64, 4)
	fields := []struct{ width, val uint64 }{
		{6, 58}, {0, 0}, {64, 0xdeadbeefcafef00d}, {46, 1<<46 - 1}, {11, 2015}, {64, 1},
	}

	var pos uint64
	for _, f := range fields {
		setBits(words, pos, f.width, f.val)
		pos += f.width
	}

	pos = 0
	for _, f := range fields {
		require.Equal(t, f.val, getBits(words, pos, f.width), "field at %d", pos)
		pos += f.width
	}
}
