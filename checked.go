package rrr

import (
	"math/bits"

	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrPopcountRange is returned for a class larger than BlockSize.
	ErrPopcountRange = errors.NewKind("popcount %d out of range [0,64]")
	// ErrPopcountMismatch is returned when a block does not belong to the class it is encoded in.
	ErrPopcountMismatch = errors.NewKind("block %#016x has %d set bits, not %d")
	// ErrCodeRange is returned when a code names no block of its class.
	ErrCodeRange = errors.NewKind("code %d is not valid for class %d")
	// ErrPositionRange is returned for a position outside the block.
	ErrPositionRange = errors.NewKind("position %d out of range [0,64)")
	// ErrSelectRange is returned when fewer than num+1 occurrences of the bit exist.
	ErrSelectRange = errors.NewKind("select %d of bit %t, block has %d")
)

// Validate checks that (code, popcount) is a pair Encode can produce.
func Validate(code uint64, popcount uint64) error {
	switch {
	case popcount > BlockSize:
		return ErrPopcountRange.New(popcount)
	case popcount == 0 || popcount == BlockSize:
		if code != 0 {
			return ErrCodeRange.New(code, popcount)
		}
	case isRawClass(popcount):
		if uint64(bits.OnesCount64(code)) != popcount {
			return ErrCodeRange.New(code, popcount)
		}
	default:
		if code >= Binomial(BlockSize, popcount) {
			return ErrCodeRange.New(code, popcount)
		}
	}
	return nil
}

func validatePos(pos uint64) error {
	if pos >= BlockSize {
		return ErrPositionRange.New(pos)
	}
	return nil
}

// EncodeChecked is Encode for blocks whose class is not trusted.
func EncodeChecked(block uint64, popcount uint64) (uint64, error) {
	if popcount > BlockSize {
		return 0, ErrPopcountRange.New(popcount)
	}
	if n := uint64(bits.OnesCount64(block)); n != popcount {
		return 0, ErrPopcountMismatch.New(block, n, popcount)
	}
	return Encode(block, popcount), nil
}

// DecodeChecked is Decode for pairs read from untrusted input.
func DecodeChecked(code uint64, popcount uint64) (uint64, error) {
	if err := Validate(code, popcount); err != nil {
		return 0, err
	}
	return Decode(code, popcount), nil
}

// BitChecked is Bit for pairs and positions read from untrusted input.
func BitChecked(code uint64, popcount uint64, pos uint64) (bool, error) {
	if err := Validate(code, popcount); err != nil {
		return false, err
	}
	if err := validatePos(pos); err != nil {
		return false, err
	}
	return Bit(code, popcount, pos), nil
}

// BitAndRankChecked is BitAndRank for pairs and positions read from untrusted input.
func BitAndRankChecked(code uint64, popcount uint64, pos uint64) (bool, uint64, error) {
	if err := Validate(code, popcount); err != nil {
		return false, 0, err
	}
	if err := validatePos(pos); err != nil {
		return false, 0, err
	}
	bit, rank := BitAndRank(code, popcount, pos)
	return bit, rank, nil
}

// RankChecked is Rank for pairs and positions read from untrusted input.
func RankChecked(code uint64, popcount uint64, pos uint64) (uint64, error) {
	if err := Validate(code, popcount); err != nil {
		return 0, err
	}
	if err := validatePos(pos); err != nil {
		return 0, err
	}
	return Rank(code, popcount, pos), nil
}

// SelectChecked is Select returning ErrSelectRange instead of panicking.
func SelectChecked(code uint64, popcount uint64, num uint64, bit bool) (uint64, error) {
	if err := Validate(code, popcount); err != nil {
		return 0, err
	}
	occurrences := popcount
	if !bit {
		occurrences = BlockSize - popcount
	}
	if num >= occurrences {
		return 0, ErrSelectRange.New(num, bit, occurrences)
	}
	return Select(code, popcount, num, bit), nil
}
