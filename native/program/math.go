package program

import (
	"math"

	gethmath "github.com/ethereum/go-ethereum/common/math"
)

// CheckedAdd64 adds two counters and refuses to wrap.
func CheckedAdd64(a, b uint64) (uint64, error) {
	sum, overflow := gethmath.SafeAdd(a, b)
	if overflow {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// CheckedInc32 increments a 32-bit counter and refuses to wrap.
func CheckedInc32(v uint32) (uint32, error) {
	if v == math.MaxUint32 {
		return 0, ErrArithmeticOverflow
	}
	return v + 1, nil
}
