package memutils

import (
	"github.com/JohnCGriffin/overflow"
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer
}

func CheckPow2[T Number](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two
func AlignUp(value int, alignment uint) int {
	DebugCheckPow2(alignment, "alignment")
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

// CheckedAdd returns left+right and true, or false if the sum does not fit in an int
func CheckedAdd(left, right int) (int, bool) {
	return overflow.Add(left, right)
}

// CheckedMul returns left*right and true, or false if the product does not fit in an int
func CheckedMul(left, right int) (int, bool) {
	return overflow.Mul(left, right)
}
