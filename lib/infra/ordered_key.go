package infra

import "cmp"

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
// Complex numbers are left out, they have no total order.
type OrderedKey interface {
	Integer | Float | ~string
}

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j (i-j == 0, return 0)
//  2. i > j (i-j > 0, return 1), turn to right part.
//  3. i < j (i-j < 0, return -1), turn to left part.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

// AscKeyComparator orders NaN before every other float and equal to
// itself, so a NaN key is unique like any other key.
func AscKeyComparator[K OrderedKey](i, j K) int64 {
	return int64(cmp.Compare(i, j))
}

// DescKeyComparator reverses the natural order, the greatest key
// is placed at the leftmost position.
func DescKeyComparator[K OrderedKey](i, j K) int64 {
	return AscKeyComparator[K](j, i)
}
