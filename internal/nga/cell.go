package nga

import "math"

// Cell is the machine word. Both widths share one implementation.
type Cell interface {
	~int32 | ~int64
}

const (
	ImageSize  = 1048576
	Addresses  = 256
	StackDepth = 256
	TIB        = 1025
	NumDevices = 9
	MaxString  = 8192
)

// Bits reports the width of C.
func Bits[C Cell]() int {
	if C(1)<<31 < 0 {
		return 32
	}
	return 64
}

// Limits returns the smallest and largest values a guest can fetch as
// "min" and "max". They sit one inside the machine range.
func Limits[C Cell]() (lo, hi C) {
	if Bits[C]() == 32 {
		lo32, hi32 := int64(math.MinInt32+1), int64(math.MaxInt32-1)
		return C(lo32), C(hi32)
	}
	lo64, hi64 := int64(math.MinInt64+1), int64(math.MaxInt64-1)
	return C(lo64), C(hi64)
}

// flag converts a Go bool to a guest truth value.
func flag[C Cell](b bool) C {
	if b {
		return -1
	}
	return 0
}
