// Package utils holds small helpers shared across the compiler packages.
package utils

// DivRoundUp returns numerator/denominator rounded up to the nearest integer.
func DivRoundUp(numerator, denominator uint32) uint32 {
	return (numerator + denominator - 1) / denominator
}

// RoundUpToNearestMultiple returns value rounded up to the nearest multiple of
// multiple. multiple must be non-zero.
func RoundUpToNearestMultiple(value, multiple uint32) uint32 {
	return DivRoundUp(value, multiple) * multiple
}
