package utils

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
)

// DTypeSize returns the size in bytes of one element of the given dtype.
// Only the element types the hardware stores in DRAM are mapped.
func DTypeSize(dtype dtypes.DType) uint32 {
	switch dtype {
	case dtypes.U8, dtypes.S8:
		return 1
	case dtypes.U16, dtypes.S16:
		return 2
	case dtypes.U32, dtypes.S32:
		return 4
	default:
		panic(fmt.Sprintf("unsupported element type %s", dtype))
	}
}
