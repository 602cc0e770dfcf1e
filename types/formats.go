package types

import "github.com/gomlx/exceptions"

// DataFormat is the external layout of a tensor: NHWC and NHWCB for
// activations, HWIO and HWIM for weights (per-output vs per-multiplier
// indexing of the trailing axes).
type DataFormat int

//go:generate go tool enumer -type=DataFormat -output=gen_dataformat_enumer.go formats.go

const (
	NHWC DataFormat = iota
	NHWCB
	HWIO
	HWIM
)

// CompilerDataFormat is the layout of a lowered node's output as the compiler
// tracks it. Weight is the format of HWIO/HWIM constants, which are consumed
// by the weight encoder rather than DMA'd as activations.
type CompilerDataFormat int

//go:generate go tool enumer -type=CompilerDataFormat -trimprefix=Compiler -output=gen_compilerdataformat_enumer.go formats.go

const (
	CompilerNone CompilerDataFormat = iota
	CompilerNHWC
	CompilerNHWCB
	CompilerWeight
)

// ExternalToCompilerFormat maps an external DataFormat to the corresponding
// CompilerDataFormat.
func ExternalToCompilerFormat(format DataFormat) CompilerDataFormat {
	switch format {
	case NHWC:
		return CompilerNHWC
	case NHWCB:
		return CompilerNHWCB
	case HWIO, HWIM:
		return CompilerWeight
	}
	exceptions.Panicf("unknown external data format %s", format)
	return CompilerNone
}

// PoolingType distinguishes average from max pooling.
type PoolingType int

//go:generate go tool enumer -type=PoolingType -trimprefix=Pooling -output=gen_poolingtype_enumer.go formats.go

const (
	PoolingAvg PoolingType = iota
	PoolingMax
)

// SupportedLevel is the three-valued verdict of the support oracle.
type SupportedLevel int

//go:generate go tool enumer -type=SupportedLevel -output=gen_supportedlevel_enumer.go formats.go

const (
	// Unsupported operations cannot be compiled nor estimated.
	Unsupported SupportedLevel = iota

	// EstimateOnly operations lower to a placeholder node that preserves
	// shape/quantization so downstream can estimate performance.
	EstimateOnly

	// Supported operations lower to executable primitives.
	Supported
)
