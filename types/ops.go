package types

// PleOperation enumerates the programmable-layer-engine kernels the lowering
// can target. Fuse-only kernels run fused after an MCE operation in the same
// pass; standalone kernels consume DRAM input directly.
type PleOperation int

//go:generate go tool enumer -type=PleOperation -trimprefix=Ple -output=gen_pleoperation_enumer.go ops.go

const (
	// PleMeanXY8x8 averages the whole XY plane (the "mean" pooling pattern).
	PleMeanXY8x8 PleOperation = iota

	// PleAvgPool3x3UDMA is a 3x3 stride-1 average pooling, standalone.
	PleAvgPool3x3UDMA

	// PleMaxPool2x2 is a 2x2 stride-2 max pooling.
	PleMaxPool2x2

	// PleMaxPool3x3 is a 3x3 stride-2 max pooling.
	PleMaxPool3x3

	PleSigmoid

	// PleAddition adds two tensors that share quantization parameters.
	PleAddition

	// PleAdditionRescale adds two tensors, rescaling each to the output
	// quantization.
	PleAdditionRescale

	// PleInterleave2x2 reformats a tensor into stride-2 sub-maps so a strided
	// convolution can run as a stride-1 convolution over the interleaved data.
	PleInterleave2x2
)

// MceOperation enumerates the multiply/convolve-engine operation modes.
type MceOperation int

//go:generate go tool enumer -type=MceOperation -trimprefix=Mce -output=gen_mceoperation_enumer.go ops.go

const (
	MceConvolution MceOperation = iota
	MceDepthwiseConvolution
	MceFullyConnected
)
