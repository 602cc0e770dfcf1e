// Package npulower lowers a high-level neural-network description onto a
// graph of primitives a fixed-function NPU can execute: MCE (multiply/convolve
// engine) operations, PLE (programmable layer engine) kernels, format
// conversions, reinterprets, subtensor extractions, requantizations, and the
// input/output/constant buffers around them.
//
// The entry point is Convert (or NewConverter for estimation mode), which
// walks a network built with the network package in topological order and
// applies one rewrite rule per operation kind. The rules embed the hardware
// model: NHWCB brick-group granularity, kernel-size and stride limits, the
// padding algebra of transpose convolutions, and the weight transformations
// (padding, rotation, synthesis) the primitives require.
//
// Hardware parameters come from the Capabilities interface and supportedness
// verdicts from the SupportQueries interface; the caps package provides
// implementations for a baseline configuration.
package npulower
