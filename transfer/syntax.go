// Package transfer defines DICOM Transfer Syntax UIDs and the resolution
// rules the parser needs (endianness, explicit/implicit VR, support).
package transfer

import "strings"

// Syntax is a Transfer Syntax UID.
type Syntax string

// Recognized Transfer Syntaxes. Everything listed here is at least
// recognizable; Supported() narrows this to what this engine can decode
// (pixel decompression for the JPEG families is delegated to a FrameDecoder).
const (
	ImplicitVRLittleEndian Syntax = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian Syntax = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndian    Syntax = "1.2.840.10008.1.2.2" // retired

	JPEGBaseline Syntax = "1.2.840.10008.1.2.4.50"
	JPEGExtended Syntax = "1.2.840.10008.1.2.4.51"

	JPEGLossless           Syntax = "1.2.840.10008.1.2.4.57"
	JPEGLosslessFirstOrder Syntax = "1.2.840.10008.1.2.4.70"

	JPEG2000Lossless Syntax = "1.2.840.10008.1.2.4.90"
	JPEG2000         Syntax = "1.2.840.10008.1.2.4.91"

	RLELossless Syntax = "1.2.840.10008.1.2.5"
)

var supported = map[Syntax]bool{
	ImplicitVRLittleEndian: true,
	ExplicitVRLittleEndian: true,
	ExplicitVRBigEndian:    true,
	JPEGBaseline:           true,
	JPEGExtended:           true,
	JPEGLossless:           true,
	JPEGLosslessFirstOrder: true,
	JPEG2000Lossless:       true,
	JPEG2000:               true,
}

// Supported reports whether this engine can resolve an endianness/VR
// encoding and dispatch pixel data for s. Anything under .4.5x outside
// {50,51,57,70} or under .4.6x is treated as an unsupported, retired JPEG
// process, along with RLE (no RLE FrameDecoder is assumed by the core).
func (s Syntax) Supported() bool {
	return supported[s]
}

// IsImplicit reports whether s uses Implicit VR Little Endian encoding.
func (s Syntax) IsImplicit() bool {
	return s == ImplicitVRLittleEndian
}

// IsBigEndian reports whether the Data Set (never the File Meta group) is
// encoded big-endian.
func (s Syntax) IsBigEndian() bool {
	return s == ExplicitVRBigEndian
}

// IsEncapsulated reports whether Pixel Data under s is carried as
// undefined-length fragmented items rather than a flat native buffer.
func (s Syntax) IsEncapsulated() bool {
	switch s {
	case ImplicitVRLittleEndian, ExplicitVRLittleEndian, ExplicitVRBigEndian:
		return false
	default:
		return true
	}
}

// CompressionAlgorithm classifies s for PixelPipeline dispatch.
type CompressionAlgorithm string

const (
	AlgorithmNone         CompressionAlgorithm = "none"
	AlgorithmJPEGBaseline CompressionAlgorithm = "jpeg-baseline"
	AlgorithmJPEGLossless CompressionAlgorithm = "jpeg-lossless"
	AlgorithmJPEG2000     CompressionAlgorithm = "jpeg2000"
	AlgorithmUnknown      CompressionAlgorithm = "unknown"
)

// Algorithm returns the compression family of s.
func (s Syntax) Algorithm() CompressionAlgorithm {
	switch s {
	case ImplicitVRLittleEndian, ExplicitVRLittleEndian, ExplicitVRBigEndian:
		return AlgorithmNone
	case JPEGBaseline, JPEGExtended:
		return AlgorithmJPEGBaseline
	case JPEGLossless, JPEGLosslessFirstOrder:
		return AlgorithmJPEGLossless
	case JPEG2000Lossless, JPEG2000:
		return AlgorithmJPEG2000
	default:
		return AlgorithmUnknown
	}
}

// Name returns a human-readable name, used in UnsupportedSyntax error
// messages and CLI output.
func (s Syntax) Name() string {
	switch s {
	case ImplicitVRLittleEndian:
		return "Implicit VR Little Endian"
	case ExplicitVRLittleEndian:
		return "Explicit VR Little Endian"
	case ExplicitVRBigEndian:
		return "Explicit VR Big Endian (Retired)"
	case JPEGBaseline:
		return "JPEG Baseline (Process 1)"
	case JPEGExtended:
		return "JPEG Extended (Process 2 & 4)"
	case JPEGLossless:
		return "JPEG Lossless (Process 14)"
	case JPEGLosslessFirstOrder:
		return "JPEG Lossless, Non-Hierarchical, First-Order Prediction (Process 14 SV1)"
	case JPEG2000Lossless:
		return "JPEG 2000 Lossless"
	case JPEG2000:
		return "JPEG 2000"
	case RLELossless:
		return "RLE Lossless"
	default:
		return string(s)
	}
}

// FromUID trims whitespace/NUL padding the way a UI-VR element value would
// carry it, and wraps it as a Syntax.
func FromUID(uid string) Syntax {
	return Syntax(strings.TrimRight(strings.TrimSpace(uid), "\x00"))
}
