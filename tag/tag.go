// Package tag defines the DICOM Tag identity value and the standard tag
// constants this engine recognizes.
package tag

import (
	"encoding/json"
	"fmt"
)

// Tag is an immutable (group, element) pair identifying a data element.
type Tag struct {
	Group   uint16
	Element uint16
}

// New creates a Tag from its group and element numbers.
func New(group, element uint16) Tag {
	return Tag{Group: group, Element: element}
}

// Equals reports whether t and other identify the same element.
func (t Tag) Equals(other Tag) bool {
	return t.Group == other.Group && t.Element == other.Element
}

// IsPrivate reports whether t is a private tag (odd group number).
func (t Tag) IsPrivate() bool {
	return t.Group%2 == 1
}

// IsFileMeta reports whether t belongs to the File Meta Information group
// (0002), which is always Explicit VR Little Endian regardless of the
// transfer syntax named in the data set.
func (t Tag) IsFileMeta() bool {
	return t.Group == 0x0002
}

// Key returns the canonical map key for t: the lowercase 8-hex-digit
// concatenation "ggggeeee" prefixed with "x". This form is
// used only as an in-memory map key and is never written to the wire.
func (t Tag) Key() string {
	return fmt.Sprintf("x%04x%04x", t.Group, t.Element)
}

// String renders t the way DICOM documentation does: "(GGGG,EEEE)".
func (t Tag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.Group, t.Element)
}

// MarshalJSON renders t as its String() form.
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// FromKey parses a canonical Key() string back into a Tag. It returns
// false if key is not a well-formed "xggggeeee" string.
func FromKey(key string) (Tag, bool) {
	if len(key) != 9 || key[0] != 'x' {
		return Tag{}, false
	}
	var group, element uint16
	if _, err := fmt.Sscanf(key[1:], "%04x%04x", &group, &element); err != nil {
		return Tag{}, false
	}
	return Tag{Group: group, Element: element}, true
}

// Delimiter tags, used to terminate undefined-length items and sequences.
var (
	Item                     = Tag{0xFFFE, 0xE000}
	ItemDelimitationItem     = Tag{0xFFFE, 0xE00D}
	SequenceDelimitationItem = Tag{0xFFFE, 0xE0DD}
)

// IsDelimiter reports whether t is one of the three structural delimiter
// tags, which never carry a VR on the wire.
func (t Tag) IsDelimiter() bool {
	return t == Item || t == ItemDelimitationItem || t == SequenceDelimitationItem
}

// File Meta Information (Group 0002).
var (
	FileMetaInformationGroupLength = Tag{0x0002, 0x0000}
	FileMetaInformationVersion     = Tag{0x0002, 0x0001}
	MediaStorageSOPClassUID        = Tag{0x0002, 0x0002}
	MediaStorageSOPInstanceUID     = Tag{0x0002, 0x0003}
	TransferSyntaxUID              = Tag{0x0002, 0x0010}
	ImplementationClassUID         = Tag{0x0002, 0x0012}
	ImplementationVersionName      = Tag{0x0002, 0x0013}
	SpecificCharacterSet           = Tag{0x0008, 0x0005}
)

// Patient Module (Group 0010).
var (
	PatientName      = Tag{0x0010, 0x0010}
	PatientID        = Tag{0x0010, 0x0020}
	PatientBirthDate = Tag{0x0010, 0x0030}
	PatientSex       = Tag{0x0010, 0x0040}
	PatientAge       = Tag{0x0010, 0x1010}
	PatientComments  = Tag{0x0010, 0x4000}
)

// General Study Module.
var (
	StudyDate        = Tag{0x0008, 0x0020}
	StudyTime        = Tag{0x0008, 0x0030}
	AccessionNumber  = Tag{0x0008, 0x0050}
	StudyDescription = Tag{0x0008, 0x1030}
	StudyInstanceUID = Tag{0x0020, 0x000D}
	StudyID          = Tag{0x0020, 0x0010}
)

// General Series Module.
var (
	Modality               = Tag{0x0008, 0x0060}
	SeriesInstanceUID      = Tag{0x0020, 0x000E}
	SeriesNumber           = Tag{0x0020, 0x0011}
	InstanceNumber         = Tag{0x0020, 0x0013}
	SeriesDescription      = Tag{0x0008, 0x103E}
	SeriesDate             = Tag{0x0008, 0x0021}
	SeriesTime             = Tag{0x0008, 0x0031}
	PresentationIntentType = Tag{0x0008, 0x0068}
)

// General Equipment Module.
var (
	Manufacturer          = Tag{0x0008, 0x0070}
	InstitutionName       = Tag{0x0008, 0x0080}
	StationName           = Tag{0x0008, 0x1010}
	ManufacturerModelName = Tag{0x0008, 0x1090}
	DeviceSerialNumber    = Tag{0x0018, 0x1000}
	SoftwareVersions      = Tag{0x0018, 0x1020}
)

// SOP Common Module.
var (
	SOPClassUID          = Tag{0x0008, 0x0016}
	SOPInstanceUID       = Tag{0x0008, 0x0018}
	InstanceCreationDate = Tag{0x0008, 0x0012}
	InstanceCreationTime = Tag{0x0008, 0x0013}
)

// Frame of Reference Module.
var (
	FrameOfReferenceUID        = Tag{0x0020, 0x0052}
	PositionReferenceIndicator = Tag{0x0020, 0x1040}
)

// Image Pixel Module (Group 0028) and Pixel Data (Group 7FE0).
var (
	SamplesPerPixel           = Tag{0x0028, 0x0002}
	PhotometricInterpretation = Tag{0x0028, 0x0004}
	PlanarConfiguration       = Tag{0x0028, 0x0006}
	Rows                      = Tag{0x0028, 0x0010}
	Columns                   = Tag{0x0028, 0x0011}
	BitsAllocated             = Tag{0x0028, 0x0100}
	BitsStored                = Tag{0x0028, 0x0101}
	HighBit                   = Tag{0x0028, 0x0102}
	PixelRepresentation       = Tag{0x0028, 0x0103}
	PixelData                 = Tag{0x7FE0, 0x0010}
	NumberOfFrames            = Tag{0x0028, 0x0008}

	SmallestImagePixelValue    = Tag{0x0028, 0x0106}
	LargestImagePixelValue     = Tag{0x0028, 0x0107}
	PixelPaddingValue          = Tag{0x0028, 0x0120}
	LossyImageCompression      = Tag{0x0028, 0x2110}
	LossyImageCompressionRatio = Tag{0x0028, 0x2112}
)

// Image Presentation (rescale, windowing, geometry).
var (
	ImageType                    = Tag{0x0008, 0x0008}
	RescaleIntercept             = Tag{0x0028, 0x1052}
	RescaleSlope                 = Tag{0x0028, 0x1053}
	RescaleType                  = Tag{0x0028, 0x1054}
	WindowCenter                 = Tag{0x0028, 0x1050}
	WindowWidth                  = Tag{0x0028, 0x1051}
	WindowCenterWidthExplanation = Tag{0x0028, 0x1055}
	VOILUTFunction               = Tag{0x0028, 0x1056}

	ImagePositionPatient    = Tag{0x0020, 0x0032}
	ImageOrientationPatient = Tag{0x0020, 0x0037}
	SliceThickness          = Tag{0x0018, 0x0050}
	SpacingBetweenSlices    = Tag{0x0018, 0x0088}
	PixelSpacing            = Tag{0x0028, 0x0030}
	ImagerPixelSpacing      = Tag{0x0018, 0x1164}
	SliceLocation           = Tag{0x0020, 0x1041}
)

// Content Date/Time.
var (
	ContentDate = Tag{0x0008, 0x0023}
	ContentTime = Tag{0x0008, 0x0033}
)

// CT Image / X-Ray Acquisition Parameters (Group 0018).
var (
	KVP                    = Tag{0x0018, 0x0060}
	ScanOptions            = Tag{0x0018, 0x0022}
	DataCollectionDiameter = Tag{0x0018, 0x0090}
	ReconstructionDiameter = Tag{0x0018, 0x1100}
	ConvolutionKernel      = Tag{0x0018, 0x1210}
	ExposureTime           = Tag{0x0018, 0x1150}
	XRayTubeCurrent        = Tag{0x0018, 0x1151}
	Exposure               = Tag{0x0018, 0x1152}
	FilterType             = Tag{0x0018, 0x1160}
	GantryDetectorTilt     = Tag{0x0018, 0x1120}
	TableHeight            = Tag{0x0018, 0x1130}
	RotationDirection      = Tag{0x0018, 0x1140}
	ImageComments          = Tag{0x0020, 0x4000}
)

// DX Detector Module (Group 0018).
var (
	DetectorType             = Tag{0x0018, 0x7004}
	DetectorConfiguration    = Tag{0x0018, 0x7005}
	DetectorID               = Tag{0x0018, 0x700A}
	DetectorManufacturerName = Tag{0x0018, 0x702A}
	DetectorTemperature      = Tag{0x0018, 0x7001}
	DetectorActiveDimensions = Tag{0x0018, 0x7026}
	FieldOfViewShape         = Tag{0x0018, 0x1147}
	FieldOfViewDimensions    = Tag{0x0018, 0x1149}
	ExposureControlMode      = Tag{0x0018, 0x7060}
	SensitivityValue         = Tag{0x0018, 0x6000}
)

// Sequence-valued reference tags.
var (
	ReferencedSOPClassUID    = Tag{0x0008, 0x1150}
	ReferencedSOPInstanceUID = Tag{0x0008, 0x1155}
	ReferencedSeriesSequence = Tag{0x0008, 0x1115}
	ReferencedImageSequence  = Tag{0x0008, 0x1140}
	VOILUTSequence           = Tag{0x0028, 0x3010}
)

// LookupName returns a short keyword for tags this package declares as
// named constants, or "" when t is not one of them. Dictionary.Lookup
// (dictionary.go) is the general-purpose form callers should prefer.
func (t Tag) LookupName() string {
	if e, ok := Std.Lookup(t); ok {
		return e.Keyword
	}
	return ""
}
