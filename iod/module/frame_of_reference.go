package module

import (
	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/internal/dicomuid"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

// FrameOfReference is the DICOM Frame of Reference Module (PS3.3 C.7.4.1).
type FrameOfReference struct {
	FrameOfReferenceUID        string
	PositionReferenceIndicator string
}

// NewFrameOfReference mints a fresh FrameOfReferenceUID.
func NewFrameOfReference() *FrameOfReference {
	return &FrameOfReference{FrameOfReferenceUID: dicomuid.New()}
}

// ToElements implements IODModule.
func (m *FrameOfReference) ToElements() []*dicom.Element {
	return []*dicom.Element{
		stringElement(tag.FrameOfReferenceUID, vr.UI, m.FrameOfReferenceUID),
		stringElement(tag.PositionReferenceIndicator, vr.LO, m.PositionReferenceIndicator),
	}
}

// ImagePlane is the DICOM Image Plane Module (PS3.3 C.7.6.2).
type ImagePlane struct {
	PixelSpacing            [2]float64
	ImageOrientationPatient [6]float64
	ImagePositionPatient    [3]float64
	SliceThickness          float64
	SpacingBetweenSlices    float64
	SliceLocation           float64
}

// NewImagePlane returns an ImagePlane with an identity orientation and unit
// spacing.
func NewImagePlane() *ImagePlane {
	return &ImagePlane{
		PixelSpacing:            [2]float64{1, 1},
		ImageOrientationPatient: [6]float64{1, 0, 0, 0, 1, 0},
		SliceThickness:          1,
	}
}

// ToElements implements IODModule.
func (m *ImagePlane) ToElements() []*dicom.Element {
	elems := []*dicom.Element{
		stringElement(tag.PixelSpacing, vr.DS, formatDSN(m.PixelSpacing[0], m.PixelSpacing[1])),
		stringElement(tag.ImageOrientationPatient, vr.DS, formatDSN(m.ImageOrientationPatient[:]...)),
		stringElement(tag.ImagePositionPatient, vr.DS, formatDSN(m.ImagePositionPatient[:]...)),
	}
	if m.SliceThickness != 0 {
		elems = append(elems, stringElement(tag.SliceThickness, vr.DS, formatDS(m.SliceThickness)))
	}
	if m.SpacingBetweenSlices != 0 {
		elems = append(elems, stringElement(tag.SpacingBetweenSlices, vr.DS, formatDS(m.SpacingBetweenSlices)))
	}
	if m.SliceLocation != 0 {
		elems = append(elems, stringElement(tag.SliceLocation, vr.DS, formatDS(m.SliceLocation)))
	}
	return elems
}
