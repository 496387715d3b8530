package iod

import (
	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/internal/dicomuid"
	"github.com/dicomkit/dicomkit/iod/module"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/transfer"
	"github.com/dicomkit/dicomkit/vr"
)

// SOPClassCTImageStorage is the CT Image Storage SOP Class UID (PS3.4 B.5).
const SOPClassCTImageStorage = "1.2.840.10008.5.1.4.1.1.2"

// CTImage is the CT Image IOD (PS3.3 A.3): a Patient/Study/Series/Equipment
// composed with CT-specific modules (frame of reference, image plane,
// rescale, VOI LUT) and a stack of native pixel frames.
type CTImage struct {
	Patient          module.Patient
	Study            module.GeneralStudy
	Series           module.GeneralSeries
	Equipment        module.GeneralEquipment
	SOPCommon        module.SOPCommon
	FrameOfReference *module.FrameOfReference
	ImagePlane       *module.ImagePlane
	VOILUT           *module.VOILUT

	KVP                    float64
	DataCollectionDiameter float64
	ConvolutionKernel      string
	RescaleIntercept       float64
	RescaleSlope           float64
	RescaleType            string

	Rows, Columns  int
	BitsAllocated  int
	PixelData      []uint16 // Rows*Columns*NumberOfFrames, row-major per frame
	NumberOfFrames int
}

// NewCTImage returns a CTImage with every sub-module defaulted and a fresh
// SOP/Study/Series identity, matching 16-bit MONOCHROME2 Hounsfield-unit CT
// output.
func NewCTImage() *CTImage {
	ct := &CTImage{
		Study:            module.NewGeneralStudy(),
		SOPCommon:        module.NewSOPCommon(),
		FrameOfReference: module.NewFrameOfReference(),
		ImagePlane:       module.NewImagePlane(),
		VOILUT:           module.NewVOILUTForCT(),
		RescaleSlope:     1,
		RescaleType:      "HU",
		BitsAllocated:    16,
		NumberOfFrames:   1,
	}
	ct.SOPCommon.SOPClassUID = SOPClassCTImageStorage
	ct.SOPCommon.SOPInstanceUID = dicomuid.New()
	ct.Study.StudyInstanceUID = dicomuid.New()
	ct.Series.SeriesInstanceUID = dicomuid.New()
	ct.Series.Modality = "CT"
	return ct
}

// Build assembles the complete element set for this CT image.
func (ct *CTImage) Build() (*dicom.ElementMap, error) {
	opts := []Option{
		WithFileMeta(ct.SOPCommon.SOPClassUID, ct.SOPCommon.SOPInstanceUID, string(transfer.ExplicitVRLittleEndian)),
		WithModule(&ct.Patient),
		WithModule(&ct.Study),
		WithModule(&ct.Series),
		WithModule(&ct.Equipment),
		WithModule(&ct.SOPCommon),
		WithModule(ct.FrameOfReference),
		WithModule(ct.ImagePlane),
		WithModule(ct.VOILUT),
		ctSpecificElements(ct),
		WithNativePixelData(ct.Rows, ct.Columns, ct.BitsAllocated, ct.PixelData),
	}
	return NewDataset(opts...)
}

func ctSpecificElements(ct *CTImage) Option {
	return func(elements *dicom.ElementMap) error {
		elements.Insert(&dicom.Element{Tag: tag.SamplesPerPixel, VR: vr.US, Value: dicom.ValueU16s([]uint16{1})})
		elements.Insert(stringElement(tag.PhotometricInterpretation, vr.CS, "MONOCHROME2"))
		elements.Insert(&dicom.Element{Tag: tag.BitsStored, VR: vr.US, Value: dicom.ValueU16s([]uint16{uint16(ct.BitsAllocated)})})
		elements.Insert(&dicom.Element{Tag: tag.HighBit, VR: vr.US, Value: dicom.ValueU16s([]uint16{uint16(ct.BitsAllocated - 1)})})
		elements.Insert(&dicom.Element{Tag: tag.PixelRepresentation, VR: vr.US, Value: dicom.ValueU16s([]uint16{0})})
		if ct.NumberOfFrames > 1 {
			elements.Insert(stringElement(tag.NumberOfFrames, vr.IS, formatIS(ct.NumberOfFrames)))
		}
		if ct.KVP != 0 {
			elements.Insert(stringElement(tag.KVP, vr.DS, formatDS(ct.KVP)))
		}
		if ct.DataCollectionDiameter != 0 {
			elements.Insert(stringElement(tag.DataCollectionDiameter, vr.DS, formatDS(ct.DataCollectionDiameter)))
		}
		if ct.ConvolutionKernel != "" {
			elements.Insert(stringElement(tag.ConvolutionKernel, vr.SH, ct.ConvolutionKernel))
		}
		elements.Insert(stringElement(tag.RescaleIntercept, vr.DS, formatDS(ct.RescaleIntercept)))
		elements.Insert(stringElement(tag.RescaleSlope, vr.DS, formatDS(ct.RescaleSlope)))
		if ct.RescaleType != "" {
			elements.Insert(stringElement(tag.RescaleType, vr.LO, ct.RescaleType))
		}
		return nil
	}
}
