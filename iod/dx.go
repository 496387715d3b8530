package iod

import (
	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/internal/dicomuid"
	"github.com/dicomkit/dicomkit/iod/module"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/transfer"
	"github.com/dicomkit/dicomkit/vr"
)

// SOPClassDXImageStorage is the Digital X-Ray Image Storage (Presentation)
// SOP Class UID (PS3.4 B.5).
const SOPClassDXImageStorage = "1.2.840.10008.5.1.4.1.1.1.1"

// DXImage is the Digital X-Ray Image IOD (PS3.3 A.26): a single-frame
// projection radiograph, composed the same way as CTImage but without a
// Frame of Reference or rescale (DX pixels are display-ready, not
// physically calibrated).
type DXImage struct {
	Patient                module.Patient
	Study                  module.GeneralStudy
	Series                 module.GeneralSeries
	Equipment              module.GeneralEquipment
	SOPCommon              module.SOPCommon
	VOILUT                 *module.VOILUT
	PresentationIntentType string
	Rows, Columns          int
	BitsAllocated          int
	PixelData              []uint16
}

// NewDXImage returns a DXImage defaulted for a 16-bit MONOCHROME2
// presentation-intent projection radiograph, with a fresh SOP/Study
// identity.
func NewDXImage() *DXImage {
	dx := &DXImage{
		Study:                  module.NewGeneralStudy(),
		SOPCommon:              module.NewSOPCommon(),
		VOILUT:                 module.NewVOILUTForDX(),
		PresentationIntentType: "PRESENTATION",
		BitsAllocated:          16,
	}
	dx.SOPCommon.SOPClassUID = SOPClassDXImageStorage
	dx.SOPCommon.SOPInstanceUID = dicomuid.New()
	dx.Study.StudyInstanceUID = dicomuid.New()
	dx.Series.Modality = "DX"
	return dx
}

// Build assembles the complete element set for this DX image.
func (dx *DXImage) Build() (*dicom.ElementMap, error) {
	opts := []Option{
		WithFileMeta(dx.SOPCommon.SOPClassUID, dx.SOPCommon.SOPInstanceUID, string(transfer.ExplicitVRLittleEndian)),
		WithModule(&dx.Patient),
		WithModule(&dx.Study),
		WithModule(&dx.Series),
		WithModule(&dx.Equipment),
		WithModule(&dx.SOPCommon),
		WithModule(dx.VOILUT),
		dxSpecificElements(dx),
		WithNativePixelData(dx.Rows, dx.Columns, dx.BitsAllocated, dx.PixelData),
	}
	return NewDataset(opts...)
}

func dxSpecificElements(dx *DXImage) Option {
	return func(elements *dicom.ElementMap) error {
		elements.Insert(&dicom.Element{Tag: tag.SamplesPerPixel, VR: vr.US, Value: dicom.ValueU16s([]uint16{1})})
		elements.Insert(stringElement(tag.PhotometricInterpretation, vr.CS, "MONOCHROME2"))
		elements.Insert(&dicom.Element{Tag: tag.BitsStored, VR: vr.US, Value: dicom.ValueU16s([]uint16{uint16(dx.BitsAllocated)})})
		elements.Insert(&dicom.Element{Tag: tag.HighBit, VR: vr.US, Value: dicom.ValueU16s([]uint16{uint16(dx.BitsAllocated - 1)})})
		elements.Insert(&dicom.Element{Tag: tag.PixelRepresentation, VR: vr.US, Value: dicom.ValueU16s([]uint16{0})})
		if dx.PresentationIntentType != "" {
			elements.Insert(stringElement(tag.PresentationIntentType, vr.CS, dx.PresentationIntentType))
		}
		return nil
	}
}
