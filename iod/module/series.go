package module

import (
	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

// GeneralSeries is the DICOM General Series Module (PS3.3 C.7.3.1).
type GeneralSeries struct {
	Modality          string
	SeriesInstanceUID string
	SeriesNumber      int
	SeriesDate        Date
	SeriesTime        Time
	SeriesDescription string
}

// ToElements implements IODModule.
func (m *GeneralSeries) ToElements() []*dicom.Element {
	return []*dicom.Element{
		stringElement(tag.Modality, vr.CS, m.Modality),
		stringElement(tag.SeriesInstanceUID, vr.UI, m.SeriesInstanceUID),
		stringElement(tag.SeriesNumber, vr.IS, formatIS(m.SeriesNumber)),
		stringElement(tag.SeriesDate, vr.DA, m.SeriesDate.String()),
		stringElement(tag.SeriesTime, vr.TM, m.SeriesTime.String()),
		stringElement(tag.SeriesDescription, vr.LO, m.SeriesDescription),
	}
}
