package module

import (
	"time"

	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

// GeneralStudy is the DICOM General Study Module (PS3.3 C.7.2.1).
type GeneralStudy struct {
	StudyInstanceUID string
	StudyDate        Date
	StudyTime        Time
	StudyID          string
	AccessionNumber  string
	StudyDescription string
}

// NewGeneralStudy stamps StudyDate/StudyTime with the current time.
func NewGeneralStudy() GeneralStudy {
	now := time.Now()
	return GeneralStudy{StudyDate: NewDate(now), StudyTime: NewTime(now)}
}

// ToElements implements IODModule.
func (m *GeneralStudy) ToElements() []*dicom.Element {
	return []*dicom.Element{
		stringElement(tag.StudyInstanceUID, vr.UI, m.StudyInstanceUID),
		stringElement(tag.StudyDate, vr.DA, m.StudyDate.String()),
		stringElement(tag.StudyTime, vr.TM, m.StudyTime.String()),
		stringElement(tag.StudyID, vr.SH, m.StudyID),
		stringElement(tag.AccessionNumber, vr.SH, m.AccessionNumber),
		stringElement(tag.StudyDescription, vr.LO, m.StudyDescription),
	}
}
