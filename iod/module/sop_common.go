package module

import (
	"time"

	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

// SOPCommon is the DICOM SOP Common Module (PS3.3 C.12.1).
type SOPCommon struct {
	SOPClassUID          string
	SOPInstanceUID       string
	SpecificCharacterSet string
	InstanceCreationDate Date
	InstanceCreationTime Time
}

// NewSOPCommon stamps InstanceCreationDate/Time with the current time and
// defaults SpecificCharacterSet to Latin-1.
func NewSOPCommon() SOPCommon {
	now := time.Now()
	return SOPCommon{
		SpecificCharacterSet: "ISO_IR 100",
		InstanceCreationDate: NewDate(now),
		InstanceCreationTime: NewTime(now),
	}
}

// ToElements implements IODModule.
func (m *SOPCommon) ToElements() []*dicom.Element {
	return []*dicom.Element{
		stringElement(tag.SOPClassUID, vr.UI, m.SOPClassUID),
		stringElement(tag.SOPInstanceUID, vr.UI, m.SOPInstanceUID),
		stringElement(tag.SpecificCharacterSet, vr.CS, m.SpecificCharacterSet),
		stringElement(tag.InstanceCreationDate, vr.DA, m.InstanceCreationDate.String()),
		stringElement(tag.InstanceCreationTime, vr.TM, m.InstanceCreationTime.String()),
	}
}
