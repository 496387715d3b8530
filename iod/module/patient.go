package module

import (
	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

// Patient is the DICOM Patient Module (PS3.3 C.7.1.1).
type Patient struct {
	PatientName      PersonName
	PatientID        string
	PatientBirthDate Date
	PatientSex       string
	PatientAge       string
	PatientComments  string
}

// SetPatientName sets the structured PN fields.
func (m *Patient) SetPatientName(given, family, middle, prefix, suffix string) {
	m.PatientName = PersonName{GivenName: given, FamilyName: family, MiddleName: middle, Prefix: prefix, Suffix: suffix}
}

// ToElements implements IODModule.
func (m *Patient) ToElements() []*dicom.Element {
	return []*dicom.Element{
		stringElement(tag.PatientName, vr.PN, m.PatientName.String()),
		stringElement(tag.PatientID, vr.LO, m.PatientID),
		stringElement(tag.PatientBirthDate, vr.DA, m.PatientBirthDate.String()),
		stringElement(tag.PatientSex, vr.CS, m.PatientSex),
		stringElement(tag.PatientAge, vr.AS, m.PatientAge),
		stringElement(tag.PatientComments, vr.LT, m.PatientComments),
	}
}
