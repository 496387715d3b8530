package module

import (
	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

// GeneralEquipment is the DICOM General Equipment Module (PS3.3 C.7.5.1).
type GeneralEquipment struct {
	Manufacturer      string
	InstitutionName   string
	StationName       string
	ManufacturerModel string
	DeviceSerial      string
	SoftwareVersions  string
}

// ToElements implements IODModule.
func (m *GeneralEquipment) ToElements() []*dicom.Element {
	return []*dicom.Element{
		stringElement(tag.Manufacturer, vr.LO, m.Manufacturer),
		stringElement(tag.InstitutionName, vr.LO, m.InstitutionName),
		stringElement(tag.StationName, vr.SH, m.StationName),
		stringElement(tag.ManufacturerModelName, vr.LO, m.ManufacturerModel),
		stringElement(tag.DeviceSerialNumber, vr.LO, m.DeviceSerial),
		stringElement(tag.SoftwareVersions, vr.LO, m.SoftwareVersions),
	}
}
