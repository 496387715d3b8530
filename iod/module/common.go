// Package module builds typed IOD module structs that emit dicom.Element
// values, adapted from the prior pkg/dicos/module package to target the
// engine's ElementMap instead of an ad hoc interface{}-valued map.
package module

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

// IODModule is any module capable of emitting its own elements.
type IODModule interface {
	ToElements() []*dicom.Element
}

func stringElement(t tag.Tag, v vr.VR, value string) *dicom.Element {
	return &dicom.Element{
		Tag:   t,
		VR:    v,
		VL:    dicom.DefinedVL(uint32(len(value))),
		Value: dicom.ValueString(value),
	}
}

// Date is a DICOM DA value.
type Date struct {
	Year, Month, Day int
}

// NewDate builds a Date from t.
func NewDate(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

func (d Date) String() string {
	if d.Year == 0 {
		return ""
	}
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// Time is a DICOM TM value.
type Time struct {
	Hour, Minute, Second, Nano int
}

// NewTime builds a Time from t.
func NewTime(t time.Time) Time {
	return Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nano: t.Nanosecond()}
}

func (t Time) String() string {
	if t.Hour == 0 && t.Minute == 0 && t.Second == 0 && t.Nano == 0 {
		return ""
	}
	return fmt.Sprintf("%02d%02d%02d.%06d", t.Hour, t.Minute, t.Second, t.Nano/1000)
}

// PersonName is a DICOM PN value.
type PersonName struct {
	FamilyName, GivenName, MiddleName, Prefix, Suffix string
}

func (p PersonName) String() string {
	return fmt.Sprintf("%s^%s^%s^%s^%s", p.FamilyName, p.GivenName, p.MiddleName, p.Prefix, p.Suffix)
}

func formatDS(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatDSN(values ...float64) string {
	s := ""
	for i, v := range values {
		if i > 0 {
			s += "\\"
		}
		s += formatDS(v)
	}
	return s
}

func formatIS(v int) string {
	return strconv.Itoa(v)
}
