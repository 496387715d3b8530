package module

import (
	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

// WindowLevel is a single window/level display preset.
type WindowLevel struct {
	Center      float64
	Width       float64
	Explanation string
}

// VOILUT is the DICOM VOI LUT Module (PS3.3 C.11.2).
type VOILUT struct {
	Windows        []WindowLevel
	VOILUTFunction string
}

// NewVOILUTForCT returns the standard soft-tissue/bone/lung/brain CT window
// presets.
func NewVOILUTForCT() *VOILUT {
	return &VOILUT{
		Windows: []WindowLevel{
			{Center: 40, Width: 400, Explanation: "SOFT_TISSUE"},
			{Center: 400, Width: 2000, Explanation: "BONE"},
			{Center: -600, Width: 1500, Explanation: "LUNG"},
			{Center: 50, Width: 350, Explanation: "BRAIN"},
		},
		VOILUTFunction: "LINEAR",
	}
}

// NewVOILUTForDX returns the full-range default DX window.
func NewVOILUTForDX() *VOILUT {
	return &VOILUT{
		Windows:        []WindowLevel{{Center: 32768, Width: 65535, Explanation: "DEFAULT"}},
		VOILUTFunction: "LINEAR",
	}
}

// ToElements implements IODModule.
func (m *VOILUT) ToElements() []*dicom.Element {
	if len(m.Windows) == 0 {
		return nil
	}
	var centers, widths, explanations []string
	hasExplanations := false
	for _, w := range m.Windows {
		centers = append(centers, formatDS(w.Center))
		widths = append(widths, formatDS(w.Width))
		explanations = append(explanations, w.Explanation)
		if w.Explanation != "" {
			hasExplanations = true
		}
	}
	elems := []*dicom.Element{
		{Tag: tag.WindowCenter, VR: vr.DS, Value: dicom.ValueStrings(centers)},
		{Tag: tag.WindowWidth, VR: vr.DS, Value: dicom.ValueStrings(widths)},
	}
	if hasExplanations {
		elems = append(elems, &dicom.Element{Tag: tag.WindowCenterWidthExplanation, VR: vr.LO, Value: dicom.ValueStrings(explanations)})
	}
	if m.VOILUTFunction != "" && m.VOILUTFunction != "LINEAR" {
		elems = append(elems, stringElement(tag.VOILUTFunction, vr.CS, m.VOILUTFunction))
	}
	return elems
}
