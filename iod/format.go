package iod

import (
	"strconv"

	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

func stringElement(t tag.Tag, v vr.VR, value string) *dicom.Element {
	return &dicom.Element{Tag: t, VR: v, Value: dicom.ValueString(value)}
}

func formatDS(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatIS(v int) string {
	return strconv.Itoa(v)
}
