package iod

import (
	"io"
	"os"

	"github.com/dicomkit/dicomkit/internal/dicom"
)

// WriteTo serializes elements to w as a complete DICOM file: a 128-byte
// zero preamble followed by DICM, File Meta, and the Data Set.
func WriteTo(w io.Writer, elements *dicom.ElementMap, opts ...dicom.WriterOption) (int64, error) {
	writer := dicom.NewWriter(opts...)
	b, err := writer.Write(elements, make([]byte, 128))
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// WriteFile builds and writes elements to a file at path.
func WriteFile(path string, elements *dicom.ElementMap, opts ...dicom.WriterOption) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return WriteTo(f, elements, opts...)
}
