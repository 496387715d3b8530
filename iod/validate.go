package iod

import (
	"fmt"

	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/tag"
)

// AttributeType mirrors the DICOM PS3.3/PS3.5 attribute-type vocabulary:
// whether an attribute must be present, must be present and non-empty, or
// is conditional on other attributes.
type AttributeType int

const (
	Type1  AttributeType = 1 // required, non-empty
	Type1C AttributeType = 2 // required if Condition holds, non-empty
	Type2  AttributeType = 3 // required, may be empty
	Type2C AttributeType = 4 // required if Condition holds, may be empty
	Type3  AttributeType = 5 // optional
)

func (t AttributeType) String() string {
	switch t {
	case Type1:
		return "Type 1"
	case Type1C:
		return "Type 1C"
	case Type2:
		return "Type 2"
	case Type2C:
		return "Type 2C"
	case Type3:
		return "Type 3"
	default:
		return "Unknown"
	}
}

// ValidationError is a single attribute-requirement violation.
type ValidationError struct {
	Tag        tag.Tag
	Type       AttributeType
	Message    string
	IsCritical bool
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Tag, e.Type, e.Message)
}

// ValidationResult collects every violation found by ValidateDataset.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid reports whether no critical (Type 1/1C) violations occurred.
func (r ValidationResult) IsValid() bool {
	for _, e := range r.Errors {
		if e.IsCritical {
			return false
		}
	}
	return true
}

func (r ValidationResult) HasErrors() bool   { return len(r.Errors) > 0 }
func (r ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// CriticalErrors returns only the Type 1/1C violations.
func (r ValidationResult) CriticalErrors() []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.IsCritical {
			out = append(out, e)
		}
	}
	return out
}

func (r ValidationResult) Summary() string {
	return fmt.Sprintf("valid=%v errors=%d warnings=%d", r.IsValid(), len(r.Errors), len(r.Warnings))
}

// Requirement names one attribute an IOD expects, with an optional
// predicate for conditional (1C/2C) requirements.
type Requirement struct {
	Tag       tag.Tag
	Type      AttributeType
	Condition func(*dicom.ElementMap) bool
}

// ValidateDataset checks elements against requirements, returning every
// Type 1/1C violation as a critical error and every Type 2/2C violation as
// a warning, matching PS3.3's presence rules.
func ValidateDataset(elements *dicom.ElementMap, requirements []Requirement) ValidationResult {
	var result ValidationResult
	for _, req := range requirements {
		e, exists := elements.Get(req.Tag)
		switch req.Type {
		case Type1:
			if !exists {
				result.Errors = append(result.Errors, ValidationError{req.Tag, Type1, "required attribute missing", true})
			} else if isEmpty(e) {
				result.Errors = append(result.Errors, ValidationError{req.Tag, Type1, "required attribute is empty", true})
			}
		case Type1C:
			if req.Condition != nil && req.Condition(elements) {
				if !exists {
					result.Errors = append(result.Errors, ValidationError{req.Tag, Type1C, "conditionally required attribute missing", true})
				} else if isEmpty(e) {
					result.Errors = append(result.Errors, ValidationError{req.Tag, Type1C, "conditionally required attribute is empty", true})
				}
			}
		case Type2:
			if !exists {
				result.Warnings = append(result.Warnings, ValidationError{req.Tag, Type2, "required attribute missing", false})
			}
		case Type2C:
			if req.Condition != nil && req.Condition(elements) && !exists {
				result.Warnings = append(result.Warnings, ValidationError{req.Tag, Type2C, "conditionally required attribute missing", false})
			}
		case Type3:
		}
	}
	return result
}

func isEmpty(e *dicom.Element) bool {
	if e.Value.Len() == 0 {
		return true
	}
	if ss, ok := e.Value.Strings(); ok {
		for _, s := range ss {
			if s != "" {
				return false
			}
		}
		return true
	}
	return false
}

var patientModuleRequirements = []Requirement{
	{Tag: tag.PatientName, Type: Type2},
	{Tag: tag.PatientID, Type: Type2},
}

var generalStudyModuleRequirements = []Requirement{
	{Tag: tag.StudyInstanceUID, Type: Type1},
	{Tag: tag.StudyDate, Type: Type2},
	{Tag: tag.StudyTime, Type: Type2},
}

var generalSeriesModuleRequirements = []Requirement{
	{Tag: tag.Modality, Type: Type1},
	{Tag: tag.SeriesInstanceUID, Type: Type1},
}

var imagePixelModuleRequirements = []Requirement{
	{Tag: tag.SamplesPerPixel, Type: Type1},
	{Tag: tag.PhotometricInterpretation, Type: Type1},
	{Tag: tag.Rows, Type: Type1},
	{Tag: tag.Columns, Type: Type1},
	{Tag: tag.BitsAllocated, Type: Type1},
	{Tag: tag.BitsStored, Type: Type1},
	{Tag: tag.HighBit, Type: Type1},
	{Tag: tag.PixelRepresentation, Type: Type1},
	{Tag: tag.PixelData, Type: Type1},
}

var sopCommonModuleRequirements = []Requirement{
	{Tag: tag.SOPClassUID, Type: Type1},
	{Tag: tag.SOPInstanceUID, Type: Type1},
}

func concat(lists ...[]Requirement) []Requirement {
	var out []Requirement
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// CTImageRequirements is every requirement a CT Image IOD must satisfy.
var CTImageRequirements = concat(
	patientModuleRequirements,
	generalStudyModuleRequirements,
	generalSeriesModuleRequirements,
	imagePixelModuleRequirements,
	sopCommonModuleRequirements,
	[]Requirement{
		{Tag: tag.RescaleIntercept, Type: Type1},
		{Tag: tag.RescaleSlope, Type: Type1},
	},
)

// DXImageRequirements is every requirement a DX Image IOD must satisfy.
var DXImageRequirements = concat(
	patientModuleRequirements,
	generalStudyModuleRequirements,
	generalSeriesModuleRequirements,
	imagePixelModuleRequirements,
	sopCommonModuleRequirements,
)

// ValidateCT validates a built CT Image dataset.
func ValidateCT(elements *dicom.ElementMap) ValidationResult {
	return ValidateDataset(elements, CTImageRequirements)
}

// ValidateDX validates a built DX Image dataset.
func ValidateDX(elements *dicom.ElementMap) ValidationResult {
	return ValidateDataset(elements, DXImageRequirements)
}
