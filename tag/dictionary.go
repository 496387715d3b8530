package tag

import "github.com/dicomkit/dicomkit/vr"

// Entry is one Dictionary row: the default VR assumed under Implicit VR
// Little Endian, the value multiplicity, a keyword, and the DICOM
// "group name" WriterRules match against for bulk anonymization.
type Entry struct {
	VR        vr.VR
	VM        string
	Keyword   string
	GroupName string
}

// Dictionary is a static (group,element) -> Entry table.
type Dictionary struct {
	entries map[Tag]Entry
}

// Lookup returns the dictionary entry for t, or false if t is private or
// otherwise not in the table (the caller should then fall back to VR "UN").
func (d *Dictionary) Lookup(t Tag) (Entry, bool) {
	e, ok := d.entries[t]
	return e, ok
}

// VRFor returns the default VR for t under Implicit VR Little Endian,
// defaulting to vr.UN when t is not in the dictionary.
func (d *Dictionary) VRFor(t Tag) vr.VR {
	if e, ok := d.entries[t]; ok {
		return e.VR
	}
	return vr.UN
}

// GroupNameFor returns the WriterRules group-name for t, or "" when
// unknown.
func (d *Dictionary) GroupNameFor(t Tag) string {
	if e, ok := d.entries[t]; ok {
		return e.GroupName
	}
	return ""
}

const (
	groupMeta          = "Meta Element"
	groupPatient       = "Patient"
	groupGeneralStudy  = "General Study"
	groupGeneralSeries = "General Series"
	groupEquipment     = "General Equipment"
	groupSOPCommon     = "SOP Common"
	groupFrameOfRef    = "Frame of Reference"
	groupImagePixel    = "Image Pixel"
	groupImagePres     = "Image Presentation"
	groupPixelData     = "Pixel Data"
	groupContentDate   = "Content Date Time"
	groupCTAcq         = "CT Image"
	groupDXDetector    = "DX Detector"
	groupReference     = "Reference"
)

// Std is the dictionary this engine's Parser, Writer and WriterRules
// consult. It is a curated subset of the PS3.6 public dictionary, covering
// every tag declared in tag.go and every tag the engine's own IOD builders
// and test fixtures emit, each with a grounded entry. It is not the
// complete ~4000-entry PS3.6 table (see SPEC_FULL.md's Dictionary-
// completeness Open Question); unknown tags fall back to VR UN in VRFor
// rather than failing.
var Std = &Dictionary{entries: map[Tag]Entry{
	FileMetaInformationGroupLength: {vr.UL, "1", "FileMetaInformationGroupLength", groupMeta},
	FileMetaInformationVersion:     {vr.OB, "1", "FileMetaInformationVersion", groupMeta},
	MediaStorageSOPClassUID:        {vr.UI, "1", "MediaStorageSOPClassUID", groupMeta},
	MediaStorageSOPInstanceUID:     {vr.UI, "1", "MediaStorageSOPInstanceUID", groupMeta},
	TransferSyntaxUID:              {vr.UI, "1", "TransferSyntaxUID", groupMeta},
	ImplementationClassUID:         {vr.UI, "1", "ImplementationClassUID", groupMeta},
	ImplementationVersionName:      {vr.SH, "1", "ImplementationVersionName", groupMeta},
	SpecificCharacterSet:           {vr.CS, "1-n", "SpecificCharacterSet", "General"},

	PatientName:      {vr.PN, "1", "PatientName", groupPatient},
	PatientID:        {vr.LO, "1", "PatientID", groupPatient},
	PatientBirthDate: {vr.DA, "1", "PatientBirthDate", groupPatient},
	PatientSex:       {vr.CS, "1", "PatientSex", groupPatient},
	PatientAge:       {vr.AS, "1", "PatientAge", groupPatient},
	PatientComments:  {vr.LT, "1", "PatientComments", groupPatient},

	StudyDate:        {vr.DA, "1", "StudyDate", groupGeneralStudy},
	StudyTime:        {vr.TM, "1", "StudyTime", groupGeneralStudy},
	AccessionNumber:  {vr.SH, "1", "AccessionNumber", groupGeneralStudy},
	StudyDescription: {vr.LO, "1", "StudyDescription", groupGeneralStudy},
	StudyInstanceUID: {vr.UI, "1", "StudyInstanceUID", groupGeneralStudy},
	StudyID:          {vr.SH, "1", "StudyID", groupGeneralStudy},

	Modality:               {vr.CS, "1", "Modality", groupGeneralSeries},
	SeriesInstanceUID:      {vr.UI, "1", "SeriesInstanceUID", groupGeneralSeries},
	SeriesNumber:           {vr.IS, "1", "SeriesNumber", groupGeneralSeries},
	InstanceNumber:         {vr.IS, "1", "InstanceNumber", groupGeneralSeries},
	SeriesDescription:      {vr.LO, "1", "SeriesDescription", groupGeneralSeries},
	SeriesDate:             {vr.DA, "1", "SeriesDate", groupGeneralSeries},
	SeriesTime:             {vr.TM, "1", "SeriesTime", groupGeneralSeries},
	PresentationIntentType: {vr.CS, "1", "PresentationIntentType", groupGeneralSeries},

	Manufacturer:          {vr.LO, "1", "Manufacturer", groupEquipment},
	InstitutionName:       {vr.LO, "1", "InstitutionName", groupEquipment},
	StationName:           {vr.SH, "1", "StationName", groupEquipment},
	ManufacturerModelName: {vr.LO, "1", "ManufacturerModelName", groupEquipment},
	DeviceSerialNumber:    {vr.LO, "1", "DeviceSerialNumber", groupEquipment},
	SoftwareVersions:      {vr.LO, "1-n", "SoftwareVersions", groupEquipment},

	SOPClassUID:          {vr.UI, "1", "SOPClassUID", groupSOPCommon},
	SOPInstanceUID:       {vr.UI, "1", "SOPInstanceUID", groupSOPCommon},
	InstanceCreationDate: {vr.DA, "1", "InstanceCreationDate", groupSOPCommon},
	InstanceCreationTime: {vr.TM, "1", "InstanceCreationTime", groupSOPCommon},

	FrameOfReferenceUID:        {vr.UI, "1", "FrameOfReferenceUID", groupFrameOfRef},
	PositionReferenceIndicator: {vr.LO, "1", "PositionReferenceIndicator", groupFrameOfRef},

	SamplesPerPixel:           {vr.US, "1", "SamplesPerPixel", groupImagePixel},
	PhotometricInterpretation: {vr.CS, "1", "PhotometricInterpretation", groupImagePixel},
	PlanarConfiguration:       {vr.US, "1", "PlanarConfiguration", groupImagePixel},
	Rows:                      {vr.US, "1", "Rows", groupImagePixel},
	Columns:                   {vr.US, "1", "Columns", groupImagePixel},
	BitsAllocated:             {vr.US, "1", "BitsAllocated", groupImagePixel},
	BitsStored:                {vr.US, "1", "BitsStored", groupImagePixel},
	HighBit:                   {vr.US, "1", "HighBit", groupImagePixel},
	PixelRepresentation:       {vr.US, "1", "PixelRepresentation", groupImagePixel},
	PixelData:                 {vr.OX, "1", "PixelData", groupPixelData},
	NumberOfFrames:            {vr.IS, "1", "NumberOfFrames", groupImagePixel},
	SmallestImagePixelValue:   {vr.US, "1", "SmallestImagePixelValue", groupImagePixel},
	LargestImagePixelValue:    {vr.US, "1", "LargestImagePixelValue", groupImagePixel},
	PixelPaddingValue:         {vr.US, "1", "PixelPaddingValue", groupImagePixel},
	LossyImageCompression:     {vr.CS, "1", "LossyImageCompression", groupImagePixel},
	LossyImageCompressionRatio: {vr.DS, "1-n", "LossyImageCompressionRatio", groupImagePixel},

	ImageType:                    {vr.CS, "2-n", "ImageType", groupImagePres},
	RescaleIntercept:             {vr.DS, "1", "RescaleIntercept", groupImagePres},
	RescaleSlope:                 {vr.DS, "1", "RescaleSlope", groupImagePres},
	RescaleType:                  {vr.LO, "1", "RescaleType", groupImagePres},
	WindowCenter:                 {vr.DS, "1-n", "WindowCenter", groupImagePres},
	WindowWidth:                  {vr.DS, "1-n", "WindowWidth", groupImagePres},
	WindowCenterWidthExplanation: {vr.LO, "1-n", "WindowCenterWidthExplanation", groupImagePres},
	VOILUTFunction:               {vr.CS, "1", "VOILUTFunction", groupImagePres},
	VOILUTSequence:               {vr.SQ, "1", "VOILUTSequence", groupImagePres},
	ImagePositionPatient:         {vr.DS, "3", "ImagePositionPatient", groupImagePres},
	ImageOrientationPatient:      {vr.DS, "6", "ImageOrientationPatient", groupImagePres},
	SliceThickness:               {vr.DS, "1", "SliceThickness", groupImagePres},
	SpacingBetweenSlices:         {vr.DS, "1", "SpacingBetweenSlices", groupImagePres},
	PixelSpacing:                 {vr.DS, "2", "PixelSpacing", groupImagePixel},
	ImagerPixelSpacing:           {vr.DS, "2", "ImagerPixelSpacing", groupDXDetector},
	SliceLocation:                {vr.DS, "1", "SliceLocation", groupImagePres},

	ContentDate: {vr.DA, "1", "ContentDate", groupContentDate},
	ContentTime: {vr.TM, "1", "ContentTime", groupContentDate},

	KVP:                    {vr.DS, "1", "KVP", groupCTAcq},
	ScanOptions:            {vr.CS, "1-n", "ScanOptions", groupCTAcq},
	DataCollectionDiameter: {vr.DS, "1", "DataCollectionDiameter", groupCTAcq},
	ReconstructionDiameter: {vr.DS, "1", "ReconstructionDiameter", groupCTAcq},
	ConvolutionKernel:      {vr.SH, "1-n", "ConvolutionKernel", groupCTAcq},
	ExposureTime:           {vr.IS, "1", "ExposureTime", groupCTAcq},
	XRayTubeCurrent:        {vr.IS, "1", "XRayTubeCurrent", groupCTAcq},
	Exposure:               {vr.IS, "1", "Exposure", groupCTAcq},
	FilterType:             {vr.SH, "1-n", "FilterType", groupCTAcq},
	GantryDetectorTilt:     {vr.DS, "1", "GantryDetectorTilt", groupCTAcq},
	TableHeight:            {vr.DS, "1", "TableHeight", groupCTAcq},
	RotationDirection:      {vr.CS, "1", "RotationDirection", groupCTAcq},
	ImageComments:          {vr.LT, "1", "ImageComments", groupImagePres},

	DetectorType:             {vr.CS, "1", "DetectorType", groupDXDetector},
	DetectorConfiguration:    {vr.CS, "1", "DetectorConfiguration", groupDXDetector},
	DetectorID:               {vr.SH, "1", "DetectorID", groupDXDetector},
	DetectorManufacturerName: {vr.LO, "1", "DetectorManufacturerName", groupDXDetector},
	DetectorTemperature:      {vr.DS, "1", "DetectorTemperature", groupDXDetector},
	DetectorActiveDimensions: {vr.US, "2", "DetectorActiveDimensions", groupDXDetector},
	FieldOfViewShape:         {vr.CS, "1", "FieldOfViewShape", groupDXDetector},
	FieldOfViewDimensions:    {vr.IS, "1-2", "FieldOfViewDimensions", groupDXDetector},
	ExposureControlMode:      {vr.CS, "1", "ExposureControlMode", groupDXDetector},
	SensitivityValue:         {vr.DS, "1", "SensitivityValue", groupDXDetector},

	ReferencedSOPClassUID:    {vr.UI, "1", "ReferencedSOPClassUID", groupReference},
	ReferencedSOPInstanceUID: {vr.UI, "1", "ReferencedSOPInstanceUID", groupReference},
	ReferencedSeriesSequence: {vr.SQ, "1", "ReferencedSeriesSequence", groupReference},
	ReferencedImageSequence:  {vr.SQ, "1", "ReferencedImageSequence", groupReference},

	Item:                     {vr.NA, "1", "Item", "Delimiter"},
	ItemDelimitationItem:     {vr.NA, "1", "ItemDelimitationItem", "Delimiter"},
	SequenceDelimitationItem: {vr.NA, "1", "SequenceDelimitationItem", "Delimiter"},
}}
