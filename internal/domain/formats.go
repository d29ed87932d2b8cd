package domain

import (
	"path/filepath"
	"strings"
)

// TargetFormat identifies one output format of the automation host.
type TargetFormat string

const (
	FormatPDF   TargetFormat = "pdf"
	FormatHWPX  TargetFormat = "hwpx"
	FormatOOXML TargetFormat = "ooxml"
	FormatHTML  TargetFormat = "html"
	FormatODT   TargetFormat = "odt"
	FormatRTF   TargetFormat = "rtf"
	FormatText  TargetFormat = "text"
	FormatPNG   TargetFormat = "png"
	FormatJPG   TargetFormat = "jpg"
	FormatBMP   TargetFormat = "bmp"
	FormatGIF   TargetFormat = "gif"
)

// FormatSpec maps a target format to its file extension and the
// save-as filter name the automation host expects.
type FormatSpec struct {
	Format     TargetFormat `json:"format"`
	Name       string       `json:"name"`
	Extension  string       `json:"extension"`
	HostFilter string       `json:"hostFilter"`
}

var formatSpecs = []FormatSpec{
	{Format: FormatPDF, Name: "PDF", Extension: ".pdf", HostFilter: "PDF"},
	{Format: FormatHWPX, Name: "HWPX (native XML)", Extension: ".hwpx", HostFilter: "HWPX"},
	{Format: FormatOOXML, Name: "Word (OOXML)", Extension: ".docx", HostFilter: "OOXML"},
	{Format: FormatHTML, Name: "HTML", Extension: ".html", HostFilter: "HTML"},
	{Format: FormatODT, Name: "OpenDocument", Extension: ".odt", HostFilter: "ODT"},
	{Format: FormatRTF, Name: "Rich Text", Extension: ".rtf", HostFilter: "RTF"},
	{Format: FormatText, Name: "Plain Text", Extension: ".txt", HostFilter: "TEXT"},
	{Format: FormatPNG, Name: "PNG image", Extension: ".png", HostFilter: "PNG"},
	{Format: FormatJPG, Name: "JPEG image", Extension: ".jpg", HostFilter: "JPG"},
	{Format: FormatBMP, Name: "BMP image", Extension: ".bmp", HostFilter: "BMP"},
	{Format: FormatGIF, Name: "GIF image", Extension: ".gif", HostFilter: "GIF"},
}

// SpecFor returns the format descriptor for a target format.
func SpecFor(format TargetFormat) (FormatSpec, bool) {
	for _, spec := range formatSpecs {
		if spec.Format == format {
			return spec, true
		}
	}
	return FormatSpec{}, false
}

// AllFormats lists every selectable output format in display order.
func AllFormats() []FormatSpec {
	out := make([]FormatSpec, len(formatSpecs))
	copy(out, formatSpecs)
	return out
}

// SupportedInput reports whether a path carries a convertible extension.
func SupportedInput(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hwp", ".hwpx":
		return true
	default:
		return false
	}
}
