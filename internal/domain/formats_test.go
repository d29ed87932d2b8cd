package domain

import "testing"

// TestSpecForKnownFormats checks extension and filter mapping.
func TestSpecForKnownFormats(t *testing.T) {
	cases := []struct {
		format    TargetFormat
		extension string
		filter    string
	}{
		{FormatPDF, ".pdf", "PDF"},
		{FormatOOXML, ".docx", "OOXML"},
		{FormatText, ".txt", "TEXT"},
		{FormatHWPX, ".hwpx", "HWPX"},
	}

	for _, tc := range cases {
		spec, ok := SpecFor(tc.format)
		if !ok {
			t.Fatalf("SpecFor(%s) not found", tc.format)
		}
		if spec.Extension != tc.extension {
			t.Fatalf("%s extension = %q, want %q", tc.format, spec.Extension, tc.extension)
		}
		if spec.HostFilter != tc.filter {
			t.Fatalf("%s filter = %q, want %q", tc.format, spec.HostFilter, tc.filter)
		}
	}
}

// TestSpecForUnknownFormat checks rejection of unmapped formats.
func TestSpecForUnknownFormat(t *testing.T) {
	if _, ok := SpecFor(TargetFormat("doc")); ok {
		t.Fatal("expected unknown format")
	}
}

// TestAllFormatsReturnsCopy checks callers cannot mutate the catalog.
func TestAllFormatsReturnsCopy(t *testing.T) {
	formats := AllFormats()
	if len(formats) == 0 {
		t.Fatal("expected formats")
	}

	formats[0].Extension = ".tampered"
	if spec, _ := SpecFor(formats[0].Format); spec.Extension == ".tampered" {
		t.Fatal("catalog mutated through AllFormats result")
	}
}

// TestSupportedInput checks input extension filtering.
func TestSupportedInput(t *testing.T) {
	for _, path := range []string{"/docs/a.hwp", "/docs/b.HWPX", "c.Hwp"} {
		if !SupportedInput(path) {
			t.Fatalf("SupportedInput(%q) = false", path)
		}
	}
	for _, path := range []string{"/docs/a.docx", "/docs/b.pdf", "noext"} {
		if SupportedInput(path) {
			t.Fatalf("SupportedInput(%q) = true", path)
		}
	}
}
