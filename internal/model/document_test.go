package model

import (
	"testing"
)

// TestNewDocumentID tests the document identifier derivation.
func TestNewDocumentID(t *testing.T) {
	t.Parallel()

	t.Run("is stable for the same URL and title", func(t *testing.T) {
		t.Parallel()

		first := NewDocumentID("https://www.sebi.gov.in/circular.pdf", "Master Circular")
		second := NewDocumentID("https://www.sebi.gov.in/circular.pdf", "Master Circular")

		if first != second {
			t.Errorf("got %q and %q, expected identical identifiers", first, second)
		}
	})

	t.Run("differs when the title changes", func(t *testing.T) {
		t.Parallel()

		first := NewDocumentID("https://www.sebi.gov.in/circular.pdf", "Master Circular")
		second := NewDocumentID("https://www.sebi.gov.in/circular.pdf", "Revised Master Circular")

		if first == second {
			t.Errorf("expected distinct identifiers, both were %q", first)
		}
	})

	t.Run("differs when the URL changes", func(t *testing.T) {
		t.Parallel()

		first := NewDocumentID("https://www.sebi.gov.in/a.pdf", "Master Circular")
		second := NewDocumentID("https://www.sebi.gov.in/b.pdf", "Master Circular")

		if first == second {
			t.Errorf("expected distinct identifiers, both were %q", first)
		}
	})

	t.Run("is a 40 character hex string", func(t *testing.T) {
		t.Parallel()

		id := NewDocumentID("https://www.amfiindia.com/guide.pdf", "Investor Guide")
		if len(id) != 40 {
			t.Errorf("got length %d, expected 40", len(id))
		}
		for _, c := range id {
			isHexDigit := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
			if !isHexDigit {
				t.Errorf("identifier contains non-hex character %q", c)
			}
		}
	})
}

// TestFileTypeFromURL tests payload format detection from URL extensions.
func TestFileTypeFromURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		url      string
		expected FileType
	}{
		{"https://www.sebi.gov.in/docs/circular.pdf", FileTypePDF},
		{"https://www.sebi.gov.in/docs/CIRCULAR.PDF", FileTypePDF},
		{"https://www.nseindia.com/data/bhavcopy.csv", FileTypeCSV},
		{"https://www.amfiindia.com/nav/latest.xlsx", FileTypeXLSX},
		{"https://www.amfiindia.com/nav/old.xls", FileTypeXLS},
		{"https://www.sebi.gov.in/investors.html", FileTypeHTML},
		{"https://www.sebi.gov.in/investors.htm", FileTypeHTML},
		{"https://www.rbi.org.in/Scripts/FAQsView.aspx?Id=138", FileTypeUnknown},
		{"https://www.sebi.gov.in/legal/circulars/", FileTypeUnknown},
		{"https://example.com/report.pdf?download=1", FileTypePDF},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			t.Parallel()

			if got := FileTypeFromURL(tc.url); got != tc.expected {
				t.Errorf("FileTypeFromURL(%q) = %q, expected %q", tc.url, got, tc.expected)
			}
		})
	}
}

// TestFileTypeIsDocument tests the document classification of file types.
func TestFileTypeIsDocument(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		fileType FileType
		expected bool
	}{
		{FileTypePDF, true},
		{FileTypeCSV, true},
		{FileTypeXLSX, true},
		{FileTypeXLS, true},
		{FileTypeHTML, false},
		{FileTypeUnknown, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.fileType), func(t *testing.T) {
			t.Parallel()

			if got := tc.fileType.IsDocument(); got != tc.expected {
				t.Errorf("IsDocument() for %q = %v, expected %v", tc.fileType, got, tc.expected)
			}
		})
	}
}

// TestCopyrightForOrg tests copyright classification by publisher.
func TestCopyrightForOrg(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		org      string
		expected Copyright
	}{
		{"SEBI", CopyrightPublic},
		{"NSE", CopyrightPublic},
		{"AMFI", CopyrightPublic},
		{"RBI", CopyrightPublic},
		{"CBDT", CopyrightPublic},
		{"ACME", CopyrightUnknown},
		{"", CopyrightUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.org, func(t *testing.T) {
			t.Parallel()

			if got := CopyrightForOrg(tc.org); got != tc.expected {
				t.Errorf("CopyrightForOrg(%q) = %q, expected %q", tc.org, got, tc.expected)
			}
		})
	}
}
