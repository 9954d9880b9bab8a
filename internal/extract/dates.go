package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Date extraction from URLs, filenames, and document text.
//
// Government portals rarely expose machine-readable publication dates,
// so dates are recovered from whatever carries them: a path segment
// like /2024-06-15/, a filename like circular-15-03-2025.pdf, a query
// parameter, or a "Dated 15 Mar 2025" line inside the document itself.
// Patterns are tried most-specific first; a candidate that fails
// calendar validation falls through to the next pattern.

var (
	// dateCleanRe strips punctuation that would break word boundaries,
	// keeping word characters, whitespace, hyphens, and slashes.
	dateCleanRe = regexp.MustCompile(`[^\w\s\-/]`)

	ymdRe       = regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`)
	dmyRe       = regexp.MustCompile(`\b(\d{1,2})[-/](\d{1,2})[-/](\d{4})\b`)
	yearOnlyRe  = regexp.MustCompile(`\b(\d{4})\b`)
	monthYearRe = regexp.MustCompile(`\b(\d{1,2})[-/](\d{4})\b`)

	// Textual forms found in document bodies: "15 Mar 2025",
	// "March 15, 2025". Full and abbreviated month names both match.
	dayMonthYearRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(\d{4})\b`)
	monthDayYearRe = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(\d{1,2}),?\s+(\d{4})\b`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

const (
	minPlausibleYear = 1900
	maxPlausibleYear = 2030
)

// ParseDateString extracts a publication date from a short string such
// as a filename or path segment. It returns nil when no pattern yields
// a valid calendar date. A bare year maps to January 1st and a
// month/year pair to the 1st of that month.
func ParseDateString(s string) *time.Time {
	cleaned := dateCleanRe.ReplaceAllString(s, "")

	if m := ymdRe.FindStringSubmatch(cleaned); m != nil {
		if t := makeDate(m[1], m[2], m[3]); t != nil {
			return t
		}
	}

	if m := dmyRe.FindStringSubmatch(cleaned); m != nil {
		if t := makeDate(m[3], m[2], m[1]); t != nil {
			return t
		}
	}

	if m := yearOnlyRe.FindStringSubmatch(cleaned); m != nil {
		year, _ := strconv.Atoi(m[1])
		if year >= minPlausibleYear && year <= maxPlausibleYear {
			t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			return &t
		}
	}

	if m := monthYearRe.FindStringSubmatch(cleaned); m != nil {
		if t := makeDate(m[2], m[1], "1"); t != nil {
			return t
		}
	}

	return nil
}

// DateFromURL extracts a publication date from a URL, trying each path
// segment and then any query parameter whose key mentions a date or
// year. Returns nil when the URL carries no usable date.
func DateFromURL(rawURL string) *time.Time {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" {
			continue
		}
		if t := ParseDateString(seg); t != nil {
			return t
		}
		// A file extension glued to a trailing date breaks the word
		// boundary, so filenames get a second try without it.
		if stripped := fileExtRe.ReplaceAllString(seg, ""); stripped != seg {
			if t := ParseDateString(stripped); t != nil {
				return t
			}
		}
	}

	query := u.Query()
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		lower := strings.ToLower(key)
		if !strings.Contains(lower, "date") && !strings.Contains(lower, "year") {
			continue
		}
		for _, value := range query[key] {
			if t := ParseDateString(value); t != nil {
				return t
			}
		}
	}

	return nil
}

// DateFromText extracts a publication date from free-form document
// text. Textual forms like "15 Mar 2025" are tried before bare numeric
// forms so that prose dates win over incidental numbers.
func DateFromText(text string) *time.Time {
	if m := dayMonthYearRe.FindStringSubmatch(text); m != nil {
		if t := makeNamedDate(m[3], m[2], m[1]); t != nil {
			return t
		}
	}

	if m := monthDayYearRe.FindStringSubmatch(text); m != nil {
		if t := makeNamedDate(m[3], m[1], m[2]); t != nil {
			return t
		}
	}

	if m := ymdRe.FindStringSubmatch(text); m != nil {
		if t := makeDate(m[1], m[2], m[3]); t != nil {
			return t
		}
	}

	if m := dmyRe.FindStringSubmatch(text); m != nil {
		if t := makeDate(m[3], m[2], m[1]); t != nil {
			return t
		}
	}

	return nil
}

// makeDate builds a UTC date from numeric strings, rejecting values
// that do not form a real calendar date. time.Date normalizes
// out-of-range components, so the result is compared against the
// inputs to catch dates like February 31st.
func makeDate(yearStr, monthStr, dayStr string) *time.Time {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return nil
	}

	return &t
}

func makeNamedDate(yearStr, monthName, dayStr string) *time.Time {
	month, ok := monthsByPrefix[strings.ToLower(monthName)]
	if !ok {
		return nil
	}

	return makeDate(yearStr, strconv.Itoa(int(month)), dayStr)
}
