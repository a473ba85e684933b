// Package dateparse normalizes the date encodings found across the news
// sites: free-text "Month D, YYYY" strings, /YYYY/MM/DD/ URL path segments,
// and ISO-8601 timestamps from the BLOX CMS API.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"newsarchive/internal/types"
)

// textPattern matches "Month D, YYYY" with short or long month names.
var textPattern = regexp.MustCompile(
	`\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|` +
		`May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|` +
		`Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{1,2},\s+\d{4}\b`)

// urlPattern matches a /YYYY/MM/DD/ segment in a URL path.
var urlPattern = regexp.MustCompile(`/(\d{4})/(\d{2})/(\d{2})/`)

// ParseUS parses dates like "Nov 29, 2025" or "November 29, 2025". The
// second return is false when the string matches no accepted format; it
// never panics or returns an error.
func ParseUS(s string) (time.Time, bool) {
	fixed := strings.TrimSpace(s)
	// Go's reference layouts know "Sep", not the common "Sept" abbreviation.
	fixed = strings.ReplaceAll(fixed, "Sept ", "Sep ")
	fixed = strings.ReplaceAll(fixed, "SEPT ", "Sep ")

	for _, layout := range []string{"Jan 2, 2006", "January 2, 2006"} {
		if t, err := time.Parse(layout, fixed); err == nil {
			return types.Day(t), true
		}
	}
	return time.Time{}, false
}

// FindInText scans free text for the first "Month D, YYYY" occurrence and
// parses it. Used as the last-resort step for pages that don't encode the
// date in the URL.
func FindInText(text string) (time.Time, bool) {
	match := textPattern.FindString(text)
	if match == "" {
		return time.Time{}, false
	}
	return ParseUS(match)
}

// FromURLPath extracts a /YYYY/MM/DD/ date embedded in a URL path.
func FromURLPath(rawURL string) (time.Time, bool) {
	m := urlPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return calendarDay(year, month, day)
}

// ParseISODay parses the date part of an ISO-8601 timestamp such as
// "2025-12-16T10:00:00-05:00" or a bare "2025-12-16".
func ParseISODay(s string) (time.Time, bool) {
	datePart, _, _ := strings.Cut(strings.TrimSpace(s), "T")
	parts := strings.Split(datePart, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	return calendarDay(year, month, day)
}

// calendarDay builds a date and rejects out-of-range components, which
// time.Date would otherwise silently normalize (e.g. Feb 30 -> Mar 2).
func calendarDay(year, month, day int) (time.Time, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
