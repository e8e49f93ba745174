package edgarindex

import (
	"regexp"
	"time"
)

var (
	// edgarMinDate is the earliest date in the EDGAR archive
	edgarMinDate = time.Date(1994, time.July, 1, 0, 0, 0, 0, time.UTC)

	// edgarMax6DigitDate is the last day the archive used six-digit dates in
	// index filenames; six-digit names decoding past it belong to a different,
	// unsupported convention and carry no date
	edgarMax6DigitDate = time.Date(1998, time.May, 15, 0, 0, 0, 0, time.UTC)

	// defaultStartDate and defaultEndDate are the fixed library defaults for
	// an unspecified query range
	defaultStartDate = time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	defaultEndDate   = time.Date(2015, time.January, 3, 0, 0, 0, 0, time.UTC)
)

var filenameDateRE = regexp.MustCompile(`\w*?\.(\d*?)\.idx`)

// resolveDateRange applies the fixed library defaults for an absent start or
// end and clamps the start up to the archive's earliest date. A start after
// the end is not an error; downstream filtering yields an empty result.
func resolveDateRange(opts *IndexOptions) (start, end time.Time) {
	start, end = defaultStartDate, defaultEndDate
	if opts != nil {
		if !opts.Start.IsZero() {
			start = opts.Start
		}
		if !opts.End.IsZero() {
			end = opts.End
		}
	}
	if start.Before(edgarMinDate) {
		start = edgarMinDate
	}
	return start, end
}

// parseFilenameDate extracts the date embedded in an index filename. The
// second return is false when the name carries no usable date.
//
// Six-digit dates are ambiguous: the earliest 1994 filenames encoded them as
// MMDDYY (always ending in "94"), later ones as YYMMDD until the archive
// switched to eight digits on 1998-05-15.
func parseFilenameDate(name string) (time.Time, bool) {
	m := filenameDateRE.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	digits := m[1]

	switch len(digits) {
	case 6:
		if digits[4:] == "94" {
			date, err := time.Parse("010206", digits)
			if err != nil {
				return time.Time{}, false
			}
			return date, true
		}
		date, err := time.Parse("060102", digits)
		if err != nil {
			return time.Time{}, false
		}
		if date.After(edgarMax6DigitDate) {
			return time.Time{}, false
		}
		return date, true
	case 8:
		date, err := time.Parse("20060102", digits)
		if err != nil {
			return time.Time{}, false
		}
		return date, true
	}
	return time.Time{}, false
}
