package utils

import (
	"regexp"
	"strconv"
)

var yearRegex = regexp.MustCompile(`\b(18\d{2}|19\d{2}|20\d{2})\b`)

// ExtractYear extracts a 4-digit year from a catalog date such as "1999-03-30"
// Returns 0 if no year is found
func ExtractYear(date string) int {
	matches := yearRegex.FindStringSubmatch(date)
	if len(matches) > 1 {
		year, err := strconv.Atoi(matches[1])
		if err == nil {
			return year
		}
	}
	return 0
}
