package utils

import (
	"strconv"
	"strings"
	"time"
)

const ProviderDateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date. Empty or malformed input yields nil.
func ParseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	parsed, err := time.Parse(ProviderDateLayout, value)
	if err != nil {
		return nil
	}
	return &parsed
}

// YearFromDate extracts the leading four digit year of a date string.
func YearFromDate(value string) *int {
	value = strings.TrimSpace(value)
	if len(value) < 4 {
		return nil
	}

	year, err := strconv.Atoi(value[:4])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}
