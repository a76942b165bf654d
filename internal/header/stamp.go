package header

import (
	"fmt"
	"time"
)

// StampLayout is the YYMMDDHHMM layout shared by every header timestamp.
const StampLayout = "0601021504"

// StampWidth is the fixed byte width of a header timestamp.
const StampWidth = len(StampLayout)

// NeverExpires is the expire group that marks a message with no expiration.
const NeverExpires = "9999999999"

// FormatStamp renders t as a ten-digit UTC header timestamp.
// Seconds and below are dropped.
func FormatStamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// ParseStamp decodes a ten-digit header timestamp as a UTC instant.
//
// Two-digit years follow the time package convention: 69-99 map to the
// 1900s, 00-68 to the 2000s.
func ParseStamp(s string) (time.Time, error) {
	if len(s) != StampWidth {
		return time.Time{}, fmt.Errorf("expected %d digits, got %d", StampWidth, len(s))
	}
	if !allDigits(s) {
		return time.Time{}, fmt.Errorf("non-digit in timestamp")
	}
	t, err := time.ParseInLocation(StampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
