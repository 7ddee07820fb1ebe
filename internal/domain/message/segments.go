package message

import "unicode/utf16"

const (
	// SingleSegmentLength is the capacity of a message that fits one segment.
	SingleSegmentLength = 160
	// ConcatSegmentLength is the capacity of each segment of a multi-part
	// message; the remaining characters carry the concatenation header.
	ConcatSegmentLength = 153
)

// Segments estimates how many billed segments text occupies. Length is
// counted in UTF-16 code units.
func Segments(text string) int {
	n := len(utf16.Encode([]rune(text)))
	if n <= SingleSegmentLength {
		return 1
	}
	return (n + ConcatSegmentLength - 1) / ConcatSegmentLength
}
