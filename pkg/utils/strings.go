package utils

import (
	"regexp"
	"strings"
)

var whitespaces = regexp.MustCompile(`\s+`)

// ShortenMessage squashes whitespace including line breaks to single
// blanks and cuts the message to at most length bytes, marking a cut
// with "...".
func ShortenMessage(message string, length int) string {
	if length < 3 {
		length = 3
	}
	shortened := whitespaces.ReplaceAllString(strings.TrimSpace(message), " ")
	if len(shortened) > length {
		shortened = shortened[:length-3] + "..."
	}
	return shortened
}
