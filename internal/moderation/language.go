// Package moderation screens chat text before it is broadcast.
package moderation

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Language returns the ISO 639-1 code of the most likely language of text and
// the detector's confidence in it. Chat lines are short, so the guess is
// returned even when the detector does not consider it reliable.
func Language(text string) (string, float64) {
	if strings.TrimSpace(text) == "" {
		return "", 0
	}
	info := whatlanggo.Detect(text)
	return info.Lang.Iso6391(), info.Confidence
}
