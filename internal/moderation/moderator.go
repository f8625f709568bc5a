package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// DefaultWords is the dictionary used when no custom list is configured.
var DefaultWords = []string{
	"arsehole",
	"asshole",
	"bastard",
	"bitch",
	"bollocks",
	"bullshit",
	"cunt",
	"dickhead",
	"fuck",
	"fucked",
	"fucking",
	"motherfucker",
	"shit",
	"shitty",
	"wanker",
}

// Moderator detects forbidden words in free text. Matching ignores case,
// punctuation inside a word and common leet substitutions, and only reports
// whole words.
type Moderator struct {
	matcher *goahocorasick.Machine
	log     *slog.Logger
}

type textMapping struct {
	normalized []rune
	origIdx    []int
}

// NewModerator builds the Aho-Corasick automaton from the normalized words.
// Words that normalize to nothing are skipped, duplicates are built once.
func NewModerator(log *slog.Logger, words []string) (*Moderator, error) {
	patterns := lo.Filter(
		lo.Map(words, func(w string, _ int) []rune { return normalizeRunes([]rune(w)) }),
		func(p []rune, _ int) bool { return len(p) > 0 },
	)
	patterns = lo.UniqBy(patterns, func(p []rune) string { return string(p) })
	if len(patterns) == 0 {
		return &Moderator{log: log}, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	log.Debug("Profanity dictionary loaded", "words", len(patterns))
	return &Moderator{matcher: m, log: log}, nil
}

// IsProfane reports whether text contains at least one forbidden word. Hits
// are logged with the detected language of the line.
func (m *Moderator) IsProfane(text string) bool {
	found := m.Matches(text)
	if len(found) == 0 {
		return false
	}
	lang, confidence := Language(text)
	m.log.Info("Profanity detected", "words", found, "lang", lang, "confidence", confidence)
	return true
}

// Matches returns the forbidden words found in text, in order of appearance.
func (m *Moderator) Matches(text string) []string {
	if m.matcher == nil {
		return nil
	}
	mapping := normalize(text)
	if len(mapping.normalized) == 0 {
		return nil
	}

	origRunes := []rune(text)
	var found []string
	for _, term := range m.matcher.MultiPatternSearch(mapping.normalized, false) {
		normStart := term.Pos
		normEnd := normStart + len(term.Word)
		if normStart < 0 || normEnd > len(mapping.origIdx) {
			continue
		}

		origStart := mapping.origIdx[normStart]
		origEnd := mapping.origIdx[normEnd-1] + 1
		if !isWordBoundary(origRunes, origStart-1) || !isWordBoundary(origRunes, origEnd) {
			continue
		}
		found = append(found, string(term.Word))
	}
	return found
}

// isWordBoundary is true when the rune at i does not continue a word.
func isWordBoundary(runes []rune, i int) bool {
	if i < 0 || i >= len(runes) {
		return true
	}
	return !unicode.IsLetter(runes[i]) && !unicode.IsDigit(runes[i])
}

// normalize transforms the input into a searchable form and tracks the
// original rune positions.
func normalize(input string) textMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return textMapping{normalized: norm, origIdx: origIdx}
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps leet characters back to letters.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
