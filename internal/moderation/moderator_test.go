package moderation

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// The dictionary uses specific words to avoid partial collisions (e.g., "he" inside "The")
func TestModerator_Matches(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(logs.GetLoggerFromLevel(slog.LevelDebug), dictionary)
	req.NoError(err)

	tests := []struct {
		name  string
		input string
		words []string
	}{
		{name: "Simple word", input: "The badger is here", words: []string{"badger"}},
		{name: "Multiple occurrences", input: "badger badger badger", words: []string{"badger", "badger", "badger"}},
		{name: "Leet speak and internal punctuation", input: "Look at B.4.d.g.€r !", words: []string{"badger"}},
		{name: "Uppercase and extreme noise", input: "S-N-A-K-E is a B.A.D.G.E.R", words: []string{"snake", "badger"}},
		{name: "Accents and special characters (UTF-8)", input: "Un été avec un badger", words: []string{"badger"}},
		{name: "Word adjacent to trailing punctuation", input: "I love badger!", words: []string{"badger"}},
		{name: "Word inside a longer word", input: "badgering the honeybadgers", words: nil},
		{name: "Nothing to match", input: "Chat rooms are amazing", words: nil},
		{name: "Empty string", input: "", words: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			req.Equal(tt.words, mod.Matches(tt.input))
			req.Equal(len(tt.words) > 0, mod.IsProfane(tt.input))
		})
	}
}

func TestModerator_CornerCases(t *testing.T) {
	req := require.New(t)

	// Given real noise, empty and duplicated entries
	dictionary := []string{"...", ",,,", "", "badger", "BADGER"}

	mod, err := NewModerator(logs.GetLoggerFromLevel(slog.LevelDebug), dictionary)
	req.NoError(err)

	// Then the word is still detected once per occurrence
	req.Equal([]string{"badger"}, mod.Matches("The badger is safe"))

	// And real noise is not treated as a word
	req.False(mod.IsProfane("Hello ..."))
}

func TestModerator_EmptyDictionary(t *testing.T) {
	req := require.New(t)

	mod, err := NewModerator(logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	req.NoError(err)

	req.False(mod.IsProfane("anything at all"))
	req.Nil(mod.Matches("anything at all"))
}

func TestModerator_DefaultWords(t *testing.T) {
	req := require.New(t)

	mod, err := NewModerator(logs.GetLoggerFromLevel(slog.LevelDebug), DefaultWords)
	req.NoError(err)

	req.True(mod.IsProfane("what the FUCK"))
	req.True(mod.IsProfane("this is sh1t"))
	req.False(mod.IsProfane("hi"))
	req.False(mod.IsProfane("Scunthorpe is a town"))
}

func TestLanguage(t *testing.T) {
	req := require.New(t)

	// Given a short chat line the detector is not sure about
	lang, confidence := Language("this is shit")

	// Then its best guess is still returned
	req.Equal("en", lang)
	req.Greater(confidence, 0.0)

	lang, confidence = Language("   ")
	req.Empty(lang)
	req.Zero(confidence)
}

func TestModerator_LogsLanguageOfHits(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mod, err := NewModerator(log, DefaultWords)
	req.NoError(err)
	out.Reset()

	// When a clean line and a profane line are checked
	req.False(mod.IsProfane("hello everyone"))
	req.Empty(out.String())
	req.True(mod.IsProfane("this is shit"))

	// Then the hit is logged with the detected language
	var entry struct {
		Msg        string   `json:"msg"`
		Words      []string `json:"words"`
		Lang       string   `json:"lang"`
		Confidence float64  `json:"confidence"`
	}
	req.NoError(json.Unmarshal(out.Bytes(), &entry))
	req.Equal("Profanity detected", entry.Msg)
	req.Equal([]string{"shit"}, entry.Words)
	req.Equal("en", entry.Lang)
	req.Greater(entry.Confidence, 0.0)
}
