package moderation

import (
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	apperrors "chat-relay/errors"
)

// Moderator censors banned words in chat content before it is persisted
// or fanned out. Matching is case-insensitive via a rune-for-rune lower
// mapping, which keeps match positions aligned with the original text.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

func NewModerator(censoredWords []string, replacement rune) (*Moderator, error) {
	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		trimmed := strings.TrimSpace(word)
		if trimmed == "" {
			continue
		}
		patterns = append(patterns, lowerRunes([]rune(trimmed)))
	}
	if len(patterns) == 0 {
		return nil, apperrors.ErrEmptyWords
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces every character of each matched word with the
// replacement rune, leaving the rest of the text untouched.
func (m *Moderator) Censor(original string) string {
	runes := []rune(original)
	if len(runes) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(lowerRunes(runes), false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		end := span.Pos + len(span.Word)
		for i := span.Pos; i < end && i < len(runes); i++ {
			runes[i] = m.replacement
		}
	}
	return string(runes)
}

func lowerRunes(rs []rune) []rune {
	lowered := make([]rune, len(rs))
	for i, r := range rs {
		lowered[i] = unicode.ToLower(r)
	}
	return lowered
}
