package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// Sub-answer types inside a mixed question.
type MixedSubType string

const (
	SubMultipleChoice MixedSubType = "multiple_choice"
	SubShortAnswer    MixedSubType = "short_answer"
	SubLongAnswer     MixedSubType = "long_answer"
)

// MixedSubSpec is one tagged sub-answer of a mixed question's key, in order.
type MixedSubSpec struct {
	Type   MixedSubType `json:"type"`
	Value  string       `json:"value,omitempty"`
	Points int          `json:"points"`
}

// AnswerSpec is the decoded form of ExamQuestion.CorrectAnswer. The raw
// string encoding is type-dependent (single letter, letter set, pipe/comma
// separated blanks, JSON array for mixed); it is parsed exactly once here and
// the grader only ever sees the decoded variant.
type AnswerSpec struct {
	Type QuestionType

	// mcq
	Letter string

	// checkbox: normalized upper-case letters, duplicates collapsed
	LetterSet map[string]bool

	// short: one entry per blank, each holding its acceptable alternatives
	// (lower-cased, trimmed). HeuristicUsed marks the ambiguous-delimiter
	// fallback so the session can be flagged for manual review.
	Blanks        [][]string
	HeuristicUsed bool

	// mixed
	Subs []MixedSubSpec
}

// DecodeAnswerSpec parses a question's correct-answer encoding.
// The comma/pipe overload in short answers is resolved by trusting
// optionsCount first; the token heuristic only runs when optionsCount is
// absent, and its use is surfaced via HeuristicUsed rather than guessed
// silently.
func DecodeAnswerSpec(qt QuestionType, correctAnswer string, optionsCount int) (*AnswerSpec, error) {
	spec := &AnswerSpec{Type: qt}
	switch qt {
	case QuestionMCQ:
		letter := NormalizeLetter(correctAnswer)
		if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'J' {
			return nil, fmt.Errorf("mcq correct answer must be a single letter A-J, got %q", correctAnswer)
		}
		spec.Letter = letter
	case QuestionCheckbox:
		set := LetterSet(correctAnswer)
		if len(set) == 0 {
			return nil, fmt.Errorf("checkbox correct answer must contain at least one letter, got %q", correctAnswer)
		}
		spec.LetterSet = set
	case QuestionShort:
		if strings.TrimSpace(correctAnswer) == "" {
			return nil, fmt.Errorf("short correct answer is empty")
		}
		spec.Blanks, spec.HeuristicUsed = decodeShortKey(correctAnswer, optionsCount)
	case QuestionLong:
		// no key: always graded by a human
	case QuestionMixed:
		var subs []MixedSubSpec
		if err := json.Unmarshal([]byte(correctAnswer), &subs); err != nil {
			return nil, fmt.Errorf("mixed correct answer is not a valid sub-answer array: %w", err)
		}
		if len(subs) == 0 {
			return nil, fmt.Errorf("mixed correct answer has no sub-answers")
		}
		for i, sub := range subs {
			switch sub.Type {
			case SubMultipleChoice, SubShortAnswer, SubLongAnswer:
			default:
				return nil, fmt.Errorf("mixed sub-answer %d has unknown type %q", i, sub.Type)
			}
			if sub.Type != SubLongAnswer && strings.TrimSpace(sub.Value) == "" {
				return nil, fmt.Errorf("mixed sub-answer %d has no value", i)
			}
		}
		spec.Subs = subs
	default:
		return nil, fmt.Errorf("unknown question type %q", qt)
	}
	return spec, nil
}

// decodeShortKey splits a short-answer key into per-blank alternative sets.
//
// optionsCount > 1 with a comma present means index-aligned blanks (each blank
// may still carry pipe alternatives). optionsCount == 1 means a single blank
// with pipe alternatives. With optionsCount absent the legacy heuristic runs:
// a pipe between uniformly digit-like or very short tokens is read as a
// multi-blank separator, and the caller must flag the session for review.
func decodeShortKey(key string, optionsCount int) (blanks [][]string, heuristic bool) {
	if optionsCount > 1 && strings.Contains(key, ",") {
		for _, part := range strings.Split(key, ",") {
			blanks = append(blanks, alternatives(part))
		}
		return blanks, false
	}
	if optionsCount >= 1 {
		return [][]string{alternatives(key)}, false
	}
	if strings.Contains(key, "|") && looksMultiBlank(key) {
		for _, part := range strings.Split(key, "|") {
			blanks = append(blanks, []string{normalizeText(part)})
		}
		return blanks, true
	}
	return [][]string{alternatives(key)}, false
}

// alternatives splits a single blank's key on pipes into normalized
// acceptable strings.
func alternatives(blank string) []string {
	var alts []string
	for _, alt := range strings.Split(blank, "|") {
		alt = normalizeText(alt)
		if alt != "" {
			alts = append(alts, alt)
		}
	}
	return alts
}

// looksMultiBlank reports whether every pipe-separated token is digit-like or
// very short, the signature of legacy keys that used pipes between blanks.
func looksMultiBlank(key string) bool {
	tokens := strings.Split(key, "|")
	if len(tokens) < 2 {
		return false
	}
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return false
		}
		if !isDigitLike(tok) && len([]rune(tok)) > 3 {
			return false
		}
	}
	return true
}

func isDigitLike(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != '-' {
			return false
		}
	}
	return true
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeLetter trims and upper-cases a single option letter.
func NormalizeLetter(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// LetterSet parses a comma-separated letter list into a normalized set,
// collapsing duplicates and ignoring empty tokens.
func LetterSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		letter := NormalizeLetter(part)
		if letter != "" {
			set[letter] = true
		}
	}
	return set
}

// MixedSubAnswer is one element of a mixed question's raw answer payload,
// index-aligned with the key's sub-specs.
type MixedSubAnswer struct {
	Type  MixedSubType `json:"type"`
	Value string       `json:"value"`
}
