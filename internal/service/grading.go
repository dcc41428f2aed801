package service

import (
	"encoding/json"
	"strings"

	"edu_placement_backend/internal/model"
)

// GradeResult is the outcome of grading one raw answer against a decoded
// answer spec. Nil IsCorrect/PointsEarned mean "pending manual grading";
// they are never defaulted to false/zero, which would understate scores
// before a human review.
type GradeResult struct {
	IsCorrect    *bool
	PointsEarned *float64
	NeedsManual  bool
	NeedsReview  bool
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

// GradeAnswer grades one raw answer. It is pure: the same (spec, raw, points)
// always produces the same result, so re-grading after a question edit is a
// plain re-invocation.
func GradeAnswer(spec *model.AnswerSpec, raw string, points int) GradeResult {
	switch spec.Type {
	case model.QuestionMCQ:
		correct := model.NormalizeLetter(raw) == spec.Letter
		return scored(correct, points)
	case model.QuestionCheckbox:
		return scored(letterSetsEqual(model.LetterSet(raw), spec.LetterSet), points)
	case model.QuestionShort:
		correct := gradeShort(spec, raw)
		res := scored(correct, points)
		res.NeedsReview = spec.HeuristicUsed
		return res
	case model.QuestionLong:
		// Never auto-graded.
		return GradeResult{NeedsManual: true}
	case model.QuestionMixed:
		return gradeMixed(spec, raw)
	}
	// Unknown types reach grading only through data corruption; park them
	// for a human instead of inventing a score.
	return GradeResult{NeedsManual: true}
}

func scored(correct bool, points int) GradeResult {
	earned := 0.0
	if correct {
		earned = float64(points)
	}
	return GradeResult{IsCorrect: boolPtr(correct), PointsEarned: floatPtr(earned)}
}

func letterSetsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for letter := range a {
		if !b[letter] {
			return false
		}
	}
	return true
}

// gradeShort matches a raw short answer against the decoded blanks. With a
// single blank any alternative matches; with multiple blanks the raw values
// are index-aligned and every blank must match (a count mismatch is wrong,
// not partially right).
func gradeShort(spec *model.AnswerSpec, raw string) bool {
	if len(spec.Blanks) == 1 {
		return matchesBlank(spec.Blanks[0], raw)
	}
	values := splitBlankValues(raw, spec.HeuristicUsed)
	if len(values) != len(spec.Blanks) {
		return false
	}
	for i, value := range values {
		if !matchesBlank(spec.Blanks[i], value) {
			return false
		}
	}
	return true
}

// splitBlankValues splits a multi-blank raw answer. Comma is the primary
// separator; legacy heuristic keys also accept pipes, since students of those
// exams were shown pipe-separated blanks.
func splitBlankValues(raw string, acceptPipes bool) []string {
	sep := ","
	if acceptPipes && !strings.Contains(raw, ",") && strings.Contains(raw, "|") {
		sep = "|"
	}
	return strings.Split(raw, sep)
}

func matchesBlank(alternatives []string, value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, alt := range alternatives {
		if value == alt {
			return true
		}
	}
	return false
}

// gradeMixed grades the ordered sub-answers of a mixed question. Long
// sub-components are excluded from auto-grading and flag the answer for
// manual component grading; the question is correct only if every non-long
// sub-component is correct. Earned points are the sum of the correct
// sub-components' own point values. A malformed payload grades as wrong
// rather than failing the submission.
func gradeMixed(spec *model.AnswerSpec, raw string) GradeResult {
	needsManual := false
	for _, sub := range spec.Subs {
		if sub.Type == model.SubLongAnswer {
			needsManual = true
			break
		}
	}

	var subAnswers []model.MixedSubAnswer
	if err := json.Unmarshal([]byte(raw), &subAnswers); err != nil {
		res := scored(false, 0)
		res.NeedsManual = needsManual
		return res
	}

	earned := 0.0
	allCorrect := true
	for i, sub := range spec.Subs {
		if sub.Type == model.SubLongAnswer {
			continue
		}
		var value string
		if i < len(subAnswers) {
			value = subAnswers[i].Value
		}
		var correct bool
		switch sub.Type {
		case model.SubMultipleChoice:
			correct = model.NormalizeLetter(value) == model.NormalizeLetter(sub.Value)
		case model.SubShortAnswer:
			correct = matchesBlank(shortAlternatives(sub.Value), value)
		}
		if correct {
			earned += float64(sub.Points)
		} else {
			allCorrect = false
		}
	}

	return GradeResult{
		IsCorrect:    boolPtr(allCorrect),
		PointsEarned: floatPtr(earned),
		NeedsManual:  needsManual,
	}
}

func shortAlternatives(key string) []string {
	var alts []string
	for _, alt := range strings.Split(key, "|") {
		alt = strings.ToLower(strings.TrimSpace(alt))
		if alt != "" {
			alts = append(alts, alt)
		}
	}
	return alts
}

// AutoGradablePoints is the share of a question's points the engine can award
// without a human: zero for long questions, the non-long sub-components' sum
// for mixed questions, the full point value otherwise.
func AutoGradablePoints(spec *model.AnswerSpec, points int) float64 {
	switch spec.Type {
	case model.QuestionLong:
		return 0
	case model.QuestionMixed:
		total := 0
		for _, sub := range spec.Subs {
			if sub.Type != model.SubLongAnswer {
				total += sub.Points
			}
		}
		return float64(total)
	default:
		return float64(points)
	}
}

// TotalPoints is a question's full point value: the sum of sub-component
// points for mixed questions, Points otherwise.
func TotalPoints(spec *model.AnswerSpec, points int) float64 {
	if spec.Type == model.QuestionMixed {
		total := 0
		for _, sub := range spec.Subs {
			total += sub.Points
		}
		return float64(total)
	}
	return float64(points)
}
