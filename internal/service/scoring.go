package service

import (
	"math"

	"edu_placement_backend/internal/model"
	"edu_placement_backend/pkg/logger"

	"go.uber.org/zap"
)

// examQuestion pairs a stored question with its decoded answer spec so
// grading and scoring never re-parse the raw correct-answer encoding.
// spec is nil when the stored key no longer decodes; such questions are
// graded entirely by hand.
type examQuestion struct {
	q    model.ExamQuestion
	spec *model.AnswerSpec
}

func decodeQuestions(questions []model.ExamQuestion) map[uint]examQuestion {
	decoded := make(map[uint]examQuestion, len(questions))
	for _, q := range questions {
		spec, err := model.DecodeAnswerSpec(q.QuestionType, q.CorrectAnswer, q.OptionsCount)
		if err != nil {
			logger.Log.Warn("Undecodable answer key, question treated as manual-only",
				zap.Uint("questionId", q.ID), zap.Error(err))
			spec = nil
		}
		decoded[q.ID] = examQuestion{q: q, spec: spec}
	}
	return decoded
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// aggregateScore combines per-answer grades into session totals.
//
// totalScore sums every non-nil pointsEarned. totalPossible counts the
// auto-gradable share of every question, plus the manual share of answers a
// human has already graded (pending manual answers contribute nothing, so a
// session is never understated while a review is outstanding). A zero
// totalPossible reports 0%, flagged needsManual instead of dividing.
func aggregateScore(questions map[uint]examQuestion, answers []model.StudentAnswer) (total, possible, percentage float64, needsManual, needsReview bool) {
	answerByQuestion := make(map[uint]model.StudentAnswer, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a
		if a.NeedsManual {
			needsManual = true
		}
		if a.NeedsReview {
			needsReview = true
		}
		if a.PointsEarned != nil {
			total += *a.PointsEarned
		}
	}

	for id, eq := range questions {
		autoShare := 0.0
		full := float64(eq.q.Points)
		if eq.spec != nil {
			autoShare = AutoGradablePoints(eq.spec, eq.q.Points)
			full = TotalPoints(eq.spec, eq.q.Points)
		}
		possible += autoShare
		if a, ok := answerByQuestion[id]; ok && !a.NeedsManual && a.PointsEarned != nil {
			// Manual grading has resolved this answer; its manual share
			// now counts toward the denominator.
			possible += full - autoShare
		}
	}

	if possible == 0 {
		return total, 0, 0, true, needsReview
	}
	percentage = Round2(total / possible * 100)
	return total, possible, percentage, needsManual, needsReview
}

// applyScore writes aggregate results onto the session.
func applyScore(session *model.StudentSession, questions map[uint]examQuestion, answers []model.StudentAnswer) {
	total, possible, percentage, needsManual, needsReview := aggregateScore(questions, answers)
	session.TotalScore = total
	session.TotalPossible = possible
	session.PercentageScore = percentage
	session.NeedsManual = needsManual
	session.NeedsReview = session.NeedsReview || needsReview
}
