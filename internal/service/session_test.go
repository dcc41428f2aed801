package service

import (
	"errors"
	"testing"
	"time"

	"edu_placement_backend/internal/model"
	"edu_placement_backend/internal/util"
)

type sessionFixture struct {
	svc      *SessionService
	sessions *fakeSessionStore
	exams    *fakeExamStore
	exam     model.Exam
	start    time.Time
}

func newSessionFixture(t *testing.T, timerMinutes int) *sessionFixture {
	t.Helper()
	sessions := newFakeSessionStore()
	exams := newFakeExamStore()
	exam := exams.addExam(model.Exam{LevelID: 1, TimerMinutes: timerMinutes, IsPublished: true})
	exams.addQuestion(model.ExamQuestion{ExamID: exam.ID, QuestionNumber: 1, QuestionType: model.QuestionMCQ, CorrectAnswer: "A", Points: 2, OptionsCount: 4})
	exams.addQuestion(model.ExamQuestion{ExamID: exam.ID, QuestionNumber: 2, QuestionType: model.QuestionShort, CorrectAnswer: "colour|color", Points: 3, OptionsCount: 1})
	exams.addQuestion(model.ExamQuestion{ExamID: exam.ID, QuestionNumber: 3, QuestionType: model.QuestionLong, CorrectAnswer: "", Points: 5})

	svc := NewSessionService(sessions, exams, testConfig())
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = fixedClock(start)

	return &sessionFixture{svc: svc, sessions: sessions, exams: exams, exam: exam, start: start}
}

func (f *sessionFixture) openSession(t *testing.T, userID uint) *model.StudentSession {
	t.Helper()
	session := &model.StudentSession{
		UserID:          userID,
		ExamID:          f.exam.ID,
		OriginalLevelID: f.exam.LevelID,
		Status:          model.SessionInProgress,
		StartedAt:       f.start,
	}
	if err := f.sessions.Create(session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

func (f *sessionFixture) advance(d time.Duration) {
	f.svc.now = fixedClock(f.start.Add(d))
}

func TestGetSessionTimerView(t *testing.T) {
	f := newSessionFixture(t, 30)
	session := f.openSession(t, 7)
	f.advance(time.Second)

	view, err := f.svc.GetSession(7, session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if view.IsExpired {
		t.Error("fresh session reported expired")
	}
	if view.RemainingSeconds != 1799 {
		t.Errorf("RemainingSeconds = %d, want 1799", view.RemainingSeconds)
	}
	if view.TotalQuestions != 3 {
		t.Errorf("TotalQuestions = %d, want 3", view.TotalQuestions)
	}

	if _, err := f.svc.GetSession(8, session.ID); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("foreign user err = %v, want ErrSessionNotFound", err)
	}
}

func TestSubmitAnswerGradesAndStores(t *testing.T) {
	f := newSessionFixture(t, 30)
	session := f.openSession(t, 7)

	answer, err := f.svc.SubmitAnswer(7, session.ID, 1, "a")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if answer.IsCorrect == nil || !*answer.IsCorrect {
		t.Error("correct answer not graded correct")
	}
	if answer.PointsEarned == nil || *answer.PointsEarned != 2 {
		t.Errorf("PointsEarned = %v, want 2", answer.PointsEarned)
	}
}

func TestSubmitAnswerOverwrites(t *testing.T) {
	f := newSessionFixture(t, 30)
	session := f.openSession(t, 7)

	first, err := f.svc.SubmitAnswer(7, session.ID, 1, "B")
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := f.svc.SubmitAnswer(7, session.ID, 1, "A")
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("resubmission created a new row: %d then %d", first.ID, second.ID)
	}

	answers, _ := f.sessions.GetAnswers(session.ID)
	if len(answers) != 1 {
		t.Fatalf("stored %d answers, want 1", len(answers))
	}
	if answers[0].RawAnswer != "A" || !*answers[0].IsCorrect {
		t.Errorf("stored answer = %+v, want the overwrite", answers[0])
	}
}

func TestSubmitAnswerBounds(t *testing.T) {
	f := newSessionFixture(t, 30)
	session := f.openSession(t, 7)

	for _, number := range []int{0, -1, 4} {
		if _, err := f.svc.SubmitAnswer(7, session.ID, number, "A"); !errors.Is(err, util.ErrInvalidQuestion) {
			t.Errorf("question %d err = %v, want ErrInvalidQuestion", number, err)
		}
	}
}

func TestSubmitAnswerTimerGate(t *testing.T) {
	f := newSessionFixture(t, 30)
	session := f.openSession(t, 7)

	f.advance(31 * time.Minute)
	if _, err := f.svc.SubmitAnswer(7, session.ID, 1, "A"); err != nil {
		t.Errorf("grace-window submit rejected: %v", err)
	}

	f.advance(34 * time.Minute)
	if _, err := f.svc.SubmitAnswer(7, session.ID, 2, "colour"); !errors.Is(err, util.ErrSessionClosed) {
		t.Errorf("post-grace err = %v, want ErrSessionClosed", err)
	}
}

func TestSubmitAnswerLongParksForManual(t *testing.T) {
	f := newSessionFixture(t, 30)
	session := f.openSession(t, 7)

	answer, err := f.svc.SubmitAnswer(7, session.ID, 3, "my essay")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !answer.NeedsManual {
		t.Error("long answer not parked for manual grading")
	}
	if answer.IsCorrect != nil || answer.PointsEarned != nil {
		t.Error("long answer graded automatically")
	}
}

func TestCompleteSessionScores(t *testing.T) {
	f := newSessionFixture(t, 30)
	session := f.openSession(t, 7)

	if _, err := f.svc.SubmitAnswer(7, session.ID, 1, "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.SubmitAnswer(7, session.ID, 2, "colors"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.SubmitAnswer(7, session.ID, 3, "essay"); err != nil {
		t.Fatal(err)
	}

	f.advance(20 * time.Minute)
	summary, err := f.svc.CompleteSession(7, session.ID, false, 0)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	// Auto-gradable share is 2+3; the pending essay contributes nothing yet.
	if summary.TotalScore != 2 || summary.TotalPossible != 5 {
		t.Errorf("score = %v/%v, want 2/5", summary.TotalScore, summary.TotalPossible)
	}
	if summary.PercentageScore != 40 {
		t.Errorf("percentage = %v, want 40", summary.PercentageScore)
	}
	if !summary.NeedsManual {
		t.Error("pending essay not flagged")
	}
	if summary.CompletedAt == nil || !summary.CompletedAt.Equal(f.start.Add(20*time.Minute)) {
		t.Errorf("CompletedAt = %v, want the server clock", summary.CompletedAt)
	}
}

func TestCompleteSessionTwice(t *testing.T) {
	f := newSessionFixture(t, 30)
	session := f.openSession(t, 7)

	if _, err := f.svc.CompleteSession(7, session.ID, false, 0); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if _, err := f.svc.CompleteSession(7, session.ID, false, 0); !errors.Is(err, util.ErrSessionAlreadyCompleted) {
		t.Errorf("second complete err = %v, want ErrSessionAlreadyCompleted", err)
	}
}

func TestSubmitAfterCompleteDoesNotChangeScore(t *testing.T) {
	f := newSessionFixture(t, 30)
	session := f.openSession(t, 7)

	if _, err := f.svc.SubmitAnswer(7, session.ID, 1, "A"); err != nil {
		t.Fatal(err)
	}
	summary, err := f.svc.CompleteSession(7, session.ID, false, 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.SubmitAnswer(7, session.ID, 2, "colour"); !errors.Is(err, util.ErrSessionClosed) {
		t.Fatalf("post-complete submit err = %v, want ErrSessionClosed", err)
	}

	stored, _ := f.sessions.FindByID(session.ID)
	if stored.TotalScore != summary.TotalScore || stored.PercentageScore != summary.PercentageScore {
		t.Error("recorded score changed after a rejected submission")
	}
}

func TestRecalculateSessionsAppliesNewKey(t *testing.T) {
	f := newSessionFixture(t, 30)
	session := f.openSession(t, 7)

	if _, err := f.svc.SubmitAnswer(7, session.ID, 1, "B"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.CompleteSession(7, session.ID, false, 0); err != nil {
		t.Fatal(err)
	}

	// Fix the key so the recorded answer becomes correct.
	q, err := f.exams.FindQuestion(f.exam.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	q.CorrectAnswer = "B"
	if err := f.exams.UpdateQuestion(q); err != nil {
		t.Fatal(err)
	}

	stored, _ := f.sessions.FindByID(session.ID)
	if stored.TotalScore != 0 {
		t.Fatalf("score moved before recalculation: %v", stored.TotalScore)
	}

	count, err := f.svc.RecalculateSessions(f.exam.ID)
	if err != nil {
		t.Fatalf("RecalculateSessions: %v", err)
	}
	if count != 1 {
		t.Errorf("recalculated %d sessions, want 1", count)
	}

	stored, _ = f.sessions.FindByID(session.ID)
	if stored.TotalScore != 2 {
		t.Errorf("score = %v after recalculation, want 2", stored.TotalScore)
	}
}

func TestHeuristicShortFlagsSession(t *testing.T) {
	f := newSessionFixture(t, 30)
	f.exams.addQuestion(model.ExamQuestion{ExamID: f.exam.ID, QuestionNumber: 4, QuestionType: model.QuestionShort, CorrectAnswer: "12|8|4", Points: 3})
	session := f.openSession(t, 7)

	answer, err := f.svc.SubmitAnswer(7, session.ID, 4, "12,8,4")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !answer.NeedsReview {
		t.Error("heuristic answer not marked for review")
	}

	stored, _ := f.sessions.FindByID(session.ID)
	if !stored.NeedsReview {
		t.Error("session not flagged for review")
	}
}
