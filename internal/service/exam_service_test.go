package service

import (
	"errors"
	"testing"
	"time"

	"edu_placement_backend/internal/model"
	"edu_placement_backend/internal/util"
)

func newExamFixture(t *testing.T) (*ExamService, *fakeSessionStore, *fakeExamStore) {
	t.Helper()
	sessions := newFakeSessionStore()
	exams := newFakeExamStore()
	cache := NewReferenceCache(&fakeCurriculumStore{levels: []model.CurriculumLevel{level(1, 1)}}, &fakeRuleStore{})
	svc := NewExamService(exams, sessions, cache, testConfig())
	svc.now = fixedClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	return svc, sessions, exams
}

func TestCreateExamNumbersQuestions(t *testing.T) {
	svc, _, exams := newExamFixture(t)

	exam, err := svc.CreateExam(1, &ExamInput{
		LevelID: 1,
		Title:   "Entry assessment",
		Questions: []QuestionInput{
			{QuestionType: model.QuestionMCQ, CorrectAnswer: "A", Points: 2, OptionsCount: 4},
			{QuestionType: model.QuestionShort, CorrectAnswer: "cat", Points: 3, OptionsCount: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}

	questions, _ := exams.GetQuestions(exam.ID)
	if len(questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(questions))
	}
	for i, q := range questions {
		if q.QuestionNumber != i+1 {
			t.Errorf("question %d numbered %d", i, q.QuestionNumber)
		}
	}
}

func TestCreateExamValidation(t *testing.T) {
	svc, _, _ := newExamFixture(t)

	tests := []struct {
		name string
		in   ExamInput
	}{
		{"unknown level", ExamInput{LevelID: 99, Title: "x"}},
		{"bad question type", ExamInput{LevelID: 1, Title: "x", Questions: []QuestionInput{
			{QuestionType: "essay", CorrectAnswer: "A", Points: 2},
		}}},
		{"points too high", ExamInput{LevelID: 1, Title: "x", Questions: []QuestionInput{
			{QuestionType: model.QuestionMCQ, CorrectAnswer: "A", Points: 11, OptionsCount: 4},
		}}},
		{"points too low", ExamInput{LevelID: 1, Title: "x", Questions: []QuestionInput{
			{QuestionType: model.QuestionMCQ, CorrectAnswer: "A", Points: 0, OptionsCount: 4},
		}}},
		{"undecodable key", ExamInput{LevelID: 1, Title: "x", Questions: []QuestionInput{
			{QuestionType: model.QuestionMCQ, CorrectAnswer: "Z9", Points: 2, OptionsCount: 4},
		}}},
		{"options count over cap", ExamInput{LevelID: 1, Title: "x", Questions: []QuestionInput{
			{QuestionType: model.QuestionMCQ, CorrectAnswer: "A", Points: 2, OptionsCount: 26},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateExam(1, &tt.in); err == nil {
				t.Error("invalid exam accepted")
			}
		})
	}
}

func TestGetExamStudentViewStripsKeys(t *testing.T) {
	svc, _, exams := newExamFixture(t)
	exam := exams.addExam(model.Exam{LevelID: 1, IsPublished: true})
	exams.addQuestion(model.ExamQuestion{ExamID: exam.ID, QuestionNumber: 1, QuestionType: model.QuestionMCQ, CorrectAnswer: "A", Points: 2})

	detail, err := svc.GetExam(exam.ID, true)
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if detail.Questions[0].CorrectAnswer != "" {
		t.Error("answer key leaked to student payload")
	}

	staff, err := svc.GetExam(exam.ID, false)
	if err != nil {
		t.Fatalf("GetExam staff: %v", err)
	}
	if staff.Questions[0].CorrectAnswer != "A" {
		t.Error("staff payload missing answer key")
	}

	draft := exams.addExam(model.Exam{LevelID: 1, IsPublished: false})
	if _, err := svc.GetExam(draft.ID, true); !errors.Is(err, util.ErrExamNotPublished) {
		t.Errorf("draft err = %v, want ErrExamNotPublished", err)
	}
}

func TestAddQuestionAppendsNumber(t *testing.T) {
	svc, _, exams := newExamFixture(t)
	exam := exams.addExam(model.Exam{LevelID: 1, IsPublished: true})
	exams.addQuestion(model.ExamQuestion{ExamID: exam.ID, QuestionNumber: 1, QuestionType: model.QuestionMCQ, CorrectAnswer: "A", Points: 2})

	q, err := svc.AddQuestion(exam.ID, &QuestionInput{QuestionType: model.QuestionShort, CorrectAnswer: "dog", Points: 3, OptionsCount: 1})
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	if q.QuestionNumber != 2 {
		t.Errorf("QuestionNumber = %d, want 2", q.QuestionNumber)
	}
}

func TestManualGradeEssay(t *testing.T) {
	svc, sessions, exams := newExamFixture(t)
	exam := exams.addExam(model.Exam{LevelID: 1, IsPublished: true})
	mcq := exams.addQuestion(model.ExamQuestion{ExamID: exam.ID, QuestionNumber: 1, QuestionType: model.QuestionMCQ, CorrectAnswer: "A", Points: 2, OptionsCount: 4})
	essay := exams.addQuestion(model.ExamQuestion{ExamID: exam.ID, QuestionNumber: 2, QuestionType: model.QuestionLong, Points: 10})

	completedAt := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)
	session := &model.StudentSession{
		UserID: 7, ExamID: exam.ID, OriginalLevelID: 1,
		Status: model.SessionCompleted, CompletedAt: &completedAt,
		StartedAt:   completedAt.Add(-30 * time.Minute),
		NeedsManual: true,
	}
	if err := sessions.Create(session); err != nil {
		t.Fatal(err)
	}
	mcqAnswer := &model.StudentAnswer{SessionID: session.ID, QuestionID: mcq.ID, QuestionNumber: 1, RawAnswer: "A", IsCorrect: boolPtr(true), PointsEarned: floatPtr(2)}
	if err := sessions.UpsertAnswer(mcqAnswer); err != nil {
		t.Fatal(err)
	}
	essayAnswer := &model.StudentAnswer{SessionID: session.ID, QuestionID: essay.ID, QuestionNumber: 2, RawAnswer: "my essay", NeedsManual: true}
	if err := sessions.UpsertAnswer(essayAnswer); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ManualGradeAnswer(2, essayAnswer.ID, 11, ""); err == nil {
		t.Error("grade above the manual share accepted")
	}

	graded, err := svc.ManualGradeAnswer(2, essayAnswer.ID, 7, "solid argument")
	if err != nil {
		t.Fatalf("ManualGradeAnswer: %v", err)
	}
	if graded.NeedsManual {
		t.Error("graded answer still pending")
	}
	if graded.PointsEarned == nil || *graded.PointsEarned != 7 {
		t.Errorf("PointsEarned = %v, want 7", graded.PointsEarned)
	}

	// Session totals now include the essay in both numerator and denominator.
	stored, _ := sessions.FindByID(session.ID)
	if stored.TotalScore != 9 || stored.TotalPossible != 12 {
		t.Errorf("score = %v/%v, want 9/12", stored.TotalScore, stored.TotalPossible)
	}
	if stored.PercentageScore != 75 {
		t.Errorf("percentage = %v, want 75", stored.PercentageScore)
	}
	if stored.NeedsManual {
		t.Error("session still flagged after the last manual grade")
	}

	if _, err := svc.ManualGradeAnswer(2, essayAnswer.ID, 5, ""); !errors.Is(err, util.ErrAnswerNotGradable) {
		t.Errorf("regrade err = %v, want ErrAnswerNotGradable", err)
	}
}

func TestManualGradeMixedAddsToAutoPart(t *testing.T) {
	svc, sessions, exams := newExamFixture(t)
	exam := exams.addExam(model.Exam{LevelID: 1, IsPublished: true})
	key := `[{"type":"multiple_choice","value":"B","points":2},{"type":"long_answer","points":5}]`
	mixed := exams.addQuestion(model.ExamQuestion{ExamID: exam.ID, QuestionNumber: 1, QuestionType: model.QuestionMixed, CorrectAnswer: key, Points: 7})

	session := &model.StudentSession{UserID: 7, ExamID: exam.ID, OriginalLevelID: 1, Status: model.SessionInProgress, StartedAt: time.Now().UTC()}
	if err := sessions.Create(session); err != nil {
		t.Fatal(err)
	}
	raw := `[{"type":"multiple_choice","value":"B"},{"type":"long_answer","value":"essay"}]`
	answer := &model.StudentAnswer{SessionID: session.ID, QuestionID: mixed.ID, QuestionNumber: 1, RawAnswer: raw, IsCorrect: boolPtr(true), PointsEarned: floatPtr(2), NeedsManual: true}
	if err := sessions.UpsertAnswer(answer); err != nil {
		t.Fatal(err)
	}

	graded, err := svc.ManualGradeAnswer(2, answer.ID, 4, "")
	if err != nil {
		t.Fatalf("ManualGradeAnswer: %v", err)
	}
	// 2 from the auto-graded choice sub, 4 awarded for the long sub.
	if graded.PointsEarned == nil || *graded.PointsEarned != 6 {
		t.Errorf("PointsEarned = %v, want 6", graded.PointsEarned)
	}
}
