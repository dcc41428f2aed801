package service

import (
	"sort"
	"time"

	"edu_placement_backend/internal/config"
	"edu_placement_backend/internal/model"
	"edu_placement_backend/internal/repository"

	"gorm.io/gorm"
)

// In-memory stores mirroring the repository contracts, including the rule
// ordering (priority desc, id asc) the cache depends on.

type fakeSessionStore struct {
	sessions    map[uint]model.StudentSession
	answers     map[uint]model.StudentAnswer
	grades      map[uint]model.ManualGrade
	nextSession uint
	nextAnswer  uint
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[uint]model.StudentSession),
		answers:  make(map[uint]model.StudentAnswer),
		grades:   make(map[uint]model.ManualGrade),
	}
}

func (f *fakeSessionStore) Create(session *model.StudentSession) error {
	f.nextSession++
	session.ID = f.nextSession
	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeSessionStore) Update(session *model.StudentSession) error {
	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeSessionStore) FindByID(id uint) (*model.StudentSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &session, nil
}

func (f *fakeSessionStore) FindActiveByUser(userID uint) (*model.StudentSession, error) {
	ids := make([]uint, 0, len(f.sessions))
	for id := range f.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s := f.sessions[id]
		if s.UserID == userID && s.Status == model.SessionInProgress {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSessionStore) UpsertAnswer(answer *model.StudentAnswer) error {
	for id, existing := range f.answers {
		if existing.SessionID == answer.SessionID && existing.QuestionID == answer.QuestionID {
			answer.ID = id
			f.answers[id] = *answer
			return nil
		}
	}
	f.nextAnswer++
	answer.ID = f.nextAnswer
	f.answers[answer.ID] = *answer
	return nil
}

func (f *fakeSessionStore) UpdateAnswer(answer *model.StudentAnswer) error {
	f.answers[answer.ID] = *answer
	return nil
}

func (f *fakeSessionStore) GetAnswers(sessionID uint) ([]model.StudentAnswer, error) {
	var answers []model.StudentAnswer
	for _, a := range f.answers {
		if a.SessionID == sessionID {
			answers = append(answers, a)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].QuestionNumber < answers[j].QuestionNumber })
	return answers, nil
}

func (f *fakeSessionStore) FindAnswerByID(id uint) (*model.StudentAnswer, error) {
	answer, ok := f.answers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &answer, nil
}

func (f *fakeSessionStore) SaveManualGrade(grade *model.ManualGrade) error {
	f.grades[grade.AnswerID] = *grade
	return nil
}

func (f *fakeSessionStore) ListByExam(examID uint) ([]model.StudentSession, error) {
	var sessions []model.StudentSession
	for _, s := range f.sessions {
		if s.ExamID == examID {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

func (f *fakeSessionStore) ListPendingManual(examID uint) ([]model.StudentSession, error) {
	var sessions []model.StudentSession
	for _, s := range f.sessions {
		if s.ExamID == examID && s.Status == model.SessionCompleted && s.NeedsManual {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

func (f *fakeSessionStore) StatsByExam(examID uint) (*repository.ExamStats, error) {
	return &repository.ExamStats{}, nil
}

type fakeExamStore struct {
	exams        map[uint]model.Exam
	questions    map[uint]model.ExamQuestion
	nextExam     uint
	nextQuestion uint
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{
		exams:     make(map[uint]model.Exam),
		questions: make(map[uint]model.ExamQuestion),
	}
}

func (f *fakeExamStore) addExam(exam model.Exam) model.Exam {
	if exam.ID == 0 {
		f.nextExam++
		exam.ID = f.nextExam
	} else if exam.ID > f.nextExam {
		f.nextExam = exam.ID
	}
	f.exams[exam.ID] = exam
	return exam
}

func (f *fakeExamStore) addQuestion(q model.ExamQuestion) model.ExamQuestion {
	f.nextQuestion++
	q.ID = f.nextQuestion
	f.questions[q.ID] = q
	return q
}

func (f *fakeExamStore) Create(exam *model.Exam) error {
	*exam = f.addExam(*exam)
	return nil
}

func (f *fakeExamStore) Update(exam *model.Exam) error {
	f.exams[exam.ID] = *exam
	return nil
}

func (f *fakeExamStore) FindByID(id uint) (*model.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &exam, nil
}

func (f *fakeExamStore) FindFirstPublishedByLevel(levelID uint) (*model.Exam, error) {
	var found *model.Exam
	for id := range f.exams {
		exam := f.exams[id]
		if exam.LevelID != levelID || !exam.IsPublished {
			continue
		}
		if found == nil || exam.ID < found.ID {
			e := exam
			found = &e
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (f *fakeExamStore) ListByLevel(levelID uint) ([]model.Exam, error) {
	var exams []model.Exam
	for _, e := range f.exams {
		if e.LevelID == levelID {
			exams = append(exams, e)
		}
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].ID < exams[j].ID })
	return exams, nil
}

func (f *fakeExamStore) GetQuestions(examID uint) ([]model.ExamQuestion, error) {
	var questions []model.ExamQuestion
	for _, q := range f.questions {
		if q.ExamID == examID {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].QuestionNumber < questions[j].QuestionNumber })
	return questions, nil
}

func (f *fakeExamStore) FindQuestion(examID uint, questionNumber int) (*model.ExamQuestion, error) {
	for _, q := range f.questions {
		if q.ExamID == examID && q.QuestionNumber == questionNumber {
			q := q
			return &q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeExamStore) FindQuestionByID(id uint) (*model.ExamQuestion, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &q, nil
}

func (f *fakeExamStore) CountQuestions(examID uint) (int64, error) {
	var count int64
	for _, q := range f.questions {
		if q.ExamID == examID {
			count++
		}
	}
	return count, nil
}

func (f *fakeExamStore) CreateQuestions(questions []model.ExamQuestion) error {
	for i := range questions {
		questions[i] = f.addQuestion(questions[i])
	}
	return nil
}

func (f *fakeExamStore) CreateQuestion(q *model.ExamQuestion) error {
	*q = f.addQuestion(*q)
	return nil
}

func (f *fakeExamStore) UpdateQuestion(q *model.ExamQuestion) error {
	f.questions[q.ID] = *q
	return nil
}

func (f *fakeExamStore) DeleteQuestionByID(id uint) error {
	delete(f.questions, id)
	return nil
}

type fakeCurriculumStore struct {
	levels []model.CurriculumLevel
}

func (f *fakeCurriculumStore) ListLevels() ([]model.CurriculumLevel, error) {
	return f.levels, nil
}

type fakeRuleStore struct {
	rules []model.PlacementRule
}

func (f *fakeRuleStore) ListAll() ([]model.PlacementRule, error) {
	rules := append([]model.PlacementRule(nil), f.rules...)
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
	return rules, nil
}

type fakeAdjustmentStore struct {
	adjustments []model.DifficultyAdjustment
}

func (f *fakeAdjustmentStore) Create(adj *model.DifficultyAdjustment) error {
	adj.ID = uint(len(f.adjustments) + 1)
	f.adjustments = append(f.adjustments, *adj)
	return nil
}

func (f *fakeAdjustmentStore) ListBySession(sessionID uint) ([]model.DifficultyAdjustment, error) {
	var out []model.DifficultyAdjustment
	for _, adj := range f.adjustments {
		if adj.SessionID == sessionID {
			out = append(out, adj)
		}
	}
	return out, nil
}

func level(id uint, difficulty int) model.CurriculumLevel {
	l := model.CurriculumLevel{InternalDifficulty: difficulty, Name: "Level"}
	l.ID = id
	return l
}

func rule(id uint, grade int, bucket model.RankBucket, target uint, priority int) model.PlacementRule {
	r := model.PlacementRule{GradeValue: grade, RankBucket: bucket, TargetLevelID: target, Priority: priority}
	r.ID = id
	return r
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Engine.GracePeriodMinutes = 3
	cfg.Engine.DefaultLevelID = 1
	cfg.Engine.MaxOptionsCount = 10
	return cfg
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
