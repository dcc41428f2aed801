package util

import "errors"

var (
	ErrEmailRegistered = errors.New("email already registered")

	// Placement
	ErrNoMatchingRule = errors.New("no placement rule matches grade and rank bucket")
	ErrLevelNotFound  = errors.New("curriculum level not found")

	// Sessions
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionClosed           = errors.New("session is closed for answers")
	ErrSessionAlreadyCompleted = errors.New("session already completed")
	ErrInvalidQuestion         = errors.New("question number outside exam range")

	// Exams
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamNotPublished  = errors.New("exam not published or not accessible")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrAnswerNotFound    = errors.New("answer not found")
	ErrAnswerNotGradable = errors.New("answer does not require manual grading")

	// Difficulty
	ErrNoAlternateAvailable = errors.New("no alternate exam exists at the requested difficulty")
)
