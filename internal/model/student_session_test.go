package model

import (
	"testing"
	"time"
)

func TestSessionTimerMath(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	session := &StudentSession{Status: SessionInProgress, StartedAt: start}
	grace := 3 * time.Minute

	t.Run("fresh session", func(t *testing.T) {
		now := start.Add(time.Second)
		if session.IsExpired(30, now) {
			t.Error("fresh session reported expired")
		}
		if got := session.RemainingSeconds(30, now); got != 1799 {
			t.Errorf("RemainingSeconds = %d, want 1799", got)
		}
		if !session.CanAcceptAnswers(30, grace, now) {
			t.Error("fresh session rejected answers")
		}
	})

	t.Run("inside grace window", func(t *testing.T) {
		now := start.Add(31 * time.Minute)
		if !session.IsExpired(30, now) {
			t.Error("expected expired")
		}
		if !session.InGracePeriod(30, grace, now) {
			t.Error("expected inside grace window")
		}
		if !session.CanAcceptAnswers(30, grace, now) {
			t.Error("grace window rejected answers")
		}
		if got := session.RemainingSeconds(30, now); got != 0 {
			t.Errorf("RemainingSeconds = %d, want 0", got)
		}
	})

	t.Run("past grace window", func(t *testing.T) {
		now := start.Add(34 * time.Minute)
		if session.InGracePeriod(30, grace, now) {
			t.Error("expected past grace window")
		}
		if session.CanAcceptAnswers(30, grace, now) {
			t.Error("accepted answers past grace window")
		}
	})

	t.Run("untimed never expires", func(t *testing.T) {
		now := start.Add(1000 * time.Hour)
		if session.IsExpired(0, now) {
			t.Error("untimed session reported expired")
		}
		if !session.CanAcceptAnswers(0, grace, now) {
			t.Error("untimed session rejected answers")
		}
	})

	t.Run("closed session never accepts", func(t *testing.T) {
		completed := &StudentSession{Status: SessionCompleted, StartedAt: start}
		if completed.CanAcceptAnswers(30, grace, start.Add(time.Minute)) {
			t.Error("completed session accepted answers")
		}
	})
}
