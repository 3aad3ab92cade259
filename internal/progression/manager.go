package progression

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuestionSet is returned when session construction gets no questions.
	ErrEmptyQuestionSet = errors.New("no questions available for session")
	// ErrSessionComplete is returned for transitions on a completed session.
	ErrSessionComplete = errors.New("session already complete")
)

// Manager applies the progression rules to sessions.
type Manager struct {
	config *Config
}

// NewManager creates a manager. A nil config selects the defaults.
func NewManager(config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	return &Manager{config: config}
}

// Config exposes the active rules.
func (m *Manager) Config() *Config {
	return m.config
}

// SubmitAnswer checks the selected option against the correct option's
// current position and moves the session to AnswerRevealed. Submitting again
// while revealed is a no-op, so a double-clicked option can never count twice.
// XP is granted only on a correct answer; learnerLevel feeds the multiplier.
func (m *Manager) SubmitAnswer(s *Session, selectedIndex, elapsedSeconds, learnerLevel int) (*AnswerResult, error) {
	if s.State == StateCompleted {
		return nil, ErrSessionComplete
	}

	question := &s.Questions[s.CurrentIndex]

	if s.State == StateAnswerRevealed {
		return &AnswerResult{
			Correct:         s.LastCorrect,
			CorrectIndex:    question.CorrectIndex,
			AlreadyAnswered: true,
		}, nil
	}

	if selectedIndex < 0 || selectedIndex >= len(question.Options) {
		return nil, fmt.Errorf("selected index %d out of range for %d options", selectedIndex, len(question.Options))
	}

	correct := selectedIndex == question.CorrectIndex
	result := &AnswerResult{
		Correct:      correct,
		CorrectIndex: question.CorrectIndex,
	}

	if correct {
		s.CorrectCount++
		s.Streak++

		result.Bonuses = Bonuses{
			Streak:  s.Streak >= m.config.StreakMin,
			Speed:   elapsedSeconds > 0 && elapsedSeconds < m.config.SpeedThresholdSeconds,
			Perfect: s.CorrectCount == len(s.Questions),
		}
		result.XPGranted = AwardXP(m.config.BaseXP, learnerLevel, result.Bonuses)
		s.XPEarned += result.XPGranted
	} else {
		s.Streak = 0
	}

	s.State = StateAnswerRevealed
	s.LastCorrect = correct

	return result, nil
}

// Advance moves past a revealed answer: on to the next question, or through
// the one and only completion evaluation when the set is exhausted. The
// returned Completion is nil until the session actually completes.
func (m *Manager) Advance(s *Session) (*Completion, error) {
	if s.State == StateCompleted {
		return nil, ErrSessionComplete
	}
	if s.State != StateAnswerRevealed {
		return nil, fmt.Errorf("cannot advance while %s", s.State)
	}

	if s.CurrentIndex+1 < len(s.Questions) {
		s.CurrentIndex++
		s.State = StateAwaitingAnswer
		s.LastCorrect = false
		return nil, nil
	}

	completion := m.EvaluateCompletion(s)
	s.State = StateCompleted
	s.Passed = completion.Passed
	return completion, nil
}

// EvaluateCompletion is the single pass/fail check for both lessons and
// exams. Every caller goes through this one function, so an attempt can
// never be judged against two different thresholds.
func (m *Manager) EvaluateCompletion(s *Session) *Completion {
	total := len(s.Questions)
	ratio := float64(s.CorrectCount) / float64(total)

	threshold := m.config.LessonPassThreshold
	if s.IsExam {
		threshold = m.config.ExamPassThreshold
	}

	return &Completion{
		Passed:       ratio >= threshold,
		CorrectCount: s.CorrectCount,
		Total:        total,
		Score:        int(ratio*100 + 0.5),
		IsExam:       s.IsExam,
	}
}
