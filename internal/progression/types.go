package progression

import "finlit-service/internal/models"

// State identifies where a session is in its answer/reveal cycle.
type State string

const (
	StateAwaitingAnswer State = "awaiting_answer"
	StateAnswerRevealed State = "answer_revealed"
	StateCompleted      State = "completed"
)

// Session is one lesson or exam attempt. It is a plain value passed through
// the manager's transition functions; nothing here touches storage.
type Session struct {
	ID           string            `json:"id"`
	TopicID      int               `json:"topic_id"`
	SubLevelID   string            `json:"sub_level_id"`
	IsExam       bool              `json:"is_exam"`
	Questions    []models.Question `json:"questions"`
	CurrentIndex int               `json:"current_index"`
	CorrectCount int               `json:"correct_count"`
	Streak       int               `json:"streak"`
	State        State             `json:"state"`
	LastCorrect  bool              `json:"last_correct"`
	Passed       bool              `json:"passed"`
	XPEarned     int               `json:"xp_earned"`
}

// AnswerResult reports what a single submission did.
type AnswerResult struct {
	Correct         bool    `json:"correct"`
	CorrectIndex    int     `json:"correct_index"`
	XPGranted       int     `json:"xp_granted"`
	Bonuses         Bonuses `json:"bonuses"`
	AlreadyAnswered bool    `json:"already_answered"`
}

// Completion is the single authoritative pass/fail outcome of a session.
type Completion struct {
	Passed       bool `json:"passed"`
	CorrectCount int  `json:"correct_count"`
	Total        int  `json:"total"`
	Score        int  `json:"score"` // percentage, rounded
	IsExam       bool `json:"is_exam"`
}

// Config holds the progression rules.
type Config struct {
	QuestionsPerLesson    int     `json:"questions_per_lesson"`
	LessonPassThreshold   float64 `json:"lesson_pass_threshold"`
	ExamPassThreshold     float64 `json:"exam_pass_threshold"`
	BaseXP                int     `json:"base_xp"`
	ExamBonusXP           int     `json:"exam_bonus_xp"`
	StreakMin             int     `json:"streak_min"`
	SpeedThresholdSeconds int     `json:"speed_threshold_seconds"`
}

// DefaultConfig returns the stock progression rules.
func DefaultConfig() *Config {
	return &Config{
		QuestionsPerLesson:    10,
		LessonPassThreshold:   0.70,
		ExamPassThreshold:     0.80,
		BaseXP:                3,
		ExamBonusXP:           20,
		StreakMin:             3,
		SpeedThresholdSeconds: 10,
	}
}

// NewSession builds a session over an already-selected question set. A
// session with no questions is invalid: it must not be constructible, so it
// can never "complete" as passed.
func NewSession(id string, topicID int, subLevelID string, isExam bool, questions []models.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}
	return &Session{
		ID:         id,
		TopicID:    topicID,
		SubLevelID: subLevelID,
		IsExam:     isExam,
		Questions:  questions,
		State:      StateAwaitingAnswer,
	}, nil
}
