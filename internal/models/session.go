package models

import "time"

// Session states.
const (
	StateAwaitingAnswer = "awaiting_answer"
	StateAnswerRevealed = "answer_revealed"
	StateCompleted      = "completed"
)

// Session statuses.
const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

// LearningSession is the persisted snapshot of one lesson or exam attempt.
// Questions are stored with their presented option order and the remapped
// correct index, so answer checks always run against what the learner saw.
type LearningSession struct {
	ID           string     `bson:"_id" json:"id"`
	UserID       string     `bson:"user_id" json:"user_id"`
	TopicID      int        `bson:"topic_id" json:"topic_id"`
	SubLevelID   string     `bson:"sub_level_id" json:"sub_level_id"`
	IsExam       bool       `bson:"is_exam" json:"is_exam"`
	Questions    []Question `bson:"questions" json:"questions"`
	CurrentIndex int        `bson:"current_index" json:"current_index"`
	CorrectCount int        `bson:"correct_count" json:"correct_count"`
	Streak       int        `bson:"streak" json:"streak"`
	State        string     `bson:"state" json:"state"`
	LastCorrect  bool       `bson:"last_correct" json:"last_correct"`
	Passed       bool       `bson:"passed" json:"passed"`
	XPEarned     int        `bson:"xp_earned" json:"xp_earned"`
	Status       string     `bson:"status" json:"status"`
	PauseReason  string     `bson:"pause_reason,omitempty" json:"pause_reason,omitempty"`
	StartTime    time.Time  `bson:"start_time" json:"start_time"`
	EndTime      time.Time  `bson:"end_time,omitempty" json:"end_time,omitempty"`
}
