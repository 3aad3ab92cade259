package models

import (
	"encoding/json"
	"time"
)

// ProgressSchemaVersion tags persisted progress records so future migrations
// have something to key on.
const ProgressSchemaVersion = 1

// CompletedLevel marks a passed lesson.
type CompletedLevel struct {
	TopicID    int    `bson:"topic_id" json:"topic_id"`
	SubLevelID string `bson:"sub_level_id" json:"sub_level_id"`
}

// ExamRecord marks a passed exam. At most one record per topic; later passes
// replace earlier ones.
type ExamRecord struct {
	TopicID int `bson:"topic_id" json:"topic_id"`
	Score   int `bson:"score" json:"score"`
}

// UnmarshalJSON accepts the tagged record form and, for imports of old
// client exports, a bare topic number (which carries no score).
func (e *ExamRecord) UnmarshalJSON(data []byte) error {
	var topicID int
	if err := json.Unmarshal(data, &topicID); err == nil {
		e.TopicID = topicID
		e.Score = 0
		return nil
	}

	type tagged ExamRecord
	var rec tagged
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*e = ExamRecord(rec)
	return nil
}

// ProgressRecord is the single per-learner progress document. The XP total is
// monotonically non-decreasing; the current level is derived from it and
// never stored.
type ProgressRecord struct {
	UserID          string           `bson:"_id" json:"user_id"`
	SchemaVersion   int              `bson:"schema_version" json:"schema_version"`
	TotalXP         int              `bson:"total_xp" json:"total_xp"`
	CompletedLevels []CompletedLevel `bson:"completed_levels" json:"completed_levels"`
	CompletedExams  []ExamRecord     `bson:"completed_exams" json:"completed_exams"`
	UpdatedAt       time.Time        `bson:"updated_at" json:"updated_at"`
}

// NewProgressRecord returns the zero record for a learner. Missing or
// malformed stored state always falls back to this.
func NewProgressRecord(userID string) *ProgressRecord {
	return &ProgressRecord{
		UserID:          userID,
		SchemaVersion:   ProgressSchemaVersion,
		CompletedLevels: []CompletedLevel{},
		CompletedExams:  []ExamRecord{},
	}
}

// HasCompletedLevel reports whether the lesson was ever passed.
func (p *ProgressRecord) HasCompletedLevel(topicID int, subLevelID string) bool {
	for _, l := range p.CompletedLevels {
		if l.TopicID == topicID && l.SubLevelID == subLevelID {
			return true
		}
	}
	return false
}

// ExamScore returns the recorded exam score for a topic.
func (p *ProgressRecord) ExamScore(topicID int) (int, bool) {
	for _, e := range p.CompletedExams {
		if e.TopicID == topicID {
			return e.Score, true
		}
	}
	return 0, false
}
