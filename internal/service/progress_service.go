package service

import (
	"context"

	"finlit-service/internal/catalog"
	"finlit-service/internal/models"
	"finlit-service/internal/progression"
	"finlit-service/internal/repository"
)

// ProgressSummary is the learner's ledger with the derived level attached.
// The level is always recomputed from TotalXP, never stored.
type ProgressSummary struct {
	*models.ProgressRecord
	Level       int    `json:"level"`
	LevelName   string `json:"level_name"`
	NextLevelXP int    `json:"next_level_xp,omitempty"`
}

// SubLevelStatus is one row of the unlock listing.
type SubLevelStatus struct {
	models.SubLevel
	Unlocked  bool `json:"unlocked"`
	Completed bool `json:"completed"`
	ExamScore int  `json:"exam_score,omitempty"`
}

// TopicStatus groups the unlock listing per topic.
type TopicStatus struct {
	ID        int              `json:"id"`
	Title     string           `json:"title"`
	Icon      string           `json:"icon"`
	SubLevels []SubLevelStatus `json:"sub_levels"`
}

// ProgressService reads the ledger and derives gating state from it.
type ProgressService struct {
	Repo    *repository.ProgressRepository
	Catalog *catalog.Catalog
}

func NewProgressService(repo *repository.ProgressRepository, cat *catalog.Catalog) *ProgressService {
	return &ProgressService{Repo: repo, Catalog: cat}
}

// GetProgress returns the learner's record with the derived level.
func (s *ProgressService) GetProgress(ctx context.Context, userID string) *ProgressSummary {
	record := s.Repo.Get(ctx, userID)
	level := progression.CurrentLevel(record.TotalXP)

	summary := &ProgressSummary{
		ProgressRecord: record,
		Level:          level,
		LevelName:      progression.LevelName(level),
	}
	for _, l := range progression.Levels {
		if l.RequiredXP > record.TotalXP {
			summary.NextLevelXP = l.RequiredXP
			break
		}
	}
	return summary
}

// Unlocks lists every sublevel with its gate evaluated against the
// learner's XP, plus completion state from the recorder.
func (s *ProgressService) Unlocks(ctx context.Context, userID string) []TopicStatus {
	record := s.Repo.Get(ctx, userID)

	var topics []TopicStatus
	for _, t := range s.Catalog.Topics() {
		status := TopicStatus{ID: t.ID, Title: t.Title, Icon: t.Icon}
		for _, sub := range t.SubLevels {
			row := SubLevelStatus{
				SubLevel:  sub,
				Unlocked:  record.TotalXP >= sub.XPRequired,
				Completed: record.HasCompletedLevel(t.ID, sub.ID),
			}
			if sub.IsExam {
				if score, ok := record.ExamScore(t.ID); ok {
					row.ExamScore = score
				}
			}
			status.SubLevels = append(status.SubLevels, row)
		}
		topics = append(topics, status)
	}
	return topics
}
