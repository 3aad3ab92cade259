package selection

import (
	"fmt"
	"testing"

	"finlit-service/internal/models"
)

func question(id string, topicID int, subLevelID string) models.Question {
	return models.Question{
		ID:           id,
		TopicID:      topicID,
		SubLevelID:   subLevelID,
		Text:         "text for " + id,
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: 2,
	}
}

func buildPool(topicID int, subLevelID string, n int) []models.Question {
	pool := make([]models.Question, n)
	for i := range pool {
		pool[i] = question(fmt.Sprintf("%d-%s-%d", topicID, subLevelID, i), topicID, subLevelID)
	}
	return pool
}

func TestSelectExactSublevelPool(t *testing.T) {
	s := NewSelectorWithSeed(1)
	pool := buildPool(1, "1.1", 10)

	got := s.Select(pool, 1, "1.1", 10)
	if len(got) != 10 {
		t.Fatalf("selected %d questions, want 10", len(got))
	}
	for _, q := range got {
		if q.TopicID != 1 || q.SubLevelID != "1.1" {
			t.Errorf("question %s from wrong pool: topic %d sublevel %s", q.ID, q.TopicID, q.SubLevelID)
		}
	}
}

func TestSelectBroadensWithinTopic(t *testing.T) {
	s := NewSelectorWithSeed(2)

	// 3 questions for the sublevel, 20 more elsewhere in the topic.
	pool := buildPool(1, "1.1", 3)
	pool = append(pool, buildPool(1, "1.2", 20)...)

	got := s.Select(pool, 1, "1.1", 10)
	if len(got) != 10 {
		t.Fatalf("selected %d questions, want 10", len(got))
	}

	// All three sublevel questions must be in the result; broadening only
	// fills the remainder.
	sublevelCount := 0
	for _, q := range got {
		if q.TopicID != 1 {
			t.Errorf("question %s from wrong topic %d", q.ID, q.TopicID)
		}
		if q.SubLevelID == "1.1" {
			sublevelCount++
		}
	}
	if sublevelCount != 3 {
		t.Errorf("got %d sublevel questions, want all 3", sublevelCount)
	}
}

func TestSelectRetainsSublevelQuestionsForAnySeed(t *testing.T) {
	// Broadening fills the remainder; it must never push a sublevel
	// question past the cutoff, whatever the shuffle order.
	pool := buildPool(1, "1.1", 3)
	pool = append(pool, buildPool(1, "1.2", 20)...)

	for seed := int64(0); seed < 100; seed++ {
		s := NewSelectorWithSeed(seed)
		got := s.Select(pool, 1, "1.1", 10)
		if len(got) != 10 {
			t.Fatalf("seed %d: selected %d questions, want 10", seed, len(got))
		}
		sublevelCount := 0
		for _, q := range got {
			if q.SubLevelID == "1.1" {
				sublevelCount++
			}
		}
		if sublevelCount != 3 {
			t.Fatalf("seed %d: got %d sublevel questions, want all 3", seed, sublevelCount)
		}
	}
}

func TestSelectBroadensAcrossTopics(t *testing.T) {
	s := NewSelectorWithSeed(3)

	pool := buildPool(1, "1.1", 2)
	pool = append(pool, buildPool(2, "2.1", 4)...)
	pool = append(pool, buildPool(3, "3.1", 4)...)

	got := s.Select(pool, 1, "1.1", 10)
	if len(got) != 10 {
		t.Fatalf("selected %d questions, want 10", len(got))
	}
}

func TestSelectUntaggedTopicQuestions(t *testing.T) {
	s := NewSelectorWithSeed(4)

	// Topic questions without a sublevel count as first-tier matches.
	pool := buildPool(1, "1.1", 4)
	pool = append(pool, buildPool(1, "", 4)...)
	pool = append(pool, buildPool(2, "2.1", 10)...)

	got := s.Select(pool, 1, "1.1", 8)
	if len(got) != 8 {
		t.Fatalf("selected %d questions, want 8", len(got))
	}
	for _, q := range got {
		if q.TopicID != 1 {
			t.Errorf("question %s broadened to topic %d though topic 1 had enough", q.ID, q.TopicID)
		}
	}
}

func TestSelectThinPoolReturnsWhatExists(t *testing.T) {
	s := NewSelectorWithSeed(5)
	pool := buildPool(1, "1.1", 4)

	got := s.Select(pool, 1, "1.1", 10)
	if len(got) != 4 {
		t.Errorf("selected %d questions, want all 4 available", len(got))
	}
}

func TestSelectEmptyPool(t *testing.T) {
	s := NewSelectorWithSeed(6)

	if got := s.Select(nil, 1, "1.1", 10); got != nil {
		t.Errorf("expected nil for empty pool, got %d questions", len(got))
	}
	if got := s.Select(buildPool(1, "1.1", 5), 1, "1.1", 0); got != nil {
		t.Errorf("expected nil for zero count, got %d questions", len(got))
	}
}

func TestSelectNoDuplicates(t *testing.T) {
	s := NewSelectorWithSeed(7)

	// Overlapping tiers: the same questions match tier one and tier two.
	pool := buildPool(1, "1.1", 6)
	pool = append(pool, buildPool(1, "1.2", 6)...)

	got := s.Select(pool, 1, "1.1", 12)
	seen := make(map[string]bool)
	for _, q := range got {
		if seen[q.ID] {
			t.Errorf("question %s selected twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelectSkipsInvalidQuestions(t *testing.T) {
	s := NewSelectorWithSeed(8)

	pool := buildPool(1, "1.1", 3)
	pool = append(pool, models.Question{
		ID:           "broken",
		TopicID:      1,
		SubLevelID:   "1.1",
		Options:      []string{"only one"},
		CorrectIndex: 5,
	})

	got := s.Select(pool, 1, "1.1", 10)
	for _, q := range got {
		if q.ID == "broken" {
			t.Error("invalid question was selected")
		}
	}
	if len(got) != 3 {
		t.Errorf("selected %d questions, want 3 valid ones", len(got))
	}
}

func TestShuffleOptionsKeepsCorrectAnswer(t *testing.T) {
	s := NewSelectorWithSeed(9)
	q := question("q1", 1, "1.1")
	correct := q.CorrectOption()

	for i := 0; i < 50; i++ {
		shuffled := s.ShuffleOptions(q)

		if shuffled.CorrectOption() != correct {
			t.Fatalf("iteration %d: correct option %q became %q", i, correct, shuffled.CorrectOption())
		}
		if len(shuffled.Options) != len(q.Options) {
			t.Fatalf("iteration %d: option count changed to %d", i, len(shuffled.Options))
		}
	}
}

func TestShuffleOptionsDoesNotMutateInput(t *testing.T) {
	s := NewSelectorWithSeed(10)
	q := question("q1", 1, "1.1")

	original := make([]string, len(q.Options))
	copy(original, q.Options)

	for i := 0; i < 20; i++ {
		s.ShuffleOptions(q)
	}
	for i, opt := range q.Options {
		if opt != original[i] {
			t.Fatalf("input option %d mutated: %q -> %q", i, original[i], opt)
		}
	}
	if q.CorrectIndex != 2 {
		t.Errorf("input correct index mutated to %d", q.CorrectIndex)
	}
}
