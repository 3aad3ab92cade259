package selection

import (
	"math/rand"
	"time"

	"finlit-service/internal/models"
)

// Selector picks bounded, shuffled question sets for a sublevel. Selection
// never errors on a thin pool: it returns what it can find and leaves the
// empty-set rejection to session construction.
type Selector struct {
	rand *rand.Rand
}

// NewSelector creates a selector seeded from the clock.
func NewSelector() *Selector {
	return NewSelectorWithSeed(time.Now().UnixNano())
}

// NewSelectorWithSeed creates a deterministic selector, used by tests.
func NewSelectorWithSeed(seed int64) *Selector {
	return &Selector{rand: rand.New(rand.NewSource(seed))}
}

// Select builds a question set for one topic/sublevel, broadening in three
// tiers until count is reached or the pool is exhausted:
//  1. questions for the exact sublevel, plus topic questions with no sublevel
//  2. any question of the topic
//  3. the rest of the pool, regardless of topic
//
// Each tier is shuffled on its own and appended in tier order before the
// truncation to count, so a broader tier can never displace a question from
// a more specific one.
func (s *Selector) Select(pool []models.Question, topicID int, subLevelID string, count int) []models.Question {
	if count <= 0 || len(pool) == 0 {
		return nil
	}

	seen := make(map[string]bool, count)
	take := func(match func(models.Question) bool) []models.Question {
		var tier []models.Question
		for _, q := range pool {
			if seen[q.ID] || !q.Valid() {
				continue
			}
			if match(q) {
				tier = append(tier, q)
				seen[q.ID] = true
			}
		}
		s.shuffle(tier)
		return tier
	}

	picked := take(func(q models.Question) bool {
		return q.TopicID == topicID && (q.SubLevelID == subLevelID || q.SubLevelID == "")
	})
	if len(picked) < count {
		picked = append(picked, take(func(q models.Question) bool { return q.TopicID == topicID })...)
	}
	if len(picked) < count {
		picked = append(picked, take(func(q models.Question) bool { return true })...)
	}

	if len(picked) > count {
		picked = picked[:count]
	}
	return picked
}

// ShuffleOptions returns a copy of the question with its options permuted
// and the correct index recomputed against the new order. The stored index
// is never reused across a reshuffle.
func (s *Selector) ShuffleOptions(q models.Question) models.Question {
	correct := q.Options[q.CorrectIndex]

	options := make([]string, len(q.Options))
	copy(options, q.Options)
	for i := len(options) - 1; i > 0; i-- {
		j := s.rand.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}

	shuffled := q
	shuffled.Options = options
	for i, opt := range options {
		if opt == correct {
			shuffled.CorrectIndex = i
			break
		}
	}
	return shuffled
}

// shuffle applies a Fisher-Yates permutation in place.
func (s *Selector) shuffle(questions []models.Question) {
	for i := len(questions) - 1; i > 0; i-- {
		j := s.rand.Intn(i + 1)
		questions[i], questions[j] = questions[j], questions[i]
	}
}
