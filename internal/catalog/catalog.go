// Package catalog loads the static learning content: topics, sublevels, and
// the question bank. Content is read once at startup from YAML files and is
// read-only afterwards.
package catalog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"finlit-service/internal/models"
)

// Catalog serves the loaded content. All accessors return data in catalog
// order; topics and sublevels are never mutated after Load.
type Catalog struct {
	topics    []models.Topic
	questions []models.Question
	byTopic   map[int]int // topic ID -> index into topics
}

type contentFile struct {
	Topics    []models.Topic    `yaml:"topics"`
	Questions []models.Question `yaml:"questions"`
}

// Load walks dir for YAML content files and builds the catalog. Files that
// fail to parse are skipped with a warning; structural invariants of the
// merged catalog fail loudly.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{byTopic: make(map[int]int)}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return c.loadFile(path)
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %s: %w", dir, err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	log.Printf("catalog loaded: %d topics, %d questions", len(c.topics), len(c.questions))
	return c, nil
}

func (c *Catalog) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file contentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		log.Printf("skipping invalid content file %s: %v", path, err)
		return nil
	}

	for _, t := range file.Topics {
		if _, dup := c.byTopic[t.ID]; dup {
			return fmt.Errorf("duplicate topic id %d in %s", t.ID, path)
		}
		c.byTopic[t.ID] = len(c.topics)
		c.topics = append(c.topics, t)
	}
	c.questions = append(c.questions, file.Questions...)
	return nil
}

// validate enforces the catalog invariants: non-decreasing XP requirements
// within a topic, an exam as each topic's final sublevel, and answerable
// questions.
func (c *Catalog) validate() error {
	if len(c.topics) == 0 {
		return fmt.Errorf("no topics found")
	}

	for _, t := range c.topics {
		if len(t.SubLevels) == 0 {
			return fmt.Errorf("topic %d has no sublevels", t.ID)
		}
		prev := 0
		for _, s := range t.SubLevels {
			if s.XPRequired < prev {
				return fmt.Errorf("topic %d: xp_required decreases at sublevel %s", t.ID, s.ID)
			}
			prev = s.XPRequired
		}
		if !t.SubLevels[len(t.SubLevels)-1].IsExam {
			return fmt.Errorf("topic %d: final sublevel is not the exam", t.ID)
		}
	}

	for _, q := range c.questions {
		if !q.Valid() {
			return fmt.Errorf("question %s: correct index %d invalid for %d options", q.ID, q.CorrectIndex, len(q.Options))
		}
		if _, ok := c.byTopic[q.TopicID]; !ok {
			return fmt.Errorf("question %s references unknown topic %d", q.ID, q.TopicID)
		}
	}
	return nil
}

// Topics returns every topic in catalog order.
func (c *Catalog) Topics() []models.Topic {
	return c.topics
}

// Topic returns a topic by ID.
func (c *Catalog) Topic(id int) (models.Topic, bool) {
	i, ok := c.byTopic[id]
	if !ok {
		return models.Topic{}, false
	}
	return c.topics[i], true
}

// SubLevel returns one sublevel of a topic.
func (c *Catalog) SubLevel(topicID int, subLevelID string) (models.SubLevel, bool) {
	t, ok := c.Topic(topicID)
	if !ok {
		return models.SubLevel{}, false
	}
	for _, s := range t.SubLevels {
		if s.ID == subLevelID {
			return s, true
		}
	}
	return models.SubLevel{}, false
}

// QuestionsFor returns the questions tagged for a sublevel, including topic
// questions with no sublevel of their own.
func (c *Catalog) QuestionsFor(topicID int, subLevelID string) []models.Question {
	var out []models.Question
	for _, q := range c.questions {
		if q.TopicID == topicID && (q.SubLevelID == subLevelID || q.SubLevelID == "") {
			out = append(out, q)
		}
	}
	return out
}

// AllQuestions returns the full question bank; the selector broadens into
// it when a sublevel's own pool runs short.
func (c *Catalog) AllQuestions() []models.Question {
	return c.questions
}
