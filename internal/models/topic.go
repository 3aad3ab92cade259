package models

// SubLevel is the smallest unit of content within a topic. IDs follow the
// "topicId.sequence" form, e.g. "1.1". The last sublevel of a topic is its exam.
type SubLevel struct {
	ID         string `bson:"id" json:"id" yaml:"id"`
	Title      string `bson:"title" json:"title" yaml:"title"`
	XPRequired int    `bson:"xp_required" json:"xp_required" yaml:"xp_required"`
	IsExam     bool   `bson:"is_exam" json:"is_exam" yaml:"is_exam"`
	XPReward   int    `bson:"xp_reward" json:"xp_reward" yaml:"xp_reward"`
	Overview   string `bson:"overview" json:"overview" yaml:"overview"`
}

type Topic struct {
	ID        int        `bson:"id" json:"id" yaml:"id"`
	Title     string     `bson:"title" json:"title" yaml:"title"`
	Icon      string     `bson:"icon" json:"icon" yaml:"icon"`
	SubLevels []SubLevel `bson:"sub_levels" json:"sub_levels" yaml:"sub_levels"`
}

// Exam returns the exam sublevel of the topic, if it has one.
func (t *Topic) Exam() (SubLevel, bool) {
	for _, s := range t.SubLevels {
		if s.IsExam {
			return s, true
		}
	}
	return SubLevel{}, false
}
