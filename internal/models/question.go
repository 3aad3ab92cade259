package models

type Question struct {
	ID           string   `bson:"id" json:"id" yaml:"id"`
	TopicID      int      `bson:"topic_id" json:"topic_id" yaml:"topic_id"`
	SubLevelID   string   `bson:"sub_level_id,omitempty" json:"sub_level_id,omitempty" yaml:"sub_level_id"`
	Text         string   `bson:"text" json:"question" yaml:"question"`
	Options      []string `bson:"options" json:"options" yaml:"options"`
	CorrectIndex int      `bson:"correct_index" json:"correct_index" yaml:"correct_index"`
}

// Valid reports whether the question can be presented: at least two options
// and a correct index that points at one of them.
func (q *Question) Valid() bool {
	return len(q.Options) >= 2 && q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}

// CorrectOption returns the text of the correct option. The index is always
// interpreted against the current option order, so the value survives any
// reshuffle that recomputes the index alongside the options.
func (q *Question) CorrectOption() string {
	if !q.Valid() {
		return ""
	}
	return q.Options[q.CorrectIndex]
}
