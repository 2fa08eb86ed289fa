package models

// WordPair is one vocabulary entry: a Russian term and its English
// counterpart. Each pair belongs to exactly one level bucket.
type WordPair struct {
	Source string `json:"ru" db:"source"`
	Target string `json:"en" db:"target"`
}

// Question returns the side of the pair shown as the quiz prompt for the
// given direction.
func (w WordPair) Question(d Direction) string {
	if d == TargetToSource {
		return w.Target
	}
	return w.Source
}

// Answer returns the side of the pair hidden until the user asks to reveal it.
func (w WordPair) Answer(d Direction) string {
	if d == TargetToSource {
		return w.Source
	}
	return w.Target
}
