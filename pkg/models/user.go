package models

import "time"

// Level is the difficulty tier a user draws quiz words from.
type Level string

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

// Levels lists all difficulty tiers in menu order.
func Levels() []Level {
	return []Level{LevelEasy, LevelMedium, LevelHard}
}

// Valid reports whether l is one of the known tiers.
func (l Level) Valid() bool {
	switch l {
	case LevelEasy, LevelMedium, LevelHard:
		return true
	}
	return false
}

// Title returns a human-readable name for the level.
func (l Level) Title() string {
	switch l {
	case LevelEasy:
		return "🟢 Easy"
	case LevelMedium:
		return "🟡 Medium"
	case LevelHard:
		return "🔴 Hard"
	}
	return string(l)
}

// Direction controls which side of a word pair is shown as the question.
type Direction string

const (
	// SourceToTarget shows the Russian term and hides the English one.
	SourceToTarget Direction = "ru-en"
	// TargetToSource shows the English term and hides the Russian one.
	TargetToSource Direction = "en-ru"
)

// Valid reports whether d is one of the two known polarities.
func (d Direction) Valid() bool {
	return d == SourceToTarget || d == TargetToSource
}

// Title returns a human-readable name for the direction.
func (d Direction) Title() string {
	if d == TargetToSource {
		return "🇬🇧 English → 🇷🇺 Russian"
	}
	return "🇷🇺 Russian → 🇬🇧 English"
}

// UserRecord is the durable state kept for one learner. The word currently
// posed as a quiz question is deliberately not part of this struct: a restart
// forgets the in-flight question, never the score.
type UserRecord struct {
	DisplayName  string    `json:"display_name" db:"display_name"`
	Handle       string    `json:"handle,omitempty" db:"handle"`
	Level        Level     `json:"level" db:"level"`
	Direction    Direction `json:"direction" db:"direction"`
	Score        float64   `json:"score" db:"score"`
	JoinedAt     string    `json:"joined_at" db:"joined_at"`
	LastActiveAt string    `json:"last_active_at,omitempty" db:"last_active_at"`
}

// NewUserRecord returns a record with the defaults every learner starts with.
func NewUserRecord(displayName, handle string, now time.Time) UserRecord {
	ts := now.Format(time.RFC3339)
	return UserRecord{
		DisplayName:  displayName,
		Handle:       handle,
		Level:        LevelEasy,
		Direction:    SourceToTarget,
		Score:        0,
		JoinedAt:     ts,
		LastActiveAt: ts,
	}
}
