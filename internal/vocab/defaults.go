package vocab

import "github.com/example/vocadrill/pkg/models"

// defaultWords is the built-in word set used when no vocabulary file is
// configured.
func defaultWords() map[models.Level][]models.WordPair {
	return map[models.Level][]models.WordPair{
		models.LevelEasy: {
			{Source: "кот", Target: "cat"},
			{Source: "собака", Target: "dog"},
			{Source: "дом", Target: "house"},
			{Source: "вода", Target: "water"},
			{Source: "хлеб", Target: "bread"},
			{Source: "книга", Target: "book"},
			{Source: "стол", Target: "table"},
			{Source: "окно", Target: "window"},
			{Source: "друг", Target: "friend"},
			{Source: "день", Target: "day"},
		},
		models.LevelMedium: {
			{Source: "путешествие", Target: "journey"},
			{Source: "здоровье", Target: "health"},
			{Source: "погода", Target: "weather"},
			{Source: "внимание", Target: "attention"},
			{Source: "решение", Target: "decision"},
			{Source: "обещание", Target: "promise"},
			{Source: "поведение", Target: "behaviour"},
			{Source: "впечатление", Target: "impression"},
			{Source: "развитие", Target: "development"},
			{Source: "знание", Target: "knowledge"},
		},
		models.LevelHard: {
			{Source: "восприятие", Target: "perception"},
			{Source: "преимущество", Target: "advantage"},
			{Source: "обстоятельство", Target: "circumstance"},
			{Source: "последствие", Target: "consequence"},
			{Source: "сомнение", Target: "doubt"},
			{Source: "достижение", Target: "achievement"},
			{Source: "предположение", Target: "assumption"},
			{Source: "вмешательство", Target: "interference"},
			{Source: "противоречие", Target: "contradiction"},
			{Source: "усердие", Target: "diligence"},
		},
	}
}
