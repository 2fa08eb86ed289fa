package session

import (
	"strconv"
	"strings"

	"github.com/example/vocadrill/pkg/models"
)

// Kind enumerates every action the engine understands. The transport decodes
// raw tokens into this closed set once; everything past the boundary is an
// exhaustive switch, so a new kind that is not handled fails loudly instead
// of falling through to the generic fallback.
type Kind int

const (
	KindInitiate Kind = iota
	KindMenu
	KindHelp
	KindStop
	KindLevelMenu
	KindChooseLevel
	KindDirectionMenu
	KindChooseDirection
	KindStartQuiz
	KindReveal
	KindSubmitScore
	KindViewProgress
	KindAdminSummary
)

// Action is one decoded user action with its payload, if any.
type Action struct {
	Kind      Kind
	Level     models.Level     // KindChooseLevel only
	Direction models.Direction // KindChooseDirection only
	Score     float64          // KindSubmitScore only
}

// Inbound is what the chat transport delivers for every user action.
type Inbound struct {
	UserID      string
	DisplayName string
	Handle      string
	Action      Action
}

// Action tokens as they travel through the chat transport.
const (
	TokenInitiate      = "start"
	TokenMenu          = "back_to_menu"
	TokenHelp          = "help"
	TokenStop          = "stop"
	TokenLevelMenu     = "level"
	TokenDirectionMenu = "direction"
	TokenStartQuiz     = "learn"
	TokenReveal        = "show_answer"
	TokenViewProgress  = "progress"
	TokenAdminSummary  = "admin"

	levelTokenPrefix     = "set_level_"
	directionTokenPrefix = "set_dir_"
	scoreTokenPrefix     = "score_"
)

// LevelToken returns the choice token selecting the given level.
func LevelToken(l models.Level) string {
	return levelTokenPrefix + string(l)
}

// DirectionToken returns the choice token selecting the given direction.
func DirectionToken(d models.Direction) string {
	return directionTokenPrefix + string(d)
}

// ScoreToken returns the choice token submitting the given self-score.
func ScoreToken(s float64) string {
	return scoreTokenPrefix + strconv.FormatFloat(s, 'f', -1, 64)
}

// ParseAction decodes a raw action token. It returns false for anything
// outside the known vocabulary; the transport answers those with the generic
// fallback notice. Score payloads are decoded here but validated by the
// engine, so a syntactically valid but out-of-range token like "score_2" is
// rejected as a usage error rather than silently dropped.
func ParseAction(token string) (Action, bool) {
	switch token {
	case TokenInitiate:
		return Action{Kind: KindInitiate}, true
	case TokenMenu:
		return Action{Kind: KindMenu}, true
	case TokenHelp:
		return Action{Kind: KindHelp}, true
	case TokenStop:
		return Action{Kind: KindStop}, true
	case TokenLevelMenu:
		return Action{Kind: KindLevelMenu}, true
	case TokenDirectionMenu:
		return Action{Kind: KindDirectionMenu}, true
	case TokenStartQuiz:
		return Action{Kind: KindStartQuiz}, true
	case TokenReveal:
		return Action{Kind: KindReveal}, true
	case TokenViewProgress:
		return Action{Kind: KindViewProgress}, true
	case TokenAdminSummary:
		return Action{Kind: KindAdminSummary}, true
	}

	switch {
	case strings.HasPrefix(token, levelTokenPrefix):
		level := models.Level(strings.TrimPrefix(token, levelTokenPrefix))
		if !level.Valid() {
			return Action{}, false
		}
		return Action{Kind: KindChooseLevel, Level: level}, true

	case strings.HasPrefix(token, directionTokenPrefix):
		direction := models.Direction(strings.TrimPrefix(token, directionTokenPrefix))
		if !direction.Valid() {
			return Action{}, false
		}
		return Action{Kind: KindChooseDirection, Direction: direction}, true

	case strings.HasPrefix(token, scoreTokenPrefix):
		score, err := strconv.ParseFloat(strings.TrimPrefix(token, scoreTokenPrefix), 64)
		if err != nil {
			return Action{}, false
		}
		return Action{Kind: KindSubmitScore, Score: score}, true
	}

	return Action{}, false
}
