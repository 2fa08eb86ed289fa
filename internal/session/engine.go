// Package session implements the per-user state machine at the core of the
// vocabulary drill: menu navigation, quiz flow, self-scoring and progress,
// with durable records behind a userstore.Store.
package session

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/example/vocadrill/internal/userstore"
	"github.com/example/vocadrill/internal/vocab"
	"github.com/example/vocadrill/pkg/models"
)

// quizState is the transient in-flight question for one user. It lives only
// here, never in the store: a restart legitimately forgets it.
type quizState struct {
	pair     models.WordPair
	revealed bool
}

// Engine owns the in-memory view of all user records and interprets incoming
// actions as state transitions. All mutation is funneled through one mutex,
// so each action runs to completion before the next is applied.
type Engine struct {
	store     userstore.Store
	words     vocab.Source
	presenter Presenter
	adminID   string
	rng       *rand.Rand
	now       func() time.Time

	mu      sync.Mutex
	users   map[string]*models.UserRecord
	order   []string // user ids in insertion order, for the admin listing
	quizzes map[string]*quizState
}

// New creates an engine. The random source is injectable so quiz draws are
// deterministic under test; pass rand.New(rand.NewSource(time.Now().UnixNano()))
// in production.
func New(store userstore.Store, words vocab.Source, presenter Presenter, adminID string, rng *rand.Rand) *Engine {
	return &Engine{
		store:     store,
		words:     words,
		presenter: presenter,
		adminID:   adminID,
		rng:       rng,
		now:       time.Now,
		users:     make(map[string]*models.UserRecord),
		quizzes:   make(map[string]*quizState),
	}
}

// Hydrate seeds the in-memory state from the store. A missing store is a
// normal first run; a malformed one is fatal and surfaces here.
func (e *Engine) Hydrate(ctx context.Context) error {
	records, err := e.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.users = make(map[string]*models.UserRecord, len(records))
	e.order = make([]string, 0, len(records))
	for id := range records {
		rec := records[id]
		e.users[id] = &rec
		e.order = append(e.order, id)
	}
	// The store hands back an unordered map; join date recovers the original
	// insertion order.
	sort.Slice(e.order, func(i, j int) bool {
		a, b := e.users[e.order[i]], e.users[e.order[j]]
		if a.JoinedAt != b.JoinedAt {
			return a.JoinedAt < b.JoinedAt
		}
		return e.order[i] < e.order[j]
	})
	return nil
}

// Close flushes every record back to the store and releases it. Called once
// at shutdown.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for _, id := range e.order {
		if err := e.store.Upsert(ctx, id, *e.users[id]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := e.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// UserCount returns the number of registered users.
func (e *Engine) UserCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.users)
}

// InactiveToday returns the ids of users whose last activity was before the
// start of the current day. Used by the practice-reminder scheduler.
func (e *Engine) InactiveToday() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	today := dayOf(e.now())
	var ids []string
	for _, id := range e.order {
		last, err := time.Parse(time.RFC3339, e.users[id].LastActiveAt)
		if err != nil || dayOf(last) != today {
			ids = append(ids, id)
		}
	}
	return ids
}

func dayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Handle applies one decoded user action. Recoverable mistakes (no session,
// no active question, unauthorized admin access) end as friendly notices; an
// error return means something internal failed and was not presented.
func (e *Engine) Handle(ctx context.Context, in Inbound) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in.Action.Kind == KindInitiate {
		return e.handleInitiate(ctx, in)
	}

	rec, ok := e.users[in.UserID]
	if !ok {
		// Every non-initiating action needs a session first.
		return e.presenter.Notify(in.UserID, noticeNoSession)
	}
	rec.LastActiveAt = e.now().Format(time.RFC3339)

	switch in.Action.Kind {
	case KindMenu:
		return e.presentMenu(in.UserID)
	case KindHelp:
		return e.presenter.Notify(in.UserID, HelpText)
	case KindStop:
		return e.presenter.Notify(in.UserID, "👋 Goodbye! Send /start whenever you want to continue.")
	case KindLevelMenu:
		return e.presentLevelMenu(in.UserID, rec.Level)
	case KindChooseLevel:
		return e.handleChooseLevel(ctx, in.UserID, rec, in.Action.Level)
	case KindDirectionMenu:
		return e.presentDirectionMenu(in.UserID, rec.Direction)
	case KindChooseDirection:
		return e.handleChooseDirection(ctx, in.UserID, rec, in.Action.Direction)
	case KindStartQuiz:
		return e.handleStartQuiz(in.UserID, rec)
	case KindReveal:
		return e.handleReveal(in.UserID, rec)
	case KindSubmitScore:
		return e.handleSubmitScore(ctx, in.UserID, rec, in.Action.Score)
	case KindViewProgress:
		return e.handleViewProgress(in.UserID, rec)
	case KindAdminSummary:
		return e.handleAdminSummary(in.UserID)
	}
	return fmt.Errorf("unhandled action kind %d", in.Action.Kind)
}

// handleInitiate creates the user record on first contact and greets the
// user. Repeated initiates are no-ops on existing fields.
func (e *Engine) handleInitiate(ctx context.Context, in Inbound) error {
	rec, exists := e.users[in.UserID]
	if !exists {
		fresh := models.NewUserRecord(in.DisplayName, in.Handle, e.now())
		rec = &fresh
		if err := e.store.Upsert(ctx, in.UserID, *rec); err != nil {
			log.Printf("Error persisting new user %s: %v", in.UserID, err)
			e.notifyBestEffort(in.UserID, noticeInternalError)
			return err
		}
		e.users[in.UserID] = rec
		e.order = append(e.order, in.UserID)
		log.Printf("Registered new user %s (%s)", in.UserID, in.DisplayName)
	} else {
		rec.LastActiveAt = e.now().Format(time.RFC3339)
	}

	if err := e.presenter.Notify(in.UserID,
		fmt.Sprintf("👋 Hi, %s! I'm a bot for learning English words.", rec.DisplayName)); err != nil {
		return err
	}
	return e.presentMenu(in.UserID)
}

func (e *Engine) presentMenu(userID string) error {
	choices := []Choice{
		{Label: "📚 Practice", Token: TokenStartQuiz},
		{Label: "⚙️ Level", Token: TokenLevelMenu},
		{Label: "🔄 Direction", Token: TokenDirectionMenu},
		{Label: "📊 My progress", Token: TokenViewProgress},
		{Label: "ℹ️ Help", Token: TokenHelp},
	}
	if userID == e.adminID && e.adminID != "" {
		choices = append(choices, Choice{Label: "👑 Admin", Token: TokenAdminSummary})
	}
	return e.presenter.PresentChoices(userID, "Main menu - choose an action:", choices)
}

func (e *Engine) presentLevelMenu(userID string, current models.Level) error {
	var choices []Choice
	for _, level := range models.Levels() {
		label := level.Title()
		if level == current {
			label = "✅ " + label
		}
		choices = append(choices, Choice{Label: label, Token: LevelToken(level)})
	}
	choices = append(choices, Choice{Label: "⬅️ Back", Token: TokenMenu})
	return e.presenter.PresentChoices(userID, "Choose a difficulty level:", choices)
}

func (e *Engine) handleChooseLevel(ctx context.Context, userID string, rec *models.UserRecord, level models.Level) error {
	rec.Level = level
	if err := e.store.Upsert(ctx, userID, *rec); err != nil {
		log.Printf("Error persisting level change for user %s: %v", userID, err)
		e.notifyBestEffort(userID, noticeInternalError)
		return err
	}
	return e.presenter.Notify(userID, "✅ Level changed to: "+level.Title())
}

func (e *Engine) presentDirectionMenu(userID string, current models.Direction) error {
	var choices []Choice
	for _, d := range []models.Direction{models.SourceToTarget, models.TargetToSource} {
		label := d.Title()
		if d == current {
			label = "✅ " + label
		}
		choices = append(choices, Choice{Label: label, Token: DirectionToken(d)})
	}
	choices = append(choices, Choice{Label: "⬅️ Back", Token: TokenMenu})
	return e.presenter.PresentChoices(userID, "Choose a translation direction:", choices)
}

func (e *Engine) handleChooseDirection(ctx context.Context, userID string, rec *models.UserRecord, d models.Direction) error {
	rec.Direction = d
	if err := e.store.Upsert(ctx, userID, *rec); err != nil {
		log.Printf("Error persisting direction change for user %s: %v", userID, err)
		e.notifyBestEffort(userID, noticeInternalError)
		return err
	}
	return e.presenter.Notify(userID, "✅ Direction changed to: "+d.Title())
}

// handleStartQuiz draws a uniform-random word from the bucket matching the
// user's level at draw time. Direction only decides which side is shown.
func (e *Engine) handleStartQuiz(userID string, rec *models.UserRecord) error {
	bucket := e.words.WordsForLevel(rec.Level)
	if len(bucket) == 0 {
		return e.presenter.Notify(userID, noticeNoWordsForTier)
	}

	pair := bucket[e.rng.Intn(len(bucket))]
	e.quizzes[userID] = &quizState{pair: pair}

	return e.presenter.PresentChoices(userID,
		fmt.Sprintf("❓ How do you translate: %s?", pair.Question(rec.Direction)),
		[]Choice{
			{Label: "✅ Show answer", Token: TokenReveal},
			{Label: "➡️ Next word", Token: TokenStartQuiz},
			{Label: "🏠 Menu", Token: TokenMenu},
		})
}

func (e *Engine) handleReveal(userID string, rec *models.UserRecord) error {
	quiz, ok := e.quizzes[userID]
	if !ok {
		return e.presenter.Notify(userID, noticeNoQuestion)
	}
	quiz.revealed = true

	return e.presenter.PresentChoices(userID,
		fmt.Sprintf("✅ The answer is: %s\n\nRate yourself:", quiz.pair.Answer(rec.Direction)),
		[]Choice{
			{Label: "👍 Knew it", Token: ScoreToken(1)},
			{Label: "🤔 Almost", Token: ScoreToken(0.5)},
			{Label: "👎 Didn't know", Token: ScoreToken(0)},
			{Label: "➡️ Next word", Token: TokenStartQuiz},
			{Label: "🏠 Menu", Token: TokenMenu},
		})
}

// handleSubmitScore adds the self-assessed increment to the running score.
// Scoring requires a revealed question and one of the three offered values;
// anything else is rejected without touching the score.
func (e *Engine) handleSubmitScore(ctx context.Context, userID string, rec *models.UserRecord, score float64) error {
	quiz, ok := e.quizzes[userID]
	if !ok {
		return e.presenter.Notify(userID, noticeNoQuestion)
	}
	if !quiz.revealed {
		return e.presenter.Notify(userID, noticeNotRevealed)
	}
	if score != 0 && score != 0.5 && score != 1 {
		return e.presenter.Notify(userID, noticeBadScore)
	}

	rec.Score += score
	delete(e.quizzes, userID)

	if err := e.store.Upsert(ctx, userID, *rec); err != nil {
		log.Printf("Error persisting score for user %s: %v", userID, err)
		e.notifyBestEffort(userID, noticeInternalError)
		return err
	}
	return e.presenter.Notify(userID,
		fmt.Sprintf("✅ Score saved! Your current total: %s points", formatScore(rec.Score)))
}

func (e *Engine) handleViewProgress(userID string, rec *models.UserRecord) error {
	joined := rec.JoinedAt
	if t, err := time.Parse(time.RFC3339, rec.JoinedAt); err == nil {
		joined = t.Format("2006-01-02")
	}

	report := fmt.Sprintf(`📊 Your progress:

👤 Name: %s
📈 Score: %s points
⚙️ Level: %s
🔄 Direction: %s
📅 Joined: %s`,
		rec.DisplayName, formatScore(rec.Score), rec.Level.Title(), rec.Direction.Title(), joined)

	return e.presenter.Notify(userID, report)
}

// handleAdminSummary reports aggregate usage to the configured administrator:
// the total user count, how many were active today, and the first ten users
// in insertion order.
func (e *Engine) handleAdminSummary(userID string) error {
	if e.adminID == "" || userID != e.adminID {
		return e.presenter.Notify(userID, noticeUnauthorized)
	}

	today := dayOf(e.now())
	activeToday := 0
	for _, id := range e.order {
		if last, err := time.Parse(time.RFC3339, e.users[id].LastActiveAt); err == nil && dayOf(last) == today {
			activeToday++
		}
	}

	summary := fmt.Sprintf("👑 Admin panel\n\n👥 Total users: %d\n📊 Active today: %d\n\nUsers:\n",
		len(e.users), activeToday)

	listed := e.order
	if len(listed) > 10 {
		listed = listed[:10]
	}
	for _, id := range listed {
		rec := e.users[id]
		handle := rec.Handle
		if handle == "" {
			handle = "none"
		}
		summary += fmt.Sprintf("\n- %s (@%s): %s points", rec.DisplayName, handle, formatScore(rec.Score))
	}

	return e.presenter.Notify(userID, summary)
}

// notifyBestEffort sends a notice without caring whether delivery worked;
// used on paths that already carry a more important error.
func (e *Engine) notifyBestEffort(userID, text string) {
	if err := e.presenter.Notify(userID, text); err != nil {
		log.Printf("Error notifying user %s: %v", userID, err)
	}
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
