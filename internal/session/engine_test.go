package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/example/vocadrill/internal/vocab"
	"github.com/example/vocadrill/pkg/models"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

// --- Fakes ---

type notice struct {
	userID string
	text   string
}

type screen struct {
	userID  string
	prompt  string
	choices []Choice
}

type fakePresenter struct {
	notices []notice
	screens []screen
}

func (p *fakePresenter) PresentChoices(userID, prompt string, choices []Choice) error {
	p.screens = append(p.screens, screen{userID: userID, prompt: prompt, choices: choices})
	return nil
}

func (p *fakePresenter) Notify(userID, text string) error {
	p.notices = append(p.notices, notice{userID: userID, text: text})
	return nil
}

func (p *fakePresenter) lastNotice(t *testing.T) notice {
	t.Helper()
	if len(p.notices) == 0 {
		t.Fatal("no notices sent")
	}
	return p.notices[len(p.notices)-1]
}

func (p *fakePresenter) lastScreen(t *testing.T) screen {
	t.Helper()
	if len(p.screens) == 0 {
		t.Fatal("no choice screens presented")
	}
	return p.screens[len(p.screens)-1]
}

type memStore struct {
	users   map[string]models.UserRecord
	upserts int
	fail    bool
}

func newMemStore() *memStore {
	return &memStore{users: map[string]models.UserRecord{}}
}

func (s *memStore) LoadAll(context.Context) (map[string]models.UserRecord, error) {
	out := make(map[string]models.UserRecord, len(s.users))
	for id, rec := range s.users {
		out[id] = rec
	}
	return out, nil
}

func (s *memStore) Upsert(_ context.Context, id string, rec models.UserRecord) error {
	if s.fail {
		return errors.New("store unavailable")
	}
	s.upserts++
	s.users[id] = rec
	return nil
}

func (s *memStore) Close() error { return nil }

// --- Helpers ---

func testBuckets() map[models.Level][]models.WordPair {
	return map[models.Level][]models.WordPair{
		models.LevelEasy:   {{Source: "кот", Target: "cat"}},
		models.LevelMedium: {{Source: "погода", Target: "weather"}},
		models.LevelHard:   {{Source: "сомнение", Target: "doubt"}},
	}
}

func newTestEngine(adminID string) (*Engine, *fakePresenter, *memStore) {
	store := newMemStore()
	presenter := &fakePresenter{}
	e := New(store, vocab.NewLibrary(testBuckets()), presenter, adminID, rand.New(rand.NewSource(1)))
	e.now = func() time.Time { return testNow }
	return e, presenter, store
}

func initiate(t *testing.T, e *Engine, userID, name, handle string) {
	t.Helper()
	in := Inbound{UserID: userID, DisplayName: name, Handle: handle, Action: Action{Kind: KindInitiate}}
	if err := e.Handle(context.Background(), in); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
}

func act(t *testing.T, e *Engine, userID string, action Action) {
	t.Helper()
	if err := e.Handle(context.Background(), Inbound{UserID: userID, Action: action}); err != nil {
		t.Fatalf("action %v failed: %v", action.Kind, err)
	}
}

// --- Initiate ---

func TestInitiate_CreatesRecordWithDefaults(t *testing.T) {
	e, presenter, store := newTestEngine("")
	initiate(t, e, "7", "Anna", "anna")

	rec, ok := store.users["7"]
	if !ok {
		t.Fatal("record was not persisted")
	}
	if rec.DisplayName != "Anna" || rec.Handle != "anna" {
		t.Errorf("identity = %q/%q, want Anna/anna", rec.DisplayName, rec.Handle)
	}
	if rec.Level != models.LevelEasy {
		t.Errorf("level = %q, want easy", rec.Level)
	}
	if rec.Direction != models.SourceToTarget {
		t.Errorf("direction = %q, want ru-en", rec.Direction)
	}
	if rec.Score != 0 {
		t.Errorf("score = %v, want 0", rec.Score)
	}
	if rec.JoinedAt != testNow.Format(time.RFC3339) {
		t.Errorf("joined_at = %q, want %q", rec.JoinedAt, testNow.Format(time.RFC3339))
	}

	if got := presenter.notices[0].text; !strings.Contains(got, "Anna") {
		t.Errorf("greeting %q does not mention the user", got)
	}
	if got := presenter.lastScreen(t).prompt; !strings.Contains(got, "Main menu") {
		t.Errorf("expected main menu after initiate, got %q", got)
	}
}

func TestInitiate_IsIdempotent(t *testing.T) {
	e, _, store := newTestEngine("")
	initiate(t, e, "7", "Anna", "anna")

	act(t, e, "7", Action{Kind: KindChooseLevel, Level: models.LevelHard})
	initiate(t, e, "7", "Somebody Else", "other")

	if len(store.users) != 1 {
		t.Fatalf("record count = %d, want 1", len(store.users))
	}
	rec := store.users["7"]
	if rec.DisplayName != "Anna" {
		t.Errorf("display name was overwritten to %q", rec.DisplayName)
	}
	if rec.Level != models.LevelHard {
		t.Errorf("level was reset to %q", rec.Level)
	}
}

func TestHandle_NoSessionIsRejected(t *testing.T) {
	e, presenter, store := newTestEngine("")

	for _, kind := range []Kind{KindReveal, KindStartQuiz, KindViewProgress, KindMenu} {
		if err := e.Handle(context.Background(), Inbound{UserID: "404", Action: Action{Kind: kind}}); err != nil {
			t.Fatalf("kind %v: unexpected error %v", kind, err)
		}
		if got := presenter.lastNotice(t).text; got != noticeNoSession {
			t.Errorf("kind %v: notice = %q, want start-first guidance", kind, got)
		}
	}
	if len(store.users) != 0 {
		t.Errorf("record was created for an uninitiated user")
	}
}

// --- Configuration ---

func TestChooseLevel_PersistsImmediately(t *testing.T) {
	e, presenter, store := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	act(t, e, "7", Action{Kind: KindChooseLevel, Level: models.LevelHard})

	if got := store.users["7"].Level; got != models.LevelHard {
		t.Errorf("persisted level = %q, want hard", got)
	}
	if got := presenter.lastNotice(t).text; !strings.Contains(got, "Level changed") {
		t.Errorf("confirmation = %q", got)
	}
}

func TestChooseDirection_PersistsImmediately(t *testing.T) {
	e, _, store := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	act(t, e, "7", Action{Kind: KindChooseDirection, Direction: models.TargetToSource})

	if got := store.users["7"].Direction; got != models.TargetToSource {
		t.Errorf("persisted direction = %q, want en-ru", got)
	}
}

func TestLevelMenu_MarksCurrentChoice(t *testing.T) {
	e, presenter, _ := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	act(t, e, "7", Action{Kind: KindLevelMenu})

	marked := 0
	for _, c := range presenter.lastScreen(t).choices {
		if strings.HasPrefix(c.Label, "✅") {
			marked++
			if c.Token != LevelToken(models.LevelEasy) {
				t.Errorf("marked choice token = %q, want current level", c.Token)
			}
		}
	}
	if marked != 1 {
		t.Errorf("marked choices = %d, want 1", marked)
	}
}

// --- Quiz flow ---

func TestStartQuiz_DrawsFromCurrentLevelBucket(t *testing.T) {
	e, presenter, _ := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	// Level changed after the last quiz must be honored at draw time.
	act(t, e, "7", Action{Kind: KindChooseLevel, Level: models.LevelHard})
	act(t, e, "7", Action{Kind: KindStartQuiz})

	if got := presenter.lastScreen(t).prompt; !strings.Contains(got, "сомнение") {
		t.Errorf("question %q was not drawn from the hard bucket", got)
	}
}

func TestReveal_ShowsCounterpartOfDrawnPair(t *testing.T) {
	e, presenter, _ := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	act(t, e, "7", Action{Kind: KindStartQuiz})
	act(t, e, "7", Action{Kind: KindReveal})

	if got := presenter.lastScreen(t).prompt; !strings.Contains(got, "cat") {
		t.Errorf("revealed answer %q, want target term of the drawn pair", got)
	}
}

func TestReveal_HonorsDirection(t *testing.T) {
	e, presenter, _ := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	act(t, e, "7", Action{Kind: KindChooseDirection, Direction: models.TargetToSource})
	act(t, e, "7", Action{Kind: KindStartQuiz})

	if got := presenter.lastScreen(t).prompt; !strings.Contains(got, "cat") {
		t.Errorf("question %q should show the English side", got)
	}

	act(t, e, "7", Action{Kind: KindReveal})
	if got := presenter.lastScreen(t).prompt; !strings.Contains(got, "кот") {
		t.Errorf("answer %q should show the Russian side", got)
	}
}

func TestReveal_WithoutQuestionIsRejected(t *testing.T) {
	e, presenter, _ := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	act(t, e, "7", Action{Kind: KindReveal})

	if got := presenter.lastNotice(t).text; got != noticeNoQuestion {
		t.Errorf("notice = %q, want no-active-question", got)
	}
}

// --- Scoring ---

func quizAndReveal(t *testing.T, e *Engine, userID string) {
	t.Helper()
	act(t, e, userID, Action{Kind: KindStartQuiz})
	act(t, e, userID, Action{Kind: KindReveal})
}

func TestSubmitScore_AccumulatesIncrements(t *testing.T) {
	e, presenter, store := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	for _, s := range []float64{1, 0.5, 0} {
		quizAndReveal(t, e, "7")
		act(t, e, "7", Action{Kind: KindSubmitScore, Score: s})
	}

	if got := store.users["7"].Score; got != 1.5 {
		t.Errorf("score = %v, want 1.5", got)
	}
	if got := presenter.lastNotice(t).text; !strings.Contains(got, "1.5") {
		t.Errorf("score report %q does not show the total", got)
	}
}

func TestSubmitScore_WithoutQuestionIsRejected(t *testing.T) {
	e, presenter, store := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	act(t, e, "7", Action{Kind: KindSubmitScore, Score: 1})

	if got := presenter.lastNotice(t).text; got != noticeNoQuestion {
		t.Errorf("notice = %q, want no-active-question", got)
	}
	if got := store.users["7"].Score; got != 0 {
		t.Errorf("score mutated to %v without a question", got)
	}
}

func TestSubmitScore_BeforeRevealIsRejected(t *testing.T) {
	e, presenter, store := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	act(t, e, "7", Action{Kind: KindStartQuiz})
	act(t, e, "7", Action{Kind: KindSubmitScore, Score: 1})

	if got := presenter.lastNotice(t).text; got != noticeNotRevealed {
		t.Errorf("notice = %q, want reveal-first", got)
	}
	if got := store.users["7"].Score; got != 0 {
		t.Errorf("score mutated to %v before reveal", got)
	}
}

func TestSubmitScore_RejectsValuesOutsideOfferedSet(t *testing.T) {
	e, presenter, store := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	quizAndReveal(t, e, "7")
	act(t, e, "7", Action{Kind: KindSubmitScore, Score: 2})

	if got := presenter.lastNotice(t).text; got != noticeBadScore {
		t.Errorf("notice = %q, want bad-score rejection", got)
	}
	if got := store.users["7"].Score; got != 0 {
		t.Errorf("score mutated to %v on invalid value", got)
	}
}

func TestSubmitScore_ConsumesTheQuestion(t *testing.T) {
	e, presenter, _ := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	quizAndReveal(t, e, "7")
	act(t, e, "7", Action{Kind: KindSubmitScore, Score: 1})
	act(t, e, "7", Action{Kind: KindSubmitScore, Score: 1})

	if got := presenter.lastNotice(t).text; got != noticeNoQuestion {
		t.Errorf("second submit after scoring: notice = %q, want no-active-question", got)
	}
}

// --- Progress and admin ---

func TestViewProgress_ReportsDurableFields(t *testing.T) {
	e, presenter, _ := newTestEngine("")
	initiate(t, e, "7", "Anna", "")
	act(t, e, "7", Action{Kind: KindChooseLevel, Level: models.LevelMedium})

	act(t, e, "7", Action{Kind: KindViewProgress})

	report := presenter.lastNotice(t).text
	for _, want := range []string{"Anna", "Medium", "0 points", "2026-09-01"} {
		if !strings.Contains(report, want) {
			t.Errorf("progress report missing %q:\n%s", want, report)
		}
	}
}

func TestAdminSummary_RejectsNonAdmin(t *testing.T) {
	e, presenter, _ := newTestEngine("99")
	initiate(t, e, "7", "Anna", "")

	act(t, e, "7", Action{Kind: KindAdminSummary})

	if got := presenter.lastNotice(t).text; got != noticeUnauthorized {
		t.Errorf("notice = %q, want unauthorized", got)
	}
}

func TestAdminSummary_RejectedWhenNoAdminConfigured(t *testing.T) {
	e, presenter, _ := newTestEngine("")
	initiate(t, e, "7", "Anna", "")

	act(t, e, "7", Action{Kind: KindAdminSummary})

	if got := presenter.lastNotice(t).text; got != noticeUnauthorized {
		t.Errorf("notice = %q, want unauthorized", got)
	}
}

func TestAdminSummary_ListsFirstTenUsersInInsertionOrder(t *testing.T) {
	e, presenter, _ := newTestEngine("0")
	initiate(t, e, "0", "Admin", "boss")
	for i := 1; i <= 12; i++ {
		initiate(t, e, fmt.Sprintf("%d", i), fmt.Sprintf("User%02d", i), "")
	}

	act(t, e, "0", Action{Kind: KindAdminSummary})
	summary := presenter.lastNotice(t).text

	if !strings.Contains(summary, "Total users: 13") {
		t.Errorf("summary missing total count:\n%s", summary)
	}
	// Admin plus the first nine registrations fill the ten listing slots.
	for i := 1; i <= 9; i++ {
		if !strings.Contains(summary, fmt.Sprintf("User%02d", i)) {
			t.Errorf("summary missing User%02d:\n%s", i, summary)
		}
	}
	for i := 10; i <= 12; i++ {
		if strings.Contains(summary, fmt.Sprintf("User%02d", i)) {
			t.Errorf("summary should truncate after ten users, found User%02d", i)
		}
	}
}

// --- Hydration and shutdown ---

func TestHydrate_RestoresInsertionOrderByJoinDate(t *testing.T) {
	store := newMemStore()
	for i, id := range []string{"b", "a", "c"} {
		store.users[id] = models.UserRecord{
			DisplayName: "User-" + id,
			Level:       models.LevelEasy,
			Direction:   models.SourceToTarget,
			JoinedAt:    testNow.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		}
	}

	presenter := &fakePresenter{}
	e := New(store, vocab.NewLibrary(testBuckets()), presenter, "b", rand.New(rand.NewSource(1)))
	e.now = func() time.Time { return testNow }
	if err := e.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	act(t, e, "b", Action{Kind: KindAdminSummary})
	summary := presenter.lastNotice(t).text

	bIdx := strings.Index(summary, "User-b")
	aIdx := strings.Index(summary, "User-a")
	cIdx := strings.Index(summary, "User-c")
	if bIdx == -1 || aIdx == -1 || cIdx == -1 {
		t.Fatalf("summary missing users:\n%s", summary)
	}
	if !(bIdx < aIdx && aIdx < cIdx) {
		t.Errorf("listing order is not join order:\n%s", summary)
	}
}

func TestHydrate_RestartForgetsInFlightQuestion(t *testing.T) {
	e, _, store := newTestEngine("")
	initiate(t, e, "7", "Anna", "")
	act(t, e, "7", Action{Kind: KindStartQuiz})

	// Simulate a restart over the same store.
	presenter := &fakePresenter{}
	e2 := New(store, vocab.NewLibrary(testBuckets()), presenter, "", rand.New(rand.NewSource(1)))
	e2.now = func() time.Time { return testNow }
	if err := e2.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	act(t, e2, "7", Action{Kind: KindReveal})
	if got := presenter.lastNotice(t).text; got != noticeNoQuestion {
		t.Errorf("in-flight question survived the restart: %q", got)
	}
}

func TestClose_FlushesEveryRecord(t *testing.T) {
	e, _, store := newTestEngine("")
	initiate(t, e, "7", "Anna", "")
	initiate(t, e, "8", "Boris", "")

	before := store.upserts
	if err := e.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if store.upserts != before+2 {
		t.Errorf("flush wrote %d records, want 2", store.upserts-before)
	}
}

func TestInactiveToday_SkipsUsersActiveToday(t *testing.T) {
	store := newMemStore()
	store.users["old"] = models.UserRecord{
		DisplayName:  "Old",
		Level:        models.LevelEasy,
		Direction:    models.SourceToTarget,
		JoinedAt:     testNow.Add(-48 * time.Hour).Format(time.RFC3339),
		LastActiveAt: testNow.Add(-48 * time.Hour).Format(time.RFC3339),
	}

	presenter := &fakePresenter{}
	e := New(store, vocab.NewLibrary(testBuckets()), presenter, "", rand.New(rand.NewSource(1)))
	e.now = func() time.Time { return testNow }
	if err := e.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	initiate(t, e, "fresh", "Fresh", "")

	idle := e.InactiveToday()
	if len(idle) != 1 || idle[0] != "old" {
		t.Errorf("InactiveToday = %v, want [old]", idle)
	}
}

// --- Store failures ---

func TestScoreNotReportedWhenPersistFails(t *testing.T) {
	e, presenter, store := newTestEngine("")
	initiate(t, e, "7", "Anna", "")
	quizAndReveal(t, e, "7")

	store.fail = true
	err := e.Handle(context.Background(), Inbound{UserID: "7", Action: Action{Kind: KindSubmitScore, Score: 1}})
	if err == nil {
		t.Fatal("expected an error when the store is unavailable")
	}
	if got := presenter.lastNotice(t).text; got != noticeInternalError {
		t.Errorf("notice = %q, want internal-error apology", got)
	}
}

// --- Full scenario from the drill flow ---

func TestScenario_AnnaDrillsOneHardWord(t *testing.T) {
	e, presenter, store := newTestEngine("")

	initiate(t, e, "1", "Anna", "anna")
	act(t, e, "1", Action{Kind: KindChooseLevel, Level: models.LevelHard})
	act(t, e, "1", Action{Kind: KindStartQuiz})

	if got := presenter.lastScreen(t).prompt; !strings.Contains(got, "сомнение") {
		t.Fatalf("question %q is not the hard-bucket source term", got)
	}

	act(t, e, "1", Action{Kind: KindReveal})
	if got := presenter.lastScreen(t).prompt; !strings.Contains(got, "doubt") {
		t.Fatalf("answer %q is not the drawn pair's target term", got)
	}

	act(t, e, "1", Action{Kind: KindSubmitScore, Score: 1})

	rec := store.users["1"]
	if rec.Score != 1 {
		t.Errorf("persisted score = %v, want 1", rec.Score)
	}
	if rec.Level != models.LevelHard {
		t.Errorf("persisted level = %q, want hard", rec.Level)
	}
}
