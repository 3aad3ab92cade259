package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"finlit-service/internal/catalog"
	"finlit-service/internal/models"
	"finlit-service/internal/progression"
)

const testContent = `
topics:
  - id: 1
    title: "Basic Banking"
    icon: "🏦"
    sub_levels:
      - id: "1.1"
        title: "Account Types"
        xp_required: 0
        xp_reward: 50
      - id: "1.2"
        title: "Banking Services"
        xp_required: 100
        xp_reward: 75
      - id: "1.3"
        title: "Final Exam"
        xp_required: 100
        xp_reward: 150
        is_exam: true
questions:
  - id: "q1"
    topic_id: 1
    sub_level_id: "1.1"
    question: "What is a checking account for?"
    options: ["Everyday spending", "Long-term growth", "Retirement", "Collectibles"]
    correct_index: 0
  - id: "q2"
    topic_id: 1
    sub_level_id: "1.1"
    question: "What does a savings account earn?"
    options: ["Nothing", "Interest", "Stocks", "Stamps"]
    correct_index: 1
  - id: "q3"
    topic_id: 1
    sub_level_id: "1.1"
    question: "What does FDIC insurance protect?"
    options: ["Homes", "Cars", "Deposits", "Pets"]
    correct_index: 2
  - id: "q4"
    topic_id: 1
    sub_level_id: "1.3"
    question: "Which account suits everyday payments?"
    options: ["Checking", "CD", "Brokerage", "Escrow"]
    correct_index: 0
  - id: "q5"
    topic_id: 1
    sub_level_id: "1.3"
    question: "What is an overdraft?"
    options: ["A deposit", "Spending beyond your balance", "A wire transfer", "A loan type"]
    correct_index: 1
  - id: "q6"
    topic_id: 1
    sub_level_id: "1.3"
    question: "What does ATM stand for?"
    options: ["Account Transaction Manager", "Automated Teller Machine", "Annual Total Money", "Automatic Transfer Mechanism"]
    correct_index: 1
`

func loadTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "content.yaml"), []byte(testContent), 0o644); err != nil {
		t.Fatalf("writing content: %v", err)
	}
	cat, err := catalog.Load(dir)
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	return cat
}

type fakeSessionStore struct {
	sessions  map[string]*models.LearningSession
	createErr error
	saveErr   error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*models.LearningSession)}
}

func (f *fakeSessionStore) snapshot(s *models.LearningSession) *models.LearningSession {
	cp := *s
	cp.Questions = append([]models.Question(nil), s.Questions...)
	return &cp
}

func (f *fakeSessionStore) FindByID(_ context.Context, id string) (*models.LearningSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return f.snapshot(s), nil
}

func (f *fakeSessionStore) FindActiveByUser(_ context.Context, userID string) (*models.LearningSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && (s.Status == models.StatusActive || s.Status == models.StatusPaused) {
			return f.snapshot(s), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeSessionStore) Create(_ context.Context, s *models.LearningSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.sessions[s.ID] = f.snapshot(s)
	return nil
}

func (f *fakeSessionStore) Save(_ context.Context, s *models.LearningSession) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.sessions[s.ID] = f.snapshot(s)
	return nil
}

type fakeProgressStore struct {
	records  map[string]*models.ProgressRecord
	levelErr error
	examErr  error
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{records: make(map[string]*models.ProgressRecord)}
}

func (f *fakeProgressStore) ensure(userID string) *models.ProgressRecord {
	if rec, ok := f.records[userID]; ok {
		return rec
	}
	rec := models.NewProgressRecord(userID)
	f.records[userID] = rec
	return rec
}

func (f *fakeProgressStore) Get(_ context.Context, userID string) *models.ProgressRecord {
	rec := *f.ensure(userID)
	return &rec
}

func (f *fakeProgressStore) AddXP(_ context.Context, userID string, amount int) (int, error) {
	rec := f.ensure(userID)
	if amount > 0 {
		rec.TotalXP += amount
	}
	return rec.TotalXP, nil
}

func (f *fakeProgressStore) AddCompletedLevel(_ context.Context, userID string, level models.CompletedLevel) error {
	if f.levelErr != nil {
		return f.levelErr
	}
	rec := f.ensure(userID)
	if !rec.HasCompletedLevel(level.TopicID, level.SubLevelID) {
		rec.CompletedLevels = append(rec.CompletedLevels, level)
	}
	return nil
}

func (f *fakeProgressStore) UpsertExam(_ context.Context, userID string, exam models.ExamRecord) (bool, error) {
	if f.examErr != nil {
		return false, f.examErr
	}
	rec := f.ensure(userID)
	for i, e := range rec.CompletedExams {
		if e.TopicID == exam.TopicID {
			rec.CompletedExams[i].Score = exam.Score
			return false, nil
		}
	}
	rec.CompletedExams = append(rec.CompletedExams, exam)
	return true, nil
}

func newTestService(t *testing.T) (*SessionService, *fakeSessionStore, *fakeProgressStore) {
	t.Helper()
	store := newFakeSessionStore()
	progress := newFakeProgressStore()
	svc := NewSessionService(store, progress, loadTestCatalog(t), nil)
	return svc, store, progress
}

// completeAttempt answers every question correctly and advances through to
// completion.
func completeAttempt(t *testing.T, svc *SessionService, id, user string) *progression.Completion {
	t.Helper()
	ctx := context.Background()
	for {
		session, err := svc.GetSession(ctx, id, user)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		q := session.Questions[session.CurrentIndex]
		if _, err := svc.SubmitAnswer(ctx, id, user, q.CorrectIndex, 0); err != nil {
			t.Fatalf("submit: %v", err)
		}
		completion, _, err := svc.Advance(ctx, id, user)
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		if completion != nil {
			return completion
		}
	}
}

func TestStartSessionUnknownSubLevel(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.StartSession(context.Background(), "user-1", 1, "1.9")
	if !errors.Is(err, ErrSubLevelNotFound) {
		t.Errorf("expected ErrSubLevelNotFound, got %v", err)
	}
	_, err = svc.StartSession(context.Background(), "user-1", 9, "1.1")
	if !errors.Is(err, ErrSubLevelNotFound) {
		t.Errorf("expected ErrSubLevelNotFound for unknown topic, got %v", err)
	}
}

func TestStartSessionLockedByXP(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.StartSession(context.Background(), "user-1", 1, "1.2")
	if !errors.Is(err, ErrSubLevelLocked) {
		t.Errorf("expected ErrSubLevelLocked, got %v", err)
	}
}

func TestStartSessionCreateFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.createErr = errors.New("connection reset")

	_, err := svc.StartSession(context.Background(), "user-1", 1, "1.1")
	if err == nil {
		t.Fatal("expected error when the store fails")
	}
	if errors.Is(err, ErrSubLevelNotFound) || errors.Is(err, ErrSubLevelLocked) {
		t.Errorf("store failure mapped to a client error: %v", err)
	}
}

func TestStartSessionResumesInFlightAttempt(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.StartSession(ctx, "user-1", 1, "1.1")
	if err != nil {
		t.Fatalf("first start: %v", err)
	}

	second, err := svc.StartSession(ctx, "user-1", 1, "1.1")
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second start created a new session %s alongside %s", second.ID, first.ID)
	}
	if len(store.sessions) != 1 {
		t.Errorf("store holds %d sessions, want 1", len(store.sessions))
	}

	// Another learner's attempt is not shared.
	other, err := svc.StartSession(ctx, "user-2", 1, "1.1")
	if err != nil {
		t.Fatalf("other start: %v", err)
	}
	if other.ID == first.ID {
		t.Error("attempt shared across learners")
	}
}

func TestAdvanceRecordsCompletionBeforeClosingSession(t *testing.T) {
	svc, store, progress := newTestService(t)
	ctx := context.Background()

	session, err := svc.StartSession(ctx, "user-1", 1, "1.1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Answer everything correctly, stopping with the last answer revealed.
	for {
		current, err := svc.GetSession(ctx, session.ID, "user-1")
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		q := current.Questions[current.CurrentIndex]
		if _, err := svc.SubmitAnswer(ctx, session.ID, "user-1", q.CorrectIndex, 0); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if current.CurrentIndex+1 == len(current.Questions) {
			break
		}
		if _, _, err := svc.Advance(ctx, session.ID, "user-1"); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	// A transient recording failure must not close the session.
	progress.levelErr = errors.New("write timeout")
	if _, _, err := svc.Advance(ctx, session.ID, "user-1"); err == nil {
		t.Fatal("expected error from failed completion recording")
	}
	stored := store.sessions[session.ID]
	if stored.Status != models.StatusActive {
		t.Fatalf("session status = %s after failed recording, want %s", stored.Status, models.StatusActive)
	}
	if stored.State != models.StateAnswerRevealed {
		t.Fatalf("session state = %s after failed recording, want %s", stored.State, models.StateAnswerRevealed)
	}

	// The retry lands the result.
	progress.levelErr = nil
	completion, _, err := svc.Advance(ctx, session.ID, "user-1")
	if err != nil {
		t.Fatalf("retried advance: %v", err)
	}
	if completion == nil || !completion.Passed {
		t.Fatalf("completion = %+v, want a pass", completion)
	}
	if store.sessions[session.ID].Status != models.StatusCompleted {
		t.Errorf("session status = %s, want %s", store.sessions[session.ID].Status, models.StatusCompleted)
	}
	if !progress.records["user-1"].HasCompletedLevel(1, "1.1") {
		t.Error("lesson completion not recorded")
	}
}

func TestExamBonusGrantedOncePerTopic(t *testing.T) {
	svc, _, progress := newTestService(t)
	ctx := context.Background()

	// Unlock the exam.
	progress.ensure("user-1").TotalXP = 100
	before := progress.records["user-1"].TotalXP

	first, err := svc.StartSession(ctx, "user-1", 1, "1.3")
	if err != nil {
		t.Fatalf("start exam: %v", err)
	}
	completion := completeAttempt(t, svc, first.ID, "user-1")
	if !completion.Passed || !completion.IsExam {
		t.Fatalf("completion = %+v, want exam pass", completion)
	}
	afterFirst := progress.records["user-1"].TotalXP

	second, err := svc.StartSession(ctx, "user-1", 1, "1.3")
	if err != nil {
		t.Fatalf("restart exam: %v", err)
	}
	completeAttempt(t, svc, second.ID, "user-1")
	afterSecond := progress.records["user-1"].TotalXP

	// Both runs answer identically; only the first carries the completion
	// bonus on top of the per-answer grants.
	bonus := svc.manager.Config().ExamBonusXP
	firstDelta := afterFirst - before
	secondDelta := afterSecond - afterFirst
	if firstDelta-secondDelta != bonus {
		t.Errorf("XP deltas %d then %d, want the first to exceed the second by the %d bonus",
			firstDelta, secondDelta, bonus)
	}

	if len(progress.records["user-1"].CompletedExams) != 1 {
		t.Errorf("got %d exam records, want 1", len(progress.records["user-1"].CompletedExams))
	}
}
