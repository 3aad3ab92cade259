package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"finlit-service/internal/catalog"
	"finlit-service/internal/event"
	"finlit-service/internal/models"
	"finlit-service/internal/progression"
	"finlit-service/internal/selection"
)

var (
	// ErrSubLevelNotFound is returned when the requested sublevel is not in
	// the catalog.
	ErrSubLevelNotFound = errors.New("sublevel not found in catalog")
	// ErrSubLevelLocked is returned when the learner's XP is below the
	// sublevel's requirement.
	ErrSubLevelLocked = errors.New("sublevel is locked")
	// ErrNotSessionOwner is returned when a session belongs to another learner.
	ErrNotSessionOwner = errors.New("session belongs to another user")
	// ErrSessionNotResumable is returned for transitions on a paused,
	// abandoned, or completed session.
	ErrSessionNotResumable = errors.New("session is not active")
)

// SessionStore persists attempt snapshots.
type SessionStore interface {
	FindByID(ctx context.Context, id string) (*models.LearningSession, error)
	FindActiveByUser(ctx context.Context, userID string) (*models.LearningSession, error)
	Create(ctx context.Context, session *models.LearningSession) error
	Save(ctx context.Context, session *models.LearningSession) error
}

// ProgressStore persists the per-learner ledger.
type ProgressStore interface {
	Get(ctx context.Context, userID string) *models.ProgressRecord
	AddXP(ctx context.Context, userID string, amount int) (int, error)
	AddCompletedLevel(ctx context.Context, userID string, level models.CompletedLevel) error
	UpsertExam(ctx context.Context, userID string, exam models.ExamRecord) (bool, error)
}

// SessionService runs the lesson/exam lifecycle: question selection, the
// answer/advance state machine, XP grants, and completion records.
type SessionService struct {
	Repo         SessionStore
	ProgressRepo ProgressStore
	Catalog      *catalog.Catalog
	selector     *selection.Selector
	manager      *progression.Manager
	publisher    *event.EventPublisher
}

func NewSessionService(
	repo SessionStore,
	progressRepo ProgressStore,
	cat *catalog.Catalog,
	publisher *event.EventPublisher,
) *SessionService {
	return &SessionService{
		Repo:         repo,
		ProgressRepo: progressRepo,
		Catalog:      cat,
		selector:     selection.NewSelector(),
		manager:      progression.NewManager(nil), // Uses default config
		publisher:    publisher,
	}
}

// StartSession selects and shuffles a question set for the sublevel and
// persists a fresh attempt. It fails loudly when the selector comes back
// empty; a session must never complete vacuously.
func (s *SessionService) StartSession(ctx context.Context, userID string, topicID int, subLevelID string) (*models.LearningSession, error) {
	sub, ok := s.Catalog.SubLevel(topicID, subLevelID)
	if !ok {
		return nil, fmt.Errorf("%w: %d/%s", ErrSubLevelNotFound, topicID, subLevelID)
	}

	progress := s.ProgressRepo.Get(ctx, userID)
	if progress.TotalXP < sub.XPRequired {
		return nil, fmt.Errorf("%w: need %d XP, have %d", ErrSubLevelLocked, sub.XPRequired, progress.TotalXP)
	}

	// An attempt already in flight for this sublevel is handed back instead
	// of duplicated, so a reopened client picks up where it left off.
	if existing, err := s.Repo.FindActiveByUser(ctx, userID); err == nil &&
		existing.TopicID == topicID && existing.SubLevelID == subLevelID {
		return existing, nil
	}

	cfg := s.manager.Config()
	questions := s.selector.Select(s.Catalog.AllQuestions(), topicID, subLevelID, cfg.QuestionsPerLesson)

	// Shuffle each question's options now and store the remapped correct
	// index, so every later answer check runs against the presented order.
	for i := range questions {
		questions[i] = s.selector.ShuffleOptions(questions[i])
	}

	attempt, err := progression.NewSession(uuid.NewString(), topicID, subLevelID, sub.IsExam, questions)
	if err != nil {
		return nil, err
	}

	session := &models.LearningSession{
		UserID:    userID,
		Status:    models.StatusActive,
		StartTime: time.Now(),
	}
	s.applyAttempt(session, attempt)

	if err := s.Repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.publish(event.SessionStarted, map[string]interface{}{
		"session_id":   session.ID,
		"user_id":      userID,
		"topic_id":     topicID,
		"sub_level_id": subLevelID,
		"is_exam":      sub.IsExam,
		"questions":    len(questions),
	})
	s.publishQuestionChanged(session)

	return session, nil
}

// SubmitAnswer applies one answer to the session. Double submission while
// the answer is revealed is a persisted no-op.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID, userID string, selectedIndex, elapsedSeconds int) (*progression.AnswerResult, error) {
	session, err := s.ownedActiveSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	attempt := s.reconstructAttempt(session)
	level := progression.CurrentLevel(s.ProgressRepo.Get(ctx, userID).TotalXP)

	result, err := s.manager.SubmitAnswer(attempt, selectedIndex, elapsedSeconds, level)
	if err != nil {
		return nil, err
	}
	if result.AlreadyAnswered {
		return result, nil
	}

	if result.XPGranted > 0 {
		total, err := s.ProgressRepo.AddXP(ctx, userID, result.XPGranted)
		if err != nil {
			return nil, fmt.Errorf("failed to award XP: %w", err)
		}
		s.publish(event.XPGranted, map[string]interface{}{
			"session_id": session.ID,
			"user_id":    userID,
			"amount":     result.XPGranted,
			"total_xp":   total,
			"bonuses":    result.Bonuses,
		})
	}

	s.applyAttempt(session, attempt)
	if err := s.Repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.publish(event.AnswerRevealed, map[string]interface{}{
		"session_id":     session.ID,
		"user_id":        userID,
		"question_index": session.CurrentIndex,
		"correct":        result.Correct,
		"correct_index":  result.CorrectIndex,
	})

	return result, nil
}

// Advance moves to the next question, or runs the one completion evaluation
// and writes the completion records.
func (s *SessionService) Advance(ctx context.Context, sessionID, userID string) (*progression.Completion, *models.LearningSession, error) {
	session, err := s.ownedActiveSession(ctx, sessionID, userID)
	if err != nil {
		return nil, nil, err
	}

	attempt := s.reconstructAttempt(session)
	completion, err := s.manager.Advance(attempt)
	if err != nil {
		return nil, nil, err
	}

	s.applyAttempt(session, attempt)

	if completion == nil {
		if err := s.Repo.Save(ctx, session); err != nil {
			return nil, nil, fmt.Errorf("failed to save session: %w", err)
		}
		s.publishQuestionChanged(session)
		return nil, session, nil
	}

	// Completion records are written before the snapshot flips to
	// completed. A failed write leaves the stored attempt re-advanceable,
	// so a passed result is never stranded behind ErrSessionComplete.
	if err := s.recordCompletion(ctx, session, completion); err != nil {
		return nil, nil, err
	}

	session.Status = models.StatusCompleted
	session.EndTime = time.Now()
	if err := s.Repo.Save(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.publish(event.SessionCompleted, map[string]interface{}{
		"session_id":    session.ID,
		"user_id":       userID,
		"passed":        completion.Passed,
		"correct_count": completion.CorrectCount,
		"total":         completion.Total,
		"score":         completion.Score,
		"is_exam":       completion.IsExam,
	})

	return completion, session, nil
}

// recordCompletion writes the pass bookkeeping. A fail writes nothing: a
// previously passed lesson stays passed.
func (s *SessionService) recordCompletion(ctx context.Context, session *models.LearningSession, completion *progression.Completion) error {
	if !completion.Passed {
		return nil
	}

	level := models.CompletedLevel{TopicID: session.TopicID, SubLevelID: session.SubLevelID}
	if err := s.ProgressRepo.AddCompletedLevel(ctx, session.UserID, level); err != nil {
		return fmt.Errorf("failed to record lesson completion: %w", err)
	}

	if !completion.IsExam {
		return nil
	}

	exam := models.ExamRecord{TopicID: session.TopicID, Score: completion.Score}
	inserted, err := s.ProgressRepo.UpsertExam(ctx, session.UserID, exam)
	if err != nil {
		return fmt.Errorf("failed to record exam: %w", err)
	}

	// The completion bonus is granted once per topic; a retake only
	// updates the recorded score.
	bonus := 0
	if inserted {
		bonus = s.manager.Config().ExamBonusXP
		if _, err := s.ProgressRepo.AddXP(ctx, session.UserID, bonus); err != nil {
			return fmt.Errorf("failed to award exam bonus: %w", err)
		}
	}

	s.publish(event.ExamRecorded, map[string]interface{}{
		"session_id": session.ID,
		"user_id":    session.UserID,
		"topic_id":   session.TopicID,
		"score":      completion.Score,
		"bonus_xp":   bonus,
	})
	return nil
}

func (s *SessionService) GetSession(ctx context.Context, sessionID, userID string) (*models.LearningSession, error) {
	session, err := s.Repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

func (s *SessionService) PauseSession(ctx context.Context, sessionID, userID, reason string) error {
	session, err := s.ownedActiveSession(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	session.Status = models.StatusPaused
	session.PauseReason = reason
	return s.Repo.Save(ctx, session)
}

func (s *SessionService) ResumeSession(ctx context.Context, sessionID, userID string) (*models.LearningSession, error) {
	session, err := s.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusPaused {
		return nil, ErrSessionNotResumable
	}
	session.Status = models.StatusActive
	session.PauseReason = ""
	if err := s.Repo.Save(ctx, session); err != nil {
		return nil, err
	}
	s.publishQuestionChanged(session)
	return session, nil
}

// AbandonSession ends the attempt without evaluation; nothing is recorded.
func (s *SessionService) AbandonSession(ctx context.Context, sessionID, userID string) error {
	session, err := s.GetSession(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if session.Status == models.StatusCompleted {
		return ErrSessionNotResumable
	}
	session.Status = models.StatusAbandoned
	session.EndTime = time.Now()
	return s.Repo.Save(ctx, session)
}

func (s *SessionService) ownedActiveSession(ctx context.Context, sessionID, userID string) (*models.LearningSession, error) {
	session, err := s.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusActive {
		return nil, ErrSessionNotResumable
	}
	return session, nil
}

// Helper: rebuild the pure attempt state from the stored snapshot.
func (s *SessionService) reconstructAttempt(session *models.LearningSession) *progression.Session {
	return &progression.Session{
		ID:           session.ID,
		TopicID:      session.TopicID,
		SubLevelID:   session.SubLevelID,
		IsExam:       session.IsExam,
		Questions:    session.Questions,
		CurrentIndex: session.CurrentIndex,
		CorrectCount: session.CorrectCount,
		Streak:       session.Streak,
		State:        progression.State(session.State),
		LastCorrect:  session.LastCorrect,
		Passed:       session.Passed,
		XPEarned:     session.XPEarned,
	}
}

// Helper: write the attempt state back onto the snapshot.
func (s *SessionService) applyAttempt(session *models.LearningSession, attempt *progression.Session) {
	session.ID = attempt.ID
	session.TopicID = attempt.TopicID
	session.SubLevelID = attempt.SubLevelID
	session.IsExam = attempt.IsExam
	session.Questions = attempt.Questions
	session.CurrentIndex = attempt.CurrentIndex
	session.CorrectCount = attempt.CorrectCount
	session.Streak = attempt.Streak
	session.State = string(attempt.State)
	session.LastCorrect = attempt.LastCorrect
	session.Passed = attempt.Passed
	session.XPEarned = attempt.XPEarned
}

func (s *SessionService) publishQuestionChanged(session *models.LearningSession) {
	s.publish(event.QuestionChanged, map[string]interface{}{
		"session_id":     session.ID,
		"user_id":        session.UserID,
		"question_index": session.CurrentIndex,
		"total":          len(session.Questions),
	})
}

func (s *SessionService) publish(eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(eventType, payload); err != nil {
		log.Printf("failed to publish %s: %v", eventType, err)
	}
}
