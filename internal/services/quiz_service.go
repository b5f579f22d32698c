package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	dm "learnez/internal/models/domain_models"
	"learnez/internal/models/response_models"
	"learnez/internal/realtime"
	"learnez/internal/repositories"
	"learnez/pkg/logger"
	mem "learnez/pkg/memcache"
	"learnez/pkg/utils"
)

var tracer = otel.Tracer("learnez/internal/services")

type QuizConfig struct {
	StartDifficulty    int
	OffsetCorrect      int
	OffsetWrong        int
	MaxQuestions       int
	SpeculationTimeout time.Duration
}

func DefaultQuizConfig() QuizConfig {
	return QuizConfig{
		StartDifficulty:    5,
		OffsetCorrect:      1,
		OffsetWrong:        1,
		SpeculationTimeout: 2 * time.Minute,
	}
}

type QuizServiceInterface interface {
	BeginAttempt(ctx context.Context, userID, materialID, initialQuery string) (string, error)
	RecordAnswer(ctx context.Context, userID, attemptID, answer string) (*dm.AnswerResult, error)
	GetAttempt(ctx context.Context, userID, attemptID string) (*dm.Attempt, error)
	// Wait blocks until every background speculation has finished.
	Wait()
}

type QuizService struct {
	attempts  repositories.AttemptRepository
	generator QuestionGeneratorInterface
	emitter   realtime.Emitter
	locks     *mem.KeyedLocks
	inflight  *mem.InflightTracker
	cfg       QuizConfig
	log       *logger.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewQuizService(
	attempts repositories.AttemptRepository,
	generator QuestionGeneratorInterface,
	emitter realtime.Emitter,
	locks *mem.KeyedLocks,
	inflight *mem.InflightTracker,
	cfg QuizConfig,
	log *logger.Logger,
) QuizServiceInterface {
	if emitter == nil {
		emitter = realtime.NopEmitter{}
	}
	if cfg.SpeculationTimeout <= 0 {
		cfg.SpeculationTimeout = DefaultQuizConfig().SpeculationTimeout
	}
	cfg.StartDifficulty = dm.ClampLevel(cfg.StartDifficulty)
	return &QuizService{
		attempts:  attempts,
		generator: generator,
		emitter:   emitter,
		locks:     locks,
		inflight:  inflight,
		cfg:       cfg,
		log:       log.With("component", "QuizService"),
		now:       time.Now,
	}
}

func (s *QuizService) BeginAttempt(ctx context.Context, userID, materialID, initialQuery string) (string, error) {
	ctx, span := tracer.Start(ctx, "quiz.begin_attempt")
	defer span.End()

	if userID == "" {
		return "", utils.ErrUnauthenticated
	}
	materialID = strings.TrimSpace(materialID)
	initialQuery = strings.TrimSpace(initialQuery)
	if materialID == "" {
		return "", fmt.Errorf("%w: material id is required", utils.ErrInvalidArgument)
	}
	if initialQuery == "" {
		return "", fmt.Errorf("%w: initial query is required", utils.ErrInvalidArgument)
	}
	span.SetAttributes(attribute.String("material_id", materialID))

	first, err := s.generator.GenerateQuestion(ctx, QuestionInput{
		Difficulty: s.cfg.StartDifficulty,
		Topic:      initialQuery,
		MaterialID: materialID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate first question")
		return "", asGenerationError(err)
	}

	attempt := &dm.Attempt{
		UserID:          userID,
		MaterialID:      materialID,
		InitialQuery:    initialQuery,
		StartedAt:       s.now(),
		MaxLength:       s.cfg.MaxQuestions,
		QuestionHistory: []dm.QuestionAttempt{{Question: first}},
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.String("attempt_id", attempt.ID))
	s.log.Info("attempt started", "attempt_id", attempt.ID, "user_id", userID, "material_id", materialID, "level", first.Level)

	s.speculate(ctx, attempt, 0)
	return attempt.ID, nil
}

func (s *QuizService) RecordAnswer(ctx context.Context, userID, attemptID, answer string) (*dm.AnswerResult, error) {
	ctx, span := tracer.Start(ctx, "quiz.record_answer")
	defer span.End()
	span.SetAttributes(attribute.String("attempt_id", attemptID))

	if userID == "" {
		return nil, utils.ErrUnauthenticated
	}
	if strings.TrimSpace(attemptID) == "" {
		return nil, fmt.Errorf("%w: attempt id is required", utils.ErrInvalidArgument)
	}

	// The speculative writer needs the attempt lock to merge, so wait for it
	// before taking the lock ourselves.
	if !s.inflight.Wait(ctx, attemptID) {
		s.log.Warn("stopped waiting for speculation", "attempt_id", attemptID, "error", ctx.Err())
	}

	unlock := s.locks.Lock(attemptID)
	defer unlock()

	stored, err := s.loadOwned(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if stored.IsOver() {
		return nil, utils.ErrAttemptCompleted
	}

	attempt := stored.Clone()
	last := attempt.Last()
	if last == nil {
		return nil, fmt.Errorf("%w: attempt %s has no questions", utils.ErrDatabaseError, attemptID)
	}

	now := s.now()
	last.AnsweredAt = &now
	last.UserAnswer = &answer

	correct := last.Question.IsCorrect(answer)
	points := 0
	if correct {
		points = last.Question.MaxScore
	}
	last.PointsReceived = &points
	level := last.Question.Level
	span.SetAttributes(attribute.Bool("correct", correct), attribute.Int("level", level))

	if (correct && level >= dm.MaxLevel) || s.reachedMaxLength(attempt) {
		attempt.EndedAt = &now
		if err := s.attempts.Save(ctx, attempt); err != nil {
			return nil, s.saveFailed(err, attemptID)
		}
		s.log.Info("attempt completed", "attempt_id", attemptID, "score", attempt.Score(), "answered", attempt.AnsweredCount())
		s.emitter.Emit(ctx, attempt.UserID, realtime.EventAttemptUpdated, response_models.NewAttemptResponse(attempt))
		return &dm.AnswerResult{WasCorrect: correct, IsOver: true, Attempt: attempt}, nil
	}

	next := last.EasierQuestion
	nextLevel := dm.EasierLevel(level, s.cfg.OffsetWrong)
	if correct {
		next = last.HarderQuestion
		nextLevel = dm.HarderLevel(level, s.cfg.OffsetCorrect)
	}
	if next == nil {
		s.log.Info("speculative branch missing, generating inline", "attempt_id", attemptID, "correct", correct, "level", nextLevel)
		q, err := s.generator.GenerateQuestion(ctx, QuestionInput{
			Difficulty:       nextLevel,
			Topic:            attempt.InitialQuery,
			MaterialID:       attempt.MaterialID,
			ExcludeQuestions: attempt.AskedQuestions(),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "generate next question")
			return nil, asGenerationError(err)
		}
		next = &q
	}

	attempt.QuestionHistory = append(attempt.QuestionHistory, dm.QuestionAttempt{Question: *next})
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, s.saveFailed(err, attemptID)
	}

	s.speculate(ctx, attempt, len(attempt.QuestionHistory)-1)
	s.emitter.Emit(ctx, attempt.UserID, realtime.EventAttemptUpdated, response_models.NewAttemptResponse(attempt))
	return &dm.AnswerResult{WasCorrect: correct, IsOver: false, Attempt: attempt}, nil
}

func (s *QuizService) GetAttempt(ctx context.Context, userID, attemptID string) (*dm.Attempt, error) {
	if userID == "" {
		return nil, utils.ErrUnauthenticated
	}
	return s.loadOwned(ctx, userID, attemptID)
}

func (s *QuizService) Wait() {
	s.wg.Wait()
}

func (s *QuizService) loadOwned(ctx context.Context, userID, attemptID string) (*dm.Attempt, error) {
	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("%w: attempt %s", utils.ErrNotFound, attemptID)
	}
	return attempt, nil
}

func (s *QuizService) reachedMaxLength(a *dm.Attempt) bool {
	return a.MaxLength > 0 && a.AnsweredCount() >= a.MaxLength
}

func (s *QuizService) saveFailed(err error, attemptID string) error {
	if errors.Is(err, utils.ErrConflict) {
		s.log.Warn("attempt changed concurrently", "attempt_id", attemptID)
	} else {
		s.log.Error("failed to save attempt", "attempt_id", attemptID, "error", err)
	}
	return err
}

// speculate generates both branches for history entry index in the
// background and merges them into the stored attempt. It registers with the
// inflight tracker before returning so a following answer can wait for it.
func (s *QuizService) speculate(ctx context.Context, attempt *dm.Attempt, index int) {
	entry := attempt.QuestionHistory[index]
	level := entry.Question.Level
	base := QuestionInput{
		Topic:            attempt.InitialQuery,
		MaterialID:       attempt.MaterialID,
		ExcludeQuestions: attempt.AskedQuestions(),
	}
	attemptID, userID := attempt.ID, attempt.UserID

	done := s.inflight.Start(attemptID)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer done()

		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SpeculationTimeout)
		defer cancel()
		bgCtx, span := tracer.Start(bgCtx, "quiz.speculate")
		defer span.End()
		span.SetAttributes(attribute.String("attempt_id", attemptID), attribute.Int("index", index))

		harderIn, easierIn := base, base
		harderIn.Difficulty = dm.HarderLevel(level, s.cfg.OffsetCorrect)
		easierIn.Difficulty = dm.EasierLevel(level, s.cfg.OffsetWrong)

		var harder, easier *dm.Question
		var g errgroup.Group
		g.Go(func() error {
			q, err := s.generator.GenerateQuestion(bgCtx, harderIn)
			if err != nil {
				s.log.Warn("harder branch failed", "attempt_id", attemptID, "level", harderIn.Difficulty, "error", err)
				return nil
			}
			harder = &q
			return nil
		})
		g.Go(func() error {
			q, err := s.generator.GenerateQuestion(bgCtx, easierIn)
			if err != nil {
				s.log.Warn("easier branch failed", "attempt_id", attemptID, "level", easierIn.Difficulty, "error", err)
				return nil
			}
			easier = &q
			return nil
		})
		_ = g.Wait()

		if harder == nil && easier == nil {
			return
		}
		s.mergeBranches(bgCtx, userID, attemptID, index, harder, easier)
	}()
}

// mergeBranches reloads the attempt under its lock and fills the empty
// branch slots of entry index.
func (s *QuizService) mergeBranches(ctx context.Context, userID, attemptID string, index int, harder, easier *dm.Question) {
	unlock := s.locks.Lock(attemptID)
	defer unlock()

	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		s.log.Warn("reload for speculation failed", "attempt_id", attemptID, "error", err)
		return
	}
	if index >= len(attempt.QuestionHistory) {
		s.log.Warn("speculation target vanished", "attempt_id", attemptID, "index", index)
		return
	}

	entry := &attempt.QuestionHistory[index]
	changed := false
	if entry.HarderQuestion == nil && harder != nil {
		entry.HarderQuestion = harder
		changed = true
	}
	if entry.EasierQuestion == nil && easier != nil {
		entry.EasierQuestion = easier
		changed = true
	}
	if !changed {
		return
	}

	if err := s.attempts.Save(ctx, attempt); err != nil {
		s.log.Warn("saving speculation failed", "attempt_id", attemptID, "error", err)
		return
	}
	s.log.Debug("speculative branches stored", "attempt_id", attemptID, "index", index, "harder", harder != nil, "easier", easier != nil)
	s.emitter.Emit(ctx, userID, realtime.EventAttemptUpdated, response_models.NewAttemptResponse(attempt))
}

func asGenerationError(err error) error {
	if errors.Is(err, utils.ErrGeneration) {
		return err
	}
	return fmt.Errorf("%w: %v", utils.ErrGeneration, err)
}
