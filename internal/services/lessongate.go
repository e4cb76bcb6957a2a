package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/apierr"
	redisclient "github.com/siplanskills/backend/internal/clients/redis"
	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/repos"
	"github.com/siplanskills/backend/internal/types"
)

type LessonGateService interface {
	CanComplete(ctx context.Context, accountID, lessonID uuid.UUID, watchedSeconds int) (bool, error)
	RecordProgress(ctx context.Context, accountID, lessonID uuid.UUID, watchedSeconds int, markComplete bool) (*types.CompletionRecord, error)
}

type lessonGateService struct {
	db             *gorm.DB
	log            *logger.Logger
	lessonRepo     repos.LessonRepo
	completionRepo repos.CompletionRecordRepo
	refreshBus     redisclient.RefreshBus
}

func NewLessonGateService(
	db *gorm.DB,
	log *logger.Logger,
	lessonRepo repos.LessonRepo,
	completionRepo repos.CompletionRecordRepo,
	refreshBus redisclient.RefreshBus,
) LessonGateService {
	serviceLog := log.With("service", "LessonGateService")
	return &lessonGateService{
		db:             db,
		log:            serviceLog,
		lessonRepo:     lessonRepo,
		completionRepo: completionRepo,
		refreshBus:     refreshBus,
	}
}

// gateSatisfied is the completion policy. Monotonic in watchedSeconds
// and in wall-clock time: once a record is complete, or the watch
// window has elapsed since the lesson was first opened, it stays
// satisfied.
func gateSatisfied(lesson *types.Lesson, record *types.CompletionRecord, watchedSeconds int, now time.Time) bool {
	if record != nil && record.IsComplete {
		return true
	}
	required := lesson.RequiredSeconds()
	if watchedSeconds >= required {
		return true
	}
	if record != nil && record.FirstOpenedAt != nil {
		elapsed := now.Sub(*record.FirstOpenedAt)
		if elapsed >= time.Duration(required)*time.Second {
			return true
		}
	}
	return false
}

func (s *lessonGateService) CanComplete(ctx context.Context, accountID, lessonID uuid.UUID, watchedSeconds int) (bool, error) {
	if accountID == uuid.Nil {
		return false, apierr.NotAuthenticated(fmt.Errorf("account id is required"))
	}
	lessons, err := s.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
	if err != nil {
		return false, apierr.DataUnavailable(fmt.Errorf("fetch lesson: %w", err))
	}
	if len(lessons) == 0 {
		return false, apierr.NotFound(fmt.Errorf("lesson not found"))
	}
	record, err := s.completionRepo.GetByAccountAndLessonID(ctx, nil, accountID, lessonID)
	if err != nil {
		return false, apierr.DataUnavailable(fmt.Errorf("fetch completion record: %w", err))
	}
	return gateSatisfied(lessons[0], record, watchedSeconds, time.Now()), nil
}

// RecordProgress upserts the single completion row for the pair.
// Completion is monotonic: markComplete=false on an already complete
// record is ignored rather than rejected, watched seconds and the
// last-viewed timestamp still update.
func (s *lessonGateService) RecordProgress(ctx context.Context, accountID, lessonID uuid.UUID, watchedSeconds int, markComplete bool) (*types.CompletionRecord, error) {
	if accountID == uuid.Nil {
		return nil, apierr.NotAuthenticated(fmt.Errorf("account id is required"))
	}
	if lessonID == uuid.Nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("lesson id is required"))
	}
	if watchedSeconds < 0 {
		return nil, apierr.InvalidArgument(fmt.Errorf("watched seconds must not be negative"))
	}

	lessons, err := s.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("fetch lesson: %w", err))
	}
	if len(lessons) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("lesson not found"))
	}
	lesson := lessons[0]

	existing, err := s.completionRepo.GetByAccountAndLessonID(ctx, nil, accountID, lessonID)
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("fetch completion record: %w", err))
	}

	now := time.Now()
	if markComplete && !gateSatisfied(lesson, existing, watchedSeconds, now) {
		return nil, apierr.GateNotSatisfied(fmt.Errorf(
			"lesson requires %d watched seconds, got %d", lesson.RequiredSeconds(), watchedSeconds))
	}

	row := &types.CompletionRecord{
		AccountID:      accountID,
		LessonID:       lessonID,
		WatchedSeconds: watchedSeconds,
		LastViewedAt:   &now,
	}
	if existing != nil {
		row.ID = existing.ID
		row.FirstOpenedAt = existing.FirstOpenedAt
		row.IsComplete = existing.IsComplete
		row.CompletedAt = existing.CompletedAt
	}
	if row.FirstOpenedAt == nil {
		row.FirstOpenedAt = &now
	}
	if markComplete && !row.IsComplete {
		row.IsComplete = true
		row.CompletedAt = &now
	}

	if err := s.completionRepo.Upsert(ctx, nil, row); err != nil {
		return nil, apierr.PersistenceFailure(fmt.Errorf("upsert completion record: %w", err))
	}

	if s.refreshBus != nil {
		if _, bErr := s.refreshBus.Bump(ctx, accountID.String()); bErr != nil {
			// The write landed; the refresh signal is advisory.
			s.log.Warn("Progress refresh bump failed", "error", bErr, "account_id", accountID.String())
		}
	}
	return row, nil
}
