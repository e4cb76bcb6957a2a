package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/apierr"
	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/repos"
	"github.com/siplanskills/backend/internal/types"
)

// Progress is the per-product aggregate shown next to each course.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
	Remaining int `json:"remaining"`
}

type ProgressService interface {
	FetchCompletions(ctx context.Context, accountID, productID uuid.UUID) ([]*types.CompletionRecord, error)
	FetchLessonIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
	ProductProgress(ctx context.Context, accountID, productID uuid.UUID) (*Progress, error)
}

type progressService struct {
	db             *gorm.DB
	log            *logger.Logger
	lessonRepo     repos.LessonRepo
	completionRepo repos.CompletionRecordRepo
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	lessonRepo repos.LessonRepo,
	completionRepo repos.CompletionRecordRepo,
) ProgressService {
	serviceLog := log.With("service", "ProgressService")
	return &progressService{
		db:             db,
		log:            serviceLog,
		lessonRepo:     lessonRepo,
		completionRepo: completionRepo,
	}
}

// ComputeProgress aggregates completion rows against a product's lesson
// list. Pure: duplicate rows for a lesson count once, rows for lessons
// outside the product are ignored, percent is round-half-up and 0 for
// an empty product.
func ComputeProgress(lessonIDs []uuid.UUID, completions []*types.CompletionRecord) Progress {
	inProduct := make(map[uuid.UUID]bool, len(lessonIDs))
	for _, id := range lessonIDs {
		inProduct[id] = true
	}

	completedSet := make(map[uuid.UUID]bool)
	for _, c := range completions {
		if c == nil || !c.IsComplete {
			continue
		}
		if !inProduct[c.LessonID] {
			continue
		}
		completedSet[c.LessonID] = true
	}

	total := len(lessonIDs)
	completed := len(completedSet)
	percent := 0
	if total > 0 {
		percent = int(math.Floor(float64(completed)/float64(total)*100 + 0.5))
	}
	remaining := total - completed
	if remaining < 0 {
		remaining = 0
	}
	return Progress{
		Total:     total,
		Completed: completed,
		Percent:   percent,
		Remaining: remaining,
	}
}

const (
	readRetryAttempts = 3
	readRetryBaseWait = 100 * time.Millisecond
)

// retryRead runs fn up to readRetryAttempts times with exponential
// backoff. Reads only; writes are never auto-retried.
func retryRead(ctx context.Context, fn func() error) error {
	var err error
	wait := readRetryBaseWait
	for attempt := 0; attempt < readRetryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == readRetryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

func (s *progressService) FetchCompletions(ctx context.Context, accountID, productID uuid.UUID) ([]*types.CompletionRecord, error) {
	if accountID == uuid.Nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("account id is required"))
	}
	if productID == uuid.Nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("product id is required"))
	}

	lessonIDs, err := s.FetchLessonIDs(ctx, productID)
	if err != nil {
		return nil, err
	}

	var records []*types.CompletionRecord
	err = retryRead(ctx, func() error {
		var rErr error
		records, rErr = s.completionRepo.GetByAccountAndLessonIDs(ctx, nil, accountID, lessonIDs)
		return rErr
	})
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("fetch completions: %w", err))
	}
	return records, nil
}

func (s *progressService) FetchLessonIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	if productID == uuid.Nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("product id is required"))
	}

	var ids []uuid.UUID
	err := retryRead(ctx, func() error {
		var rErr error
		ids, rErr = s.lessonRepo.IDsByProductID(ctx, nil, productID)
		return rErr
	})
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("fetch lesson ids: %w", err))
	}
	return ids, nil
}

// ProductProgress fetches the lesson list and the account's completion
// rows in parallel, then folds them through ComputeProgress.
func (s *progressService) ProductProgress(ctx context.Context, accountID, productID uuid.UUID) (*Progress, error) {
	if accountID == uuid.Nil {
		return nil, apierr.NotAuthenticated(fmt.Errorf("account id is required"))
	}
	if productID == uuid.Nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("product id is required"))
	}

	var lessonIDs []uuid.UUID
	var records []*types.CompletionRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.FetchLessonIDs(gctx, productID)
		if err != nil {
			return err
		}
		lessonIDs = ids
		return nil
	})
	g.Go(func() error {
		err := retryRead(gctx, func() error {
			lessons, lErr := s.lessonRepo.ListByProductID(gctx, nil, productID)
			if lErr != nil {
				return lErr
			}
			ids := make([]uuid.UUID, 0, len(lessons))
			for _, l := range lessons {
				ids = append(ids, l.ID)
			}
			var rErr error
			records, rErr = s.completionRepo.GetByAccountAndLessonIDs(gctx, nil, accountID, ids)
			return rErr
		})
		if err != nil {
			return apierr.DataUnavailable(fmt.Errorf("fetch completions: %w", err))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	progress := ComputeProgress(lessonIDs, records)
	return &progress, nil
}
