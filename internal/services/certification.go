package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/apierr"
	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/repos"
	"github.com/siplanskills/backend/internal/types"
)

// CertificationState is derived on demand from the track completion
// row and the account's passed quiz attempts; nothing here writes.
type CertificationState struct {
	TrackCompleted bool `json:"track_completed"`
	BronzeUnlocked bool `json:"bronze_unlocked"`
	BronzeApproved bool `json:"bronze_approved"`
	PrataUnlocked  bool `json:"prata_unlocked"`
	PrataApproved  bool `json:"prata_approved"`
	OuroUnlocked   bool `json:"ouro_unlocked"`
}

type CertificationService interface {
	ComputeCertification(ctx context.Context, accountID, trackID uuid.UUID) (*CertificationState, error)
}

type certificationService struct {
	db          *gorm.DB
	log         *logger.Logger
	quizRepo    repos.QuizRepo
	attemptRepo repos.QuizAttemptRepo
	trackRepo   repos.TrackCompletionRepo
}

func NewCertificationService(
	db *gorm.DB,
	log *logger.Logger,
	quizRepo repos.QuizRepo,
	attemptRepo repos.QuizAttemptRepo,
	trackRepo repos.TrackCompletionRepo,
) CertificationService {
	serviceLog := log.With("service", "CertificationService")
	return &certificationService{
		db:          db,
		log:         serviceLog,
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		trackRepo:   trackRepo,
	}
}

// deriveCertification applies the tier ladder: bronze opens when the
// track is completed, prata when bronze is approved, ouro when prata
// is approved. A tier whose quiz is not configured is inapplicable and
// stays locked, which also keeps every later tier locked.
func deriveCertification(trackCompleted, bronzeConfigured, bronzePassed, prataConfigured, prataPassed bool) CertificationState {
	state := CertificationState{TrackCompleted: trackCompleted}

	if bronzeConfigured {
		state.BronzeUnlocked = trackCompleted
		state.BronzeApproved = state.BronzeUnlocked && bronzePassed
	}
	if prataConfigured {
		state.PrataUnlocked = state.BronzeApproved
		state.PrataApproved = state.PrataUnlocked && prataPassed
	}
	state.OuroUnlocked = state.PrataApproved
	return state
}

func (s *certificationService) ComputeCertification(ctx context.Context, accountID, trackID uuid.UUID) (*CertificationState, error) {
	if accountID == uuid.Nil {
		return nil, apierr.NotAuthenticated(fmt.Errorf("account id is required"))
	}
	if trackID == uuid.Nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("track id is required"))
	}

	completion, err := s.trackRepo.GetByAccountAndProductID(ctx, nil, accountID, trackID)
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("fetch track completion: %w", err))
	}

	bronzeQuiz, err := s.quizRepo.GetByProductAndTier(ctx, nil, trackID, types.QuizTierBronze)
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("fetch bronze quiz: %w", err))
	}
	prataQuiz, err := s.quizRepo.GetByProductAndTier(ctx, nil, trackID, types.QuizTierPrata)
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("fetch prata quiz: %w", err))
	}

	bronzePassed := false
	if bronzeQuiz != nil {
		bronzePassed, err = s.attemptRepo.HasPassed(ctx, nil, accountID, bronzeQuiz.ID)
		if err != nil {
			return nil, apierr.DataUnavailable(fmt.Errorf("check bronze attempts: %w", err))
		}
	}
	prataPassed := false
	if prataQuiz != nil {
		prataPassed, err = s.attemptRepo.HasPassed(ctx, nil, accountID, prataQuiz.ID)
		if err != nil {
			return nil, apierr.DataUnavailable(fmt.Errorf("check prata attempts: %w", err))
		}
	}

	state := deriveCertification(
		completion != nil,
		bronzeQuiz != nil, bronzePassed,
		prataQuiz != nil, prataPassed,
	)
	return &state, nil
}
