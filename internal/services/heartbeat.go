package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/apierr"
	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/repos"
	"github.com/siplanskills/backend/internal/requestdata"
)

type HeartbeatService interface {
	Touch(ctx context.Context) error
	StartSweeper(ctx context.Context, interval, idleTimeout time.Duration) (stop func())
}

type heartbeatService struct {
	db        *gorm.DB
	log       *logger.Logger
	tokenRepo repos.AccountTokenRepo
}

func NewHeartbeatService(db *gorm.DB, log *logger.Logger, tokenRepo repos.AccountTokenRepo) HeartbeatService {
	serviceLog := log.With("service", "HeartbeatService")
	return &heartbeatService{db: db, log: serviceLog, tokenRepo: tokenRepo}
}

// Touch refreshes the liveness timestamp of the calling session.
// Clients send this on a fixed interval and on window focus.
func (s *heartbeatService) Touch(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.NotAuthenticated(fmt.Errorf("no session token in request context"))
	}
	if err := s.tokenRepo.TouchLastSeen(ctx, nil, rd.TokenString, time.Now()); err != nil {
		return apierr.PersistenceFailure(fmt.Errorf("touch session liveness: %w", err))
	}
	return nil
}

// StartSweeper runs the stale-session sweep on a repeating timer. The
// returned stop function is idempotent and must be called on every
// shutdown path so the ticker goroutine never leaks.
func (s *heartbeatService) StartSweeper(ctx context.Context, interval, idleTimeout time.Duration) (stop func()) {
	sweepCtx, cancel := context.WithCancel(ctx)
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-idleTimeout)
				removed, err := s.tokenRepo.DeleteIdleSince(sweepCtx, nil, cutoff)
				if err != nil {
					s.log.Warn("Session sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					s.log.Info("Swept stale sessions", "removed", removed)
				}
			}
		}
	}()
	return cancel
}
