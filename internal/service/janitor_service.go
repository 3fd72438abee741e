package service

import (
	"context"
	"time"

	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/repository/unitofwork"

	"github.com/robfig/cron"
)

const janitorSchedule = "@every 1h"

// JanitorService purges expired sessions and verification tokens.
type JanitorService struct {
	uowFactory unitofwork.RepositoryFactory
	cron       *cron.Cron
	logger     logger.ILogger
}

func NewJanitorService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *JanitorService {
	return &JanitorService{
		uowFactory: uowFactory,
		cron:       cron.New(),
		logger:     log,
	}
}

func (j *JanitorService) Start() error {
	if err := j.cron.AddFunc(janitorSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, _, err := j.PurgeExpired(ctx, time.Now().UTC()); err != nil {
			j.logger.Error("Janitor", "Purge failed", map[string]interface{}{"error": err.Error()})
		}
	}); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("Janitor", "Scheduled cleanup "+janitorSchedule, nil)
	return nil
}

func (j *JanitorService) Stop() {
	j.cron.Stop()
}

func (j *JanitorService) PurgeExpired(ctx context.Context, now time.Time) (sessions, tokens int64, err error) {
	uow := j.uowFactory.NewUnitOfWork(ctx)
	if sessions, err = uow.SessionRepository().DeleteExpired(ctx, now); err != nil {
		return 0, 0, err
	}
	if tokens, err = uow.UserRepository().DeleteExpiredVerificationTokens(ctx, now); err != nil {
		return sessions, 0, err
	}
	if sessions > 0 || tokens > 0 {
		j.logger.Info("Janitor", "Purged expired rows", map[string]interface{}{"sessions": sessions, "tokens": tokens})
	}
	return sessions, tokens, nil
}
