package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"auctionhouse-backend/internal/config"
	"auctionhouse-backend/internal/shared"
	"auctionhouse-backend/internal/shared/utils"
	"auctionhouse-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterAuctionJobs() error {
	if err := s.registerResolveExpiredJob(); err != nil {
		return err
	}

	if err := s.registerNotifyEndingSoonJob(); err != nil {
		return err
	}

	if err := s.registerCleanupOldNotificationsJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Resolve Expired Auctions (Every minute)
// ================================================
// The sweep is the upper bound on how stale an expired-but-active auction
// can get. Conditional status updates keep overlapping runs safe.
func (s *Scheduler) registerResolveExpiredJob() error {
	task, err := utils.MarshalTask(shared.TypeResolveExpiredAuctions, shared.ResolveExpiredPayload{
		BatchSize: s.jobConfig.ResolveBatchSize,
	})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		"* * * * *", // every minute
		task,
		asynq.Queue(shared.QueueAuction),
		asynq.MaxRetry(1),
		asynq.Timeout(50*time.Second),
	)

	if err != nil {
		logger.Error("Failed to register ResolveExpiredAuctions job", err)
		return err
	}

	logger.Info("Registered ResolveExpiredAuctions: every minute", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 2: Notify Ending Soon (Every 5 minutes)
// ================================================
// Idempotency keys absorb the window overlap between runs, so each bidder
// hears about each closing auction once.
func (s *Scheduler) registerNotifyEndingSoonJob() error {
	task, err := utils.MarshalTask(shared.TypeNotifyEndingSoon, shared.NotifyEndingSoonPayload{
		WindowMinutes: s.jobConfig.EndingSoonWindowMin,
	})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		"*/5 * * * *", // every 5 minutes
		task,
		asynq.Queue(shared.QueueNotification),
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register NotifyEndingSoon job", err)
		return err
	}

	logger.Info("Registered NotifyEndingSoon: every 5 minutes", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 3: Cleanup Old Read Notifications (Daily at 3 AM)
// ================================================
func (s *Scheduler) registerCleanupOldNotificationsJob() error {
	task, err := utils.MarshalTask(shared.TypeCleanupOldNotifications, shared.CleanupOldNotificationsPayload{
		OlderThanDays: s.jobConfig.CleanupRetentionDays,
	})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		"0 3 * * *", // daily at 3 AM, low traffic
		task,
		asynq.Queue(shared.QueueNotification),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register CleanupOldNotifications job", err)
		return err
	}

	logger.Info("Registered CleanupOldNotifications: daily at 3 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
