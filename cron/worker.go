package cron

import (
	"context"
	"log"
	"time"

	"fixmo/config"
	"fixmo/services/schedule"
	"fixmo/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeWeeklySync = "schedule:weekly_sync"

// InitSyncWorker runs the async worker in background. The weekly sync task
// is safe to run repeatedly, so at-least-once delivery is fine.
func InitSyncWorker(engine schedule.Engine) *asynq.Server {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPass,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeWeeklySync, handleWeeklySyncTask(engine))

	go func() {
		log.Println("[SyncWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SyncWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)
				if attempts == maxAttempts {
					log.Fatal("[SyncWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	return srv
}

func handleWeeklySyncTask(engine schedule.Engine) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		report, err := engine.RunWeeklySync(ctx)
		if err != nil {
			// Per-item failures were already logged and tolerated; an error
			// here means the run itself could not proceed. Let asynq retry.
			logger.Error("[SyncWorker] weekly sync run failed", zap.Error(err))
			return err
		}
		logger.Info("[SyncWorker] weekly sync run finished",
			zap.Int64("flagsCleared", report.FlagsCleared),
			zap.Int64("finished", report.Finished),
			zap.Int("flagsRestored", report.FlagsRestored),
		)
		return nil
	}
}

// StartSyncScheduler enqueues the weekly sync task on a fixed interval and
// once at startup, so a freshly booted instance reconciles immediately.
func StartSyncScheduler(ctx context.Context, interval time.Duration) {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPass,
		DB:       config.AppConfig.RedisQueueDB,
	})

	enqueue := func() {
		task := asynq.NewTask(TypeWeeklySync, nil)
		if _, err := client.Enqueue(task, asynq.MaxRetry(3), asynq.Unique(interval/2)); err != nil {
			log.Printf("[SyncScheduler] failed to enqueue weekly sync: %v", err)
		}
	}

	go func() {
		defer client.Close()

		enqueue()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[SyncScheduler] shutdown signal received.")
				return
			case <-ticker.C:
				enqueue()
			}
		}
	}()
}
