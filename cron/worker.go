package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"fieldserve/config"
	"fieldserve/services/allocation"
	"fieldserve/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// Nightly sweep defaults: run at 02:00 local time over the next 14 days of
// confirmed bookings.
const (
	sweepHour       = 2
	sweepWindowDays = 14
)

// InitRiskWorker runs the async worker in background and seeds the nightly
// risk sweep chain.
func InitRiskWorker(allocSvc allocation.AllocationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	client := asynq.NewClient(redisOpts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRiskSweep, handleRiskSweep(allocSvc, client))

	// Start Redis health monitor
	go monitorRedisConnection()

	if err := scheduleNextSweep(client, time.Now()); err != nil {
		log.Printf("[RiskWorker] ❌ Failed to schedule initial sweep: %v", err)
	}

	// Start async worker with retry logic
	go func() {
		log.Println("[RiskWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[RiskWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[RiskWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleRiskSweep evaluates cancellation risk across upcoming bookings and
// re-enqueues the next night's sweep.
func handleRiskSweep(allocSvc allocation.AllocationService, client *asynq.Client) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.RiskSweepPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[RiskSweep] 🔴 Invalid payload: %v", err)
			return err
		}
		if p.WithinDays <= 0 {
			p.WithinDays = sweepWindowDays
		}

		summaries, failed, err := allocSvc.SummarizeUpcomingRisk(ctx, p.WithinDays)
		if err != nil {
			log.Printf("[RiskSweep] ❌ Sweep failed: %v", err)
			return err
		}

		high := 0
		for _, s := range summaries {
			if s.Tier == "high" {
				high++
			}
		}
		log.Printf("[RiskSweep] ⏰ Evaluated %d bookings (%d high risk, %d skipped)", len(summaries), high, failed)

		if err := scheduleNextSweep(client, time.Now()); err != nil {
			log.Printf("[RiskSweep] ❌ Failed to schedule next sweep: %v", err)
		}
		return nil
	}
}

func scheduleNextSweep(client *asynq.Client, now time.Time) error {
	task, opts, err := tasks.NewRiskSweepTask(tasks.RiskSweepPayload{WithinDays: sweepWindowDays}, tasks.NextSweepTime(now, sweepHour))
	if err != nil {
		return err
	}
	_, err = client.Enqueue(task, opts...)
	return err
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[RiskWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
