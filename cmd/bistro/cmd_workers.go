package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bistro-boss-server/app/jobs"
	"github.com/shashiranjanraj/bistro-boss-server/config"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/database"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/queue"
)

var queueWorkersFlag int

// bistro queue:work — drain the job queue without serving HTTP. Only
// useful with the redis driver; the memory driver does not outlive the
// server process that filled it.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start standalone queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if config.QueueDriver() == "redis" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     config.RedisAddr(),
				Password: config.RedisPassword(),
			})
			queue.SetDriver(queue.NewRedisDriver(rdb))
		}

		if db, err := database.Connect(ctx); err == nil {
			queue.UseCollection(db.DB.Collection("failed_jobs"))
			defer db.Close(context.Background())
		}

		jobs.Register()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 4
		}

		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Println("\nQueue worker stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 4, "Number of concurrent workers")
}
