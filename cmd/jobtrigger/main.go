// Command jobtrigger asks a running server to roll over assessments and then
// apply pending payments, for deployments where an external scheduler owns
// timing and ROLLOVER_SCHEDULE is left idle.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"firedues/internal/jobclient"
	"firedues/internal/logger"
	"firedues/internal/models"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	baseURL := flag.String("url", envOr("JOBS_API_URL", "http://localhost:8080"), "server base URL")
	year := flag.Int("year", 0, "assessment year (default: the server's current year)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall timeout")
	flag.Parse()

	apiKey := os.Getenv("JOBS_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "JOBS_API_KEY is required")
		os.Exit(1)
	}

	var y *int
	if *year != 0 {
		y = year
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := jobclient.NewClient(*baseURL, apiKey, &http.Client{Timeout: *timeout})
	os.Exit(run(ctx, c, y))
}

// run returns the process exit code: 1 when a request fails and 2 when the
// server ran a job that did not succeed.
func run(ctx context.Context, c *jobclient.Client, year *int) int {
	log := logger.Get()

	rollover, err := c.RunRollover(ctx, year)
	if err != nil {
		log.Errorw("Rollover request failed", "error", err)
		return 1
	}
	log.Infow("Rollover finished", "run_id", rollover.ID, "year", rollover.Year, "status", rollover.Status, "created", rollover.Created)
	if rollover.Status != models.JobRunStatusSucceeded {
		log.Warnw("Skipping pending sweep after unsuccessful rollover", "error", rollover.Error)
		return 2
	}

	// Sweep the year the rollover actually ran for.
	pending, err := c.RunPending(ctx, &rollover.Year)
	if err != nil {
		log.Errorw("Pending sweep request failed", "error", err)
		return 1
	}
	log.Infow("Pending sweep finished", "run_id", pending.ID, "year", pending.Year, "status", pending.Status, "applied", pending.Applied)
	if pending.Status != models.JobRunStatusSucceeded {
		return 2
	}
	return 0
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
