package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dulpromax/catalog-api/cmd/catalogctl/cli"
	"github.com/dulpromax/catalog-api/internal/app"
	"github.com/dulpromax/catalog-api/internal/catalog"
	"github.com/dulpromax/catalog-api/internal/catalog/packs"
	"github.com/dulpromax/catalog-api/internal/platform/cache"
	"github.com/dulpromax/catalog-api/internal/platform/db"
	"github.com/dulpromax/catalog-api/jobs"
)

const usage = `usage:
  catalogctl jobs trigger <catalog:reprice|catalog:warm> [--product ID] [--pages N]
  catalogctl jobs stats [--json]
  catalogctl jobs scheduled [--size N]
  catalogctl reprice [--product ID]
`

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	switch args[0] {
	case "jobs":
		return runJobs(ctx, cfg, args[1:], stdout, stderr)
	case "reprice":
		return runReprice(ctx, cfg, args[1:], stdout, stderr)
	default:
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}
}

func runJobs(ctx context.Context, cfg *app.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}
	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
	defer func() {
		_ = jobsCLI.Close()
	}()

	switch args[0] {
	case "trigger":
		fs := flag.NewFlagSet("jobs trigger", flag.ContinueOnError)
		fs.SetOutput(stderr)
		productID := fs.String("product", "", "reprice a single product")
		pages := fs.Int("pages", 0, "listing pages to warm")
		if len(args) < 2 {
			_, _ = fmt.Fprint(stderr, usage)
			return 2
		}
		if err := fs.Parse(args[2:]); err != nil {
			return 2
		}
		return jobsCLI.TriggerCommand(ctx, args[1], cli.TriggerOptions{ProductID: *productID, Pages: *pages}, stdout, stderr)
	case "stats":
		fs := flag.NewFlagSet("jobs stats", flag.ContinueOnError)
		fs.SetOutput(stderr)
		jsonOut := fs.Bool("json", false, "print JSON")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		return jobsCLI.StatsCommand(ctx, cli.StatsOptions{JSONOutput: *jsonOut, Stdout: stdout, Stderr: stderr})
	case "scheduled":
		fs := flag.NewFlagSet("jobs scheduled", flag.ContinueOnError)
		fs.SetOutput(stderr)
		size := fs.Int("size", 10, "page size")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		tasks, err := jobsCLI.ListScheduled(ctx, *size)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "jobs scheduled: %v\n", err)
			return 1
		}
		for _, task := range tasks {
			_, _ = fmt.Fprintf(stdout, "%s %s next=%s\n", task.ID, task.Type, task.NextProcessAt.Format("2006-01-02T15:04:05Z07:00"))
		}
		return 0
	default:
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}
}

// runReprice reconciles prices in-process, without going through the queue.
func runReprice(ctx context.Context, cfg *app.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("reprice", flag.ContinueOnError)
	fs.SetOutput(stderr)
	productID := fs.String("product", "", "reprice a single product")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := app.NewLogger(cfg)
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "reprice: %v\n", err)
		return 1
	}
	defer pool.Close()

	var catalogCache *catalog.Cache
	if redisClient, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, listing cache will not be invalidated", slog.Any("error", err))
	} else {
		defer func() {
			_ = redisClient.Close()
		}()
		catalogCache = catalog.NewCache(redisClient, cfg.CatalogCacheTTL, logger, nil)
	}

	repo := packs.NewRepository(pool)
	job := jobs.NewRepriceJob(repo, packs.NewSynchronizer(repo), catalogCache, logger, nil)
	result, err := job.Run(ctx, *productID)
	_, _ = fmt.Fprintf(stdout, "updated=%d unchanged=%d failed=%d\n", result.Updated, result.Unchanged, result.Failed)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "reprice: %v\n", err)
		return 1
	}
	return 0
}
