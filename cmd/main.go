package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Gopher0727/Ideario/config"
	"github.com/Gopher0727/Ideario/internal/classify"
	classifygemini "github.com/Gopher0727/Ideario/internal/classify/gemini"
	"github.com/Gopher0727/Ideario/internal/engine"
	"github.com/Gopher0727/Ideario/internal/hierarchy"
	"github.com/Gopher0727/Ideario/internal/journal"
	"github.com/Gopher0727/Ideario/internal/metrics"
	"github.com/Gopher0727/Ideario/internal/pkg/logger"
	redispkg "github.com/Gopher0727/Ideario/internal/pkg/redis"
	"github.com/Gopher0727/Ideario/internal/remind"
	"github.com/Gopher0727/Ideario/internal/resolve"
	"github.com/Gopher0727/Ideario/internal/summary"
	summarygemini "github.com/Gopher0727/Ideario/internal/summary/gemini"
	"github.com/Gopher0727/Ideario/internal/utils"
	"github.com/Gopher0727/Ideario/utils/ratelimit"
	"github.com/Gopher0727/Ideario/utils/snowflake"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	// Load configuration; a missing file means defaults.
	cfg := config.Default()
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	appLog, err := logger.New(&cfg.Logging)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer appLog.Close()

	ctx := context.Background()

	// Redis is optional; without it rate limiting and the summary cache
	// run in memory.
	var redisClient *redispkg.Client
	if cfg.Redis.Enabled {
		redisClient, err = redispkg.NewClient(&cfg.Redis)
		if err != nil {
			appLog.Warn("redis unavailable, using in-memory fallbacks", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewTokenBucketLimiter(redisClient.GetClient(), appLog.Logger, true)
	} else {
		limiter = ratelimit.NewLocalLimiter()
	}
	rlCfg := &ratelimit.Config{
		ClassifyPerMinute:  cfg.RateLimit.ClassifyPerMinute,
		SummarizePerMinute: cfg.RateLimit.SummarizePerMinute,
	}

	// Hierarchy store with snowflake IDs.
	gen, err := snowflake.NewGenerator(snowflake.Config{WorkerID: 1})
	if err != nil {
		appLog.Fatal("init id generator", zap.Error(err))
	}
	store := hierarchy.NewStore(gen)
	entities := resolve.New(cfg.Resolver.SimilarityThreshold, cfg.Resolver.AmbiguityMargin)

	// Classification backend: the Gemini adapter when configured and
	// keyed, the rule classifier otherwise.
	apiKey := os.Getenv("GEMINI_API_KEY")
	var classifier classify.Classifier = classify.StaticClassifier{}
	if cfg.Classify.Backend == "gemini" {
		if apiKey == "" {
			appLog.Warn("GEMINI_API_KEY not set, falling back to the rule classifier")
		} else {
			gc, err := classifygemini.New(ctx, classifygemini.Config{
				APIKey:      apiKey,
				Model:       cfg.Classify.Model,
				Timeout:     time.Duration(cfg.Classify.TimeoutSeconds) * time.Second,
				CallsPerMin: ratelimit.RuleFor(ratelimit.OpClassify, rlCfg).Limit,
			}, limiter, appLog.Logger)
			if err != nil {
				appLog.Warn("gemini classifier unavailable, falling back to the rule classifier", zap.Error(err))
			} else {
				classifier = gc
			}
		}
	}

	// Summaries: the Gemini summarizer when enabled and keyed, canned
	// texts otherwise. The cache keeps generated paragraphs across
	// identical idea sets.
	var summarizer summary.Summarizer = summary.StaticSummarizer{}
	if cfg.Summary.Enabled {
		if apiKey == "" {
			appLog.Warn("GEMINI_API_KEY not set, summaries use canned texts")
		} else {
			gs, err := summarygemini.New(ctx, summarygemini.Config{
				APIKey:      apiKey,
				Model:       cfg.Summary.Model,
				Timeout:     time.Duration(cfg.Summary.TimeoutSeconds) * time.Second,
				CallsPerMin: ratelimit.RuleFor(ratelimit.OpSummarize, rlCfg).Limit,
			}, limiter, appLog.Logger)
			if err != nil {
				appLog.Warn("gemini summarizer unavailable, summaries use canned texts", zap.Error(err))
			} else {
				summarizer = gs
			}
		}
	}
	var cache summary.Cache
	if redisClient != nil {
		cache = summary.NewRedisCache(redisClient.GetClient(),
			time.Duration(cfg.Summary.CacheTTLHours)*time.Hour)
	}
	refresher := summary.NewRefresher(store, summarizer, cache, appLog.Logger)

	// Note history.
	var noteJournal journal.Journal
	if cfg.Journal.Path != "" {
		j, err := journal.OpenSQLite(cfg.Journal.Path, appLog.Logger)
		if err != nil {
			appLog.Warn("journal unavailable, history disabled", zap.Error(err))
		} else {
			defer j.Close()
			noteJournal = j
		}
	}

	m := metrics.New()

	eng, err := engine.New(engine.Config{
		Store:      store,
		Classifier: classifier,
		Entities:   entities,
		Journal:    noteJournal,
		Metrics:    m,
		Logger:     appLog.Logger,
	})
	if err != nil {
		appLog.Fatal("init engine", zap.Error(err))
	}

	// Reminder delivery: the scheduler polls for due reminders and
	// prints them through the worker pool.
	pool := utils.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appLog.Logger)
	pool.Start()
	defer pool.Stop()

	notifier := remind.NotifierFunc(func(r hierarchy.Reminder) {
		printReminderDue(r)
		m.ReminderFired()
	})
	scheduler := remind.NewScheduler(store, notifier, pool, cfg.Scheduler.Interval(), appLog.Logger)
	scheduler.Start()
	defer scheduler.Stop()

	c := &console{
		engine:    eng,
		store:     store,
		refresher: refresher,
		journal:   noteJournal,
		metrics:   m,
	}
	c.run(ctx)
}
