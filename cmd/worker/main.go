package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"tool-pulse/collectors"
	"tool-pulse/config"
	"tool-pulse/db"
	"tool-pulse/eventbus"
	"tool-pulse/logger"
	"tool-pulse/models"
	"tool-pulse/pipeline"
	"tool-pulse/repositories"
	"tool-pulse/services"
	"tool-pulse/summarizer"
)

func main() {
	force := flag.Bool("force", false, "run even if the rerun cadence has not elapsed")
	flag.Parse()

	config.InitApp()
	cfg := config.GetConfig()
	if os.Getenv("LOG_LEVEL") != "" {
		logger.InitFromEnv("LOG_LEVEL")
	} else {
		logger.Init(cfg.Logging.Level)
	}

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal("failed to initialize MongoDB:", err)
	}

	cols, err := buildCollectors(ctx, cfg.Sentiment)
	if err != nil {
		log.Fatal("failed to build collectors:", err)
	}
	if len(cols) == 0 {
		log.Fatal("no sources enabled in config.yaml (key: sentiment)")
	}

	llmClient, err := summarizer.NewGeminiClient(ctx)
	if err != nil {
		log.Fatal("failed to initialize LLM client:", err)
	}
	sum := summarizer.New(llmClient, cfg.LLM)

	subjectRepo := repositories.NewSubjectRepository(db.Database())
	runRepo := repositories.NewSentimentRunRepository(db.Database())
	aggRepo := repositories.NewSentimentAggregateRepository(db.Database())
	aiLogRepo := repositories.NewAILogRepository(db.Database())

	var events pipeline.EventPublisher
	if cfg.Kafka.Enabled {
		bus, err := eventbus.NewKafkaEventBus(eventbus.GetBrokers())
		if err != nil {
			log.Fatal("failed to initialize Kafka event bus:", err)
		}
		defer bus.Close()
		events = bus
	}

	runner := pipeline.NewRunner(cols, sum, runRepo, aggRepo, aiLogRepo, events)
	svc := services.NewSentimentService(subjectRepo, runRepo, aggRepo, runner)

	subjects := targetSubjects(cfg, flag.Args())
	if len(subjects) == 0 {
		log.Fatal("no subjects: configure subjects in config.yaml or pass slugs as arguments")
	}

	for _, sc := range subjects {
		subject, err := subjectRepo.UpsertBySlug(ctx, &models.Subject{
			Name:         sc.Name,
			Slug:         sc.Slug,
			SearchPhrase: sc.SearchPhrase,
		})
		if err != nil {
			log.Printf("failed to upsert subject %s: %v", sc.Slug, err)
			continue
		}

		if !*force {
			due, err := svc.ShouldRun(ctx, *subject, cfg.Sentiment.RerunDays)
			if err != nil {
				log.Printf("failed to check rerun cadence for %s: %v", sc.Slug, err)
				continue
			}
			if !due {
				log.Printf("skip %s: last aggregate is newer than %d days (use -force to override)", sc.Slug, cfg.Sentiment.RerunDays)
				continue
			}
		}

		result := runner.Run(ctx, *subject)
		encoded, _ := json.Marshal(result)
		log.Printf("run finished for %s: %s", sc.Slug, encoded)
	}
}

// buildCollectors assembles one collector per enabled source.
func buildCollectors(ctx context.Context, cfg config.SentimentConfig) ([]pipeline.Collector, error) {
	var cols []pipeline.Collector
	if cfg.Forum.Enabled {
		cols = append(cols, collectors.NewForumCollector(cfg))
	}
	if cfg.Social.Enabled {
		social, err := collectors.NewSocialCollector(cfg)
		if err != nil {
			return nil, err
		}
		cols = append(cols, social)
	}
	if cfg.Video.Enabled {
		video, err := collectors.NewVideoCollector(ctx, cfg)
		if err != nil {
			return nil, err
		}
		cols = append(cols, video)
	}
	return cols, nil
}

// targetSubjects resolves which subjects this invocation covers: positional
// slug arguments filter the configured list, no arguments means all of it.
func targetSubjects(cfg config.AppConfig, slugs []string) []config.SubjectConfig {
	if len(slugs) == 0 {
		return cfg.Subjects
	}
	bySlug := make(map[string]config.SubjectConfig, len(cfg.Subjects))
	for _, sc := range cfg.Subjects {
		bySlug[sc.Slug] = sc
	}
	var out []config.SubjectConfig
	for _, slug := range slugs {
		if sc, ok := bySlug[slug]; ok {
			out = append(out, sc)
			continue
		}
		log.Printf("slug %s not in config.yaml, running with slug as name", slug)
		out = append(out, config.SubjectConfig{Name: slug, Slug: slug})
	}
	return out
}
