package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/rs/cors"

	"tool-pulse/api/router"
	"tool-pulse/collectors"
	"tool-pulse/config"
	"tool-pulse/db"
	"tool-pulse/logger"
	"tool-pulse/pipeline"
	"tool-pulse/repositories"
	"tool-pulse/services"
	"tool-pulse/summarizer"
)

func main() {
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

	// The API keeps a runner so POST .../sentiment/runs can trigger the
	// pipeline in-process. Sources are built the same way the worker does.
	llmClient, err := summarizer.NewGeminiClient(ctx)
	if err != nil {
		log.Fatal("failed to initialize LLM client:", err)
	}
	sum := summarizer.New(llmClient, cfg.LLM)

	cols, err := buildCollectors(ctx, cfg.Sentiment)
	if err != nil {
		log.Fatal("failed to build collectors:", err)
	}

	subjectRepo := repositories.NewSubjectRepository(db.Database())
	runRepo := repositories.NewSentimentRunRepository(db.Database())
	aggRepo := repositories.NewSentimentAggregateRepository(db.Database())
	aiLogRepo := repositories.NewAILogRepository(db.Database())

	runner := pipeline.NewRunner(cols, sum, runRepo, aggRepo, aiLogRepo, nil)
	svc := services.NewSentimentService(subjectRepo, runRepo, aggRepo, runner)

	r := router.New(svc)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	addr := ":8080"
	if v := os.Getenv("API_ADDR"); v != "" {
		addr = v
	}
	if err := http.ListenAndServe(addr, c.Handler(r)); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

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

func allowedOrigins() []string {
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		return []string{v}
	}
	return []string{"*"}
}
