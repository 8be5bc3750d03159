package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/plantai/plantai"
)

var (
	port        = flag.String("port", "", "Port to listen on (overrides PORT)")
	llamaServer = flag.String("llama", "", "Address of running llama server, typically http://localhost:8080")
	llamaSeed   = flag.Int("seed", 385480504, "Random seed to llama")
	clipServer  = flag.String("clip", "", "Address of running zero-shot classification sidecar")
	localOnly   = flag.Bool("local-only", false, "Skip hosted endpoints, caption locally")
	useOpenAI   = flag.Bool("openai", false, "Use OpenAI for captioning")
)

type config struct {
	Port        string
	Token       string
	LocalOnly   bool
	LlamaServer string
	LlamaSeed   int
	ClipServer  string
	UseOpenAI   bool
}

func loadConfig() config {
	cfg := config{
		Port:        getEnv("PORT", "8000"),
		Token:       os.Getenv("HUGGING_FACE_TOKEN"),
		LocalOnly:   boolEnv("USE_LOCAL_ONLY"),
		LlamaServer: os.Getenv("LLAMA_SERVER"),
		LlamaSeed:   *llamaSeed,
		ClipServer:  os.Getenv("CLIP_SERVER"),
		UseOpenAI:   boolEnv("USE_OPENAI"),
	}

	// Flags win over the environment.
	if *port != "" {
		cfg.Port = *port
	}
	if *llamaServer != "" {
		cfg.LlamaServer = *llamaServer
	}
	if *clipServer != "" {
		cfg.ClipServer = *clipServer
	}
	if *localOnly {
		cfg.LocalOnly = true
	}
	if *useOpenAI {
		cfg.UseOpenAI = true
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func main() {
	flag.Parse()

	godotenv.Load() // .env is optional

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := loadConfig()

	d, err := plantai.Init(plantai.InitOptions{
		Token:       cfg.Token,
		LocalOnly:   cfg.LocalOnly,
		LlamaServer: cfg.LlamaServer,
		LlamaSeed:   cfg.LlamaSeed,
		ClipServer:  cfg.ClipServer,
		OpenAI:      cfg.UseOpenAI,
		HttpClient:  &http.Client{Timeout: 60 * time.Second},
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init failed")
	}

	srv := NewServer(d, cfg.Port, logger)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()
	logger.Info().Str("port", cfg.Port).Msg("plantai backend listening")

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
