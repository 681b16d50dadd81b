package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/BerylCAtieno/rfm-workbench/internal/assistant"
	"github.com/BerylCAtieno/rfm-workbench/internal/config"
	"github.com/BerylCAtieno/rfm-workbench/internal/session"
	"github.com/BerylCAtieno/rfm-workbench/internal/web"
)

func main() {
	cfgFile := flag.String("config", "", "Optional config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	reference, _ := cfg.Reference()

	dialer := assistant.GeminiDialer{
		Model:       cfg.GeminiModel,
		Temperature: &cfg.GeminiTemperature,
		TopP:        &cfg.GeminiTopP,
		MaxTokens:   &cfg.GeminiMaxTokens,
	}

	if cfg.GeminiAPIKey == "" {
		log.Printf("WARN: GEMINI_API_KEY is not set; users must enter their own key on the chat page")
	} else if cfg.GeminiValidateModel {
		if err := checkModel(dialer, cfg.GeminiAPIKey); err != nil {
			log.Fatalf("Gemini model check failed: %v", err)
		}
		log.Printf("Gemini model %s is available", cfg.GeminiModel)
	}

	chat := assistant.NewChat(dialer, cfg.GeminiModel, cfg.GeminiAPIKey)
	handler := web.NewHandler(session.NewStore(cfg.SessionTTL), chat, web.Options{
		Reference:       reference,
		HighValueScore:  cfg.HighValueScore,
		LeaderboardSize: cfg.LeaderboardSize,
		MaxUploadBytes:  cfg.MaxUploadMB << 20,
		SessionTTL:      cfg.SessionTTL,
	})

	router := web.NewRouter(handler)

	log.Printf("RFM Workbench starting on port %s (model %s, reference date %s)", cfg.Port, cfg.GeminiModel, cfg.ReferenceDate)
	log.Printf("Page available at: http://localhost:%s/", cfg.Port)
	log.Printf("API available at: http://localhost:%s/api", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func checkModel(dialer assistant.GeminiDialer, apiKey string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := dialer.NewClient(ctx, apiKey)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.CheckModel(ctx)
}
