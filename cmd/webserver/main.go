package main

import (
	"context"
	"flag"
	"net/http"

	"quizbuilder"

	"github.com/gorilla/sessions"
)

var logger = quizbuilder.Logger()

func main() {
	configPath := flag.String("config", "", "YAML config file")
	verbose := flag.Bool("verbose", true, "Enable verbose debugging output")
	flag.Parse()

	quizbuilder.SetVerbose(*verbose)

	cfg, err := quizbuilder.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Model.APIKey == "" {
		logger.Fatal("OPENAI_API_KEY or GEMINI_API_KEY environment variable is required")
	}
	if cfg.SessionSecret == "" {
		logger.Fatal("SESSION_SECRET environment variable is required")
	}

	db, err := quizbuilder.OpenDB(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options.HttpOnly = true

	server, err := NewServer(cfg, db, store, func(ctx context.Context) (quizbuilder.LLM, error) {
		return quizbuilder.NewLLM(ctx, cfg.Model)
	})
	if err != nil {
		logger.Fatalf("Failed to create server: %v", err)
	}

	logger.Infof("Starting server on port %s", cfg.Port)
	logger.Fatal(http.ListenAndServe(":"+cfg.Port, server.Routes()))
}
