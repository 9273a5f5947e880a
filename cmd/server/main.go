package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"gemini-relay/internal/config"
	"gemini-relay/internal/handlers"
	"gemini-relay/internal/router"
	"gemini-relay/internal/services"
)

var (
	envFile string
	addr    string
)

func main() {
	pflag.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	pflag.StringVar(&addr, "addr", "", "listen address (default: HOST:PORT)")
	pflag.Parse()

	log.Println("🚀 Starting Gemini Relay...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load(envFile)
	if addr == "" {
		addr = cfg.Addr()
	}
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(context.Background(), services.GeminiConfig{
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		Endpoint:       cfg.GeminiEndpoint,
		ConcurrentReqs: cfg.GeminiConcurrentReqs,
	})
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Printf("✓ Gemini client initialized (model %s)", geminiService.ModelName())

	// ──── Step 3: Initialize Handlers ────
	chatService, err := services.NewChatService(geminiService)
	if err != nil {
		log.Fatalf("✗ Chat service initialization failed: %v", err)
	}
	chatHandler := handlers.NewChatHandler(chatService)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(chatHandler, cfg.AllowedOrigins)

	// No WriteTimeout: provider calls are not bounded.
	server := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Gemini Relay ready on http://%s (env %s)", addr, cfg.Env)
	log.Printf("  Chat: POST http://%s/chat", addr)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
