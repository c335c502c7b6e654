package main

import (
	"context"
	"log"
	"net/http"

	"tutor-bot/internal/config"
	"tutor-bot/internal/handle"
	"tutor-bot/internal/httpserver"
	"tutor-bot/internal/llm"
	"tutor-bot/internal/llm/deepseek"
	"tutor-bot/internal/llm/gemini"
	"tutor-bot/internal/store"
)

func main() {
	cfg := config.Load()

	// --- Sessions: Postgres when configured, in-memory otherwise ---
	var sessions store.Store
	var ping func(context.Context) error

	if dsn := config.ResolveDSN(); dsn != "" {
		db, err := store.Open(dsn)
		if err != nil {
			log.Fatalf("store.Open: %v", err)
		}
		log.Printf("db connected: %s", config.SafeDSNSummary(dsn))
		sessions = store.NewSessionRepo(db, cfg.SessionMaxAge)
		ping = db.PingContext
	} else {
		log.Printf("no database configured; sessions are held in memory")
		sessions = store.NewMemory()
	}

	engines := &llm.Engines{
		Gemini: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
	}
	if cfg.DeepseekAPIKey != "" {
		engines.Deepseek = deepseek.New(cfg.DeepseekAPIKey, cfg.DeepseekModel, cfg.DeepseekBaseURL)
	}
	def, err := engines.Get(cfg.DefaultEngine)
	if err != nil {
		log.Fatalf("DEFAULT_ENGINE: %v", err)
	}

	h := handle.New(engines, llm.NewManager(def), sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpserver.Healthz(ping))
	mux.HandleFunc("/v1/turn", h.Turn)
	mux.HandleFunc("/v1/session/", h.Session)

	addr := ":" + cfg.Port
	log.Fatal(httpserver.Start(addr, mux))
}
