package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tutor-bot/internal/config"
	"tutor-bot/internal/httpserver"
	"tutor-bot/internal/llm"
	"tutor-bot/internal/llm/deepseek"
	"tutor-bot/internal/llm/gemini"
	"tutor-bot/internal/store"
	"tutor-bot/internal/telegram"
)

func main() {
	cfg := config.Load()

	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is empty")
	}

	// --- Sessions: Postgres when configured, in-memory otherwise ---
	var sessions store.Store
	var ping func(context.Context) error

	if dsn := config.ResolveDSN(); dsn != "" {
		db, err := store.Open(dsn)
		if err != nil {
			log.Fatalf("store.Open: %v", err)
		}
		log.Printf("db connected: %s", config.SafeDSNSummary(dsn))

		repo := store.NewSessionRepo(db, cfg.SessionMaxAge)
		sessions = repo
		ping = db.PingContext

		go purgeLoop(repo, cfg.SessionMaxAge)
	} else {
		log.Printf("no database configured; sessions are held in memory")
		sessions = store.NewMemory()
	}

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false

	// Engines
	engines := telegram.Engines{
		Gemini: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
	}
	if cfg.DeepseekAPIKey != "" {
		engines.Deepseek = deepseek.New(cfg.DeepseekAPIKey, cfg.DeepseekModel, cfg.DeepseekBaseURL)
	}

	registry := &llm.Engines{Gemini: engines.Gemini}
	if engines.Deepseek != nil {
		registry.Deepseek = engines.Deepseek
	}
	def, err := registry.Get(cfg.DefaultEngine)
	if err != nil {
		log.Fatalf("DEFAULT_ENGINE: %v", err)
	}

	r := &telegram.Router{
		Bot:      bot,
		Engines:  engines,
		Manager:  llm.NewManager(def),
		Sessions: sessions,
	}

	// ListenForWebhook registers on the DefaultServeMux, so healthz lives
	// there too.
	http.HandleFunc("/healthz", httpserver.Healthz(ping))

	addr := "0.0.0.0:" + cfg.Port

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(addr, bot, r, webhookURL)
	} else {
		startPollingMode(addr, bot, r)
	}
}

// ---------------- Modes -----------------

func startWebhookMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string) {
	// The token hash keeps the webhook path unguessable without leaking the
	// token itself.
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal(err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatal(err)
	}

	updates := bot.ListenForWebhook(path)

	go func() {
		for upd := range updates {
			r.HandleUpdate(upd)
		}
		log.Printf("webhook updates channel closed")
	}()

	log.Printf("webhook listening on %s%s", addr, path)
	log.Fatal(httpserver.Start(addr, nil))
}

func startPollingMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router) {
	// healthz is not required for polling but keeps deploys uniform.
	go func() {
		log.Fatal(httpserver.Start(addr, nil))
	}()

	runPolling(context.Background(), bot, r.HandleUpdate)
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

// retryDelayFromError picks the wait before the next GetUpdates attempt,
// honoring Telegram's "retry after N" hint when present.
func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return 2 * time.Second
		}
	}
	return 1 * time.Second
}

// runPolling long-polls for updates and never exits on transient errors.
func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Printf("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := retryDelayFromError(err)
			if d < baseDelay {
				d = baseDelay
			}
			if d > maxDelay {
				d = maxDelay
			}
			log.Printf("polling error: %v; retry in %v", err, d)
			time.Sleep(d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			time.Sleep(200 * time.Millisecond)
		}
	}
}

// ---------------- Helpers -----------------

// purgeLoop drops expired sessions once an hour so the table does not grow
// without bound.
func purgeLoop(repo *store.SessionRepo, maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}
	t := time.NewTicker(1 * time.Hour)
	defer t.Stop()
	for range t.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := repo.PurgeOlderThan(ctx, maxAge)
		cancel()
		if err != nil {
			log.Printf("[bot] purge sessions: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("[bot] purged %d expired sessions", n)
		}
	}
}

// shortHash is a small FNV-style hash, stable for a given token. Not
// cryptographic; the path just has to be unguessable from outside.
func shortHash(s string) string {
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
