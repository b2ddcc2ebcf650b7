// PromptWarden — budget-governed prompt optimization daemon.
// Entry point: wires all packages and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/promptwarden/internal/api"
	"github.com/yourusername/promptwarden/internal/budget"
	"github.com/yourusername/promptwarden/internal/config"
	"github.com/yourusername/promptwarden/internal/notify"
	"github.com/yourusername/promptwarden/internal/optimizer"
	"github.com/yourusername/promptwarden/internal/scheduler"
	"github.com/yourusername/promptwarden/internal/session"
	"github.com/yourusername/promptwarden/internal/store"
	"github.com/yourusername/promptwarden/internal/telegram"
	"github.com/yourusername/promptwarden/internal/template"
	"github.com/yourusername/promptwarden/internal/webhook"
	"github.com/yourusername/promptwarden/internal/ws"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// alertFan delivers every ledger alert to all sinks.
type alertFan []budget.AlertSink

func (f alertFan) PublishAlert(alert budget.Alert) {
	for _, s := range f {
		s.PublishAlert(alert)
	}
}

func main() {
	// ── 1. Logger ───────────────────────────────────────────────────────────
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	log.Infow("PromptWarden starting", "version", Version)

	// ── 2. Configuration (fail fast on range violations) ───────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("config load", "err", err)
	}
	log.Infow("config loaded",
		"port", cfg.Port,
		"model", cfg.Rates.Model,
		"daily_budget", cfg.Policy.DailyBudget,
		"monthly_budget", cfg.Policy.MonthlyBudget,
	)

	// ── 3. SQLite audit store ───────────────────────────────────────────────
	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalw("store open", "err", err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		log.Fatalw("store migrate", "err", err)
	}

	// Root context — cancelled on shutdown signal.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── 4. Template registry: built-ins first, then persisted custom ones ──
	registry := template.NewRegistry()
	for _, t := range template.Builtins() {
		registry.Add(t)
	}
	if custom, err := st.LoadTemplates(ctx); err != nil {
		log.Warnw("load custom templates", "err", err)
	} else {
		for _, t := range custom {
			registry.Add(t)
		}
	}
	scorer := template.NewScorer(registry)

	// ── 5. Session and profile stores ───────────────────────────────────────
	sessions := session.NewStore()
	profiles := session.NewProfiles()

	// ── 6. WebSocket hub ─────────────────────────────────────────────────────
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	// ── 7. Alert adapters: Telegram + webhook behind one dispatcher ─────────
	bot, err := telegram.New(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Warnw("telegram init (continuing without Telegram)", "err", err)
	}
	wh := webhook.New(cfg.AlertWebhookURL, log)
	dispatcher := notify.New(telegramSender(bot), wh, log)

	// ── 8. Budget ledger ─────────────────────────────────────────────────────
	model := budget.NewCostModel(cfg.Rates)
	ledger := budget.NewLedger(model, cfg.Policy, alertFan{dispatcher, hub}, log)

	// ── 9. Optimization pipeline ─────────────────────────────────────────────
	pipeline := optimizer.NewPipeline(
		ledger, registry, scorer, sessions, profiles,
		st, hub, optimizer.NoopHeuristic{},
		cfg.Policy.MaxTokensPerRequest, log,
	)

	// ── 10. Cron scheduler for period rollover ──────────────────────────────
	sched := scheduler.New(ledger, hub, log)
	if err := sched.Start(ctx); err != nil {
		log.Fatalw("scheduler start", "err", err)
	}

	// ── 11. HTTP router ──────────────────────────────────────────────────────
	mux := http.NewServeMux()
	api.SetupRoutes(mux, &api.Deps{
		Pipeline: pipeline,
		Ledger:   ledger,
		Registry: registry,
		Profiles: profiles,
		Store:    st,
		Hub:      hub,
		Log:      log,
	})
	mux.HandleFunc("GET /ws", hub.ServeWS)

	handler := loggingMiddleware(log, recoveryMiddleware(log, mux))

	// ── 12. Start HTTP server with graceful shutdown ─────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Infow("shutting down", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnw("http shutdown", "err", err)
		}
	}()

	log.Infow("listening", "addr", "http://0.0.0.0:"+cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalw("listen", "err", err)
	}
	log.Infow("PromptWarden stopped")
}

// loggingMiddleware logs each request.
func loggingMiddleware(log *zap.SugaredLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Infow("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

// recoveryMiddleware recovers from panics and returns 500.
func recoveryMiddleware(log *zap.SugaredLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				log.Errorw("panic", "recover", rv)
				http.Error(w, `{"success":false,"error":"internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// telegramSender wraps *telegram.Bot to implement notify.Sender.
// Returns nil if bot is nil (Telegram disabled).
func telegramSender(bot *telegram.Bot) notify.Sender {
	if bot == nil {
		return nil
	}
	return bot
}
