package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrylov/tgrelay/internal/ai"
	"github.com/mkrylov/tgrelay/internal/bot"
	"github.com/mkrylov/tgrelay/internal/config"
	"github.com/mkrylov/tgrelay/internal/db"
	"github.com/mkrylov/tgrelay/internal/httpapi"
	"github.com/mkrylov/tgrelay/internal/session"
	"github.com/mkrylov/tgrelay/internal/store/rabbitmq"
	"github.com/mkrylov/tgrelay/internal/store/redisstore"
	"github.com/mkrylov/tgrelay/internal/telegram"
)

func main() {
	cfg := config.Load()

	if cfg.BotToken == "" {
		log.Fatalf("BOT_TOKEN is required")
	}

	gdb, err := db.Open(cfg.DBDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Provider registry (route by configured provider + per-version model)
	reg := ai.NewRegistry()
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.ModelFast
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		return ai.NewOpenRouterProvider(
			cfg.OpenRouterBaseURL,
			cfg.OpenRouterAPIKey,
			model,
			cfg.OpenRouterSiteURL,
			cfg.OpenRouterAppName,
		), nil
	})

	var events bot.EventPublisher = bot.NopPublisher{}
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Fatalf("rabbit dial: %v", err)
		}
		defer pub.Close()
		events = pub
	}

	var offsets telegram.OffsetStore = &telegram.MemoryOffsetStore{}
	if cfg.RedisAddr != "" {
		rds, err := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		defer rds.Close()
		offsets = rds
	}

	client := telegram.NewClient(cfg.TelegramAPIURL, cfg.BotToken)
	store := session.NewStore(gdb)
	b := bot.New(store, reg, client, events, cfg.AIProvider, cfg.ModelFast, cfg.ModelCapable)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AdminAddr != "" {
		router := httpapi.NewRouter(gdb, cfg)
		go func() {
			if err := router.Run(cfg.AdminAddr); err != nil {
				log.Fatalf("admin api: %v", err)
			}
		}()
		log.Printf("admin api listening on %s", cfg.AdminAddr)
	}

	log.Printf("bot started, provider=%s fast=%s capable=%s", cfg.AIProvider, cfg.ModelFast, cfg.ModelCapable)

	poller := telegram.NewPoller(client, offsets)
	err = poller.Run(ctx, func(ctx context.Context, upd telegram.Update) {
		if err := b.HandleUpdate(ctx, upd); err != nil {
			log.Printf("update %d: %v", upd.UpdateID, err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("poll: %v", err)
	}

	log.Printf("bot stopped")
}
