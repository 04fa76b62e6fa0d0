package main

import (
	"context"
	"log"
	"os"
	"time"

	"datasoph/internal/api"
	"datasoph/internal/chat"
	"datasoph/internal/config"
	"datasoph/internal/redis"
	"datasoph/internal/session"
	"datasoph/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("DATASOPH_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	basic := cfg.BasicConfig

	// The audit database is optional: the service runs fully in memory
	// without it.
	var repo *storage.Repo
	dbType := os.Getenv("DATASOPH_DB")
	if dbType == "" {
		dbType = "sqlite3"
	}
	db, err := storage.Open(dbType, cfg)
	if err != nil {
		log.Printf("database unavailable, upload audit disabled: %v", err)
	} else {
		defer db.Close()
		if err := storage.Migrate(db, dbType); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
		repo = storage.NewRepo(db)
	}

	fileTTL := time.Duration(basic.FileTTLMinutes) * time.Minute
	cleanCtx, cleanCancel := context.WithCancel(context.Background())
	defer cleanCancel()
	if repo != nil {
		repo.StartUploadCleaner(cleanCtx, time.Duration(basic.CleanIntervalMin)*time.Minute)
	}

	store := buildSessionStore(cfg, fileTTL)

	// A missing API key is not fatal: chat degrades to the localized
	// not-configured message while uploads keep working.
	var model chat.ChatModel
	m, err := chat.NewChatModel(context.Background(), cfg, basic.Provider)
	if err != nil {
		log.Printf("chat model unavailable: %v", err)
	} else {
		model = m
	}
	chatSvc := chat.NewService(model, store,
		time.Duration(basic.LLMTimeoutSeconds)*time.Second, basic.RecentWindow)

	handlers := api.NewHandler(store, chatSvc, repo, nil,
		basic.UploadDir, basic.FiguresDir, fileTTL)

	router := gin.Default()
	handlers.RegisterRoutes(router)

	if err := router.Run(basic.ServerAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// buildSessionStore picks the session backend. Redis failures fall back to
// the in-memory store so a missing cache never blocks startup.
func buildSessionStore(cfg *config.Config, ttl time.Duration) session.Store {
	if cfg.BasicConfig.SessionBackend == "redis" {
		client, err := redis.NewClient(cfg)
		if err != nil {
			log.Printf("redis unavailable, using in-memory sessions: %v", err)
		} else {
			return session.NewRedisStore(client, cfg.BasicConfig.HistoryCap, ttl)
		}
	}
	return session.NewMemoryStore(cfg.BasicConfig.HistoryCap)
}
